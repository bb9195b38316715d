package db

import (
	"path/filepath"
	"testing"
)

func TestRecordWithoutInitIsNoop(t *testing.T) {
	Close()

	if err := RecordExecution(Execution{PluginID: "weather", ToolID: "get_weather", Success: true}); err != nil {
		t.Errorf("RecordExecution before Init = %v; want nil", err)
	}
	rows, err := RecentExecutions(10)
	if err != nil || rows != nil {
		t.Errorf("RecentExecutions before Init = %v, %v", rows, err)
	}
}

func TestExecutionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	if err := Init(path); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()

	records := []Execution{
		{PluginID: "weather", ToolID: "get_weather", ConversationID: "conv-1",
			Params: `{"city":"Tokyo"}`, Success: true, DurationMS: 12},
		{PluginID: "webcrawler", ToolID: "fetch_url", ConversationID: "conv-1",
			Params: `{"url":"https://example.com"}`, Success: false, Error: "request failed", DurationMS: 420},
		{PluginID: "imagesearch", ToolID: "search_images", UserID: "u-1",
			Params: `{"query":"cats"}`, Success: true, DurationMS: 88},
	}
	for _, e := range records {
		if err := RecordExecution(e); err != nil {
			t.Fatalf("RecordExecution failed: %v", err)
		}
	}

	rows, err := RecentExecutions(2)
	if err != nil {
		t.Fatalf("RecentExecutions failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows; want 2 with limit 2", len(rows))
	}
	if rows[0].PluginID != "imagesearch" || rows[1].PluginID != "webcrawler" {
		t.Errorf("order = %s, %s; want newest first", rows[0].PluginID, rows[1].PluginID)
	}

	latest := rows[0]
	if latest.ID == "" {
		t.Error("execution id was not assigned")
	}
	if latest.UserID != "u-1" || latest.Params != `{"query":"cats"}` || latest.DurationMS != 88 {
		t.Errorf("row = %+v", latest)
	}
	if latest.CreatedAt.IsZero() {
		t.Error("created_at was not set")
	}

	failed := rows[1]
	if failed.Success || failed.Error != "request failed" {
		t.Errorf("failure row = %+v", failed)
	}
}

func TestInitTwiceIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	if err := Init(path); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()

	if err := Init(filepath.Join(t.TempDir(), "other.db")); err != nil {
		t.Errorf("second Init = %v; want nil no-op", err)
	}
}
