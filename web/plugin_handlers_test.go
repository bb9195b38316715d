package web

import (
	"strings"
	"testing"

	"plugyard/plugin"
	"plugyard/plugins"
)

func TestDecodeExecuteBodyRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty body", "", "request body is empty"},
		{"truncated JSON", `{"pluginId":`, "invalid JSON body"},
		{"not an object", `[1, 2, 3]`, "invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeExecuteBody([]byte(tt.body))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDecodeExecuteBodyNormalizesMissingMaps(t *testing.T) {
	body, err := decodeExecuteBody([]byte(`{"pluginId": "weather", "toolId": "get_weather"}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Params == nil || body.Env == nil || body.Config == nil {
		t.Errorf("maps should be non-nil after decode: params=%v env=%v config=%v",
			body.Params, body.Env, body.Config)
	}
	if len(body.Params) != 0 {
		t.Errorf("params should start empty, got %v", body.Params)
	}
}

func TestDecodeExecuteBodyMapsAllFields(t *testing.T) {
	payload := `{
		"pluginId": "imagesearch",
		"toolId": "search_images",
		"params": {"query": "cats", "count": 5},
		"env": {"PIXABAY_API_KEY": "k"},
		"config": {"safesearch": false},
		"conversationId": "conv-9",
		"userId": "u-1",
		"userEmail": "dev@example.com",
		"datasourceId": "ds-3",
		"toolOptions": {"api_base_url": "http://localhost:9999/api/"},
		"locale": "zh-CN"
	}`

	body, err := decodeExecuteBody([]byte(payload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.PluginID != "imagesearch" || body.ToolID != "search_images" {
		t.Errorf("ids = %q/%q", body.PluginID, body.ToolID)
	}
	if body.Params["query"] != "cats" || body.Params["count"] != float64(5) {
		t.Errorf("params = %v", body.Params)
	}
	if body.Env["PIXABAY_API_KEY"] != "k" {
		t.Errorf("env = %v", body.Env)
	}
	if body.Config["safesearch"] != false {
		t.Errorf("config = %v", body.Config)
	}
	if body.ConversationID != "conv-9" || body.UserID != "u-1" || body.UserEmail != "dev@example.com" {
		t.Errorf("identity fields = %q/%q/%q", body.ConversationID, body.UserID, body.UserEmail)
	}
	if body.DatasourceID == nil || *body.DatasourceID != "ds-3" {
		t.Errorf("datasourceId = %v", body.DatasourceID)
	}
	if body.ToolOptions["api_base_url"] != "http://localhost:9999/api/" {
		t.Errorf("toolOptions = %v", body.ToolOptions)
	}
	if body.Locale != "zh-CN" {
		t.Errorf("locale = %q", body.Locale)
	}
}

func TestExecuteBodyValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    executeBody
		wantErr string
	}{
		{"missing plugin id", executeBody{ToolID: "get_weather"}, "pluginId is required"},
		{"missing tool id", executeBody{PluginID: "weather"}, "toolId is required"},
		{"both present", executeBody{PluginID: "weather", ToolID: "get_weather"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.body.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestExecuteBodyRequestCarriesEverything(t *testing.T) {
	ds := "ds-1"
	body := executeBody{
		PluginID:       "weather",
		ToolID:         "get_weather",
		Params:         map[string]any{"city": "Tokyo"},
		Env:            map[string]string{"A": "1"},
		Config:         map[string]any{"units": "fahrenheit"},
		ConversationID: "conv-1",
		UserID:         "u-1",
		UserEmail:      "dev@example.com",
		DatasourceID:   &ds,
		ToolOptions:    map[string]string{"api_base_url": "http://x/"},
		Locale:         "ja",
	}

	req := body.request()
	if req.PluginID != body.PluginID || req.ToolID != body.ToolID {
		t.Errorf("ids = %q/%q", req.PluginID, req.ToolID)
	}
	if req.Params["city"] != "Tokyo" || req.Env["A"] != "1" || req.Config["units"] != "fahrenheit" {
		t.Errorf("payload maps not carried: %v %v %v", req.Params, req.Env, req.Config)
	}
	if req.ConversationID != "conv-1" || req.UserID != "u-1" || req.UserEmail != "dev@example.com" {
		t.Errorf("identity not carried")
	}
	if req.DatasourceID == nil || *req.DatasourceID != "ds-1" {
		t.Errorf("datasourceId not carried: %v", req.DatasourceID)
	}
	if req.ToolOptions["api_base_url"] != "http://x/" || req.Locale != "ja" {
		t.Errorf("options/locale not carried: %v %q", req.ToolOptions, req.Locale)
	}
}

func TestGeneratePlaygroundUI(t *testing.T) {
	reg, err := plugins.Default(plugin.NopLogger{}, nil)
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}

	html := generatePlaygroundUI(reg)

	wantFragments := []string{
		"<title>Plugin Playground - Plugyard</title>",
		"3 plugins loaded",
		`id="plugin-list"`,
		`id="param-form"`,
		`id="env-json"`,
		`id="config-json"`,
		"executeTool()",
		"/api/plugins",
		"/api/execute",
		"/api/executions",
	}
	for _, want := range wantFragments {
		if !strings.Contains(html, want) {
			t.Errorf("page is missing %q", want)
		}
	}

	if strings.Contains(html, "`") {
		t.Error("inline script must not contain backticks")
	}
}
