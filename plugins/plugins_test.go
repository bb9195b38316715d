package plugins

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"plugyard/plugin"
	"plugyard/registry"
)

// fixtureServer stands in for every external service the built-in
// plugins talk to.
func fixtureServer() *httptest.Server {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)

	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><head><title>Fixture</title></head><body><p>hello</p></body></html>"))
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"total":1,"totalHits":1,"hits":[{"id":1,"tags":"one","previewURL":"%s/img/1.jpg","webformatURL":"%s/img/640-1.jpg","pageURL":"https://pixabay.com/photos/1/"}]}`,
			srv.URL, srv.URL)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg"))
	})
	return srv
}

func TestDefaultRegistersBuiltins(t *testing.T) {
	reg, err := Default(plugin.NopLogger{}, nil)
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}

	infos := reg.Plugins()
	want := []string{"weather", "webcrawler", "imagesearch"}
	if len(infos) != len(want) {
		t.Fatalf("got %d plugins; want %d", len(infos), len(want))
	}
	for i, id := range want {
		if infos[i].ID != id {
			t.Errorf("plugin %d = %s; want %s", i, infos[i].ID, id)
		}
		if infos[i].Name == "" || infos[i].Version == "" || infos[i].Description == "" {
			t.Errorf("plugin %s is missing manifest fields: %+v", id, infos[i])
		}
		if infos[i].ConfigSchema == nil {
			t.Errorf("plugin %s has no config schema", id)
		}
		if len(infos[i].Tools) == 0 {
			t.Errorf("plugin %s declares no tools", id)
		}
	}
}

// Every registered tool must execute cleanly when params are synthesized
// from its own schema, with sample values for the required names.
func TestEveryToolExecutesWithSynthesizedParams(t *testing.T) {
	srv := fixtureServer()
	defer srv.Close()

	samples := map[string]any{
		"city":  "Tokyo",
		"url":   srv.URL + "/page",
		"query": "cats",
	}

	reg, err := Default(plugin.NopLogger{}, nil)
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}

	for _, info := range reg.Plugins() {
		for _, tool := range info.Tools {
			t.Run(info.ID+"/"+tool.ID, func(t *testing.T) {
				schema := reg.ToolInputSchema(info.ID, tool.ID)
				if schema == nil {
					t.Fatal("no input schema")
				}
				if err := schema.Check(); err != nil {
					t.Fatalf("schema check failed: %v", err)
				}

				params := map[string]any{}
				for _, name := range schema.Required {
					v, ok := samples[name]
					if !ok {
						t.Fatalf("no sample value for required param %q", name)
					}
					params[name] = v
				}
				if err := schema.Validate(params); err != nil {
					t.Fatalf("synthesized params fail the schema: %v", err)
				}

				res, err := reg.Execute(context.Background(), registry.ExecuteRequest{
					PluginID:    info.ID,
					ToolID:      tool.ID,
					Params:      params,
					Env:         map[string]string{"PIXABAY_API_KEY": "test-key"},
					ToolOptions: map[string]string{"api_base_url": srv.URL + "/api/"},
				})
				if err != nil {
					t.Fatalf("Execute failed: %v", err)
				}
				if res == nil {
					t.Fatal("Execute returned a nil result")
				}
			})
		}
	}
}

func TestToolDescriptionsAreSet(t *testing.T) {
	reg, err := Default(plugin.NopLogger{}, nil)
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	for _, info := range reg.Plugins() {
		for _, tool := range info.Tools {
			if tool.Name == "" || tool.Description == "" {
				t.Errorf("%s/%s is missing a name or description", info.ID, tool.ID)
			}
		}
	}
}
