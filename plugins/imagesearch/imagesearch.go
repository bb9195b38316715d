// Package imagesearch finds royalty free images through the Pixabay API.
// With mirroring enabled it copies preview thumbnails into the platform
// store, so chat transcripts keep working when Pixabay URLs expire.
package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rohanthewiz/serr"

	"plugyard/plugin"
)

const (
	defaultAPIBase  = "https://pixabay.com/api/"
	defaultCount    = 10
	maxCount        = 50
	maxPreviewBytes = int64(2 * 1024 * 1024)
)

var imageTypes = []any{"all", "photo", "illustration", "vector"}

var foundText = plugin.LocaleText{
	"en": "Found %d images for %q",
	"zh": "找到 %d 张关于 %q 的图片",
	"ja": "%[2]q の画像が %[1]d 件見つかりました",
}

var noneText = plugin.LocaleText{
	"en": "No images found for %q",
	"zh": "没有找到关于 %q 的图片",
	"ja": "%q の画像は見つかりませんでした",
}

// New builds the imagesearch plugin export. The tool is unavailable until
// PIXABAY_API_KEY is present in the execution env.
func New() *plugin.Export {
	return &plugin.Export{
		Manifest: plugin.Manifest{
			Identifier:  "imagesearch",
			Name:        "Image Search",
			Version:     "1.3.0",
			Description: "Searches Pixabay for royalty free images",
			Author:      "Plugyard",
			License:     "MIT",
			Icon:        "🖼",
			Category:    "media",
			RequiredEnv: []string{"PIXABAY_API_KEY"},
			OptionalEnv: []string{"PIXABAY_API_BASE"},
			ConfigSchema: &plugin.Schema{
				Title: "Image Search Settings",
				Properties: map[string]plugin.Property{
					"safesearch": {
						Type:        plugin.TypeBoolean,
						Title:       "Safe Search",
						Description: "Only return images suitable for all audiences",
						Default:     true,
					},
					"image_type": {
						Type:        plugin.TypeString,
						Title:       "Image Type",
						Description: "Restrict results to one kind of image",
						Default:     "all",
						Enum:        imageTypes,
						Widget:      "select",
					},
					"mirror": {
						Type:        plugin.TypeBoolean,
						Title:       "Mirror Previews",
						Description: "Copy preview thumbnails into platform storage",
						Default:     false,
					},
				},
			},
			Tools: []plugin.ToolDeclaration{{
				ID:          "search_images",
				Name:        "Search Images",
				Description: "Finds royalty free images matching a query",
				Prompt: plugin.LocaleText{
					"en": "Search for images when the user asks for pictures or illustrations.",
					"zh": "当用户需要图片或插图时进行搜索。",
					"ja": "ユーザーが画像やイラストを求めたら検索してください。",
				},
			}},
			I18N: &plugin.I18N{
				Locales:       []string{"en", "zh", "ja"},
				DefaultLocale: "en",
			},
		},
		Tools: []plugin.ToolDef{{
			ID: "search_images",
			CreateTool: func(pc *plugin.Context) plugin.Tool {
				return &searchTool{pc: pc, client: &http.Client{Timeout: 15 * time.Second}}
			},
			IsAvailable: func(env map[string]string) bool {
				return env["PIXABAY_API_KEY"] != ""
			},
		}},
		ValidateConfig: func(cfg plugin.Values) error {
			if it, ok := cfg.String("image_type"); ok {
				for _, allowed := range imageTypes {
					if it == allowed {
						return nil
					}
				}
				return serr.New(fmt.Sprintf("image_type must be one of all, photo, illustration, vector; got %q", it))
			}
			return nil
		},
	}
}

type searchTool struct {
	pc     *plugin.Context
	client *http.Client
}

type pixabayHit struct {
	ID           int    `json:"id"`
	Tags         string `json:"tags"`
	PreviewURL   string `json:"previewURL"`
	WebformatURL string `json:"webformatURL"`
	PageURL      string `json:"pageURL"`
}

type pixabayResponse struct {
	Total     int          `json:"total"`
	TotalHits int          `json:"totalHits"`
	Hits      []pixabayHit `json:"hits"`
}

func (t *searchTool) Description() string {
	return "Finds royalty free images on Pixabay matching a query"
}

func (t *searchTool) InputSchema() *plugin.Schema {
	return &plugin.Schema{
		Title: "Search Images",
		Properties: map[string]plugin.Property{
			"query": {
				Type:        plugin.TypeString,
				Title:       "Query",
				Description: "What to search for",
			},
			"count": {
				Type:        plugin.TypeNumber,
				Title:       "Count",
				Description: "How many results to return",
				Default:     float64(defaultCount),
				Minimum:     floatPtr(1),
				Maximum:     floatPtr(maxCount),
			},
		},
		Required: []string{"query"},
	}
}

func (t *searchTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	query, ok := plugin.GetString(params, "query")
	if !ok || strings.TrimSpace(query) == "" {
		return nil, serr.New("query parameter is required")
	}
	query = strings.TrimSpace(query)

	apiKey := t.pc.Env["PIXABAY_API_KEY"]
	if apiKey == "" {
		return nil, serr.New("PIXABAY_API_KEY is not set")
	}

	resp, err := t.search(ctx, apiKey, query, t.count(params))
	if err != nil {
		return nil, err
	}

	images := make([]map[string]any, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		images = append(images, map[string]any{
			"id":          hit.ID,
			"tags":        hit.Tags,
			"preview_url": hit.PreviewURL,
			"page_url":    hit.PageURL,
		})
	}

	if t.mirror() && len(resp.Hits) > 0 {
		mirrored := t.mirrorPreviews(ctx, resp.Hits, images)
		t.pc.Logger.Info("Mirrored image previews", "count", strconv.Itoa(mirrored))
	}

	locale := t.pc.Locale
	message := fmt.Sprintf(noneText.For(locale), query)
	if resp.TotalHits > 0 {
		message = fmt.Sprintf(foundText.For(locale), resp.TotalHits, query)
	}

	return map[string]any{
		"query":   query,
		"total":   resp.TotalHits,
		"images":  images,
		"message": message,
	}, nil
}

func (t *searchTool) search(ctx context.Context, apiKey, query string, count int) (*pixabayResponse, error) {
	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(count))
	params.Set("safesearch", strconv.FormatBool(t.safesearch()))
	params.Set("image_type", t.imageType())

	endpoint := t.apiBase() + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, serr.Wrap(err, "failed to build pixabay request")
	}

	t.pc.Logger.Debug("Searching pixabay", "query", query, "count", strconv.Itoa(count))

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, serr.Wrap(err, "pixabay request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, serr.New("pixabay returned a non-success status", "status", resp.Status)
	}

	var decoded pixabayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, serr.Wrap(err, "failed to decode pixabay response")
	}
	return &decoded, nil
}

// mirrorPreviews downloads preview thumbnails concurrently and uploads them
// through the context store. All downloads are joined before returning, so
// the result never references an upload still in flight.
func (t *searchTool) mirrorPreviews(ctx context.Context, hits []pixabayHit, images []map[string]any) int {
	var wg sync.WaitGroup
	var mu sync.Mutex
	mirrored := 0

	for i, hit := range hits {
		if hit.PreviewURL == "" {
			continue
		}
		wg.Add(1)
		go func(i int, hit pixabayHit) {
			defer wg.Done()
			storedURL, err := t.mirrorOne(ctx, hit)
			if err != nil {
				t.pc.Logger.Warn("Failed to mirror preview", "id", strconv.Itoa(hit.ID), "error", err.Error())
				return
			}
			mu.Lock()
			images[i]["stored_url"] = storedURL
			mirrored++
			mu.Unlock()
		}(i, hit)
	}

	wg.Wait()
	return mirrored
}

func (t *searchTool) mirrorOne(ctx context.Context, hit pixabayHit) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hit.PreviewURL, nil)
	if err != nil {
		return "", serr.Wrap(err, "failed to build preview request")
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "", serr.Wrap(err, "preview download failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", serr.New("preview download returned a non-success status", "status", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		return "", serr.Wrap(err, "failed to read preview")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	objectPath := fmt.Sprintf("imagesearch/%s/%d%s", t.pc.ConversationID, hit.ID, previewExt(hit.PreviewURL))
	return t.pc.Store.Upload(ctx, objectPath, data, contentType)
}

func (t *searchTool) apiBase() string {
	if base := t.pc.Option("api_base_url"); base != "" {
		return base
	}
	return t.pc.EnvOr("PIXABAY_API_BASE", defaultAPIBase)
}

func (t *searchTool) count(params map[string]any) int {
	n, ok := plugin.GetInt(params, "count")
	if !ok || n < 1 {
		return defaultCount
	}
	if n > maxCount {
		return maxCount
	}
	return n
}

func (t *searchTool) safesearch() bool {
	if b, ok := t.pc.Config.Bool("safesearch"); ok {
		return b
	}
	return true
}

func (t *searchTool) imageType() string {
	if it, ok := t.pc.Config.String("image_type"); ok && it != "" {
		return it
	}
	return "all"
}

func (t *searchTool) mirror() bool {
	b, ok := t.pc.Config.Bool("mirror")
	return ok && b
}

func previewExt(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ext := path.Ext(u.Path); ext != "" {
			return ext
		}
	}
	return ".jpg"
}

func floatPtr(v float64) *float64 { return &v }
