// Package webcrawler fetches web pages and hands them back as markdown, so
// chat conversations can reference page content without raw HTML.
package webcrawler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rohanthewiz/serr"
	"golang.org/x/net/html"

	"plugyard/plugin"
)

const (
	defaultTimeout   = 30 * time.Second
	maxTimeout       = 120 * time.Second
	defaultMaxBytes  = int64(5 * 1024 * 1024)
	defaultUserAgent = "Mozilla/5.0 (compatible; Plugyard/1.0)"
)

// New builds the webcrawler plugin export.
func New() *plugin.Export {
	return &plugin.Export{
		Manifest: plugin.Manifest{
			Identifier:  "webcrawler",
			Name:        "Web Crawler",
			Version:     "1.2.0",
			Description: "Fetches web pages and converts them to markdown",
			Author:      "Plugyard",
			License:     "MIT",
			Icon:        "🕸",
			Category:    "web",
			ConfigSchema: &plugin.Schema{
				Title: "Web Crawler Settings",
				Properties: map[string]plugin.Property{
					"user_agent": {
						Type:        plugin.TypeString,
						Title:       "User Agent",
						Description: "Header sent with every request",
						Default:     defaultUserAgent,
					},
					"max_bytes": {
						Type:        plugin.TypeNumber,
						Title:       "Max Response Bytes",
						Description: "Responses larger than this are truncated",
						Default:     float64(defaultMaxBytes),
						Minimum:     floatPtr(1024),
					},
				},
			},
			Tools: []plugin.ToolDeclaration{{
				ID:          "fetch_url",
				Name:        "Fetch URL",
				Description: "Downloads a page and returns it as markdown",
				Prompt:      plugin.Text("Fetch the page when the user shares a link or asks about a URL."),
			}},
		},
		Tools: []plugin.ToolDef{{
			ID: "fetch_url",
			CreateTool: func(pc *plugin.Context) plugin.Tool {
				return &fetchTool{pc: pc, client: &http.Client{}}
			},
		}},
	}
}

type fetchTool struct {
	pc     *plugin.Context
	client *http.Client
}

func (t *fetchTool) Description() string {
	return "Downloads a web page and returns its content as markdown"
}

func (t *fetchTool) InputSchema() *plugin.Schema {
	return &plugin.Schema{
		Title: "Fetch URL",
		Properties: map[string]plugin.Property{
			"url": {
				Type:        plugin.TypeString,
				Title:       "URL",
				Description: "Page to fetch, http or https",
			},
			"timeout": {
				Type:        plugin.TypeNumber,
				Title:       "Timeout",
				Description: "Request timeout in seconds",
				Minimum:     floatPtr(1),
				Maximum:     floatPtr(120),
			},
		},
		Required: []string{"url"},
	}
}

func (t *fetchTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	rawURL, ok := plugin.GetString(params, "url")
	if !ok || strings.TrimSpace(rawURL) == "" {
		return nil, serr.New("url parameter is required")
	}

	target, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, serr.Wrap(err, "invalid url")
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, serr.New("url must use http or https", "url", rawURL)
	}
	if target.Host == "" {
		return nil, serr.New("url has no host", "url", rawURL)
	}

	reqCtx, cancel := context.WithTimeout(ctx, t.timeout(params))
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, serr.Wrap(err, "failed to build request")
	}
	req.Header.Set("User-Agent", t.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")

	t.pc.Logger.Debug("Fetching URL", "url", target.String())

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, serr.Wrap(err, "request failed", "url", target.String())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, serr.New("request returned a non-success status",
			"url", target.String(), "status", resp.Status)
	}

	maxBytes := t.maxBytes()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, serr.Wrap(err, "failed to read response body", "url", target.String())
	}
	truncated := false
	if int64(len(body)) > maxBytes {
		body = body[:maxBytes]
		truncated = true
	}

	finalURL := target.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	mediaType := "text/html"
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			mediaType = mt
		}
	}

	var title, content string
	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		doc, err := html.Parse(bytes.NewReader(body))
		if err != nil {
			return nil, serr.Wrap(err, "failed to parse html", "url", finalURL)
		}
		title = pageTitle(doc)
		content = markdownFromHTML(doc)
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		content = indentJSON(body)
	case strings.HasPrefix(mediaType, "text/"):
		content = string(body)
	default:
		return nil, serr.New("unsupported content type", "content_type", mediaType, "url", finalURL)
	}

	result := map[string]any{
		"url":          target.String(),
		"final_url":    finalURL,
		"title":        title,
		"content":      content,
		"length":       len(content),
		"content_type": mediaType,
	}
	if truncated {
		result["truncated"] = true
	}
	return result, nil
}

func (t *fetchTool) timeout(params map[string]any) time.Duration {
	if secs, ok := plugin.GetFloat(params, "timeout"); ok && secs > 0 {
		d := time.Duration(secs * float64(time.Second))
		if d > maxTimeout {
			return maxTimeout
		}
		if d < time.Second {
			return time.Second
		}
		return d
	}
	return defaultTimeout
}

func (t *fetchTool) maxBytes() int64 {
	if n, ok := t.pc.Config.Number("max_bytes"); ok && n >= 1024 {
		return int64(n)
	}
	return defaultMaxBytes
}

func (t *fetchTool) userAgent() string {
	if ua, ok := t.pc.Config.String("user_agent"); ok && ua != "" {
		return ua
	}
	return defaultUserAgent
}

func indentJSON(body []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return string(body)
	}
	return out.String()
}

func floatPtr(v float64) *float64 { return &v }
