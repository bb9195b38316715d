package web

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"

	"plugyard/db"
	"plugyard/platform/shutdown"
	"plugyard/registry"
)

// pluginListHandler serves the plugin catalog. With pluginId and toolId
// query params it serves that tool's input schema instead.
func pluginListHandler(c rweb.Context) error {
	pluginID := c.Request().QueryParam("pluginId")
	toolID := c.Request().QueryParam("toolId")

	if pluginID == "" && toolID == "" {
		return c.WriteJSON(map[string]interface{}{
			"plugins": pluginRegistry.Plugins(),
		})
	}
	if pluginID == "" || toolID == "" {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "pluginId and toolId must be provided together"})
	}

	// unknown ids come back as schema: null rather than an error
	return c.WriteJSON(map[string]interface{}{
		"schema": pluginRegistry.ToolInputSchema(pluginID, toolID),
	})
}

// executeBody is the POST /api/execute request payload.
type executeBody struct {
	PluginID       string            `json:"pluginId"`
	ToolID         string            `json:"toolId"`
	Params         map[string]any    `json:"params"`
	Env            map[string]string `json:"env"`
	Config         map[string]any    `json:"config"`
	ConversationID string            `json:"conversationId"`
	UserID         string            `json:"userId"`
	UserEmail      string            `json:"userEmail"`
	DatasourceID   *string           `json:"datasourceId"`
	ToolOptions    map[string]string `json:"toolOptions"`
	Locale         string            `json:"locale"`
}

// decodeExecuteBody parses and normalizes the execute payload. Missing
// object fields become empty so downstream code never sees nil maps.
func decodeExecuteBody(body []byte) (*executeBody, error) {
	if len(body) == 0 {
		return nil, serr.New("request body is empty")
	}
	var req executeBody
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, serr.Wrap(err, "invalid JSON body")
	}
	if req.Params == nil {
		req.Params = map[string]any{}
	}
	if req.Env == nil {
		req.Env = map[string]string{}
	}
	if req.Config == nil {
		req.Config = map[string]any{}
	}
	return &req, nil
}

func (b *executeBody) validate() error {
	if b.PluginID == "" {
		return serr.New("pluginId is required")
	}
	if b.ToolID == "" {
		return serr.New("toolId is required")
	}
	return nil
}

func (b *executeBody) request() registry.ExecuteRequest {
	return registry.ExecuteRequest{
		PluginID:       b.PluginID,
		ToolID:         b.ToolID,
		Params:         b.Params,
		Env:            b.Env,
		Config:         b.Config,
		ConversationID: b.ConversationID,
		UserID:         b.UserID,
		UserEmail:      b.UserEmail,
		DatasourceID:   b.DatasourceID,
		ToolOptions:    b.ToolOptions,
		Locale:         b.Locale,
	}
}

// executeHandler runs one tool and reports the outcome. Malformed requests
// get a 400; execution failures of any kind get a 500 with success false.
func executeHandler(c rweb.Context) error {
	if shutdown.CheckShutdown() {
		c.Response().SetStatus(503)
		return c.WriteJSON(map[string]string{"error": "server is shutting down"})
	}

	body, err := decodeExecuteBody(c.Request().Body())
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": err.Error()})
	}
	if err := body.validate(); err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": err.Error()})
	}

	started := time.Now()
	result, execErr := pluginRegistry.Execute(context.Background(), body.request())
	duration := time.Since(started)

	recordExecution(body, execErr, duration)

	if execErr != nil {
		logger.LogErr(execErr, "Tool execution failed", "plugin", body.PluginID, "tool", body.ToolID)
		c.Response().SetStatus(500)
		return c.WriteJSON(map[string]interface{}{
			"success": false,
			"error":   execErr.Error(),
		})
	}

	logger.Info("Tool executed", "plugin", body.PluginID, "tool", body.ToolID, "duration", duration.String())
	return c.WriteJSON(map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

// recordExecution writes one history row; failures are logged, never
// surfaced to the caller.
func recordExecution(body *executeBody, execErr error, duration time.Duration) {
	paramsJSON, err := json.Marshal(body.Params)
	if err != nil {
		paramsJSON = []byte("{}")
	}

	rec := db.Execution{
		PluginID:       body.PluginID,
		ToolID:         body.ToolID,
		ConversationID: body.ConversationID,
		UserID:         body.UserID,
		Params:         string(paramsJSON),
		Success:        execErr == nil,
		DurationMS:     duration.Milliseconds(),
	}
	if execErr != nil {
		rec.Error = execErr.Error()
	}
	if err := db.RecordExecution(rec); err != nil {
		logger.LogErr(err, "Failed to record execution history")
	}
}

// executionListHandler serves recent execution history for the playground.
func executionListHandler(c rweb.Context) error {
	limit := 20
	if raw := c.Request().QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 200 {
		limit = 200
	}

	rows, err := db.RecentExecutions(limit)
	if err != nil {
		logger.LogErr(err, "Failed to load execution history")
		c.Response().SetStatus(500)
		return c.WriteJSON(map[string]string{"error": "failed to load execution history"})
	}
	if rows == nil {
		rows = []db.Execution{}
	}
	return c.WriteJSON(map[string]interface{}{"executions": rows})
}

// fileHandler serves objects stored by the local storage backend.
func fileHandler(c rweb.Context) error {
	if fileStore == nil {
		c.Response().SetStatus(404)
		return c.WriteJSON(map[string]string{"error": "file storage is not enabled"})
	}
	path := c.Request().QueryParam("path")
	if path == "" {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "path query param is required"})
	}

	data, contentType, err := fileStore.Get(path)
	if err != nil {
		c.Response().SetStatus(404)
		return c.WriteJSON(map[string]string{"error": "file not found"})
	}

	c.Response().SetHeader("Content-Type", contentType)
	_, err = c.Response().Write(data)
	return err
}
