package registry

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"

	"plugyard/plugin"
)

// Registry holds the registered plugin exports. Plugins register during
// startup; after that every operation is read-only, so executions never
// contend with each other.
type Registry struct {
	mu      sync.RWMutex
	ordered []*plugin.Export
	byID    map[string]*plugin.Export

	log   plugin.Logger
	store plugin.Store
}

// New creates an empty registry. The logger and store are handed to every
// execution context; nil falls back to the process logger and a store that
// rejects uploads.
func New(log plugin.Logger, store plugin.Store) *Registry {
	if log == nil {
		log = stdLogger{}
	}
	if store == nil {
		store = plugin.NopStore{}
	}
	return &Registry{
		byID:  make(map[string]*plugin.Export),
		log:   log,
		store: store,
	}
}

// Register adds a plugin export. Duplicate identifiers and manifest/tool
// mismatches are rejected, so the registry never lists a plugin it cannot
// execute.
func (r *Registry) Register(exp *plugin.Export) error {
	if exp == nil {
		return serr.New("cannot register a nil plugin export")
	}
	if err := exp.Check(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := exp.Manifest.Identifier
	if _, exists := r.byID[id]; exists {
		return serr.New("plugin already registered", "plugin", id)
	}
	r.byID[id] = exp
	r.ordered = append(r.ordered, exp)

	logger.Info("Registered plugin", "plugin", id, "version", exp.Manifest.Version)
	return nil
}

// ToolSummary is the list-endpoint projection of one tool.
type ToolSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category,omitempty"`
	Icon            string `json:"icon,omitempty"`
	NeedsDatasource bool   `json:"needs_datasource"`
	AuthProvider    string `json:"auth_provider,omitempty"`
}

// PluginInfo is the list-endpoint projection of one plugin.
type PluginInfo struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Description  string         `json:"description,omitempty"`
	Author       string         `json:"author,omitempty"`
	Icon         string         `json:"icon,omitempty"`
	Category     string         `json:"category,omitempty"`
	Homepage     string         `json:"homepage,omitempty"`
	RequiredEnv  []string       `json:"required_env,omitempty"`
	OptionalEnv  []string       `json:"optional_env,omitempty"`
	ConfigSchema *plugin.Schema `json:"config_schema,omitempty"`
	Tools        []ToolSummary  `json:"tools"`
}

// Plugins lists every registered plugin in registration order, one entry per
// plugin, with exactly the tools its manifest declares.
func (r *Registry) Plugins() []PluginInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]PluginInfo, 0, len(r.ordered))
	for _, exp := range r.ordered {
		infos = append(infos, projectInfo(exp))
	}
	return infos
}

func projectInfo(exp *plugin.Export) PluginInfo {
	m := exp.Manifest
	info := PluginInfo{
		ID:           m.Identifier,
		Name:         m.Name,
		Version:      m.Version,
		Description:  m.Description,
		Author:       m.Author,
		Icon:         m.Icon,
		Category:     m.Category,
		Homepage:     m.Homepage,
		RequiredEnv:  m.RequiredEnv,
		OptionalEnv:  m.OptionalEnv,
		ConfigSchema: m.ConfigSchema,
		Tools:        make([]ToolSummary, 0, len(m.Tools)),
	}
	for _, t := range m.Tools {
		info.Tools = append(info.Tools, ToolSummary{
			ID:              t.ID,
			Name:            t.Name,
			Description:     t.Description,
			Category:        t.Category,
			Icon:            t.Icon,
			NeedsDatasource: t.NeedsDatasource,
			AuthProvider:    t.AuthProvider,
		})
	}
	return info
}

// Get returns the export registered under id.
func (r *Registry) Get(id string) (*plugin.Export, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exp, ok := r.byID[id]
	return exp, ok
}

// ToolInputSchema returns the input schema for one tool, or nil when the
// plugin or tool id is unknown. The tool is built against an inert context,
// so schema introspection cannot log, persist, or reach the network.
func (r *Registry) ToolInputSchema(pluginID, toolID string) *plugin.Schema {
	exp, ok := r.Get(pluginID)
	if !ok {
		return nil
	}
	td, ok := exp.Tool(toolID)
	if !ok {
		return nil
	}
	t := td.CreateTool(introspectionContext())
	if t == nil {
		return nil
	}
	return t.InputSchema()
}

func introspectionContext() *plugin.Context {
	return &plugin.Context{
		Locale:      "en",
		ToolOptions: map[string]string{},
		Config:      plugin.Values{},
		Env:         map[string]string{},
		Logger:      plugin.NopLogger{},
		Store:       plugin.NopStore{},
	}
}

// ExecuteRequest names a tool and carries the per-invocation inputs.
type ExecuteRequest struct {
	PluginID string
	ToolID   string

	Params map[string]any
	Env    map[string]string
	Config map[string]any

	ConversationID string
	UserID         string
	UserEmail      string
	DatasourceID   *string
	ToolOptions    map[string]string
	Locale         string
}

// Execute resolves one tool, gates it on availability and validated config,
// builds a fresh execution context, and runs it. The tool's result or error
// comes back verbatim; this layer adds no retries or timeouts.
func (r *Registry) Execute(ctx context.Context, req ExecuteRequest) (any, error) {
	exp, ok := r.Get(req.PluginID)
	if !ok {
		return nil, &plugin.NotFoundError{Kind: "plugin", PluginID: req.PluginID}
	}
	td, ok := exp.Tool(req.ToolID)
	if !ok {
		return nil, &plugin.NotFoundError{Kind: "tool", PluginID: req.PluginID, ToolID: req.ToolID}
	}

	env := req.Env
	if env == nil {
		env = map[string]string{}
	}
	if td.IsAvailable != nil && !td.IsAvailable(env) {
		return nil, &plugin.UnavailableError{
			PluginID:   req.PluginID,
			ToolID:     req.ToolID,
			MissingEnv: missingEnv(exp.Manifest.RequiredEnv, env),
		}
	}

	cfg := coerceConfig(exp, req.Config)
	if exp.ValidateConfig != nil {
		if err := exp.ValidateConfig(cfg); err != nil {
			return nil, &plugin.ConfigError{PluginID: req.PluginID, Reason: err.Error()}
		}
	}

	pc := r.buildContext(exp, req, cfg, env)
	t := td.CreateTool(pc)
	if t == nil {
		return nil, serr.New("tool factory returned nil", "plugin", req.PluginID, "tool", req.ToolID)
	}

	params := req.Params
	if params == nil {
		params = map[string]any{}
	}
	return t.Execute(ctx, params)
}

func coerceConfig(exp *plugin.Export, raw map[string]any) plugin.Values {
	if exp.Manifest.ConfigSchema != nil {
		if raw == nil {
			raw = map[string]any{}
		}
		return exp.Manifest.ConfigSchema.Coerce(raw)
	}
	// no schema declared: keep whatever fits the value types
	vals := make(plugin.Values, len(raw))
	for k, v := range raw {
		if val, ok := plugin.FromAny(v); ok {
			vals[k] = val
		}
	}
	return vals
}

func missingEnv(required []string, env map[string]string) []string {
	var missing []string
	for _, name := range required {
		if env[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func (r *Registry) buildContext(exp *plugin.Export, req ExecuteRequest, cfg plugin.Values, env map[string]string) *plugin.Context {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	userID := req.UserID
	if userID == "" {
		userID = uuid.NewString()
	}
	opts := req.ToolOptions
	if opts == nil {
		opts = map[string]string{}
	}
	return &plugin.Context{
		ConversationID: conversationID,
		UserID:         userID,
		UserEmail:      req.UserEmail,
		DatasourceID:   req.DatasourceID,
		Locale:         exp.Manifest.ResolveLocale(req.Locale),
		ToolOptions:    opts,
		Config:         cfg,
		Env:            env,
		Logger:         r.log,
		Store:          r.store,
	}
}

// OnLoadAll runs every plugin's OnLoad hook in registration order. A failing
// hook is logged and skipped; it does not stop the remaining plugins.
func (r *Registry) OnLoadAll() {
	for _, exp := range r.exports() {
		if exp.OnLoad == nil {
			continue
		}
		if err := exp.OnLoad(); err != nil {
			logger.LogErr(err, "plugin load hook failed", "plugin", exp.Manifest.Identifier)
			continue
		}
		logger.Info("Plugin loaded", "plugin", exp.Manifest.Identifier)
	}
}

// OnUnloadAll runs every plugin's OnUnload hook, last registered first.
func (r *Registry) OnUnloadAll() {
	exps := r.exports()
	for i := len(exps) - 1; i >= 0; i-- {
		if exps[i].OnUnload != nil {
			exps[i].OnUnload()
		}
	}
}

func (r *Registry) exports() []*plugin.Export {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*plugin.Export, len(r.ordered))
	copy(out, r.ordered)
	return out
}
