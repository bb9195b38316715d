package plugin

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports an unknown plugin or tool id. Kind distinguishes the
// two, so a caller can tell a bad plugin id from a bad tool id.
type NotFoundError struct {
	Kind     string // "plugin" or "tool"
	PluginID string
	ToolID   string
}

func (e *NotFoundError) Error() string {
	if e.Kind == "tool" {
		return fmt.Sprintf("tool %q not found in plugin %q", e.ToolID, e.PluginID)
	}
	return fmt.Sprintf("plugin %q not found", e.PluginID)
}

// UnavailableError reports a tool that cannot run in the current environment,
// typically because required env vars are missing.
type UnavailableError struct {
	PluginID   string
	ToolID     string
	MissingEnv []string
}

func (e *UnavailableError) Error() string {
	if len(e.MissingEnv) > 0 {
		return fmt.Sprintf("tool %q in plugin %q is not available: missing env %s",
			e.ToolID, e.PluginID, strings.Join(e.MissingEnv, ", "))
	}
	return fmt.Sprintf("tool %q in plugin %q is not available in this environment", e.ToolID, e.PluginID)
}

// ConfigError reports plugin config rejected by the plugin's own validator.
type ConfigError struct {
	PluginID string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config for plugin %q: %s", e.PluginID, e.Reason)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsUnavailable reports whether err is an UnavailableError.
func IsUnavailable(err error) bool {
	var ua *UnavailableError
	return errors.As(err, &ua)
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
