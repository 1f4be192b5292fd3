// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"strings"
	"text/template"

	"github.com/kinotag-cli/kinotag/color"
	"github.com/kinotag-cli/kinotag/constant"
	"github.com/kinotag-cli/kinotag/key"
	"github.com/kinotag-cli/kinotag/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Kinotag + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
	})
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.LookupBaseURL, "https://api.kinotag.app/v1", "Base URL of the canonical catalog lookup service")
	register(key.LookupTimeout, 30, "Timeout for catalog lookup requests, in seconds")
	register(key.CacheCapacity, 100, "Maximum number of entries kept in the local resolution cache.\nOldest entries are evicted first")
	register(key.DetectorDebounce, 5, "Quiescence window for page-mutation signals, in seconds.\nStreaming players mutate their pages continuously; a short window causes flicker")
	register(key.DetectorCooldown, 3, "Per-content cooldown between repeated resolutions, in minutes")
	register(key.DetectorPollInterval, 10, "Interval between page snapshot polls in watch mode, in seconds")
	register(key.DetectorProgressMark, 80, "Playback percentage at which an episode counts as watched (1-100)")
	register(key.NetworkBrowserTLS, true, "Fetch pages with a browser TLS fingerprint.\nRequired for sites behind anti-bot CDNs")
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions when searching manually")
	register(key.SearchResultLimit, 10, "Limit of manual search results to show")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"bold":   style.Bold,
	"purple": style.Fg(color.Purple),
	"blue":   style.Fg(color.Blue),
	"value":  func(k string) any { return viper.Get(k) },
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ value .Key }}
{{ blue "Default:" }} {{ .Value }}`))
