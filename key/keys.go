// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Catalog Service Integration - these keys manage the connection to the canonical movie catalog.
const (
	LookupBaseURL = "lookup.base_url"
	LookupTimeout = "lookup.timeout_seconds"
)

// Resolution Cache - these keys configure the persistence of recent identification results.
const (
	CacheCapacity = "cache.capacity"
)

// Change Detection - these keys govern the continuous watch loop.
const (
	DetectorDebounce     = "detector.debounce_seconds"
	DetectorCooldown     = "detector.cooldown_minutes"
	DetectorPollInterval = "detector.poll_interval_seconds"
	DetectorProgressMark = "detector.progress_threshold"
)

// Network Behavior - these keys select the transport used to fetch page snapshots.
const (
	NetworkBrowserTLS = "network.browser_tls"
)

// Search Interaction - these keys define the manual search experience.
const (
	SearchShowQuerySuggestions = "search.show_query_suggestions"
	SearchResultLimit          = "search.result_limit"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern non-interactive application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
