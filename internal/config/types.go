// Package config loads corectld's TOML configuration file (spec.md §6
// "Configuration"), merges it over built-in defaults, and applies the CLI
// flag overrides spec.md names (`--sqlite-in-ram`, `--database-dir`).
// Grounded on the teacher's pkg/config (load → expand env → parse → merge
// defaults → validate pipeline), with YAML swapped for TOML since that is
// spec.md's named wire format.
package config

import "time"

// SocketConfig is the `[socket]` section: where the HTTP+WebSocket server
// listens.
type SocketConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

// ComponentsConfig is the `[components]` section: which optional
// subsystems this process runs locally (spec.md §6 "booleans enabling
// account/profile/media/chat locally").
type ComponentsConfig struct {
	Account bool `toml:"account"`
	Profile bool `toml:"profile"`
	Media   bool `toml:"media"`
	Chat    bool `toml:"chat"`
}

// LocationConfig is the `[location]` section feeding geoindex.Corners
// (spec.md §6 "the four corners and index_cell_square_km").
type LocationConfig struct {
	LatTopLeft        float64 `toml:"lat_top_left"`
	LonTopLeft        float64 `toml:"lon_top_left"`
	LatBottomRight    float64 `toml:"lat_bottom_right"`
	LonBottomRight    float64 `toml:"lon_bottom_right"`
	IndexCellSquareKm float64 `toml:"index_cell_square_km"`
}

// TLSConfig is the `[tls]` section: certificate material for the HTTP
// listener. Loading the bytes is out of scope (spec.md §1 Non-goals); this
// just carries the configured paths.
type TLSConfig struct {
	CertFile string `toml:"cert_file"`
	KeyFile  string `toml:"key_file"`
}

// ExternalServicesConfig is the `[external_services]` section: URLs and
// credentials for every off-process integration (spec.md §6 "URLs for
// off-process components"). String fields may contain `${VAR}`
// environment-variable references, expanded before parsing exactly like
// the teacher's ExpandEnv.
type ExternalServicesConfig struct {
	ModerationLLMURL   string `toml:"moderation_llm_url"`
	ModerationLLMAPIKey string `toml:"moderation_llm_api_key"`
	ModerationLLMModel string `toml:"moderation_llm_model"`

	FCMProjectID          string `toml:"fcm_project_id"`
	FCMServiceAccountFile string `toml:"fcm_service_account_file"`

	APNsCertFile   string `toml:"apns_cert_file"`
	APNsKeyFile    string `toml:"apns_key_file"`
	APNsTopic      string `toml:"apns_topic"`
	APNsProduction bool   `toml:"apns_production"`

	WebPushVAPIDPublicKey  string `toml:"webpush_vapid_public_key"`
	WebPushVAPIDPrivateKey string `toml:"webpush_vapid_private_key"`
	WebPushSubscriber      string `toml:"webpush_subscriber"`

	SlackToken   string `toml:"slack_token"`
	SlackChannel string `toml:"slack_channel"`
}

// MediaBackupConfig is the `[media_backup]` section: off-process media
// replication, referenced by spec.md §4.A's "when a background replicator
// is configured" WAL discipline.
type MediaBackupConfig struct {
	Enabled     bool   `toml:"enabled"`
	Destination string `toml:"destination"`
}

// OAuthProviderConfig is one entry under `[sign_in_with_*]`.
type OAuthProviderConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// SignInWithConfig is the `[sign_in_with_*]` sections, keyed by provider.
type SignInWithConfig struct {
	Apple  OAuthProviderConfig `toml:"apple"`
	Google OAuthProviderConfig `toml:"google"`
}

// ProfileAttributesConfig is the `[profile_attributes]` section: path to
// the attribute-definition file (spec.md §6).
type ProfileAttributesConfig struct {
	Path string `toml:"path"`
}

// ModerationConfig controls the worker pool draining each queue. Not a
// spec.md-named section; kept internal to operational tuning rather than
// domain configuration, so it ships with defaults and is not exposed as a
// recognised TOML section.
type ModerationConfig struct {
	PageSize              int
	Concurrency           int
	LLMTimeout            time.Duration
	LLMRetrySchedule      []time.Duration
	ExpectedAcceptToken   string
	EscalateRejections    bool
	AppendLLMOutputReason bool
}

// Config is the fully resolved, merged configuration passed to
// internal/appstate.
type Config struct {
	Socket            SocketConfig
	Components        ComponentsConfig
	Location          LocationConfig
	TLS               TLSConfig
	ExternalServices  ExternalServicesConfig `toml:"external_services"`
	MediaBackup       MediaBackupConfig      `toml:"media_backup"`
	SignInWith        SignInWithConfig
	ProfileAttributes ProfileAttributesConfig `toml:"profile_attributes"`
	Moderation        ModerationConfig        `toml:"-"`

	// DatabaseDir and SQLiteInRAM come from CLI flags, not the TOML file
	// (spec.md §6 "CLI flags: --sqlite-in-ram (debug only), --database-dir").
	DatabaseDir string
	SQLiteInRAM bool
}
