package config

import "time"

// defaultConfig returns the built-in defaults every field in the loaded
// TOML file is merged on top of (mergo.WithOverride — non-zero fields in
// the file win), mirroring the teacher's DefaultQueueConfig pattern.
func defaultConfig() *Config {
	return &Config{
		Socket: SocketConfig{
			ListenAddr: ":8443",
		},
		Location: LocationConfig{
			IndexCellSquareKm: 1.0,
		},
		Moderation: ModerationConfig{
			PageSize:            50,
			Concurrency:         8,
			LLMTimeout:          10 * time.Second,
			LLMRetrySchedule:    []time.Duration{time.Second, 5 * time.Second, 15 * time.Second},
			ExpectedAcceptToken: "ACCEPT",
			EscalateRejections:  true,
		},
	}
}
