package config

import "time"

// Built-in fallback values applied after all explicit sources.
const (
	defaultHTTPAddress    = "0.0.0.0:8080"
	defaultTokenIssuer    = "go-note-sync"
	defaultTokenDuration  = 24 * time.Hour
	defaultRequestTimeout = 30 * time.Second
	defaultSessionBuffer  = 32
	defaultMaxFrameBytes  = 64 * 1024
	defaultWriteTimeout   = 10 * time.Second
	defaultPresenceTTL    = 60 * time.Second
	defaultSyncInterval   = 5 * time.Second
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:   defaultTokenIssuer,
			TokenDuration: defaultTokenDuration,
		},
		Server: Server{
			HTTPAddress:    defaultHTTPAddress,
			RequestTimeout: defaultRequestTimeout,
		},
		Relay: Relay{
			SessionBuffer: defaultSessionBuffer,
			MaxFrameBytes: defaultMaxFrameBytes,
			WriteTimeout:  defaultWriteTimeout,
			PresenceTTL:   defaultPresenceTTL,
		},
		Workers: Workers{
			SyncInterval: defaultSyncInterval,
		},
	}
}
