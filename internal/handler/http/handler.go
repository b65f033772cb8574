package http

import (
	"time"

	"github.com/MKhiriev/go-note-sync/internal/cache"
	"github.com/MKhiriev/go-note-sync/internal/config"
	"github.com/MKhiriev/go-note-sync/internal/logger"
	"github.com/MKhiriev/go-note-sync/internal/relay"
	"github.com/MKhiriev/go-note-sync/internal/service"
	"github.com/gorilla/websocket"
)

type Handler struct {
	services *service.Services
	relay    *relay.Relay
	presence cache.PresenceCache

	upgrader      websocket.Upgrader
	maxFrameBytes int64
	writeTimeout  time.Duration
	presenceTTL   time.Duration
	version       string

	logger *logger.Logger
}

func NewHandler(services *service.Services, noteRelay *relay.Relay, presence cache.PresenceCache, cfg *config.StructuredConfig, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		relay:    noteRelay,
		presence: presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		maxFrameBytes: cfg.Relay.MaxFrameBytes,
		writeTimeout:  cfg.Relay.WriteTimeout,
		presenceTTL:   cfg.Relay.PresenceTTL,
		version:       cfg.App.Version,
		logger:        logger,
	}
}
