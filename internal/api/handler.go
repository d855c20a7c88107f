package api

import (
	"log/slog"

	"github.com/shaiso/rmqlink/internal/broker"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	manager *broker.Manager
	logger  *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Manager *broker.Manager
	Logger  *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		manager: cfg.Manager,
		logger:  cfg.Logger,
	}
}
