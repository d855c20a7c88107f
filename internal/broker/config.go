package broker

import (
	"log/slog"

	"github.com/shaiso/rmqlink/internal/config"
	"github.com/shaiso/rmqlink/internal/mq"
)

// FromConfig создаёт Manager, загружает определения и связывает bindings.
// client == nil — клиент amqp091-go с таймаутом из конфигурации.
func FromConfig(cfg *config.Config, client mq.Client, logger *slog.Logger) (*Manager, error) {
	if client == nil {
		client = mq.NewAMQPClient(cfg.ConnectTimeout())
	}

	m := New(Config{
		Client:  client,
		Options: cfg.ParserOptions(),
		Logger:  logger,
	})

	if err := m.Load(cfg.Endpoints); err != nil {
		return nil, err
	}
	if err := m.Bind(cfg.Bindings); err != nil {
		return nil, err
	}
	return m, nil
}
