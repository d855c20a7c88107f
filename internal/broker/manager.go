// Package broker связывает реестр, парсер определений, Connector и Resolver
// в один объект верхнего уровня.
//
// Manager создаётся в main и владеет реестром: глобального состояния нет,
// тесты создают независимые экземпляры.
package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shaiso/rmqlink/internal/dsl"
	"github.com/shaiso/rmqlink/internal/mq"
	"github.com/shaiso/rmqlink/internal/registry"
	"github.com/shaiso/rmqlink/internal/resolver"
)

// Config — зависимости Manager.
type Config struct {
	Client  mq.Client
	Options dsl.Options
	Logger  *slog.Logger
}

// Manager управляет набором endpoint'ов.
type Manager struct {
	registry  *registry.Registry
	parser    *dsl.Parser
	connector *mq.Connector
	resolver  *resolver.Resolver
	bindings  map[string]resolver.Reference
	logger    *slog.Logger
}

// New создаёт Manager с пустым реестром.
func New(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	reg := registry.New()

	return &Manager{
		registry:  reg,
		parser:    dsl.NewParser(reg, cfg.Options, cfg.Logger),
		connector: mq.NewConnector(cfg.Client, cfg.Logger),
		resolver:  resolver.New(reg),
		bindings:  make(map[string]resolver.Reference),
		logger:    cfg.Logger,
	}
}

// Load разбирает определения по порядку. Первая ошибка прерывает загрузку.
func (m *Manager) Load(definitions []string) error {
	for _, def := range definitions {
		if _, err := m.parser.Parse(def); err != nil {
			return fmt.Errorf("load endpoint: %w", err)
		}
	}

	m.logger.Info("endpoints loaded", "count", m.registry.Len())
	return nil
}

// Bind связывает именованные ссылки. Вызывается после Load.
func (m *Manager) Bind(bindings map[string]string) error {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref, err := m.resolver.Bind(bindings[name])
		if err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
		m.bindings[name] = ref
		m.logger.Debug("binding configured", "binding", name, "reference", ref.String(), "dynamic", ref.IsDynamic())
	}
	return nil
}

// Binding возвращает связанную ссылку по имени.
func (m *Manager) Binding(name string) (resolver.Reference, error) {
	ref, ok := m.bindings[name]
	if !ok {
		return resolver.Reference{}, fmt.Errorf("%w: %s", ErrUnknownBinding, name)
	}
	return ref, nil
}

// Find возвращает endpoint по ID или nil.
func (m *Manager) Find(cid string) *mq.Endpoint {
	return m.registry.Find(cid)
}

// Endpoints возвращает все endpoint'ы в порядке загрузки.
func (m *Manager) Endpoints() []*mq.Endpoint {
	return m.registry.All()
}

// Resolve разрешает ссылку в контексте вызова.
func (m *Manager) Resolve(ctx context.Context, ref resolver.Reference, eval resolver.Evaluator) (*mq.Endpoint, error) {
	return m.resolver.Resolve(ctx, ref, eval)
}

// Resolver возвращает Resolver поверх реестра.
func (m *Manager) Resolver() *resolver.Resolver {
	return m.resolver
}

// Registry возвращает реестр.
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

// Connect подключает endpoint по ID.
func (m *Manager) Connect(ctx context.Context, cid string) (*mq.Endpoint, error) {
	ep := m.registry.Find(cid)
	if ep == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, cid)
	}
	return ep, m.connector.Connect(ctx, ep)
}

// ConnectEndpoint подключает уже найденный endpoint.
func (m *Manager) ConnectEndpoint(ctx context.Context, ep *mq.Endpoint) error {
	return m.connector.Connect(ctx, ep)
}

// Close закрывает соединение endpoint по ID.
func (m *Manager) Close(cid string) (*mq.Endpoint, error) {
	ep := m.registry.Find(cid)
	if ep == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, cid)
	}
	m.connector.Close(ep)
	return ep, nil
}

// ConnectAll подключает все endpoint'ы по порядку.
// Ошибки логируются и не прерывают обход; возвращаются объединёнными.
func (m *Manager) ConnectAll(ctx context.Context) error {
	var errs []error

	m.registry.ForEach(func(ep *mq.Endpoint) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("[%s] %w", ep.ID, err))
			return
		}
		if err := m.connector.Connect(ctx, ep); err != nil {
			m.logger.Warn("endpoint not connected, will retry on demand",
				"connection_id", ep.ID,
				"error", err,
			)
			errs = append(errs, err)
		}
	})

	return errors.Join(errs...)
}

// Shutdown закрывает все соединения.
func (m *Manager) Shutdown() {
	m.registry.ForEach(m.connector.Close)
	m.logger.Info("all endpoints closed")
}
