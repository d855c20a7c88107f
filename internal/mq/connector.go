package mq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/rmqlink/internal/telemetry"
)

// Connector проводит endpoint через подключение и закрытие.
//
// Особенности:
//   - Connect продвигает endpoint через все оставшиеся состояния за один вызов
//   - Ошибка на любом шаге возвращает endpoint в DISCONNECTED
//   - Close каскадно закрывает канал, соединение и освобождает объект соединения
//   - Переходы одного endpoint сериализуются его мьютексом
type Connector struct {
	client Client
	logger *slog.Logger
}

// NewConnector создаёт Connector поверх клиента протокола.
func NewConnector(client Client, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{
		client: client,
		logger: logger,
	}
}

// Connect подключает endpoint. Для READY endpoint — no-op.
func (c *Connector) Connect(ctx context.Context, ep *Endpoint) error {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	if ep.State() == StateReady {
		return nil
	}

	err := c.advance(ctx, ep)
	telemetry.ObserveConnect(ep.ID, err)
	return err
}

// Close закрывает соединение endpoint. Ошибки закрытия только логируются.
func (c *Connector) Close(ep *Endpoint) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	c.close(ep)
}

// advance выполняет переходы, пока endpoint не станет READY или шаг не завершится ошибкой.
func (c *Connector) advance(ctx context.Context, ep *Endpoint) error {
	for {
		state := ep.State()
		if state == StateReady {
			return nil
		}

		next, err := c.step(ctx, ep, state)
		if err != nil {
			return err
		}
		ep.setState(next)

		if next == StateReady {
			ep.setSession(uuid.NewString())
			telemetry.WithConnectionID(c.logger, ep.ID).Info("successfully connected",
				"address", ep.URI.Address(),
				"session_id", ep.SessionID(),
			)
		}
	}
}

// step выполняет один переход из state.
func (c *Connector) step(ctx context.Context, ep *Endpoint, state State) (State, error) {
	switch state {
	case StateDisconnected:
		return c.openSocket(ctx, ep)
	case StateSocketOpen:
		return c.login(ctx, ep)
	case StateAuthenticated:
		return c.openChannel(ctx, ep)
	default:
		return state, fmt.Errorf("[%s] %w: %d", ep.ID, ErrUnknownState, state)
	}
}

// openSocket: DISCONNECTED → SOCKET_OPEN.
func (c *Connector) openSocket(ctx context.Context, ep *Endpoint) (State, error) {
	conn, err := c.client.NewConnection()
	if err != nil {
		return StateDisconnected, c.fail(ep, ErrAllocation, Classify("creating connection", LibraryException(err)))
	}

	if err := conn.OpenSocket(ctx, ep.URI.Host, ep.URI.Port); err != nil {
		if derr := conn.Destroy(); derr != nil {
			telemetry.WithConnectionID(c.logger, ep.ID).Error("cannot destroy connection", "error", derr)
		}
		return StateDisconnected, c.fail(ep, ErrTransport, Classify("opening socket", LibraryException(err)))
	}

	ep.conn = conn
	return StateSocketOpen, nil
}

// login: SOCKET_OPEN → AUTHENTICATED.
func (c *Connector) login(ctx context.Context, ep *Endpoint) (State, error) {
	d := Classify("logging in", ep.conn.Login(ctx, LoginParams{
		VHost:          ep.URI.VHost,
		User:           ep.URI.User,
		Password:       ep.URI.Password,
		FrameSize:      ep.MaxFrameSize,
		Heartbeat:      ep.Heartbeat,
		ConnectionName: ep.ID,
	}))
	if !d.OK() {
		c.close(ep)
		return StateDisconnected, c.fail(ep, ErrAuthentication, d)
	}

	return StateAuthenticated, nil
}

// openChannel: AUTHENTICATED → READY. Открывается ровно один канал.
func (c *Connector) openChannel(ctx context.Context, ep *Endpoint) (State, error) {
	d := Classify("opening channel", ep.conn.OpenChannel(ctx, ChannelID))
	if !d.OK() {
		c.close(ep)
		return StateDisconnected, c.fail(ep, ErrChannel, d)
	}

	return StateReady, nil
}

// close каскадно закрывает соединение. Вызывается под ep.mu.
func (c *Connector) close(ep *Endpoint) {
	logger := telemetry.WithConnectionID(c.logger, ep.ID)
	state := ep.State()

	switch state {
	case StateDisconnected:
		return
	case StateSocketOpen, StateAuthenticated, StateReady:
	default:
		logger.Warn("unknown endpoint state", "state", int(state))
	}

	if ep.conn != nil {
		if state == StateReady || state == StateAuthenticated {
			c.report(logger, Classify("closing channel", ep.conn.CloseChannel(ChannelID)))
		}
		c.report(logger, Classify("closing connection", ep.conn.CloseConnection()))
		if err := ep.conn.Destroy(); err != nil {
			logger.Error("cannot destroy connection", "error", err)
		}
	}

	ep.conn = nil
	ep.setState(StateDisconnected)
	logger.Debug("connection closed", "address", ep.URI.Address())
}

// report логирует неуспешный RPC при закрытии.
func (c *Connector) report(logger *slog.Logger, d Diagnosis) {
	if d.OK() {
		return
	}
	telemetry.ObserveRPCFailure(d.Reason.String())
	logger.Error(d.String(), "reason", d.Reason.String())
}

// fail формирует ConnectError и логирует диагностику.
func (c *Connector) fail(ep *Endpoint, kind error, d Diagnosis) error {
	telemetry.ObserveRPCFailure(d.Reason.String())
	telemetry.WithConnectionID(c.logger, ep.ID).Error(d.String(),
		"reason", d.Reason.String(),
		"address", ep.URI.Address(),
	)

	return &ConnectError{
		ConnectionID: ep.ID,
		Address:      ep.URI.Address(),
		Diagnosis:    d,
		Err:          kind,
	}
}
