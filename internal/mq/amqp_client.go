package mq

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	defaultConnectTimeout = 30 * time.Second
	defaultLocale         = "en_US"
	clientProduct         = "rmqlink"
)

// AMQPClient — реализация Client поверх amqp091-go.
//
// Сокет открывается отдельно через net.Dialer, а handshake выполняется
// amqp.Open поверх уже открытого сокета. Так шаги OpenSocket и Login
// соответствуют состояниям SOCKET_OPEN и AUTHENTICATED.
type AMQPClient struct {
	dialer  *net.Dialer
	timeout time.Duration
}

// NewAMQPClient создаёт клиент. timeout ограничивает открытие сокета
// и AMQP handshake (0 — значение по умолчанию, 30s).
func NewAMQPClient(timeout time.Duration) *AMQPClient {
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	return &AMQPClient{
		dialer:  &net.Dialer{Timeout: timeout},
		timeout: timeout,
	}
}

// NewConnection создаёт новый объект соединения.
func (c *AMQPClient) NewConnection() (Conn, error) {
	return &amqpConn{dialer: c.dialer, timeout: c.timeout}, nil
}

// amqpConn — одно соединение amqp091-go.
type amqpConn struct {
	dialer  *net.Dialer
	timeout time.Duration

	sock    net.Conn
	conn    *amqp.Connection
	channel *amqp.Channel
}

// OpenSocket открывает TCP соединение к брокеру.
func (c *amqpConn) OpenSocket(ctx context.Context, host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	sock, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	c.sock = sock
	return nil
}

// Login выполняет AMQP handshake с PLAIN аутентификацией.
func (c *amqpConn) Login(ctx context.Context, p LoginParams) Outcome {
	if c.sock == nil {
		return LibraryException(errors.New("socket is not open"))
	}

	// amqp.Open не принимает context: отмена прерывает handshake закрытием сокета.
	stop := context.AfterFunc(ctx, func() { _ = c.sock.Close() })
	defer stop()

	if err := c.sock.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return LibraryException(fmt.Errorf("set handshake deadline: %w", err))
	}

	// amqp091 трактует Heartbeat == 0 как «принять значение брокера»,
	// отключить heartbeat со стороны клиента нельзя.
	conn, err := amqp.Open(c.sock, amqp.Config{
		SASL:      []amqp.Authentication{&amqp.PlainAuth{Username: p.User, Password: p.Password}},
		Vhost:     p.VHost,
		FrameSize: p.FrameSize,
		Heartbeat: time.Duration(p.Heartbeat) * time.Second,
		Locale:    defaultLocale,
		Properties: amqp.Table{
			"product":         clientProduct,
			"connection_name": p.ConnectionName,
		},
	})
	if err != nil {
		return outcomeFromError(err)
	}
	if conn == nil {
		return NoReply()
	}

	if err := c.sock.SetDeadline(time.Time{}); err != nil {
		_ = conn.Close()
		return LibraryException(fmt.Errorf("clear handshake deadline: %w", err))
	}

	c.conn = conn
	return OK()
}

// OpenChannel открывает канал. amqp091-go сам выделяет номер канала;
// первый канал соединения всегда получает номер 1.
func (c *amqpConn) OpenChannel(_ context.Context, _ uint16) Outcome {
	if c.conn == nil {
		return LibraryException(amqp.ErrClosed)
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return outcomeFromError(err)
	}
	if ch == nil {
		return NoReply()
	}

	c.channel = ch
	return OK()
}

// CloseChannel закрывает канал, если он открыт.
func (c *amqpConn) CloseChannel(_ uint16) Outcome {
	if c.channel == nil {
		return OK()
	}

	err := c.channel.Close()
	c.channel = nil
	if err != nil {
		return outcomeFromError(err)
	}
	return OK()
}

// CloseConnection отправляет connection.close и ждёт подтверждения.
func (c *amqpConn) CloseConnection() Outcome {
	if c.conn == nil {
		return OK()
	}

	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		return outcomeFromError(err)
	}
	return OK()
}

// Destroy закрывает сокет. Повторное закрытие не считается ошибкой.
func (c *amqpConn) Destroy() error {
	if c.sock == nil {
		return nil
	}

	err := c.sock.Close()
	c.sock = nil
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close socket: %w", err)
	}
	return nil
}

// outcomeFromError переводит ошибку amqp091-go в Outcome.
// Recoverable (soft) ошибки брокера относятся к каналу, остальные — к соединению.
func outcomeFromError(err error) Outcome {
	var aerr *amqp.Error
	if errors.As(err, &aerr) && aerr.Server {
		method := MethodConnectionClose
		if aerr.Recover {
			method = MethodChannelClose
		}
		return ServerException(method, aerr.Code, aerr.Reason)
	}

	return LibraryException(err)
}
