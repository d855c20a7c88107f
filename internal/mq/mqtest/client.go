// Package mqtest содержит управляемый fake клиента протокола для тестов.
package mqtest

import (
	"context"
	"net"
	"strconv"
	"sync"

	"github.com/shaiso/rmqlink/internal/mq"
)

// Step — вызов клиента протокола.
type Step string

const (
	StepNew             Step = "new"
	StepSocket          Step = "socket"
	StepLogin           Step = "login"
	StepOpenChannel     Step = "channel.open"
	StepCloseChannel    Step = "channel.close"
	StepCloseConnection Step = "connection.close"
	StepDestroy         Step = "destroy"
)

// Client — fake mq.Client. Записывает все вызовы и возвращает
// заранее заданные ошибки и Outcome.
type Client struct {
	mu sync.Mutex

	calls     []Step
	addresses []string
	logins    []mq.LoginParams

	newErr     error
	socketErr  error
	destroyErr error
	outcomes   map[Step]mq.Outcome
}

// NewClient создаёт Client, у которого все шаги успешны.
func NewClient() *Client {
	return &Client{outcomes: make(map[Step]mq.Outcome)}
}

// FailNewConnection заставляет NewConnection вернуть err.
func (c *Client) FailNewConnection(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.newErr = err
}

// FailSocket заставляет OpenSocket вернуть err.
func (c *Client) FailSocket(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.socketErr = err
}

// FailDestroy заставляет Destroy вернуть err.
func (c *Client) FailDestroy(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyErr = err
}

// SetOutcome задаёт результат для RPC шага (login, channel.open, channel.close, connection.close).
func (c *Client) SetOutcome(step Step, o mq.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[step] = o
}

// Reset снимает все ошибки и очищает журнал вызовов.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
	c.addresses = nil
	c.logins = nil
	c.newErr, c.socketErr, c.destroyErr = nil, nil, nil
	c.outcomes = make(map[Step]mq.Outcome)
}

// Calls возвращает журнал вызовов по порядку.
func (c *Client) Calls() []Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Step(nil), c.calls...)
}

// Count возвращает число вызовов шага.
func (c *Client) Count(step Step) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, s := range c.calls {
		if s == step {
			n++
		}
	}
	return n
}

// Addresses возвращает адреса, к которым открывались сокеты.
func (c *Client) Addresses() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.addresses...)
}

// Logins возвращает параметры всех Login.
func (c *Client) Logins() []mq.LoginParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]mq.LoginParams(nil), c.logins...)
}

// NewConnection реализует mq.Client.
func (c *Client) NewConnection() (mq.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, StepNew)
	if c.newErr != nil {
		return nil, c.newErr
	}
	return &conn{client: c}, nil
}

func (c *Client) record(step Step) mq.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, step)
	if o, ok := c.outcomes[step]; ok {
		return o
	}
	return mq.OK()
}

type conn struct {
	client *Client
}

func (c *conn) OpenSocket(_ context.Context, host string, port int) error {
	c.client.mu.Lock()
	defer c.client.mu.Unlock()

	c.client.calls = append(c.client.calls, StepSocket)
	c.client.addresses = append(c.client.addresses, net.JoinHostPort(host, strconv.Itoa(port)))
	return c.client.socketErr
}

func (c *conn) Login(_ context.Context, p mq.LoginParams) mq.Outcome {
	c.client.mu.Lock()
	c.client.logins = append(c.client.logins, p)
	c.client.mu.Unlock()

	return c.client.record(StepLogin)
}

func (c *conn) OpenChannel(_ context.Context, _ uint16) mq.Outcome {
	return c.client.record(StepOpenChannel)
}

func (c *conn) CloseChannel(_ uint16) mq.Outcome {
	return c.client.record(StepCloseChannel)
}

func (c *conn) CloseConnection() mq.Outcome {
	return c.client.record(StepCloseConnection)
}

func (c *conn) Destroy() error {
	c.client.mu.Lock()
	defer c.client.mu.Unlock()

	c.client.calls = append(c.client.calls, StepDestroy)
	return c.client.destroyErr
}
