package mq

import "context"

// ChannelID — номер единственного канала, который открывается на соединении.
const ChannelID uint16 = 1

// Client создаёт объекты соединений протокольного уровня.
type Client interface {
	NewConnection() (Conn, error)
}

// Conn — одно соединение протокольного уровня.
//
// Методы вызываются Connector'ом строго последовательно и под
// блокировкой endpoint, поэтому реализации не обязаны быть потокобезопасными.
type Conn interface {
	// OpenSocket открывает транспортный сокет к host:port.
	OpenSocket(ctx context.Context, host string, port int) error

	// Login выполняет AMQP handshake и аутентификацию.
	Login(ctx context.Context, params LoginParams) Outcome

	// OpenChannel открывает логический канал.
	OpenChannel(ctx context.Context, channel uint16) Outcome

	// CloseChannel закрывает канал.
	CloseChannel(channel uint16) Outcome

	// CloseConnection закрывает соединение на уровне протокола.
	CloseConnection() Outcome

	// Destroy освобождает объект соединения и сокет.
	Destroy() error
}

// LoginParams — параметры аутентификации.
type LoginParams struct {
	VHost     string
	User      string
	Password  string
	FrameSize int
	Heartbeat int // секунды

	// ConnectionName передаётся брокеру как client property connection_name.
	ConnectionName string
}
