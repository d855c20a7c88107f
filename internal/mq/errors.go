package mq

import "errors"

// Ошибки подключения.
var (
	// ErrAllocation — не удалось создать объект соединения.
	ErrAllocation = errors.New("cannot create amqp connection")

	// ErrTransport — не удалось открыть сокет к брокеру.
	ErrTransport = errors.New("cannot open amqp socket")

	// ErrAuthentication — брокер отклонил логин или handshake не завершился.
	ErrAuthentication = errors.New("amqp login failed")

	// ErrChannel — не удалось открыть канал.
	ErrChannel = errors.New("cannot open amqp channel")

	// ErrUnknownState — endpoint в неизвестном состоянии.
	ErrUnknownState = errors.New("unknown endpoint state")
)

// ConnectError — ошибка подключения endpoint с диагностикой.
type ConnectError struct {
	ConnectionID string    // ID endpoint
	Address      string    // host:port
	Diagnosis    Diagnosis // классифицированный результат RPC
	Err          error     // базовая ошибка (ErrTransport, ErrAuthentication, ...)
}

// Error реализует интерфейс error.
func (e *ConnectError) Error() string {
	return "[" + e.ConnectionID + "] " + e.Err.Error() + " (" + e.Address + "): " + e.Diagnosis.String()
}

// Unwrap возвращает базовую ошибку.
func (e *ConnectError) Unwrap() error {
	return e.Err
}
