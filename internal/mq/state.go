package mq

// State — состояние подключения endpoint.
//
// Жизненный цикл:
//
//	DISCONNECTED → SOCKET_OPEN → AUTHENTICATED → READY
//	      ↖________________(любая ошибка)_________/
//
// Успешные переходы только возрастают; любая ошибка или Close
// возвращает endpoint в DISCONNECTED.
type State int

const (
	// StateDisconnected — соединения нет (нулевое значение).
	StateDisconnected State = iota

	// StateSocketOpen — TCP сокет открыт, логин не выполнен.
	StateSocketOpen

	// StateAuthenticated — логин выполнен, канал не открыт.
	StateAuthenticated

	// StateReady — канал открыт, endpoint готов к работе.
	StateReady
)

// String возвращает строковое представление State.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateSocketOpen:
		return "SOCKET_OPEN"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateReady:
		return "READY"
	default:
		return "UNKNOWN"
	}
}

// IsConnected возвращает true, если у endpoint есть соединение.
func (s State) IsConnected() bool {
	return s != StateDisconnected
}
