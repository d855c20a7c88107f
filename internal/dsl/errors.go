package dsl

import "errors"

// Ошибки разбора определения.
var (
	// ErrConfigSyntax — нарушен синтаксис определения.
	ErrConfigSyntax = errors.New("config syntax error")

	// ErrMissingURI — в определении нет uri.
	ErrMissingURI = errors.New("missing uri")

	// ErrInvalidURI — uri не разбирается как адрес брокера.
	ErrInvalidURI = errors.New("invalid uri")

	// ErrUnsupportedSecureTransport — uri требует TLS (amqps).
	ErrUnsupportedSecureTransport = errors.New("secure transport is not supported")

	// ErrUnknownParameter — сегмент не является известным параметром.
	ErrUnknownParameter = errors.New("unknown parameter")
)

// DefinitionError — ошибка разбора определения с контекстом.
type DefinitionError struct {
	ConnectionID string // ID endpoint (пусто, если ID ещё не прочитан)
	Param        string // параметр или фрагмент определения
	Message      string // описание ошибки
	Err          error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *DefinitionError) Error() string {
	if e.ConnectionID != "" {
		return "[" + e.ConnectionID + "] " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *DefinitionError) Unwrap() error {
	return e.Err
}

func newDefinitionError(cid, param, message string, err error) *DefinitionError {
	return &DefinitionError{
		ConnectionID: cid,
		Param:        param,
		Message:      message,
		Err:          err,
	}
}
