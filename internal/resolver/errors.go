package resolver

import "errors"

// Ошибки разрешения ссылок.
var (
	// ErrEmptyReference — пустая ссылка на endpoint.
	ErrEmptyReference = errors.New("empty connection reference")

	// ErrUnknownConnectionID — литеральный ID не найден в реестре при связывании.
	ErrUnknownConnectionID = errors.New("unknown connection id")

	// ErrUnresolvedReference — динамическое значение не вычислилось
	// или не указывает на известный endpoint.
	ErrUnresolvedReference = errors.New("unresolved connection reference")
)
