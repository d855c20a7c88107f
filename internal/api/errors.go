package api

import "errors"

// Ошибки вычисления динамических ссылок.
var (
	// ErrUnsupportedExpression — выражение не относится к query, header или path.
	ErrUnsupportedExpression = errors.New("unsupported expression")

	// ErrEmptyValue — выражение вычислилось в пустую строку.
	ErrEmptyValue = errors.New("expression evaluated to empty value")
)
