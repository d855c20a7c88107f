package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shaiso/rmqlink/internal/resolver"
)

// Источники значений динамических выражений.
const (
	sourceQuery  = "query"
	sourceHeader = "header"
	sourcePath   = "path"
)

// requestEvaluator вычисляет выражения вида $<source>.<name> по HTTP запросу.
type requestEvaluator struct {
	r *http.Request
}

// NewRequestEvaluator возвращает Evaluator, привязанный к запросу r.
func NewRequestEvaluator(r *http.Request) resolver.Evaluator {
	return requestEvaluator{r: r}
}

// Evaluate реализует resolver.Evaluator.
func (e requestEvaluator) Evaluate(_ context.Context, expr string) (string, error) {
	body, ok := strings.CutPrefix(expr, resolver.DynamicPrefix)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedExpression, expr)
	}

	source, name, ok := strings.Cut(body, ".")
	if !ok || name == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedExpression, expr)
	}

	var value string
	switch source {
	case sourceQuery:
		value = e.r.URL.Query().Get(name)
	case sourceHeader:
		value = e.r.Header.Get(name)
	case sourcePath:
		value = e.r.PathValue(name)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedExpression, expr)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyValue, expr)
	}
	return value, nil
}
