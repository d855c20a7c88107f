// Package resolver разрешает ссылки на endpoint'ы во время вызова.
//
// Ссылка задаётся текстом при конфигурации:
//   - "rmq1"        — литеральный ID, связывается с endpoint сразу
//   - "$query.cid"  — динамическое выражение, вычисляется на каждый вызов
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/shaiso/rmqlink/internal/mq"
)

// DynamicPrefix — префикс динамического выражения.
const DynamicPrefix = "$"

// Lookup — реестр endpoint'ов.
type Lookup interface {
	Find(id string) *mq.Endpoint
}

// Evaluator вычисляет динамическое выражение в контексте вызова.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string) (string, error)
}

// EvaluatorFunc — адаптер функции к Evaluator.
type EvaluatorFunc func(ctx context.Context, expr string) (string, error)

// Evaluate реализует Evaluator.
func (f EvaluatorFunc) Evaluate(ctx context.Context, expr string) (string, error) {
	return f(ctx, expr)
}

// Reference — связанная ссылка на endpoint.
// Заполнено ровно одно из полей: Endpoint или Expr.
type Reference struct {
	Endpoint *mq.Endpoint
	Expr     string
}

// IsDynamic сообщает, вычисляется ли ссылка на каждый вызов.
func (r Reference) IsDynamic() bool {
	return r.Endpoint == nil
}

// String возвращает исходный текст ссылки.
func (r Reference) String() string {
	if r.Endpoint != nil {
		return r.Endpoint.ID
	}
	return r.Expr
}

// Resolver связывает и разрешает ссылки через реестр.
type Resolver struct {
	lookup Lookup
}

// New создаёт Resolver.
func New(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Bind связывает текст ссылки при конфигурации.
// Литеральный ID ищется сразу; динамическое выражение сохраняется как есть.
func (r *Resolver) Bind(text string) (Reference, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reference{}, ErrEmptyReference
	}

	if strings.HasPrefix(text, DynamicPrefix) {
		return Reference{Expr: text}, nil
	}

	ep := r.lookup.Find(text)
	if ep == nil {
		return Reference{}, fmt.Errorf("%w: %s", ErrUnknownConnectionID, text)
	}
	return Reference{Endpoint: ep}, nil
}

// Resolve возвращает endpoint по ссылке.
func (r *Resolver) Resolve(ctx context.Context, ref Reference, eval Evaluator) (*mq.Endpoint, error) {
	if ref.Endpoint != nil {
		return ref.Endpoint, nil
	}
	if ref.Expr == "" {
		return nil, ErrEmptyReference
	}
	if eval == nil {
		return nil, fmt.Errorf("%w: %s: no evaluator", ErrUnresolvedReference, ref.Expr)
	}

	cid, err := eval.Evaluate(ctx, ref.Expr)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot get the connection id from %s: %v", ErrUnresolvedReference, ref.Expr, err)
	}

	ep := r.lookup.Find(cid)
	if ep == nil {
		return nil, fmt.Errorf("%w: unknown connection id %q", ErrUnresolvedReference, cid)
	}
	return ep, nil
}
