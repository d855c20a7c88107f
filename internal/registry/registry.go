// Package registry хранит именованные endpoint'ы.
//
// Реестр только пополняется: удаления нет, endpoint живёт до конца процесса.
// Порядок обхода совпадает с порядком вставки.
package registry

import (
	"fmt"
	"sync"

	"github.com/shaiso/rmqlink/internal/mq"
)

// Registry — набор endpoint'ов с уникальными ID.
type Registry struct {
	mu    sync.RWMutex
	order []*mq.Endpoint
	byID  map[string]*mq.Endpoint
}

// New создаёт пустой реестр.
func New() *Registry {
	return &Registry{
		byID: make(map[string]*mq.Endpoint),
	}
}

// Insert добавляет endpoint. ID сравниваются побайтно.
func (r *Registry) Insert(ep *mq.Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[ep.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateConnectionID, ep.ID)
	}

	r.byID[ep.ID] = ep
	r.order = append(r.order, ep)
	return nil
}

// Find возвращает endpoint по ID или nil.
func (r *Registry) Find(id string) *mq.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byID[id]
}

// ForEach вызывает fn для каждого endpoint в порядке вставки.
// fn вызывается без блокировки реестра.
func (r *Registry) ForEach(fn func(*mq.Endpoint)) {
	for _, ep := range r.All() {
		fn(ep)
	}
}

// All возвращает копию списка endpoint'ов.
func (r *Registry) All() []*mq.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]*mq.Endpoint(nil), r.order...)
}

// Len возвращает число endpoint'ов.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
