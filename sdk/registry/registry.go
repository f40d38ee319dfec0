package registry

import (
	"sync"

	reg "github.com/jxo-me/ddnsync/core/registry"
)

type registry[T any] struct {
	m sync.Map
}

func (r *registry[T]) Register(name string, v T) error {
	if name == "" {
		return nil
	}
	if _, loaded := r.m.LoadOrStore(name, v); loaded {
		return reg.ErrDup
	}

	return nil
}

func (r *registry[T]) Unregister(name string) {
	r.m.Delete(name)
}

func (r *registry[T]) IsRegistered(name string) bool {
	_, ok := r.m.Load(name)
	return ok
}

func (r *registry[T]) Get(name string) (t T) {
	if name == "" {
		return
	}
	v, ok := r.m.Load(name)
	if !ok {
		return
	}
	return v.(T)
}

func (r *registry[T]) GetAll() (m map[string]T) {
	m = make(map[string]T)
	r.m.Range(func(key, value any) bool {
		m[key.(string)] = value.(T)
		return true
	})
	return
}

// New returns an empty registry safe for concurrent use.
func New[T any]() reg.IRegistry[T] {
	return &registry[T]{}
}
