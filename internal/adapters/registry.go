package adapters

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Registry resolves adapter handles to implementations. The engine holds
// only the handle; resolution happens per dispatch.
type Registry struct {
	mu       sync.RWMutex
	adapters map[common.Address]Adapter
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[common.Address]Adapter),
	}
}

func (r *Registry) Register(handle common.Address, a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[handle] = a
}

func (r *Registry) Resolve(handle common.Address) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[handle]
	if !ok {
		return nil, ErrAdapterNotFound
	}
	return a, nil
}
