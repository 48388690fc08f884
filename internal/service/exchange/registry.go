package exchange

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Factory 根据配置创建 adapter
type Factory func(cfg AdapterConfig, deps Deps) (Adapter, error)

// Registry exchange id -> Factory
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register 重复注册同一个 id 会 panic, 属于编程错误
func (r *Registry) Register(id string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f == nil {
		panic("exchange: Register factory is nil for " + id)
	}
	if _, ok := r.factories[id]; ok {
		panic("exchange: Register called twice for " + id)
	}
	r.factories[id] = f
}

func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := lo.Keys(r.factories)
	sort.Strings(ids)
	return ids
}

// Build 按配置顺序创建 adapter, 跳过 disabled 的配置
func (r *Registry) Build(cfgs []AdapterConfig, deps Deps) ([]Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(cfgs))
	adapters := make([]Adapter, 0, len(cfgs))
	for _, cfg := range cfgs {
		if cfg.Disabled {
			continue
		}
		if _, ok := seen[cfg.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateExchange, cfg.ID)
		}
		seen[cfg.ID] = struct{}{}

		f, ok := r.factories[cfg.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownExchange, cfg.ID, lo.Keys(r.factories))
		}
		adapter, err := f(cfg, deps)
		if err != nil {
			return nil, fmt.Errorf("create %s adapter: %w", cfg.ID, err)
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}
