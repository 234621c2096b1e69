package mediator

import "sync"

// Registry - это потокобезопасный реестр для управления именованными
// экземплярами медиаторов. Он гарантирует, что для каждого имени существует
// ровно один экземпляр медиатора.
type Registry struct {
	mediators map[string]*Mediator
	mu        sync.RWMutex
}

// NewRegistry создает новый экземпляр реестра медиаторов.
func NewRegistry() *Registry {
	return &Registry{
		mediators: make(map[string]*Mediator),
	}
}

// Instance возвращает экземпляр медиатора для указанного имени, создавая его
// при первом обращении. Опции применяются только при создании; последующие
// обращения возвращают уже существующий экземпляр.
func (r *Registry) Instance(name string, opts ...Option) *Mediator {
	r.mu.RLock()
	m, exists := r.mediators[name]
	r.mu.RUnlock()

	if exists {
		return m
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Повторная проверка на случай, если медиатор был создан во время
	// ожидания блокировки.
	if m, exists := r.mediators[name]; exists {
		return m
	}

	m = New(opts...)
	r.mediators[name] = m

	return m
}
