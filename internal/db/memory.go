package db

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process medium. Handles created with Attach share the
// same data, and each one is notified of writes made through the others.
type Memory struct {
	shared *memoryData
}

type memoryData struct {
	mu     sync.Mutex
	values map[string]string
	subs   map[*memorySub]struct{}
}

type memorySub struct {
	owner *Memory
	fn    func(Change)
}

// NewMemory returns an empty in-memory medium
func NewMemory() *Memory {
	return &Memory{shared: &memoryData{
		values: make(map[string]string),
		subs:   make(map[*memorySub]struct{}),
	}}
}

// Attach returns another handle on the same data
func (m *Memory) Attach() *Memory {
	return &Memory{shared: m.shared}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	v, ok := m.shared.values[key]
	return v, ok, nil
}

// Set stores value and notifies subscribers on other handles. Callbacks
// run synchronously after the value is visible.
func (m *Memory) Set(key, value string) error {
	m.shared.mu.Lock()
	m.shared.values[key] = value
	var notify []func(Change)
	for sub := range m.shared.subs {
		if sub.owner != m {
			notify = append(notify, sub.fn)
		}
	}
	m.shared.mu.Unlock()

	for _, fn := range notify {
		fn(Change{Key: key, Value: value})
	}
	return nil
}

func (m *Memory) Delete(key string) error {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	delete(m.shared.values, key)
	return nil
}

func (m *Memory) Keys(prefix string) ([]string, error) {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	var keys []string
	for k := range m.shared.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Subscribe registers fn for writes made through other handles
func (m *Memory) Subscribe(fn func(Change)) (cancel func()) {
	sub := &memorySub{owner: m, fn: fn}
	m.shared.mu.Lock()
	m.shared.subs[sub] = struct{}{}
	m.shared.mu.Unlock()
	return func() {
		m.shared.mu.Lock()
		delete(m.shared.subs, sub)
		m.shared.mu.Unlock()
	}
}

// Watch blocks delivering foreign writes until ctx is done
func (m *Memory) Watch(ctx context.Context, fn func(Change)) error {
	cancel := m.Subscribe(fn)
	defer cancel()
	<-ctx.Done()
	return nil
}
