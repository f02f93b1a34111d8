package cache

import (
	"container/list"
	"sync"

	"inspector/internal/engine/parser"
)

// memoryTier is a capacity-bounded LRU of decoded trees keyed by content
// hash. The front of order is the most recently used entry.
type memoryTier struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

type memoryEntry struct {
	key  string
	tree *parser.SyntaxTree
}

// newMemoryTier normalises capacity values <= 0 to 1.
func newMemoryTier(capacity int) *memoryTier {
	if capacity <= 0 {
		capacity = 1
	}
	return &memoryTier{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

func (m *memoryTier) get(key string) (*parser.SyntaxTree, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		return nil, false
	}
	m.order.MoveToFront(el)
	return el.Value.(*memoryEntry).tree, true
}

func (m *memoryTier) put(key string, tree *parser.SyntaxTree) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.items[key]; ok {
		m.order.MoveToFront(el)
		el.Value.(*memoryEntry).tree = tree
		return
	}

	if m.order.Len() >= m.capacity {
		if back := m.order.Back(); back != nil {
			m.order.Remove(back)
			delete(m.items, back.Value.(*memoryEntry).key)
		}
	}

	m.items[key] = m.order.PushFront(&memoryEntry{key: key, tree: tree})
}

func (m *memoryTier) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}
