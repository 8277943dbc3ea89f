package kvstore

import (
	"sync"
)

// Memory is an in-memory Source for tests and temporary states. Read
// transactions copy the current content and stay consistent while writes
// continue, matching the snapshot semantics of the LevelDB source.
type Memory struct {
	lock   sync.RWMutex
	data   map[string][]byte
	closed bool
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) ReadTxn() (ReadTxn, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	snapshot := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		snapshot[k] = v
	}
	return &memoryReadTxn{data: snapshot}, nil
}

func (m *Memory) WriteTxn() (WriteTxn, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return &memoryWriteTxn{
		source:  m,
		pending: map[string][]byte{},
		deleted: map[string]struct{}{},
	}, nil
}

func (m *Memory) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.closed = true
	return nil
}

type memoryReadTxn struct {
	data map[string][]byte
}

func (t *memoryReadTxn) Get(key []byte) ([]byte, error) {
	value, found := t.data[string(key)]
	if !found {
		return nil, ErrNotFound
	}
	return value, nil
}

func (t *memoryReadTxn) Release() {}

type memoryWriteTxn struct {
	source   *Memory
	pending  map[string][]byte
	deleted  map[string]struct{}
	finished bool
}

func (t *memoryWriteTxn) Get(key []byte) ([]byte, error) {
	if _, gone := t.deleted[string(key)]; gone {
		return nil, ErrNotFound
	}
	if value, found := t.pending[string(key)]; found {
		return value, nil
	}
	t.source.lock.RLock()
	defer t.source.lock.RUnlock()
	value, found := t.source.data[string(key)]
	if !found {
		return nil, ErrNotFound
	}
	return value, nil
}

func (t *memoryWriteTxn) Put(key, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	delete(t.deleted, string(key))
	t.pending[string(key)] = stored
	return nil
}

func (t *memoryWriteTxn) Delete(key []byte) error {
	delete(t.pending, string(key))
	t.deleted[string(key)] = struct{}{}
	return nil
}

func (t *memoryWriteTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	t.source.lock.Lock()
	defer t.source.lock.Unlock()
	if t.source.closed {
		return ErrClosed
	}
	for key, value := range t.pending {
		t.source.data[key] = value
	}
	for key := range t.deleted {
		delete(t.source.data, key)
	}
	return nil
}

func (t *memoryWriteTxn) Discard() {
	t.finished = true
	t.pending = nil
	t.deleted = nil
}
