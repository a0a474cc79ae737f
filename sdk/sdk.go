package sdk

import (
	"sort"

	"github.com/pkg/errors"
)

// State is the key/value surface the program persists into.
// Values are opaque strings (binary safe), keys are byte-prefixed by the caller.
type State interface {
	Get(key string) (*string, error)
	Set(key, value string) error
	Delete(key string) error
}

// ErrStateClosed is returned by backends used after Close.
var ErrStateClosed = errors.New("sdk: state closed")

// MemoryState keeps everything in a plain map. Used by tests and dry runs.
type MemoryState struct {
	db map[string]string
}

func NewMemoryState() *MemoryState {
	return &MemoryState{db: make(map[string]string)}
}

func (m *MemoryState) Set(key, value string) error {
	m.db[key] = value
	return nil
}

func (m *MemoryState) Get(key string) (*string, error) {
	val, ok := m.db[key]
	if !ok {
		return nil, nil
	}
	return &val, nil
}

func (m *MemoryState) Delete(key string) error {
	delete(m.db, key)
	return nil
}

// Len reports how many keys are stored, handy for asserting that a failed call wrote nothing.
func (m *MemoryState) Len() int {
	return len(m.db)
}

// Keys returns a sorted snapshot of all stored keys.
func (m *MemoryState) Keys() []string {
	out := make([]string, 0, len(m.db))
	for k := range m.db {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
