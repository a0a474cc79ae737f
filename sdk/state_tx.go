package sdk

import (
	"sort"

	"github.com/pkg/errors"
)

// TxState buffers writes on top of a parent state until Commit.
// One instruction runs against one TxState; a failed instruction just drops it,
// so the parent never sees a half applied transition.
type TxState struct {
	parent State
	writes map[string]*string // nil value marks a delete
}

func NewTxState(parent State) *TxState {
	return &TxState{parent: parent, writes: make(map[string]*string)}
}

func (t *TxState) Get(key string) (*string, error) {
	if v, ok := t.writes[key]; ok {
		if v == nil {
			return nil, nil
		}
		cp := *v
		return &cp, nil
	}
	return t.parent.Get(key)
}

func (t *TxState) Set(key, value string) error {
	v := value
	t.writes[key] = &v
	return nil
}

func (t *TxState) Delete(key string) error {
	t.writes[key] = nil
	return nil
}

// Dirty reports the number of buffered writes.
func (t *TxState) Dirty() int {
	return len(t.writes)
}

// Batch collects writes that land together or not at all.
type Batch interface {
	Set(key, value string) error
	Delete(key string) error
	Commit() error
}

// Batcher is a state that can apply many writes atomically.
type Batcher interface {
	NewBatch() Batch
}

// Commit flushes buffered writes to the parent in key order so replays are deterministic.
// A parent that batches gets them in one atomic batch. Any other parent is rolled back
// to its previous values when a write fails halfway.
func (t *TxState) Commit() error {
	keys := make([]string, 0, len(t.writes))
	for k := range t.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var err error
	if b, ok := t.parent.(Batcher); ok {
		err = t.commitBatch(b.NewBatch(), keys)
	} else {
		err = t.commitWithUndo(keys)
	}
	if err != nil {
		return err
	}
	t.writes = make(map[string]*string)
	return nil
}

func (t *TxState) commitBatch(b Batch, keys []string) error {
	if err := apply(b, keys, t.writes); err != nil {
		return err
	}
	return b.Commit()
}

func (t *TxState) commitWithUndo(keys []string) error {
	prev := make(map[string]*string, len(keys))
	for _, k := range keys {
		v, err := t.parent.Get(k)
		if err != nil {
			return err
		}
		prev[k] = v
	}
	for i := range keys {
		if err := apply(t.parent, keys[i:i+1], t.writes); err != nil {
			// keys[:i] made it to the parent, put them back
			if undoErr := apply(t.parent, keys[:i], prev); undoErr != nil {
				return errors.Wrapf(err, "rollback failed: %v", undoErr)
			}
			return err
		}
	}
	return nil
}

type writer interface {
	Set(key, value string) error
	Delete(key string) error
}

// apply writes vals[k] for every k, nil meaning delete.
func apply(w writer, keys []string, vals map[string]*string) error {
	for _, k := range keys {
		var err error
		if v := vals[k]; v == nil {
			err = w.Delete(k)
		} else {
			err = w.Set(k, *v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Discard drops every buffered write.
func (t *TxState) Discard() {
	t.writes = make(map[string]*string)
}
