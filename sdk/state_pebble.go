package sdk

import (
	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

// PebbleState persists state on disk so the CLI can run instructions across invocations.
type PebbleState struct {
	db *pebble.DB
}

func OpenPebbleState(dir string) (*PebbleState, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleState{db: db}, nil
}

func (p *PebbleState) Get(key string) (*string, error) {
	if p.db == nil {
		return nil, ErrStateClosed
	}
	val, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	out := string(val) // copies, val is only valid until closer.Close
	return &out, nil
}

func (p *PebbleState) Set(key, value string) error {
	if p.db == nil {
		return ErrStateClosed
	}
	return p.db.Set([]byte(key), []byte(value), pebble.Sync)
}

func (p *PebbleState) Delete(key string) error {
	if p.db == nil {
		return ErrStateClosed
	}
	return p.db.Delete([]byte(key), pebble.Sync)
}

func (p *PebbleState) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// NewBatch lets TxState commit one instruction's writes in a single synced batch.
func (p *PebbleState) NewBatch() Batch {
	return &pebbleBatch{db: p.db}
}

type pebbleBatch struct {
	db *pebble.DB
	b  *pebble.Batch
}

func (pb *pebbleBatch) batch() (*pebble.Batch, error) {
	if pb.db == nil {
		return nil, ErrStateClosed
	}
	if pb.b == nil {
		pb.b = pb.db.NewBatch()
	}
	return pb.b, nil
}

func (pb *pebbleBatch) Set(key, value string) error {
	b, err := pb.batch()
	if err != nil {
		return err
	}
	return b.Set([]byte(key), []byte(value), nil)
}

func (pb *pebbleBatch) Delete(key string) error {
	b, err := pb.batch()
	if err != nil {
		return err
	}
	return b.Delete([]byte(key), nil)
}

func (pb *pebbleBatch) Commit() error {
	b, err := pb.batch()
	if err != nil {
		return err
	}
	defer b.Close()
	return b.Commit(pebble.Sync)
}
