package sdk

import (
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Env is the snapshot of the invocation a single instruction runs under.
// Everything time or signer related comes from here so the program never reads a wall clock.
type Env struct {
	TxID      string
	Slot      uint64
	Timestamp int64              // unix seconds of the block
	Signers   []solana.PublicKey // keys that actually signed the transaction
}

// HasSigner reports whether key signed the transaction.
func (e Env) HasSigner(key solana.PublicKey) bool {
	for _, s := range e.Signers {
		if s.Equals(key) {
			return true
		}
	}
	return false
}

// WithSigners returns a copy of the env with extra signers, used by tools that
// sign on behalf of several local keys.
func (e Env) WithSigners(keys ...solana.PublicKey) Env {
	out := e
	out.Signers = append(append([]solana.PublicKey{}, e.Signers...), keys...)
	return out
}

// ParseTimestamp accepts unix seconds or iso-ish strings since callers flip formats sometimes.
func ParseTimestamp(val string) (int64, bool) {
	if v, err := strconv.ParseInt(val, 10, 64); err == nil {
		return v, true
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t.Unix(), true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", val, time.UTC); err == nil {
		return t.Unix(), true
	}
	return 0, false
}
