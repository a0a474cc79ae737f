package sdk

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"launchpad/pkg/safemath"
)

const (
	// kAccount prefixes every account record so other tenants of the kv never collide with it.
	kAccount byte = 0x01

	// rent constants, same numbers the cluster uses for the exemption threshold
	accountStorageOverhead = 128
	lamportsPerByteYear    = 3480
	exemptionYears         = 2
)

var (
	ErrAccountExists        = errors.New("sdk: account already in use")
	ErrAccountNotFound      = errors.New("sdk: account not found")
	ErrInsufficientLamports = errors.New("sdk: insufficient lamports")
	ErrAccountTooSmall      = errors.New("sdk: data exceeds allocated space")
)

// Account mirrors the runtime account: lamports, the owning program and a data blob.
// Space is the allocated size the rent is charged for; Data may be shorter.
type Account struct {
	Lamports   uint64
	Owner      solana.PublicKey
	Space      uint64
	Executable bool
	Data       []byte
}

// RentExemptMinimum returns the balance an account of the given size must hold.
func RentExemptMinimum(space uint64) uint64 {
	return (accountStorageOverhead + space) * lamportsPerByteYear * exemptionYears
}

// IsRentExempt checks the balance against the allocated size.
func (a *Account) IsRentExempt() bool {
	return a.Lamports >= RentExemptMinimum(a.Space)
}

func accountKey(key solana.PublicKey) string {
	buf := make([]byte, 0, 1+solana.PublicKeyLength)
	buf = append(buf, kAccount)
	buf = append(buf, key[:]...)
	return string(buf)
}

// LoadAccount returns nil, nil when the account was never written.
func LoadAccount(st State, key solana.PublicKey) (*Account, error) {
	raw, err := st.Get(accountKey(key))
	if err != nil || raw == nil {
		return nil, err
	}
	var acc Account
	if err := bin.NewBorshDecoder([]byte(*raw)).Decode(&acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// StoreAccount persists the account, refusing data that outgrew its allocation.
func StoreAccount(st State, key solana.PublicKey, acc *Account) error {
	if uint64(len(acc.Data)) > acc.Space {
		return ErrAccountTooSmall
	}
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(acc); err != nil {
		return err
	}
	return st.Set(accountKey(key), buf.String())
}

// Airdrop credits lamports to a (possibly new) system account.
func Airdrop(st State, key solana.PublicKey, lamports uint64) error {
	acc, err := LoadAccount(st, key)
	if err != nil {
		return err
	}
	if acc == nil {
		acc = &Account{Owner: solana.SystemProgramID}
	}
	if acc.Lamports, err = safemath.Add(acc.Lamports, lamports); err != nil {
		return err
	}
	return StoreAccount(st, key, acc)
}

// TransferLamports moves lamports between two accounts.
func TransferLamports(st State, from, to solana.PublicKey, lamports uint64) error {
	src, err := LoadAccount(st, from)
	if err != nil {
		return err
	}
	if src == nil || src.Lamports < lamports {
		return ErrInsufficientLamports
	}
	src.Lamports -= lamports
	if err := StoreAccount(st, from, src); err != nil {
		return err
	}
	return Airdrop(st, to, lamports)
}

// CreateAccount allocates space for owner at key, charging payer the rent exempt minimum.
// A pre-funded system account with no data is taken over like the runtime does.
func CreateAccount(st State, payer, key solana.PublicKey, space uint64, owner solana.PublicKey) (*Account, error) {
	existing, err := LoadAccount(st, key)
	if err != nil {
		return nil, err
	}
	acc := &Account{Owner: owner, Space: space}
	if existing != nil {
		if !existing.Owner.Equals(solana.SystemProgramID) || existing.Space > 0 || len(existing.Data) > 0 {
			return nil, ErrAccountExists
		}
		acc.Lamports = existing.Lamports
	}
	need := RentExemptMinimum(space)
	if acc.Lamports < need {
		topUp := need - acc.Lamports
		if err := debit(st, payer, topUp); err != nil {
			return nil, err
		}
		acc.Lamports = need
	}
	if err := StoreAccount(st, key, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// ResizeAccount grows the allocation of an existing account and tops up rent from payer.
func ResizeAccount(st State, payer, key solana.PublicKey, space uint64) (*Account, error) {
	acc, err := LoadAccount(st, key)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrAccountNotFound
	}
	if space < uint64(len(acc.Data)) {
		return nil, ErrAccountTooSmall
	}
	acc.Space = space
	if need := RentExemptMinimum(space); acc.Lamports < need {
		if err := debit(st, payer, need-acc.Lamports); err != nil {
			return nil, err
		}
		acc.Lamports = need
	}
	if err := StoreAccount(st, key, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func debit(st State, key solana.PublicKey, lamports uint64) error {
	acc, err := LoadAccount(st, key)
	if err != nil {
		return err
	}
	if acc == nil || acc.Lamports < lamports {
		return ErrInsufficientLamports
	}
	acc.Lamports -= lamports
	return StoreAccount(st, key, acc)
}
