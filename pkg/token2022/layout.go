package token2022

import (
	"bytes"
	"errors"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var (
	ErrInvalidAccountOwner    = errors.New("invalid account owner")
	ErrInvalidAccountDataSize = errors.New("invalid account data size")
)

const (
	// MintAccountSize covers the base mint plus the transfer fee extension fields we keep.
	MintAccountSize = 32 + 8 + 1 + 1 + 2 + 8 + 8
	// TokenAccountSize covers mint, owner, amount and the withheld fee.
	TokenAccountSize = 32 + 32 + 8 + 8
)

// MaxFeeBasisPoints is the largest fee the extension itself accepts (100%).
const MaxFeeBasisPoints = 10_000

// Mint is the mint record including the transfer fee extension.
type Mint struct {
	MintAuthority          solana.PublicKey
	Supply                 uint64
	Decimals               uint8
	IsInitialized          bool
	TransferFeeBasisPoints uint16
	MaximumFee             uint64
	WithheldAmount         uint64 // fees harvested from token accounts
}

// TokenAccount is a holder balance for one mint.
type TokenAccount struct {
	Mint           solana.PublicKey
	Owner          solana.PublicKey
	Amount         uint64
	WithheldAmount uint64 // transfer fees withheld on receipt
}

// CalculateFee returns the fee the extension charges on a transfer of amount.
func (m *Mint) CalculateFee(amount uint64) uint64 {
	if m.TransferFeeBasisPoints == 0 || amount == 0 {
		return 0
	}
	// ceil(amount * bps / 10000) without overflowing the u64 product
	bps := uint64(m.TransferFeeBasisPoints)
	fee := amount/MaxFeeBasisPoints*bps + (amount%MaxFeeBasisPoints*bps+MaxFeeBasisPoints-1)/MaxFeeBasisPoints
	if fee > m.MaximumFee {
		return m.MaximumFee
	}
	return fee
}

func MintFromData(data []byte) (*Mint, error) {
	if len(data) != MintAccountSize {
		return nil, ErrInvalidAccountDataSize
	}
	var m Mint
	if err := bin.NewBorshDecoder(data).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func TokenAccountFromData(data []byte) (*TokenAccount, error) {
	if len(data) != TokenAccountSize {
		return nil, ErrInvalidAccountDataSize
	}
	var a TokenAccount
	if err := bin.NewBorshDecoder(data).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

func encode(v interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
