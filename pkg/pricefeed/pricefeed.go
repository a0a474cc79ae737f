// Package pricefeed defines the on-chain price account the supply controller reads.
// The layout follows the pyth style: integer price and confidence scaled by 10^expo.
package pricefeed

import (
	"bytes"
	"errors"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"launchpad/pkg/safemath"
	"launchpad/sdk"
)

// Magic tags a price account so random data owned by the oracle program is rejected.
const Magic uint32 = 0xa1b2c3d4

// AccountSize is the borsh size of PriceAccount.
const AccountSize = 4 + 8 + 8 + 4 + 8 + 1

// TargetDecimals is the fixed point scale prices are normalized into.
const TargetDecimals = 6

type Status uint8

const (
	StatusUnknown Status = iota
	StatusTrading
	StatusHalted
)

var (
	ErrNotPriceAccount = errors.New("pricefeed: not a price account")
	ErrExponentRange   = errors.New("pricefeed: exponent out of range")
)

type PriceAccount struct {
	Magic       uint32
	Price       int64
	Conf        uint64
	Expo        int32
	PublishTime int64
	Status      Status
}

func Decode(data []byte) (*PriceAccount, error) {
	if len(data) != AccountSize {
		return nil, ErrNotPriceAccount
	}
	var p PriceAccount
	if err := bin.NewBorshDecoder(data).Decode(&p); err != nil {
		return nil, err
	}
	if p.Magic != Magic {
		return nil, ErrNotPriceAccount
	}
	return &p, nil
}

func (p *PriceAccount) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Publish writes a price account owned by oracleProgram, used by the local oracle stand-in.
func Publish(st sdk.State, key, oracleProgram solana.PublicKey, p PriceAccount) error {
	p.Magic = Magic
	data, err := p.Encode()
	if err != nil {
		return err
	}
	acc, err := sdk.LoadAccount(st, key)
	if err != nil {
		return err
	}
	if acc == nil {
		acc = &sdk.Account{}
	}
	acc.Owner = oracleProgram
	acc.Space = AccountSize
	acc.Data = data
	if need := sdk.RentExemptMinimum(AccountSize); acc.Lamports < need {
		acc.Lamports = need
	}
	return sdk.StoreAccount(st, key, acc)
}

// Scale6 converts value*10^expo into the 6 decimal fixed point used by the program.
// Digits below the target scale are truncated.
func Scale6(value uint64, expo int32) (uint64, error) {
	shift := int32(TargetDecimals) + expo
	switch {
	case shift > 19 || shift < -19:
		return 0, ErrExponentRange
	case shift >= 0:
		scale, err := safemath.Pow10(uint8(shift))
		if err != nil {
			return 0, err
		}
		return safemath.Mul(value, scale)
	default:
		scale, err := safemath.Pow10(uint8(-shift))
		if err != nil {
			return 0, err
		}
		return safemath.Div(value, scale)
	}
}
