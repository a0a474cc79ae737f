// Package safemath holds the checked integer helpers every balance and price computation goes through.
// Intermediates are computed on 256 bits so a*b/d never wraps before the division.
package safemath

import (
	"errors"
	"math"

	"github.com/holiman/uint256"
)

// BpsDenominator is 100% expressed in basis points.
const BpsDenominator = 10_000

var (
	ErrOverflow       = errors.New("safemath: overflow")
	ErrUnderflow      = errors.New("safemath: underflow")
	ErrDivisionByZero = errors.New("safemath: division by zero")
)

func Add(a, b uint64) (uint64, error) {
	z, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(a), uint256.NewInt(b))
	if overflow || !z.IsUint64() {
		return 0, ErrOverflow
	}
	return z.Uint64(), nil
}

func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

func Mul(a, b uint64) (uint64, error) {
	z, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(a), uint256.NewInt(b))
	if overflow || !z.IsUint64() {
		return 0, ErrOverflow
	}
	return z.Uint64(), nil
}

func Div(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// MulDiv returns floor(a*b/d).
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(uint256.NewInt(a), uint256.NewInt(b), uint256.NewInt(d))
	if overflow || !z.IsUint64() {
		return 0, ErrOverflow
	}
	return z.Uint64(), nil
}

// MulDivCeil returns ceil(a*b/d).
func MulDivCeil(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivisionByZero
	}
	prod := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	den := uint256.NewInt(d)
	q, r := new(uint256.Int).DivMod(prod, den, new(uint256.Int))
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	if !q.IsUint64() {
		return 0, ErrOverflow
	}
	return q.Uint64(), nil
}

// BpsOf returns floor(amount * bps / 10000).
func BpsOf(amount, bps uint64) (uint64, error) {
	return MulDiv(amount, bps, BpsDenominator)
}

// Pow10 returns 10^n, failing once the result leaves u64 (n > 19).
func Pow10(n uint8) (uint64, error) {
	out := uint64(1)
	for i := uint8(0); i < n; i++ {
		next, err := Mul(out, 10)
		if err != nil {
			return 0, err
		}
		out = next
	}
	return out, nil
}

// GrowthBps is (current - last) * 10000 / last as a signed value, truncated toward zero.
func GrowthBps(current, last uint64) (int64, error) {
	if last == 0 {
		return 0, ErrDivisionByZero
	}
	negative := current < last
	diff := current - last
	if negative {
		diff = last - current
	}
	bps, err := MulDiv(diff, BpsDenominator, last)
	if err != nil {
		return 0, err
	}
	if bps > math.MaxInt64 {
		return 0, ErrOverflow
	}
	if negative {
		return -int64(bps), nil
	}
	return int64(bps), nil
}
