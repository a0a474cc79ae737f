package safemath

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned by ParseAmount for text that is not a non-negative decimal.
var ErrInvalidAmount = errors.New("safemath: invalid amount")

// ToRaw scales whole units to base units (whole * 10^decimals).
func ToRaw(whole uint64, decimals uint8) (uint64, error) {
	scale, err := Pow10(decimals)
	if err != nil {
		return 0, err
	}
	return Mul(whole, scale)
}

// FromRaw splits base units into whole units and the fractional remainder.
func FromRaw(raw uint64, decimals uint8) (whole uint64, frac uint64, err error) {
	scale, err := Pow10(decimals)
	if err != nil {
		return 0, 0, err
	}
	return raw / scale, raw % scale, nil
}

// FormatAmount renders base units as a fixed point string, e.g. 3333333333 @6 -> "3333.333333".
func FormatAmount(raw uint64, decimals uint8) (string, error) {
	whole, frac, err := FromRaw(raw, decimals)
	if err != nil {
		return "", err
	}
	if decimals == 0 {
		return strconv.FormatUint(whole, 10), nil
	}
	fs := strconv.FormatUint(frac, 10)
	if pad := int(decimals) - len(fs); pad > 0 {
		fs = strings.Repeat("0", pad) + fs
	}
	return strconv.FormatUint(whole, 10) + "." + fs, nil
}

// ParseAmount is the inverse of FormatAmount; it accepts fewer fraction digits than decimals.
func ParseAmount(s string, decimals uint8) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" || (hasDot && fracPart == "") || len(fracPart) > int(decimals) {
		return 0, ErrInvalidAmount
	}
	if !digitsOnly(intPart) || !digitsOnly(fracPart) {
		return 0, ErrInvalidAmount
	}
	whole, err := strconv.ParseUint(intPart, 10, 64)
	if err != nil {
		return 0, ErrOverflow
	}
	raw, err := ToRaw(whole, decimals)
	if err != nil {
		return 0, err
	}
	if fracPart == "" {
		return raw, nil
	}
	frac, err := strconv.ParseUint(fracPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	fracScale, err := Pow10(decimals - uint8(len(fracPart)))
	if err != nil {
		return 0, err
	}
	frac, err = Mul(frac, fracScale)
	if err != nil {
		return 0, err
	}
	return Add(raw, frac)
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
