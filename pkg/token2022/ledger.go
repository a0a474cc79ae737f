package token2022

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"launchpad/pkg/safemath"
	"launchpad/sdk"
)

var (
	ErrMintNotFound         = errors.New("token2022: mint not found")
	ErrMintAlreadyExists    = errors.New("token2022: mint already initialized")
	ErrAccountNotFound      = errors.New("token2022: token account not found")
	ErrAuthorityMismatch    = errors.New("token2022: authority mismatch")
	ErrMintMismatch         = errors.New("token2022: account belongs to another mint")
	ErrInsufficientFunds    = errors.New("token2022: insufficient funds")
	ErrInvalidFeeParameters = errors.New("token2022: invalid fee parameters")
)

// Ledger is a local stand-in for the token-extension program. It keeps mints and
// token accounts as regular accounts owned by ProgramID inside the given state.
type Ledger struct {
	st sdk.State
}

func NewLedger(st sdk.State) *Ledger {
	return &Ledger{st: st}
}

// InitializeMint creates the mint record with its transfer fee configuration.
func (l *Ledger) InitializeMint(mint, authority solana.PublicKey, decimals uint8, feeBps uint16, maxFee uint64) error {
	acc, err := sdk.LoadAccount(l.st, mint)
	if err != nil {
		return err
	}
	if acc != nil && len(acc.Data) > 0 {
		return ErrMintAlreadyExists
	}
	if feeBps > MaxFeeBasisPoints {
		return ErrInvalidFeeParameters
	}
	return l.storeMint(mint, &Mint{
		MintAuthority:          authority,
		Decimals:               decimals,
		IsInitialized:          true,
		TransferFeeBasisPoints: feeBps,
		MaximumFee:             maxFee,
	})
}

// SetTransferFee updates the fee config, mint authority only.
func (l *Ledger) SetTransferFee(mint, authority solana.PublicKey, feeBps uint16, maxFee uint64) error {
	m, err := l.Mint(mint)
	if err != nil {
		return err
	}
	if !m.MintAuthority.Equals(authority) {
		return ErrAuthorityMismatch
	}
	if feeBps > MaxFeeBasisPoints {
		return ErrInvalidFeeParameters
	}
	m.TransferFeeBasisPoints = feeBps
	m.MaximumFee = maxFee
	return l.storeMint(mint, m)
}

// Mint loads a mint record, checking the account belongs to the token program.
func (l *Ledger) Mint(mint solana.PublicKey) (*Mint, error) {
	acc, err := sdk.LoadAccount(l.st, mint)
	if err != nil {
		return nil, err
	}
	if acc == nil || len(acc.Data) == 0 {
		return nil, ErrMintNotFound
	}
	if !acc.Owner.Equals(ProgramID) {
		return nil, ErrInvalidAccountOwner
	}
	return MintFromData(acc.Data)
}

// TokenAccount loads a holder record by its address.
func (l *Ledger) TokenAccount(addr solana.PublicKey) (*TokenAccount, error) {
	acc, err := sdk.LoadAccount(l.st, addr)
	if err != nil {
		return nil, err
	}
	if acc == nil || len(acc.Data) == 0 {
		return nil, ErrAccountNotFound
	}
	if !acc.Owner.Equals(ProgramID) {
		return nil, ErrInvalidAccountOwner
	}
	return TokenAccountFromData(acc.Data)
}

// Balance returns zero for accounts that do not exist yet.
func (l *Ledger) Balance(addr solana.PublicKey) (uint64, error) {
	ta, err := l.TokenAccount(addr)
	if errors.Is(err, ErrAccountNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return ta.Amount, nil
}

// CreateAssociatedAccount is idempotent: an existing ATA is returned untouched.
func (l *Ledger) CreateAssociatedAccount(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	if _, err := l.Mint(mint); err != nil {
		return solana.PublicKey{}, err
	}
	addr, _, err := FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	existing, err := l.TokenAccount(addr)
	if err == nil {
		if !existing.Mint.Equals(mint) {
			return solana.PublicKey{}, ErrMintMismatch
		}
		return addr, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return solana.PublicKey{}, err
	}
	return addr, l.storeTokenAccount(addr, &TokenAccount{Mint: mint, Owner: wallet})
}

// MintTo credits destination and raises supply, mint authority only.
func (l *Ledger) MintTo(mint, destination, authority solana.PublicKey, amount uint64) error {
	m, err := l.Mint(mint)
	if err != nil {
		return err
	}
	if !m.MintAuthority.Equals(authority) {
		return ErrAuthorityMismatch
	}
	dst, err := l.accountFor(destination, mint)
	if err != nil {
		return err
	}
	if m.Supply, err = safemath.Add(m.Supply, amount); err != nil {
		return err
	}
	if dst.Amount, err = safemath.Add(dst.Amount, amount); err != nil {
		return err
	}
	if err := l.storeMint(mint, m); err != nil {
		return err
	}
	return l.storeTokenAccount(destination, dst)
}

// Burn debits source and lowers supply, source owner only.
func (l *Ledger) Burn(mint, source, authority solana.PublicKey, amount uint64) error {
	m, err := l.Mint(mint)
	if err != nil {
		return err
	}
	src, err := l.accountFor(source, mint)
	if err != nil {
		return err
	}
	if !src.Owner.Equals(authority) {
		return ErrAuthorityMismatch
	}
	if src.Amount < amount {
		return ErrInsufficientFunds
	}
	src.Amount -= amount
	if m.Supply, err = safemath.Sub(m.Supply, amount); err != nil {
		return err
	}
	if err := l.storeMint(mint, m); err != nil {
		return err
	}
	return l.storeTokenAccount(source, src)
}

// Transfer moves amount from source to destination, withholding the mint's transfer
// fee on the destination. It returns what the destination actually received.
func (l *Ledger) Transfer(mint, source, destination, authority solana.PublicKey, amount uint64) (uint64, error) {
	m, err := l.Mint(mint)
	if err != nil {
		return 0, err
	}
	src, err := l.accountFor(source, mint)
	if err != nil {
		return 0, err
	}
	if !src.Owner.Equals(authority) {
		return 0, ErrAuthorityMismatch
	}
	if src.Amount < amount {
		return 0, ErrInsufficientFunds
	}
	if source.Equals(destination) {
		return amount, nil
	}
	dst, err := l.accountFor(destination, mint)
	if err != nil {
		return 0, err
	}
	fee := m.CalculateFee(amount)
	received := amount - fee
	src.Amount -= amount
	if dst.Amount, err = safemath.Add(dst.Amount, received); err != nil {
		return 0, err
	}
	if dst.WithheldAmount, err = safemath.Add(dst.WithheldAmount, fee); err != nil {
		return 0, err
	}
	if err := l.storeTokenAccount(source, src); err != nil {
		return 0, err
	}
	if err := l.storeTokenAccount(destination, dst); err != nil {
		return 0, err
	}
	return received, nil
}

func (l *Ledger) accountFor(addr, mint solana.PublicKey) (*TokenAccount, error) {
	ta, err := l.TokenAccount(addr)
	if err != nil {
		return nil, err
	}
	if !ta.Mint.Equals(mint) {
		return nil, ErrMintMismatch
	}
	return ta, nil
}

func (l *Ledger) storeMint(key solana.PublicKey, m *Mint) error {
	data, err := encode(m)
	if err != nil {
		return err
	}
	return l.store(key, MintAccountSize, data)
}

func (l *Ledger) storeTokenAccount(key solana.PublicKey, a *TokenAccount) error {
	data, err := encode(a)
	if err != nil {
		return err
	}
	return l.store(key, TokenAccountSize, data)
}

// store keeps accounts rent exempt on their own, the simulated program funds its accounts.
func (l *Ledger) store(key solana.PublicKey, space uint64, data []byte) error {
	acc, err := sdk.LoadAccount(l.st, key)
	if err != nil {
		return err
	}
	if acc == nil {
		acc = &sdk.Account{}
	}
	acc.Owner = ProgramID
	acc.Space = space
	acc.Data = data
	if need := sdk.RentExemptMinimum(space); acc.Lamports < need {
		acc.Lamports = need
	}
	return sdk.StoreAccount(l.st, key, acc)
}
