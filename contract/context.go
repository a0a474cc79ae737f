package contract

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/zeromicro/go-zero/core/logx"

	"launchpad/pkg/token2022"
	"launchpad/sdk"
)

// invocation is everything one instruction may touch: the overlay state, the env
// snapshot, the ordered accounts and the token collaborator bound to the same state.
// Handlers get it passed explicitly, there is no ambient state anywhere.
type invocation struct {
	programID solana.PublicKey
	st        sdk.State
	env       sdk.Env
	accounts  []*solana.AccountMeta
	tokens    TokenProgram
	receipt   *Receipt
}

func (c *invocation) now() int64 {
	return c.env.Timestamp
}

func (c *invocation) emit(line string) {
	c.receipt.Logs = append(c.receipt.Logs, line)
	logx.Debugf("program log: %s", line)
}

func (c *invocation) emitf(format string, args ...interface{}) {
	c.emit(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------
// Account Checks
// -----------------------------------------------------------------------------

// requireSigner honors the signer flag only when the env confirms the key signed.
func (c *invocation) requireSigner(meta *solana.AccountMeta) error {
	if !meta.IsSigner || !c.env.HasSigner(meta.PublicKey) {
		return fail(ErrUnauthorized, "%s must sign", meta.PublicKey)
	}
	return nil
}

// requireAuthority checks both the signature and that the signer is the expected key.
func (c *invocation) requireAuthority(meta *solana.AccountMeta, want solana.PublicKey) error {
	if !meta.PublicKey.Equals(want) {
		return fail(ErrUnauthorized, "expected authority %s got %s", want, meta.PublicKey)
	}
	return c.requireSigner(meta)
}

func (c *invocation) requireWritable(metas ...*solana.AccountMeta) error {
	for _, m := range metas {
		if !m.IsWritable {
			return fail(ErrInvalidInstruction, "%s must be writable", m.PublicKey)
		}
	}
	return nil
}

func (c *invocation) requireKey(meta *solana.AccountMeta, want solana.PublicKey, code ProgramError) error {
	if !meta.PublicKey.Equals(want) {
		return fail(code, "expected %s got %s", want, meta.PublicKey)
	}
	return nil
}

// requireMint checks the account is the expected mint and belongs to the token program.
func (c *invocation) requireMint(meta *solana.AccountMeta, want solana.PublicKey) (*token2022.Mint, error) {
	if err := c.requireKey(meta, want, ErrInvalidMint); err != nil {
		return nil, err
	}
	acc, err := sdk.LoadAccount(c.st, meta.PublicKey)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fail(ErrInvalidMint, "mint %s does not exist", want)
	}
	if !acc.Owner.Equals(token2022.ProgramID) {
		return nil, fail(ErrInvalidAccountOwner, "mint %s owned by %s", want, acc.Owner)
	}
	m, err := c.tokens.Mint(want)
	if err != nil {
		return nil, tokenErr(err, "load mint")
	}
	return m, nil
}

// requireProgramMintAuthority makes sure mint authority of the mint is our PDA and
// returns the PDA so it can sign mint_to.
func (c *invocation) requireProgramMintAuthority(meta *solana.AccountMeta, mint solana.PublicKey) (solana.PublicKey, error) {
	if _, err := findAddress(c.programID, meta.PublicKey, mintAuthoritySeeds(mint)); err != nil {
		return solana.PublicKey{}, err
	}
	m, err := c.tokens.Mint(mint)
	if err != nil {
		return solana.PublicKey{}, tokenErr(err, "load mint")
	}
	if !m.MintAuthority.Equals(meta.PublicKey) {
		return solana.PublicKey{}, fail(ErrInvalidMintAuthority, "mint authority is %s", m.MintAuthority)
	}
	return meta.PublicKey, nil
}

// -----------------------------------------------------------------------------
// Entity Load / Save
// -----------------------------------------------------------------------------

// loadEntity reads a program owned account into v and checks rent exemption.
func (c *invocation) loadEntity(meta *solana.AccountMeta, v entity) error {
	acc, err := sdk.LoadAccount(c.st, meta.PublicKey)
	if err != nil {
		return err
	}
	if acc == nil {
		return fail(ErrUninitializedAccount, "%s", meta.PublicKey)
	}
	if !acc.Owner.Equals(c.programID) {
		return fail(ErrInvalidAccountOwner, "%s owned by %s", meta.PublicKey, acc.Owner)
	}
	if !acc.IsRentExempt() {
		return fail(ErrNotRentExempt, "%s", meta.PublicKey)
	}
	return decodeEntity(acc.Data, v)
}

// saveEntity writes v back into its account. Only writable metas may be persisted.
func (c *invocation) saveEntity(meta *solana.AccountMeta, v entity) error {
	if err := c.requireWritable(meta); err != nil {
		return err
	}
	acc, err := sdk.LoadAccount(c.st, meta.PublicKey)
	if err != nil {
		return err
	}
	if acc == nil || !acc.Owner.Equals(c.programID) {
		return fail(ErrInvalidAccountOwner, "%s not owned by program", meta.PublicKey)
	}
	data, err := encodeEntity(v)
	if err != nil {
		return fail(ErrInvalidInstruction, "encode: %v", err)
	}
	if uint64(len(data)) > acc.Space {
		return fail(ErrCapacityExceeded, "%s needs %d bytes, has %d", meta.PublicKey, len(data), acc.Space)
	}
	acc.Data = data
	if !acc.IsRentExempt() {
		return fail(ErrNotRentExempt, "%s", meta.PublicKey)
	}
	return sdk.StoreAccount(c.st, meta.PublicKey, acc)
}

// createEntity allocates the account (payer funds rent) and stores v in it.
func (c *invocation) createEntity(meta, payer *solana.AccountMeta, space uint64, v entity) error {
	if err := c.requireWritable(meta, payer); err != nil {
		return err
	}
	if err := c.requireSigner(payer); err != nil {
		return err
	}
	existing, err := sdk.LoadAccount(c.st, meta.PublicKey)
	if err != nil {
		return err
	}
	if existing != nil && existing.Owner.Equals(c.programID) {
		return fail(ErrAlreadyInitialized, "%s", meta.PublicKey)
	}
	if _, err := sdk.CreateAccount(c.st, payer.PublicKey, meta.PublicKey, space, c.programID); err != nil {
		switch err {
		case sdk.ErrInsufficientLamports:
			return fail(ErrNotRentExempt, "payer %s cannot fund %d bytes", payer.PublicKey, space)
		case sdk.ErrAccountExists:
			return fail(ErrAlreadyInitialized, "%s", meta.PublicKey)
		}
		return err
	}
	return c.saveEntity(meta, v)
}

// associatedAccount creates (idempotently) and checks the ATA of wallet for mint.
func (c *invocation) associatedAccount(meta *solana.AccountMeta, wallet, mint solana.PublicKey, code ProgramError) error {
	addr, err := c.tokens.CreateAssociatedAccount(wallet, mint)
	if err != nil {
		return tokenErr(err, "associated account")
	}
	return c.requireKey(meta, addr, code)
}
