package contract

import (
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/zeromicro/go-zero/core/logx"

	"launchpad/pkg/token2022"
	"launchpad/sdk"
)

// TokenProgram is the slice of the token-extension standard the program calls into.
// Mint, burn and fee-aware transfer all go through here so the state machine can be
// exercised against any ledger.
type TokenProgram interface {
	InitializeMint(mint, authority solana.PublicKey, decimals uint8, feeBps uint16, maxFee uint64) error
	SetTransferFee(mint, authority solana.PublicKey, feeBps uint16, maxFee uint64) error
	Mint(mint solana.PublicKey) (*token2022.Mint, error)
	Balance(account solana.PublicKey) (uint64, error)
	CreateAssociatedAccount(wallet, mint solana.PublicKey) (solana.PublicKey, error)
	MintTo(mint, destination, authority solana.PublicKey, amount uint64) error
	Burn(mint, source, authority solana.PublicKey, amount uint64) error
	Transfer(mint, source, destination, authority solana.PublicKey, amount uint64) (uint64, error)
}

// TokenProgramFactory binds a token program to the state of one instruction.
type TokenProgramFactory func(st sdk.State) TokenProgram

func defaultTokenProgram(st sdk.State) TokenProgram {
	return token2022.NewLedger(st)
}

// Receipt is what a caller gets back from one instruction, success or not.
type Receipt struct {
	Tag  Tag
	Logs []string
}

type Program struct {
	id     solana.PublicKey
	tokens TokenProgramFactory
	mu     sync.Mutex
}

type Option func(*Program)

// WithTokenProgram swaps the token collaborator, mostly for tests injecting failures.
func WithTokenProgram(f TokenProgramFactory) Option {
	return func(p *Program) {
		p.tokens = f
	}
}

func New(programID solana.PublicKey, opts ...Option) *Program {
	p := &Program{id: programID, tokens: defaultTokenProgram}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Program) ID() solana.PublicKey {
	return p.id
}

// Process runs one instruction to completion. Writes go to an overlay that is only
// committed when the handler succeeds, so a failure leaves st exactly as it was.
func (p *Program) Process(st sdk.State, env sdk.Env, ix solana.Instruction) (*Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	receipt := &Receipt{}
	if !ix.ProgramID().Equals(p.id) {
		return receipt, fail(ErrInvalidInstruction, "instruction for program %s", ix.ProgramID())
	}
	data, err := ix.Data()
	if err != nil {
		return receipt, fail(ErrInvalidInstruction, "data: %v", err)
	}
	decoded, err := DecodeInstruction(p.id, ix.Accounts(), data)
	if err != nil {
		return receipt, err
	}
	receipt.Tag = decoded.Tag

	tx := sdk.NewTxState(st)
	inv := &invocation{
		programID: p.id,
		st:        tx,
		env:       env,
		accounts:  decoded.AccountMetaSlice,
		tokens:    p.tokens(tx),
		receipt:   receipt,
	}
	if err := dispatch(inv, decoded); err != nil {
		tx.Discard()
		if code, ok := CodeOf(err); ok {
			logx.Infof("%s failed: %s (%d): %v", decoded.Tag, code.Name(), code.Code(), err)
		} else {
			logx.Errorf("%s failed: %v", decoded.Tag, err)
		}
		return receipt, err
	}
	if err := tx.Commit(); err != nil {
		logx.Errorf("%s commit: %v", decoded.Tag, err)
		return receipt, err
	}
	return receipt, nil
}

func dispatch(c *invocation, ix *Instruction) error {
	switch ix.Tag {
	case TagInitializeToken:
		return c.initializeToken(ix.Args.(*InitializeTokenArgs))
	case TagSetTransferFee:
		return c.setTransferFee(ix.Args.(*SetTransferFeeArgs))
	case TagUpdateTokenMetadata:
		return c.updateTokenMetadata(ix.Args.(*UpdateTokenMetadataArgs))
	case TagInitializePresale:
		return c.initializePresale(ix.Args.(*InitializePresaleArgs))
	case TagAddSupportedAsset:
		return c.addSupportedAsset(ix.Args.(*AddSupportedAssetArgs))
	case TagBuyTokens:
		return c.buyTokens(ix.Args.(*BuyTokensArgs))
	case TagEndPresale:
		return c.endPresale()
	case TagLaunchToken:
		return c.launchToken()
	case TagExpandPresaleCapacity:
		return c.expandPresaleCapacity()
	case TagClaimRefund:
		return c.claimRefund()
	case TagClaimDevFundRefund:
		return c.claimDevFundRefund()
	case TagWithdrawLockedFunds:
		return c.withdrawTreasury(treasuryLocked)
	case TagWithdrawDevFunds:
		return c.withdrawTreasury(treasuryDev)
	case TagClaimPresaleTokens:
		return c.claimPresaleTokens()
	case TagInitializeVesting:
		return c.initializeVesting(ix.Args.(*InitializeVestingArgs))
	case TagAddVestingBeneficiary:
		return c.addVestingBeneficiary(ix.Args.(*AddVestingBeneficiaryArgs))
	case TagReleaseVestedTokens:
		return c.releaseVestedTokens(ix.Args.(*ReleaseVestedTokensArgs))
	case TagInitializeAutonomousController:
		return c.initializeController(ix.Args.(*InitializeControllerArgs))
	case TagUpdateOraclePrice:
		return c.updateOraclePrice()
	case TagExecuteAutonomousMint:
		return c.executeAutonomousMint()
	case TagExecuteAutonomousBurn:
		return c.executeAutonomousBurn()
	case TagInitializeBurnTreasury:
		return c.initializeBurnTreasury()
	case TagDepositToBurnTreasury:
		return c.depositToBurnTreasury(ix.Args.(*DepositToBurnTreasuryArgs))
	case TagInitializeUpgradeTimelock:
		return c.initializeUpgradeTimelock(ix.Args.(*InitializeUpgradeTimelockArgs))
	case TagProposeUpgrade:
		return c.proposeUpgrade()
	case TagExecuteUpgrade:
		return c.executeUpgrade(ix.Args.(*ExecuteUpgradeArgs))
	case TagCancelUpgrade:
		return c.cancelUpgrade()
	case TagPermanentlyDisableUpgrades:
		return c.permanentlyDisableUpgrades()
	}
	return fail(ErrInvalidInstruction, "no handler for %s", ix.Tag)
}
