package contract

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"launchpad/sdk"
)

const programDataVariant uint32 = 3

// programData is the loader's ProgramData layout. A nil UpgradeAuthority means the
// program was deployed immutable.
type programData struct {
	Variant          uint32
	Slot             uint64
	UpgradeAuthority *solana.PublicKey `bin:"optional"`
}

// StoreProgramData writes the loader record a deploy leaves behind. Pass a zero
// authority for an immutable deploy.
func StoreProgramData(st sdk.State, programID, authority solana.PublicKey, slot uint64) error {
	key, _, err := FindProgramDataAddress(programID)
	if err != nil {
		return err
	}
	pd := programData{Variant: programDataVariant, Slot: slot}
	if !authority.IsZero() {
		pd.UpgradeAuthority = &authority
	}
	buf := new(bytes.Buffer)
	if err := bin.NewBinEncoder(buf).Encode(pd); err != nil {
		return err
	}
	return sdk.StoreAccount(st, key, &sdk.Account{
		Lamports: sdk.RentExemptMinimum(uint64(buf.Len())),
		Owner:    UpgradeableLoaderID,
		Space:    uint64(buf.Len()),
		Data:     buf.Bytes(),
	})
}

// upgradeAuthority reads the authority out of the program's ProgramData account.
func (c *invocation) upgradeAuthority(meta *solana.AccountMeta) (solana.PublicKey, error) {
	want, _, err := FindProgramDataAddress(c.programID)
	if err != nil {
		return solana.PublicKey{}, fail(ErrInvalidSeeds, "derive program data: %v", err)
	}
	if !meta.PublicKey.Equals(want) {
		return solana.PublicKey{}, fail(ErrInvalidSeeds, "expected program data %s got %s", want, meta.PublicKey)
	}
	acc, err := sdk.LoadAccount(c.st, meta.PublicKey)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if acc == nil || !acc.Owner.Equals(UpgradeableLoaderID) {
		return solana.PublicKey{}, fail(ErrInvalidAccountOwner, "program data %s not owned by the upgradeable loader", meta.PublicKey)
	}
	var pd programData
	if err := bin.NewBinDecoder(acc.Data).Decode(&pd); err != nil || pd.Variant != programDataVariant {
		return solana.PublicKey{}, fail(ErrInvalidAccountOwner, "program data %s malformed", meta.PublicKey)
	}
	if pd.UpgradeAuthority == nil {
		return solana.PublicKey{}, fail(ErrUnauthorized, "program is immutable")
	}
	return *pd.UpgradeAuthority, nil
}

// Status derives the timelock state at now.
func (t *UpgradeTimelock) Status(now int64) TimelockStatus {
	switch {
	case t.PermanentlyLocked:
		return TimelockPermanentlyLocked
	case !t.Pending:
		return TimelockNoProposal
	case now >= t.ProposedTime:
		return TimelockExecutable
	default:
		return TimelockProposed
	}
}

func (c *invocation) loadTimelock(meta *solana.AccountMeta) (*UpgradeTimelock, error) {
	t := new(UpgradeTimelock)
	if err := c.loadEntity(meta, t); err != nil {
		return nil, err
	}
	if err := verifyAddress(c.programID, meta.PublicKey, t.Bump, timelockSeeds()); err != nil {
		return nil, err
	}
	return t, nil
}

// governed loads the timelock for an authority action. A locked timelock refuses
// everything before the authority is even looked at.
func (c *invocation) governed() (*UpgradeTimelock, error) {
	tlMeta, authMeta := c.accounts[0], c.accounts[1]
	t, err := c.loadTimelock(tlMeta)
	if err != nil {
		return nil, err
	}
	if t.PermanentlyLocked {
		return nil, fail(ErrUpgradesDisabled, "timelock locked")
	}
	if err := c.requireAuthority(authMeta, t.Authority); err != nil {
		return nil, err
	}
	return t, nil
}

func (c *invocation) initializeUpgradeTimelock(args *InitializeUpgradeTimelockArgs) error {
	tlMeta, authMeta, pdMeta := c.accounts[0], c.accounts[1], c.accounts[2]
	authority, err := c.upgradeAuthority(pdMeta)
	if err != nil {
		return err
	}
	if err := c.requireAuthority(authMeta, authority); err != nil {
		return err
	}
	if args.Delay < MinTimelockDelay || args.Delay > MaxTimelockDelay {
		return fail(ErrInvalidTimelockDelay, "%ds not in [%d,%d]", args.Delay, MinTimelockDelay, MaxTimelockDelay)
	}
	bump, err := findAddress(c.programID, tlMeta.PublicKey, timelockSeeds())
	if err != nil {
		return err
	}
	t := &UpgradeTimelock{
		Authority: authMeta.PublicKey,
		Bump:      bump,
		Delay:     args.Delay,
	}
	if err := c.createEntity(tlMeta, authMeta, TimelockSpace, t); err != nil {
		return err
	}
	c.emitTimelockInitialized(tlMeta.PublicKey, args.Delay)
	return nil
}

// proposeUpgrade (re)starts the timer, only the latest proposal counts.
func (c *invocation) proposeUpgrade() error {
	t, err := c.governed()
	if err != nil {
		return err
	}
	t.ProposedTime = c.now() + t.Delay
	t.Pending = true
	if err := c.saveEntity(c.accounts[0], t); err != nil {
		return err
	}
	c.emitUpgradeProposed(c.accounts[0].PublicKey, t.ProposedTime)
	return nil
}

func (c *invocation) executeUpgrade(args *ExecuteUpgradeArgs) error {
	bufferMeta := c.accounts[2]
	t, err := c.governed()
	if err != nil {
		return err
	}
	if !t.Pending {
		return fail(ErrNoPendingUpgrade, "propose first")
	}
	if now := c.now(); now < t.ProposedTime {
		return fail(ErrTooEarlyForExecution, "executable at %d, now %d", t.ProposedTime, now)
	}
	if err := c.requireKey(bufferMeta, args.Buffer, ErrInvalidInstruction); err != nil {
		return err
	}
	buf, err := sdk.LoadAccount(c.st, args.Buffer)
	if err != nil {
		return err
	}
	if buf == nil || !buf.Owner.Equals(UpgradeableLoaderID) {
		return fail(ErrInvalidAccountOwner, "buffer %s not owned by the upgradeable loader", args.Buffer)
	}
	t.Version++
	t.CurrentBuffer = args.Buffer
	t.LastUpgradeTime = c.now()
	t.Pending = false
	t.ProposedTime = 0
	if err := c.saveEntity(c.accounts[0], t); err != nil {
		return err
	}
	c.emitUpgradeExecuted(c.accounts[0].PublicKey, args.Buffer, t.Version)
	return nil
}

func (c *invocation) cancelUpgrade() error {
	t, err := c.governed()
	if err != nil {
		return err
	}
	if !t.Pending {
		return fail(ErrNoPendingUpgrade, "nothing to cancel")
	}
	t.Pending = false
	t.ProposedTime = 0
	if err := c.saveEntity(c.accounts[0], t); err != nil {
		return err
	}
	c.emitUpgradeCancelled(c.accounts[0].PublicKey)
	return nil
}

// permanentlyDisableUpgrades drops the authority for good. There is no way back.
func (c *invocation) permanentlyDisableUpgrades() error {
	t, err := c.governed()
	if err != nil {
		return err
	}
	t.PermanentlyLocked = true
	t.Pending = false
	t.ProposedTime = 0
	t.Authority = solana.PublicKey{}
	if err := c.saveEntity(c.accounts[0], t); err != nil {
		return err
	}
	c.emitUpgradesLocked(c.accounts[0].PublicKey)
	return nil
}
