package contract

import (
	"github.com/gagliardetto/solana-go"

	"launchpad/pkg/safemath"
)

// VestedAmount is how much of entitlement has unlocked at now. Each completed interval
// unlocks entitlement/NumReleases, the last one unlocks whatever the division left over.
func (v *VestingState) VestedAmount(entitlement uint64, now int64) (uint64, error) {
	if now < v.StartTime || v.ReleaseInterval <= 0 || v.NumReleases == 0 {
		return 0, nil
	}
	periods := uint64((now - v.StartTime) / v.ReleaseInterval)
	if periods >= uint64(v.NumReleases) {
		return entitlement, nil
	}
	perRelease, err := safemath.Div(entitlement, uint64(v.NumReleases))
	if err != nil {
		return 0, err
	}
	return safemath.Mul(perRelease, periods)
}

// Releasable is the vested part not paid out yet.
func (v *VestingState) Releasable(b *VestingBeneficiary, now int64) (uint64, error) {
	vested, err := v.VestedAmount(b.TotalAmount, now)
	if err != nil {
		return 0, err
	}
	if vested <= b.Released {
		return 0, nil
	}
	return vested - b.Released, nil
}

func (v *VestingState) findBeneficiary(id solana.PublicKey) int {
	for i := range v.Beneficiaries {
		if v.Beneficiaries[i].ID.Equals(id) {
			return i
		}
	}
	return -1
}

func (c *invocation) loadVesting(meta *solana.AccountMeta) (*VestingState, error) {
	v := new(VestingState)
	if err := c.loadEntity(meta, v); err != nil {
		return nil, err
	}
	if err := verifyAddress(c.programID, meta.PublicKey, v.Bump, vestingSeeds(v.Mint)); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *invocation) initializeVesting(args *InitializeVestingArgs) error {
	vestingMeta, cfgMeta, authMeta := c.accounts[0], c.accounts[1], c.accounts[2]
	cfg, err := c.loadMintConfig(cfgMeta)
	if err != nil {
		return err
	}
	if err := c.requireAuthority(authMeta, cfg.Authority); err != nil {
		return err
	}
	if args.ReleaseInterval <= 0 || args.NumReleases == 0 || args.StartTime < 0 {
		return fail(ErrInvalidParameters, "interval %d releases %d", args.ReleaseInterval, args.NumReleases)
	}
	bump, err := findAddress(c.programID, vestingMeta.PublicKey, vestingSeeds(cfg.Mint))
	if err != nil {
		return err
	}
	v := &VestingState{
		Authority:       authMeta.PublicKey,
		Mint:            cfg.Mint,
		Bump:            bump,
		TotalTokens:     args.TotalTokens,
		StartTime:       args.StartTime,
		ReleaseInterval: args.ReleaseInterval,
		NumReleases:     args.NumReleases,
	}
	if err := c.createEntity(vestingMeta, authMeta, VestingSpace(), v); err != nil {
		return err
	}
	c.emitVestingInitialized(vestingMeta.PublicKey, v)
	return nil
}

func (c *invocation) addVestingBeneficiary(args *AddVestingBeneficiaryArgs) error {
	vestingMeta, authMeta := c.accounts[0], c.accounts[1]
	v, err := c.loadVesting(vestingMeta)
	if err != nil {
		return err
	}
	if err := c.requireAuthority(authMeta, v.Authority); err != nil {
		return err
	}
	if args.Amount == 0 {
		return fail(ErrInvalidParameters, "zero allocation")
	}
	if v.findBeneficiary(args.Beneficiary) >= 0 {
		return fail(ErrBeneficiaryExists, "%s", args.Beneficiary)
	}
	if len(v.Beneficiaries) >= MaxBeneficiaries {
		return fail(ErrCapacityExceeded, "limit is %d beneficiaries", MaxBeneficiaries)
	}
	if v.TotalAllocated, err = safemath.Add(v.TotalAllocated, args.Amount); err != nil {
		return calcErr(err, "total allocated")
	}
	// total committed grows with the allocations so allocated never runs past it
	if v.TotalTokens < v.TotalAllocated {
		v.TotalTokens = v.TotalAllocated
	}
	v.Beneficiaries = append(v.Beneficiaries, VestingBeneficiary{
		ID:          args.Beneficiary,
		TotalAmount: args.Amount,
	})
	if err := c.saveEntity(vestingMeta, v); err != nil {
		return err
	}
	c.emitBeneficiaryAdded(vestingMeta.PublicKey, args.Beneficiary, args.Amount)
	return nil
}

// releaseVestedTokens is a permissionless crank. Nothing releasable is a logged success so
// schedulers can call it blindly.
func (c *invocation) releaseVestedTokens(args *ReleaseVestedTokensArgs) error {
	vestingMeta, mintMeta, authorityMeta, tokenMeta := c.accounts[0], c.accounts[1], c.accounts[2], c.accounts[3]
	v, err := c.loadVesting(vestingMeta)
	if err != nil {
		return err
	}
	idx := v.findBeneficiary(args.Beneficiary)
	if idx < 0 {
		return fail(ErrBeneficiaryNotFound, "%s", args.Beneficiary)
	}
	b := &v.Beneficiaries[idx]
	now := c.now()
	amount, err := v.Releasable(b, now)
	if err != nil {
		return calcErr(err, "releasable")
	}
	if amount == 0 {
		c.emitReleased(vestingMeta.PublicKey, b.ID, 0)
		return nil
	}

	if err := c.requireWritable(mintMeta, tokenMeta); err != nil {
		return err
	}
	if _, err := c.requireMint(mintMeta, v.Mint); err != nil {
		return err
	}
	mintAuthority, err := c.requireProgramMintAuthority(authorityMeta, v.Mint)
	if err != nil {
		return err
	}
	if b.Released, err = safemath.Add(b.Released, amount); err != nil {
		return calcErr(err, "released")
	}
	if v.TotalReleased, err = safemath.Add(v.TotalReleased, amount); err != nil {
		return calcErr(err, "total released")
	}
	b.LastReleaseTime = now
	id := b.ID
	if err := c.saveEntity(vestingMeta, v); err != nil {
		return err
	}
	if err := c.associatedAccount(tokenMeta, id, v.Mint, ErrInvalidSeeds); err != nil {
		return err
	}
	if err := c.tokens.MintTo(v.Mint, tokenMeta.PublicKey, mintAuthority, amount); err != nil {
		return tokenErr(err, "release")
	}
	c.emitReleased(vestingMeta.PublicKey, id, amount)
	return nil
}
