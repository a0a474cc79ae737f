package contract

import (
	"github.com/gagliardetto/solana-go"

	"launchpad/pkg/safemath"
)

// -----------------------------------------------------------------------------
// Policy
// -----------------------------------------------------------------------------

// Decide maps an observed growth onto a supply action and its rate in bps of supply.
//
//	growth >= MintLowGrowthBps                 mint MintLowRateBps
//	growth >  MintHighGrowthBps                mint MintHighRateBps
//	supply >= HighSupplyThreshold              mint only if growth >= ExtremeGrowthBps, at ExtremeMintRateBps
//	decline >= BurnLowDeclineBps               burn BurnLowRateBps
//	decline >  BurnHighDeclineBps              burn BurnHighRateBps
func (p *ControllerParams) Decide(growthBps int64, supply uint64) (SupplyAction, uint64) {
	switch {
	case growthBps > 0 && uint64(growthBps) >= p.MintLowGrowthBps:
		g := uint64(growthBps)
		if supply >= p.HighSupplyThreshold {
			if g >= p.ExtremeGrowthBps {
				return SupplyActionMint, p.ExtremeMintRateBps
			}
			return SupplyActionNone, 0
		}
		if g > p.MintHighGrowthBps {
			return SupplyActionMint, p.MintHighRateBps
		}
		return SupplyActionMint, p.MintLowRateBps
	case growthBps < 0 && uint64(-growthBps) >= p.BurnLowDeclineBps:
		if uint64(-growthBps) > p.BurnHighDeclineBps {
			return SupplyActionBurn, p.BurnHighRateBps
		}
		return SupplyActionBurn, p.BurnLowRateBps
	}
	return SupplyActionNone, 0
}

// normalizeControllerParams fills zero fields with the fallback values (token amounts are
// given in whole tokens and scaled by decimals) and rejects inconsistent tiers.
func normalizeControllerParams(p *ControllerParams, decimals uint8) error {
	var err error
	if p.HighSupplyThreshold == 0 {
		if p.HighSupplyThreshold, err = safemath.ToRaw(FallbackHighSupplyThresholdTokens, decimals); err != nil {
			return calcErr(err, "supply threshold")
		}
	}
	if p.SupplyFloor == 0 {
		if p.SupplyFloor, err = safemath.ToRaw(FallbackSupplyFloorTokens, decimals); err != nil {
			return calcErr(err, "supply floor")
		}
	}
	orU64 := func(v *uint64, def uint64) {
		if *v == 0 {
			*v = def
		}
	}
	orI64 := func(v *int64, def int64) {
		if *v == 0 {
			*v = def
		}
	}
	orU64(&p.MintLowGrowthBps, FallbackMintLowGrowthBps)
	orU64(&p.MintHighGrowthBps, FallbackMintHighGrowthBps)
	orU64(&p.ExtremeGrowthBps, FallbackExtremeGrowthBps)
	orU64(&p.MintLowRateBps, FallbackMintLowRateBps)
	orU64(&p.MintHighRateBps, FallbackMintHighRateBps)
	orU64(&p.ExtremeMintRateBps, FallbackExtremeMintRateBps)
	orU64(&p.BurnLowDeclineBps, FallbackBurnLowDeclineBps)
	orU64(&p.BurnHighDeclineBps, FallbackBurnHighDeclineBps)
	orU64(&p.BurnLowRateBps, FallbackBurnLowRateBps)
	orU64(&p.BurnHighRateBps, FallbackBurnHighRateBps)
	orU64(&p.MaxConfidenceBps, FallbackMaxConfidenceBps)
	orU64(&p.MaxPriceChangeBps, FallbackMaxPriceChangeBps)
	orI64(&p.StrictMaxAge, FallbackStrictMaxAge)
	orI64(&p.StandardMaxAge, FallbackStandardMaxAge)
	orI64(&p.MinActionInterval, FallbackMinActionInterval)

	switch {
	case p.SupplyFloor > p.HighSupplyThreshold:
		return fail(ErrInvalidParameters, "floor %d above threshold %d", p.SupplyFloor, p.HighSupplyThreshold)
	case p.MintLowGrowthBps > p.MintHighGrowthBps || p.MintHighGrowthBps > p.ExtremeGrowthBps:
		return fail(ErrInvalidParameters, "mint tiers out of order")
	case p.BurnLowDeclineBps > p.BurnHighDeclineBps:
		return fail(ErrInvalidParameters, "burn tiers out of order")
	case p.MintLowRateBps > safemath.BpsDenominator || p.MintHighRateBps > safemath.BpsDenominator ||
		p.ExtremeMintRateBps > safemath.BpsDenominator:
		return fail(ErrInvalidParameters, "mint rate above 100%%")
	case p.BurnLowRateBps > safemath.BpsDenominator || p.BurnHighRateBps > safemath.BpsDenominator:
		return fail(ErrInvalidParameters, "burn rate above 100%%")
	case p.MaxConfidenceBps > safemath.BpsDenominator || p.MaxPriceChangeBps > safemath.BpsDenominator:
		return fail(ErrInvalidParameters, "oracle bounds above 100%%")
	case p.StrictMaxAge < 0 || p.StrictMaxAge > p.StandardMaxAge || p.StandardMaxAge > OracleHardMaxAge:
		return fail(ErrInvalidParameters, "staleness tiers %d/%d", p.StrictMaxAge, p.StandardMaxAge)
	case p.MinActionInterval < 0:
		return fail(ErrInvalidParameters, "negative action interval")
	case p.OracleProgram.IsZero():
		return fail(ErrInvalidParameters, "oracle program required")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Loading
// -----------------------------------------------------------------------------

func (c *invocation) loadController(meta *solana.AccountMeta) (*AutonomousController, error) {
	ctl := new(AutonomousController)
	if err := c.loadEntity(meta, ctl); err != nil {
		return nil, err
	}
	if err := verifyAddress(c.programID, meta.PublicKey, ctl.Bump, controllerSeeds(ctl.Mint)); err != nil {
		return nil, err
	}
	return ctl, nil
}

func (c *invocation) loadBurnTreasury(meta *solana.AccountMeta) (*BurnTreasury, error) {
	bt := new(BurnTreasury)
	if err := c.loadEntity(meta, bt); err != nil {
		return nil, err
	}
	if err := verifyAddress(c.programID, meta.PublicKey, bt.Bump, burnTreasurySeeds(bt.Mint)); err != nil {
		return nil, err
	}
	return bt, nil
}

// syncSupply refreshes the cached supply from the mint, the ledger is the source of truth.
func (c *invocation) syncSupply(ctl *AutonomousController) error {
	m, err := c.tokens.Mint(ctl.Mint)
	if err != nil {
		return tokenErr(err, "controller mint")
	}
	ctl.CurrentSupply = m.Supply
	return nil
}

// -----------------------------------------------------------------------------
// Instructions
// -----------------------------------------------------------------------------

func (c *invocation) initializeController(args *InitializeControllerArgs) error {
	ctlMeta, cfgMeta, mintMeta, authMeta := c.accounts[0], c.accounts[1], c.accounts[2], c.accounts[3]
	cfg, err := c.loadMintConfig(cfgMeta)
	if err != nil {
		return err
	}
	if err := c.requireAuthority(authMeta, cfg.Authority); err != nil {
		return err
	}
	m, err := c.requireMint(mintMeta, cfg.Mint)
	if err != nil {
		return err
	}
	params := args.Params
	if err := normalizeControllerParams(&params, m.Decimals); err != nil {
		return err
	}
	if params.MintRecipient.IsZero() {
		params.MintRecipient = authMeta.PublicKey
	}
	bump, err := findAddress(c.programID, ctlMeta.PublicKey, controllerSeeds(cfg.Mint))
	if err != nil {
		return err
	}
	ctl := &AutonomousController{
		Authority:     authMeta.PublicKey,
		Mint:          cfg.Mint,
		Bump:          bump,
		Params:        params,
		CurrentSupply: m.Supply,
		CurrentPrice:  params.InitialPrice,
	}
	if params.InitialPrice > 0 {
		ctl.LastPriceUpdate = c.now()
	}
	if err := c.createEntity(ctlMeta, authMeta, ControllerSpace, ctl); err != nil {
		return err
	}
	c.emitControllerInitialized(ctlMeta.PublicKey, cfg.Mint)
	return nil
}

// updateOraclePrice accepts one observation and arms at most one supply action for it.
func (c *invocation) updateOraclePrice() error {
	ctlMeta, mintMeta := c.accounts[0], c.accounts[1]
	ctl, err := c.loadController(ctlMeta)
	if err != nil {
		return err
	}
	if _, err := c.requireMint(mintMeta, ctl.Mint); err != nil {
		return err
	}
	if err := c.syncSupply(ctl); err != nil {
		return err
	}
	r, err := c.readFeeds(c.accounts[2:], &ctl.Params, ctl.CurrentPrice)
	if err != nil {
		return err
	}

	now := c.now()
	ctl.Pending = SupplyActionNone
	ctl.PendingGrowthBps = 0
	ctl.LastGrowthBps = r.growthBps
	if ctl.CurrentPrice > 0 && r.age <= ctl.Params.StrictMaxAge {
		action, _ := ctl.Params.Decide(r.growthBps, ctl.CurrentSupply)
		ctl.Pending = action
		ctl.PendingGrowthBps = r.growthBps
	}
	ctl.CurrentPrice = r.price
	ctl.LastPriceUpdate = now
	ctl.ObservationTime = r.publishTime
	if ctl.ObservationCount, err = safemath.Add(ctl.ObservationCount, 1); err != nil {
		return calcErr(err, "observations")
	}
	if err := c.saveEntity(ctlMeta, ctl); err != nil {
		return err
	}
	c.emitPriceUpdated(ctlMeta.PublicKey, r.feed, ctl)
	return nil
}

// armed checks the pending action is still executable right now.
func (c *invocation) armed(ctl *AutonomousController, action SupplyAction) error {
	if ctl.Pending != action {
		return fail(ErrNoPendingAction, "pending is %s", ctl.Pending)
	}
	now := c.now()
	last := ctl.LastMintTime
	if action == SupplyActionBurn {
		last = ctl.LastBurnTime
	}
	if last != 0 && now-last < ctl.Params.MinActionInterval {
		return fail(ErrTooEarlyForExecution, "last %s at %d", action, last)
	}
	if now-ctl.ObservationTime > ctl.Params.StrictMaxAge {
		return fail(ErrStaleOracleData, "observation from %d", ctl.ObservationTime)
	}
	return nil
}

func (c *invocation) executeAutonomousMint() error {
	ctlMeta, mintMeta, authorityMeta, recipientMeta := c.accounts[0], c.accounts[1], c.accounts[2], c.accounts[3]
	ctl, err := c.loadController(ctlMeta)
	if err != nil {
		return err
	}
	if err := c.armed(ctl, SupplyActionMint); err != nil {
		return err
	}
	if err := c.requireWritable(mintMeta, recipientMeta); err != nil {
		return err
	}
	if _, err := c.requireMint(mintMeta, ctl.Mint); err != nil {
		return err
	}
	mintAuthority, err := c.requireProgramMintAuthority(authorityMeta, ctl.Mint)
	if err != nil {
		return err
	}
	if err := c.syncSupply(ctl); err != nil {
		return err
	}

	// the rate is re-derived against the supply of right now
	var amount uint64
	if action, rate := ctl.Params.Decide(ctl.PendingGrowthBps, ctl.CurrentSupply); action == SupplyActionMint {
		if amount, err = safemath.BpsOf(ctl.CurrentSupply, rate); err != nil {
			return calcErr(err, "mint amount")
		}
	}
	ctl.Pending = SupplyActionNone
	ctl.PendingGrowthBps = 0
	if amount > 0 {
		ctl.LastMintTime = c.now()
		if ctl.TotalMinted, err = safemath.Add(ctl.TotalMinted, amount); err != nil {
			return calcErr(err, "total minted")
		}
		if ctl.CurrentSupply, err = safemath.Add(ctl.CurrentSupply, amount); err != nil {
			return calcErr(err, "supply")
		}
	}
	if err := c.saveEntity(ctlMeta, ctl); err != nil {
		return err
	}
	if amount > 0 {
		if err := c.associatedAccount(recipientMeta, ctl.Params.MintRecipient, ctl.Mint, ErrInvalidSeeds); err != nil {
			return err
		}
		if err := c.tokens.MintTo(ctl.Mint, recipientMeta.PublicKey, mintAuthority, amount); err != nil {
			return tokenErr(err, "autonomous mint")
		}
	}
	c.emitSupplyChanged(SupplyActionMint, ctlMeta.PublicKey, amount, ctl.CurrentSupply)
	return nil
}

// executeAutonomousBurn burns out of the burn treasury only, never taking supply below the floor.
func (c *invocation) executeAutonomousBurn() error {
	ctlMeta, mintMeta, btMeta, btTokenMeta := c.accounts[0], c.accounts[1], c.accounts[2], c.accounts[3]
	ctl, err := c.loadController(ctlMeta)
	if err != nil {
		return err
	}
	if err := c.armed(ctl, SupplyActionBurn); err != nil {
		return err
	}
	if ctl.BurnTreasury.IsZero() || !ctl.BurnTreasury.Equals(btMeta.PublicKey) {
		return fail(ErrInvalidBurnTreasury, "controller burns from %s", ctl.BurnTreasury)
	}
	bt, err := c.loadBurnTreasury(btMeta)
	if err != nil {
		return err
	}
	if !bt.Controller.Equals(ctlMeta.PublicKey) || !bt.Mint.Equals(ctl.Mint) {
		return fail(ErrInvalidBurnTreasury, "treasury belongs to %s", bt.Controller)
	}
	if !btTokenMeta.PublicKey.Equals(bt.TokenAccount) {
		return fail(ErrUnauthorizedBurnSource, "%s", btTokenMeta.PublicKey)
	}
	if err := c.requireWritable(mintMeta, btTokenMeta); err != nil {
		return err
	}
	if _, err := c.requireMint(mintMeta, ctl.Mint); err != nil {
		return err
	}
	if err := c.syncSupply(ctl); err != nil {
		return err
	}

	var amount uint64
	if action, rate := ctl.Params.Decide(ctl.PendingGrowthBps, ctl.CurrentSupply); action == SupplyActionBurn {
		if amount, err = safemath.BpsOf(ctl.CurrentSupply, rate); err != nil {
			return calcErr(err, "burn amount")
		}
	}
	var room uint64
	if ctl.CurrentSupply > ctl.Params.SupplyFloor {
		room = ctl.CurrentSupply - ctl.Params.SupplyFloor
	}
	balance, err := c.tokens.Balance(bt.TokenAccount)
	if err != nil {
		return tokenErr(err, "burn treasury balance")
	}
	amount = min(amount, room, balance)

	ctl.Pending = SupplyActionNone
	ctl.PendingGrowthBps = 0
	if amount > 0 {
		ctl.LastBurnTime = c.now()
		if ctl.TotalBurned, err = safemath.Add(ctl.TotalBurned, amount); err != nil {
			return calcErr(err, "total burned")
		}
		if ctl.CurrentSupply, err = safemath.Sub(ctl.CurrentSupply, amount); err != nil {
			return calcErr(err, "supply")
		}
		if bt.TotalBurned, err = safemath.Add(bt.TotalBurned, amount); err != nil {
			return calcErr(err, "treasury burned")
		}
	}
	if err := c.saveEntity(ctlMeta, ctl); err != nil {
		return err
	}
	if amount > 0 {
		if err := c.saveEntity(btMeta, bt); err != nil {
			return err
		}
		if err := c.tokens.Burn(ctl.Mint, bt.TokenAccount, btMeta.PublicKey, amount); err != nil {
			return tokenErr(err, "autonomous burn")
		}
	}
	c.emitSupplyChanged(SupplyActionBurn, ctlMeta.PublicKey, amount, ctl.CurrentSupply)
	return nil
}

func (c *invocation) initializeBurnTreasury() error {
	btMeta, ctlMeta, mintMeta, authMeta := c.accounts[0], c.accounts[1], c.accounts[2], c.accounts[3]
	ctl, err := c.loadController(ctlMeta)
	if err != nil {
		return err
	}
	if err := c.requireAuthority(authMeta, ctl.Authority); err != nil {
		return err
	}
	if _, err := c.requireMint(mintMeta, ctl.Mint); err != nil {
		return err
	}
	if !ctl.BurnTreasury.IsZero() {
		return fail(ErrAlreadyInitialized, "controller already has burn treasury %s", ctl.BurnTreasury)
	}
	bump, err := findAddress(c.programID, btMeta.PublicKey, burnTreasurySeeds(ctl.Mint))
	if err != nil {
		return err
	}
	tokenAccount, err := c.tokens.CreateAssociatedAccount(btMeta.PublicKey, ctl.Mint)
	if err != nil {
		return tokenErr(err, "burn treasury account")
	}
	bt := &BurnTreasury{
		Controller:   ctlMeta.PublicKey,
		Mint:         ctl.Mint,
		TokenAccount: tokenAccount,
		Bump:         bump,
	}
	if err := c.createEntity(btMeta, authMeta, BurnTreasurySpace, bt); err != nil {
		return err
	}
	ctl.BurnTreasury = btMeta.PublicKey
	if err := c.saveEntity(ctlMeta, ctl); err != nil {
		return err
	}
	c.emitBurnTreasuryInitialized(btMeta.PublicKey, ctlMeta.PublicKey)
	return nil
}

// depositToBurnTreasury is open to anyone, the treasury records what arrived net of fees.
func (c *invocation) depositToBurnTreasury(args *DepositToBurnTreasuryArgs) error {
	btMeta, mintMeta, depositorMeta := c.accounts[0], c.accounts[1], c.accounts[2]
	sourceMeta, btTokenMeta := c.accounts[3], c.accounts[4]
	bt, err := c.loadBurnTreasury(btMeta)
	if err != nil {
		return err
	}
	if err := c.requireSigner(depositorMeta); err != nil {
		return err
	}
	if args.Amount == 0 {
		return fail(ErrInvalidParameters, "zero deposit")
	}
	if _, err := c.requireMint(mintMeta, bt.Mint); err != nil {
		return err
	}
	if !btTokenMeta.PublicKey.Equals(bt.TokenAccount) {
		return fail(ErrInvalidBurnTreasury, "deposit target %s", btTokenMeta.PublicKey)
	}
	if err := c.requireWritable(sourceMeta, btTokenMeta); err != nil {
		return err
	}
	received, err := c.tokens.Transfer(bt.Mint, sourceMeta.PublicKey, bt.TokenAccount, depositorMeta.PublicKey, args.Amount)
	if err != nil {
		return tokenErr(err, "deposit")
	}
	if bt.TotalDeposited, err = safemath.Add(bt.TotalDeposited, received); err != nil {
		return calcErr(err, "total deposited")
	}
	if err := c.saveEntity(btMeta, bt); err != nil {
		return err
	}
	c.emitBurnDeposit(btMeta.PublicKey, depositorMeta.PublicKey, received)
	return nil
}
