package contract

import (
	"github.com/gagliardetto/solana-go"

	"launchpad/pkg/safemath"
	"launchpad/pkg/token2022"
	"launchpad/sdk"
)

// -----------------------------------------------------------------------------
// Loading
// -----------------------------------------------------------------------------

// loadPresale reads the presale and verifies it and both treasury authorities against
// their stored bumps.
func (c *invocation) loadPresale(meta *solana.AccountMeta) (*PresaleState, error) {
	p := new(PresaleState)
	if err := c.loadEntity(meta, p); err != nil {
		return nil, err
	}
	if err := verifyAddress(c.programID, meta.PublicKey, p.Bump, presaleSeeds(p.Mint)); err != nil {
		return nil, err
	}
	if err := verifyAddress(c.programID, p.LockedTreasury, p.LockedTreasuryBump, lockedTreasurySeeds(meta.PublicKey)); err != nil {
		return nil, err
	}
	if err := verifyAddress(c.programID, p.DevTreasury, p.DevTreasuryBump, devTreasurySeeds(meta.PublicKey)); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PresaleState) acceptsAsset(asset solana.PublicKey) bool {
	for _, a := range p.AcceptedAssets {
		if a.Equals(asset) {
			return true
		}
	}
	return false
}

// findContribution returns the index of the (buyer, asset) entry or -1.
func (p *PresaleState) findContribution(buyer, asset solana.PublicKey) int {
	for i := range p.Contributions {
		if p.Contributions[i].Buyer.Equals(buyer) && p.Contributions[i].Asset.Equals(asset) {
			return i
		}
	}
	return -1
}

// buyerTotal sums everything buyer put in across all assets.
func (p *PresaleState) buyerTotal(buyer solana.PublicKey) (uint64, error) {
	var total uint64
	var err error
	for i := range p.Contributions {
		if !p.Contributions[i].Buyer.Equals(buyer) {
			continue
		}
		if total, err = safemath.Add(total, p.Contributions[i].Amount); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// -----------------------------------------------------------------------------
// Instructions
// -----------------------------------------------------------------------------

func (c *invocation) initializePresale(args *InitializePresaleArgs) error {
	presaleMeta, cfgMeta, mintMeta := c.accounts[0], c.accounts[1], c.accounts[2]
	lockedMeta, devMeta, authMeta := c.accounts[3], c.accounts[4], c.accounts[5]

	cfg, err := c.loadMintConfig(cfgMeta)
	if err != nil {
		return err
	}
	if err := c.requireAuthority(authMeta, cfg.Authority); err != nil {
		return err
	}
	if _, err := c.requireMint(mintMeta, cfg.Mint); err != nil {
		return err
	}
	switch {
	case args.StartTime >= args.EndTime:
		return fail(ErrInvalidParameters, "window [%d,%d) is empty", args.StartTime, args.EndTime)
	case args.PricePerToken == 0:
		return fail(ErrInvalidParameters, "price must be positive")
	case args.HardCap == 0 || args.SoftCap > args.HardCap:
		return fail(ErrInvalidParameters, "soft cap %d hard cap %d", args.SoftCap, args.HardCap)
	case args.MinPurchase == 0 || args.MinPurchase > args.MaxPurchase:
		return fail(ErrInvalidParameters, "purchase range [%d,%d]", args.MinPurchase, args.MaxPurchase)
	}

	bump, err := findAddress(c.programID, presaleMeta.PublicKey, presaleSeeds(cfg.Mint))
	if err != nil {
		return err
	}
	lockedBump, err := findAddress(c.programID, lockedMeta.PublicKey, lockedTreasurySeeds(presaleMeta.PublicKey))
	if err != nil {
		return err
	}
	devBump, err := findAddress(c.programID, devMeta.PublicKey, devTreasurySeeds(presaleMeta.PublicKey))
	if err != nil {
		return err
	}

	p := &PresaleState{
		Authority:          authMeta.PublicKey,
		Mint:               cfg.Mint,
		Bump:               bump,
		LockedTreasury:     lockedMeta.PublicKey,
		LockedTreasuryBump: lockedBump,
		DevTreasury:        devMeta.PublicKey,
		DevTreasuryBump:    devBump,
		StartTime:          args.StartTime,
		EndTime:            args.EndTime,
		PricePerToken:      args.PricePerToken,
		SoftCap:            args.SoftCap,
		HardCap:            args.HardCap,
		MinPurchase:        args.MinPurchase,
		MaxPurchase:        args.MaxPurchase,
		IsActive:           true,
		MaxContributions:   InitialMaxContributions,
	}
	if err := c.createEntity(presaleMeta, authMeta, PresaleSpace(p.MaxContributions), p); err != nil {
		return err
	}
	c.emitPresaleInitialized(presaleMeta.PublicKey, p)
	return nil
}

// addSupportedAsset whitelists a payment mint and opens both treasury token accounts for it.
// Payment assets are plain 6 decimal stable tokens, a transfer fee would break the 50/50 split.
func (c *invocation) addSupportedAsset(args *AddSupportedAssetArgs) error {
	presaleMeta, authMeta, assetMeta := c.accounts[0], c.accounts[1], c.accounts[2]
	p, err := c.loadPresale(presaleMeta)
	if err != nil {
		return err
	}
	if err := c.requireAuthority(authMeta, p.Authority); err != nil {
		return err
	}
	if p.HasEnded {
		return fail(ErrPresaleEnded, "cannot add assets after the sale")
	}
	if p.acceptsAsset(args.AssetMint) {
		return fail(ErrAssetAlreadySupported, "%s", args.AssetMint)
	}
	if len(p.AcceptedAssets) >= MaxAcceptedAssets {
		return fail(ErrTooManyAssets, "limit is %d", MaxAcceptedAssets)
	}
	asset, err := c.requireMint(assetMeta, args.AssetMint)
	if err != nil {
		return err
	}
	if asset.Decimals != PriceDecimals {
		return fail(ErrInvalidMint, "asset has %d decimals, want %d", asset.Decimals, PriceDecimals)
	}
	if asset.TransferFeeBasisPoints != 0 {
		return fail(ErrInvalidMint, "asset charges a transfer fee")
	}
	for _, wallet := range []solana.PublicKey{p.LockedTreasury, p.DevTreasury} {
		if _, err := c.tokens.CreateAssociatedAccount(wallet, args.AssetMint); err != nil {
			return tokenErr(err, "treasury account")
		}
	}
	p.AcceptedAssets = append(p.AcceptedAssets, args.AssetMint)
	if err := c.saveEntity(presaleMeta, p); err != nil {
		return err
	}
	c.emitAssetAdded(presaleMeta.PublicKey, args.AssetMint)
	return nil
}

// buyTokens records a contribution and splits the payment between both treasuries.
// State is saved before any token moves.
func (c *invocation) buyTokens(args *BuyTokensArgs) error {
	presaleMeta, buyerMeta, buyerTokenMeta := c.accounts[0], c.accounts[1], c.accounts[2]
	assetMeta, lockedTokenMeta, devTokenMeta := c.accounts[3], c.accounts[4], c.accounts[5]

	p, err := c.loadPresale(presaleMeta)
	if err != nil {
		return err
	}
	if err := c.requireSigner(buyerMeta); err != nil {
		return err
	}
	if err := c.requireWritable(buyerTokenMeta, lockedTokenMeta, devTokenMeta); err != nil {
		return err
	}

	now := c.now()
	switch {
	case !p.IsActive || p.HasEnded:
		return fail(ErrPresaleEnded, "sale closed")
	case now < p.StartTime:
		return fail(ErrPresaleNotStarted, "starts at %d", p.StartTime)
	case now >= p.EndTime:
		return fail(ErrPresaleEnded, "ended at %d", p.EndTime)
	}

	asset := assetMeta.PublicKey
	if !p.acceptsAsset(asset) {
		return fail(ErrInvalidMint, "asset %s not accepted", asset)
	}
	if args.Amount < p.MinPurchase || args.Amount > p.MaxPurchase {
		return fail(ErrInvalidPurchaseAmount, "%d outside [%d,%d]", args.Amount, p.MinPurchase, p.MaxPurchase)
	}
	already, err := p.buyerTotal(buyerMeta.PublicKey)
	if err != nil {
		return calcErr(err, "buyer total")
	}
	cumulative, err := safemath.Add(already, args.Amount)
	if err != nil {
		return calcErr(err, "buyer total")
	}
	if cumulative > p.MaxPurchase {
		return fail(ErrInvalidPurchaseAmount, "buyer total %d above %d", cumulative, p.MaxPurchase)
	}
	raised, err := safemath.Add(p.TotalRaised, args.Amount)
	if err != nil {
		return calcErr(err, "total raised")
	}
	if raised > p.HardCap {
		return fail(ErrHardCapExceeded, "%d above hard cap %d", raised, p.HardCap)
	}

	if err := c.requireKey(lockedTokenMeta, treasuryTokenAccount(p.LockedTreasury, asset), ErrInvalidSeeds); err != nil {
		return err
	}
	if err := c.requireKey(devTokenMeta, treasuryTokenAccount(p.DevTreasury, asset), ErrInvalidSeeds); err != nil {
		return err
	}

	m, err := c.tokens.Mint(p.Mint)
	if err != nil {
		return tokenErr(err, "sale mint")
	}
	tokens, err := tokensForPayment(args.Amount, p.PricePerToken, m.Decimals)
	if err != nil {
		return calcErr(err, "token amount")
	}
	locked, dev := splitPayment(args.Amount)

	idx := p.findContribution(buyerMeta.PublicKey, asset)
	if idx < 0 {
		if uint32(len(p.Contributions)) >= p.MaxContributions {
			return fail(ErrPresaleFull, "%d contributions", len(p.Contributions))
		}
		p.Contributions = append(p.Contributions, Contribution{Buyer: buyerMeta.PublicKey, Asset: asset})
		idx = len(p.Contributions) - 1
	}
	ct := &p.Contributions[idx]
	if ct.Refunded || ct.ClaimedDevRefund || ct.TokensClaimed {
		return fail(ErrInvalidInstruction, "contribution already settled")
	}
	if ct.Amount, err = safemath.Add(ct.Amount, args.Amount); err != nil {
		return calcErr(err, "contribution amount")
	}
	if ct.TokenAmount, err = safemath.Add(ct.TokenAmount, tokens); err != nil {
		return calcErr(err, "contribution tokens")
	}
	if ct.LockedAmount, err = safemath.Add(ct.LockedAmount, locked); err != nil {
		return calcErr(err, "contribution locked")
	}
	if ct.DevAmount, err = safemath.Add(ct.DevAmount, dev); err != nil {
		return calcErr(err, "contribution dev")
	}
	ct.Timestamp = now

	p.TotalRaised = raised
	if p.TotalLocked, err = safemath.Add(p.TotalLocked, locked); err != nil {
		return calcErr(err, "total locked")
	}
	if p.TotalDev, err = safemath.Add(p.TotalDev, dev); err != nil {
		return calcErr(err, "total dev")
	}
	if p.TotalTokensSold, err = safemath.Add(p.TotalTokensSold, tokens); err != nil {
		return calcErr(err, "tokens sold")
	}
	if p.TotalRaised >= p.SoftCap {
		p.SoftCapReached = true
	}
	if p.TotalRaised >= p.HardCap {
		p.HardCapReached = true
	}
	contribution := *ct
	if err := c.saveEntity(presaleMeta, p); err != nil {
		return err
	}

	if err := c.transferIn(asset, buyerTokenMeta.PublicKey, lockedTokenMeta.PublicKey, buyerMeta.PublicKey, locked); err != nil {
		return err
	}
	if err := c.transferIn(asset, buyerTokenMeta.PublicKey, devTokenMeta.PublicKey, buyerMeta.PublicKey, dev); err != nil {
		return err
	}
	c.emitContribution(presaleMeta.PublicKey, &contribution, args.Amount, tokens, locked, dev)
	return nil
}

// transferIn moves a payment share and insists nothing was skimmed on the way, treasury
// accounting is exact.
func (c *invocation) transferIn(asset, from, to, owner solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	received, err := c.tokens.Transfer(asset, from, to, owner, amount)
	if err != nil {
		return tokenErr(err, "payment")
	}
	if received != amount {
		return fail(ErrInvalidMint, "payment asset withheld %d", amount-received)
	}
	return nil
}

// tokensForPayment prices a usd amount (6 decimals) into token base units.
func tokensForPayment(amount, pricePerToken uint64, decimals uint8) (uint64, error) {
	unit, err := safemath.Pow10(decimals)
	if err != nil {
		return 0, err
	}
	return safemath.MulDiv(amount, unit, pricePerToken)
}

// splitPayment halves a payment, the odd unit goes to the dev side.
func splitPayment(amount uint64) (locked, dev uint64) {
	locked = amount / 2
	return locked, amount - locked
}

func treasuryTokenAccount(treasury, asset solana.PublicKey) solana.PublicKey {
	addr, _, err := token2022.FindAssociatedTokenAddress(treasury, asset)
	if err != nil {
		return solana.PublicKey{}
	}
	return addr
}

func (c *invocation) endPresale() error {
	presaleMeta, authMeta := c.accounts[0], c.accounts[1]
	p, err := c.loadPresale(presaleMeta)
	if err != nil {
		return err
	}
	if err := c.requireAuthority(authMeta, p.Authority); err != nil {
		return err
	}
	if p.HasEnded {
		return fail(ErrPresaleEnded, "already ended")
	}
	p.HasEnded = true
	p.IsActive = false
	p.DevFundsRefundable = !p.SoftCapReached
	if err := c.saveEntity(presaleMeta, p); err != nil {
		return err
	}
	c.emitPresaleEnded(presaleMeta.PublicKey, p)
	return nil
}

// launchToken starts the clock every refund window is measured from.
func (c *invocation) launchToken() error {
	presaleMeta, authMeta := c.accounts[0], c.accounts[1]
	p, err := c.loadPresale(presaleMeta)
	if err != nil {
		return err
	}
	if err := c.requireAuthority(authMeta, p.Authority); err != nil {
		return err
	}
	if !p.HasEnded {
		return fail(ErrPresaleActive, "end the sale first")
	}
	if p.Launched {
		return fail(ErrAlreadyLaunched, "launched at %d", p.LaunchTime)
	}
	now := c.now()
	p.Launched = true
	p.LaunchTime = now
	p.RefundStart = now + RefundWindowOpensAfter
	p.RefundDeadline = p.RefundStart + RefundWindowLength
	p.DevRefundStart = now + DevRefundWindowOpensAfter
	p.DevRefundDeadline = p.DevRefundStart + DevRefundWindowLength
	if err := c.saveEntity(presaleMeta, p); err != nil {
		return err
	}
	c.emitLaunched(presaleMeta.PublicKey, now)
	return nil
}

// expandPresaleCapacity doubles the contribution capacity, the authority pays the extra rent.
func (c *invocation) expandPresaleCapacity() error {
	presaleMeta, authMeta := c.accounts[0], c.accounts[1]
	p, err := c.loadPresale(presaleMeta)
	if err != nil {
		return err
	}
	if err := c.requireAuthority(authMeta, p.Authority); err != nil {
		return err
	}
	if err := c.requireWritable(presaleMeta, authMeta); err != nil {
		return err
	}
	if p.MaxContributions >= MaxPresaleContributions {
		return fail(ErrCapacityExceeded, "already at %d", p.MaxContributions)
	}
	next := p.MaxContributions * 2
	if next > MaxPresaleContributions {
		next = MaxPresaleContributions
	}
	if _, err := sdk.ResizeAccount(c.st, authMeta.PublicKey, presaleMeta.PublicKey, PresaleSpace(next)); err != nil {
		if err == sdk.ErrInsufficientLamports {
			return fail(ErrNotRentExempt, "authority cannot fund %d contributions", next)
		}
		return err
	}
	p.MaxContributions = next
	if err := c.saveEntity(presaleMeta, p); err != nil {
		return err
	}
	c.emitCapacityExpanded(presaleMeta.PublicKey, next)
	return nil
}

// claimPresaleTokens mints everything the buyer bought and has not refunded. Claiming
// gives up the refund right on those contributions.
func (c *invocation) claimPresaleTokens() error {
	presaleMeta, buyerMeta, mintMeta := c.accounts[0], c.accounts[1], c.accounts[2]
	authorityMeta, buyerTokenMeta := c.accounts[3], c.accounts[4]

	p, err := c.loadPresale(presaleMeta)
	if err != nil {
		return err
	}
	if err := c.requireSigner(buyerMeta); err != nil {
		return err
	}
	if !p.Launched {
		return fail(ErrNotLaunched, "tokens unlock at launch")
	}
	if err := c.requireWritable(mintMeta, buyerTokenMeta); err != nil {
		return err
	}
	if _, err := c.requireMint(mintMeta, p.Mint); err != nil {
		return err
	}
	mintAuthority, err := c.requireProgramMintAuthority(authorityMeta, p.Mint)
	if err != nil {
		return err
	}

	var owed uint64
	found := false
	for i := range p.Contributions {
		ct := &p.Contributions[i]
		if !ct.Buyer.Equals(buyerMeta.PublicKey) {
			continue
		}
		found = true
		if ct.TokensClaimed || ct.Refunded || ct.ClaimedDevRefund {
			continue
		}
		if owed, err = safemath.Add(owed, ct.TokenAmount); err != nil {
			return calcErr(err, "tokens owed")
		}
		ct.TokensClaimed = true
	}
	if !found {
		return fail(ErrNoContribution, "%s", buyerMeta.PublicKey)
	}
	if owed == 0 {
		return fail(ErrNoTokensToRelease, "nothing left to claim")
	}
	if p.TokensClaimed, err = safemath.Add(p.TokensClaimed, owed); err != nil {
		return calcErr(err, "tokens claimed")
	}
	if err := c.saveEntity(presaleMeta, p); err != nil {
		return err
	}
	if err := c.associatedAccount(buyerTokenMeta, buyerMeta.PublicKey, p.Mint, ErrInvalidSeeds); err != nil {
		return err
	}
	if err := c.tokens.MintTo(p.Mint, buyerTokenMeta.PublicKey, mintAuthority, owed); err != nil {
		return tokenErr(err, "mint purchased tokens")
	}
	c.emitTokensClaimed(presaleMeta.PublicKey, buyerMeta.PublicKey, owed)
	return nil
}
