package contract

import (
	"github.com/gagliardetto/solana-go"

	"launchpad/pkg/safemath"
)

// treasuryKind picks one half of the dual treasury.
type treasuryKind uint8

const (
	treasuryLocked treasuryKind = iota
	treasuryDev
)

func (k treasuryKind) String() string {
	if k == treasuryDev {
		return "dev"
	}
	return "locked"
}

// wallet is the PDA that owns this half's token accounts and signs its outflows.
func (k treasuryKind) wallet(p *PresaleState) solana.PublicKey {
	if k == treasuryDev {
		return p.DevTreasury
	}
	return p.LockedTreasury
}

// window returns the refund window [start, deadline) of this half.
func (k treasuryKind) window(p *PresaleState) (int64, int64) {
	if k == treasuryDev {
		return p.DevRefundStart, p.DevRefundDeadline
	}
	return p.RefundStart, p.RefundDeadline
}

// Status derives where a contribution is in its refund lifecycle at now.
func (ct *Contribution) Status(p *PresaleState, now int64) ContributionStatus {
	switch {
	case ct.TokensClaimed:
		return ContributionTokensClaimed
	case ct.ClaimedDevRefund:
		return ContributionDevRefundClaimed
	case ct.ClaimedRefund:
		return ContributionRefunded
	case !p.Launched:
		return ContributionPending
	case p.SoftCapReached:
		// nothing is refundable once the sale succeeded
		return ContributionExpired
	case now < p.RefundStart:
		return ContributionPending
	case now < p.RefundDeadline:
		return ContributionRefundableWindow
	case !p.DevFundsRefundable || now >= p.DevRefundDeadline:
		return ContributionExpired
	case now < p.DevRefundStart:
		return ContributionPending
	default:
		return ContributionRefundableWindow
	}
}

// treasuryAccounts checks the treasury PDA and its token account for asset.
func (c *invocation) treasuryAccounts(kind treasuryKind, p *PresaleState, asset solana.PublicKey, walletMeta, tokenMeta *solana.AccountMeta) error {
	if !p.acceptsAsset(asset) {
		return fail(ErrInvalidMint, "asset %s not accepted", asset)
	}
	if err := c.requireKey(walletMeta, kind.wallet(p), ErrInvalidSeeds); err != nil {
		return err
	}
	if err := c.requireKey(tokenMeta, treasuryTokenAccount(kind.wallet(p), asset), ErrInvalidSeeds); err != nil {
		return err
	}
	return c.requireWritable(tokenMeta)
}

func (c *invocation) claimRefund() error {
	return c.claimTreasuryRefund(treasuryLocked)
}

func (c *invocation) claimDevFundRefund() error {
	return c.claimTreasuryRefund(treasuryDev)
}

// claimTreasuryRefund pays back one half of a (buyer, asset) contribution. The flag is
// flipped and saved before the payout so a nested call sees the claim.
func (c *invocation) claimTreasuryRefund(kind treasuryKind) error {
	presaleMeta, buyerMeta, assetMeta := c.accounts[0], c.accounts[1], c.accounts[2]
	walletMeta, tokenMeta, buyerTokenMeta := c.accounts[3], c.accounts[4], c.accounts[5]

	p, err := c.loadPresale(presaleMeta)
	if err != nil {
		return err
	}
	if err := c.requireSigner(buyerMeta); err != nil {
		return err
	}
	asset := assetMeta.PublicKey
	if err := c.treasuryAccounts(kind, p, asset, walletMeta, tokenMeta); err != nil {
		return err
	}

	switch kind {
	case treasuryLocked:
		if p.SoftCapReached {
			return fail(ErrRefundsUnavailable, "soft cap %d reached", p.SoftCap)
		}
	case treasuryDev:
		if !p.DevFundsRefundable {
			return fail(ErrDevFundsNotRefundable, "soft cap reached or sale not ended")
		}
	}
	now := c.now()
	start, deadline := kind.window(p)
	switch {
	case !p.Launched:
		return fail(ErrRefundPeriodActive, "token not launched")
	case now < start:
		return fail(ErrRefundPeriodActive, "%s refunds open at %d", kind, start)
	case now >= deadline:
		return fail(ErrRefundPeriodEnded, "%s refunds closed at %d", kind, deadline)
	}

	idx := p.findContribution(buyerMeta.PublicKey, asset)
	if idx < 0 {
		return fail(ErrNoContribution, "%s in %s", buyerMeta.PublicKey, asset)
	}
	ct := &p.Contributions[idx]
	var amount uint64
	switch kind {
	case treasuryLocked:
		if ct.ClaimedRefund {
			return fail(ErrRefundAlreadyClaimed, "locked half")
		}
		if ct.TokensClaimed {
			return fail(ErrTokensAlreadyClaimed, "refund forfeited")
		}
		ct.ClaimedRefund = true
		ct.Refunded = true
		amount = ct.LockedAmount
		if p.TotalRefunded, err = safemath.Add(p.TotalRefunded, amount); err != nil {
			return calcErr(err, "total refunded")
		}
	case treasuryDev:
		if ct.ClaimedDevRefund {
			return fail(ErrRefundAlreadyClaimed, "dev half")
		}
		if ct.TokensClaimed {
			return fail(ErrTokensAlreadyClaimed, "refund forfeited")
		}
		ct.ClaimedDevRefund = true
		amount = ct.DevAmount
		if p.TotalDevRefunded, err = safemath.Add(p.TotalDevRefunded, amount); err != nil {
			return calcErr(err, "total dev refunded")
		}
	}
	if err := c.saveEntity(presaleMeta, p); err != nil {
		return err
	}

	if err := c.associatedAccount(buyerTokenMeta, buyerMeta.PublicKey, asset, ErrInvalidSeeds); err != nil {
		return err
	}
	if amount > 0 {
		if _, err := c.tokens.Transfer(asset, tokenMeta.PublicKey, buyerTokenMeta.PublicKey, walletMeta.PublicKey, amount); err != nil {
			return tokenErr(err, "refund")
		}
	}
	c.emitRefund(kind, presaleMeta.PublicKey, buyerMeta.PublicKey, asset, amount)
	return nil
}

// withdrawTreasury sweeps one half of the treasury for asset to the project. With the soft
// cap reached both halves unlock at sale end, otherwise only after their refund deadline.
func (c *invocation) withdrawTreasury(kind treasuryKind) error {
	presaleMeta, authMeta, assetMeta := c.accounts[0], c.accounts[1], c.accounts[2]
	walletMeta, tokenMeta, destMeta := c.accounts[3], c.accounts[4], c.accounts[5]

	p, err := c.loadPresale(presaleMeta)
	if err != nil {
		return err
	}
	if err := c.requireAuthority(authMeta, p.Authority); err != nil {
		return err
	}
	asset := assetMeta.PublicKey
	if err := c.treasuryAccounts(kind, p, asset, walletMeta, tokenMeta); err != nil {
		return err
	}
	if err := c.requireWritable(destMeta); err != nil {
		return err
	}
	if !p.HasEnded {
		return fail(ErrPresaleActive, "sale still running")
	}
	if !p.SoftCapReached {
		_, deadline := kind.window(p)
		if !p.Launched || c.now() < deadline {
			return fail(ErrRefundPeriodActive, "%s funds locked until refunds close", kind)
		}
	}

	balance, err := c.tokens.Balance(tokenMeta.PublicKey)
	if err != nil {
		return tokenErr(err, "treasury balance")
	}
	if balance == 0 {
		c.emitWithdrawal(kind, presaleMeta.PublicKey, destMeta.PublicKey, asset, 0)
		return nil
	}
	switch kind {
	case treasuryLocked:
		p.LockedWithdrawn, err = safemath.Add(p.LockedWithdrawn, balance)
	case treasuryDev:
		p.DevWithdrawn, err = safemath.Add(p.DevWithdrawn, balance)
	}
	if err != nil {
		return calcErr(err, "withdrawn")
	}
	if err := c.saveEntity(presaleMeta, p); err != nil {
		return err
	}
	if _, err := c.tokens.Transfer(asset, tokenMeta.PublicKey, destMeta.PublicKey, walletMeta.PublicKey, balance); err != nil {
		return tokenErr(err, "withdraw")
	}
	c.emitWithdrawal(kind, presaleMeta.PublicKey, destMeta.PublicKey, asset, balance)
	return nil
}
