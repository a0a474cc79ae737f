package contract

import (
	"strconv"

	"github.com/gagliardetto/solana-go"
)

// Events are terse "code|k:v" lines so indexers can follow the program without
// diffing account data. They land in the receipt in emission order.

// -----------------------------------------------------------------------------
// Token
// -----------------------------------------------------------------------------

// emitTokenInitialized pings once per mint so explorers can pick up the new token.
func (c *invocation) emitTokenInitialized(mint, authority solana.PublicKey, decimals uint8, feeBps uint16) {
	c.emitf("ti|mint:%s|by:%s|d:%d|fee:%d", mint, authority, decimals, feeBps)
}

func (c *invocation) emitTransferFeeSet(mint solana.PublicKey, bps uint16, maxFee uint64) {
	c.emitf("tf|mint:%s|fee:%d|max:%d", mint, bps, maxFee)
}

func (c *invocation) emitMetadataUpdated(mint solana.PublicKey, cfg *MintConfig) {
	c.emitf("tm|mint:%s|n:%s|s:%s", mint, cfg.Name, cfg.Symbol)
}

// -----------------------------------------------------------------------------
// Presale
// -----------------------------------------------------------------------------

func (c *invocation) emitPresaleInitialized(presale solana.PublicKey, p *PresaleState) {
	c.emitf("pi|id:%s|mint:%s|start:%d|end:%d|price:%d", presale, p.Mint, p.StartTime, p.EndTime, p.PricePerToken)
}

func (c *invocation) emitAssetAdded(presale, asset solana.PublicKey) {
	c.emitf("pa|id:%s|as:%s", presale, asset)
}

// emitContribution carries the exact split so treasury balances can be replayed from logs only.
func (c *invocation) emitContribution(presale solana.PublicKey, ct *Contribution, amount, tokens, locked, dev uint64) {
	c.emitf("pb|id:%s|by:%s|as:%s|am:%d|tok:%d|lk:%d|dv:%d", presale, ct.Buyer, ct.Asset, amount, tokens, locked, dev)
}

func (c *invocation) emitPresaleEnded(presale solana.PublicKey, p *PresaleState) {
	c.emitf("pe|id:%s|raised:%d|soft:%s", presale, p.TotalRaised, strconv.FormatBool(p.SoftCapReached))
}

func (c *invocation) emitLaunched(presale solana.PublicKey, at int64) {
	c.emitf("pl|id:%s|at:%s", presale, strconv.FormatInt(at, 10))
}

func (c *invocation) emitCapacityExpanded(presale solana.PublicKey, capacity uint32) {
	c.emitf("px|id:%s|cap:%d", presale, capacity)
}

func (c *invocation) emitTokensClaimed(presale, buyer solana.PublicKey, amount uint64) {
	c.emitf("pc|id:%s|by:%s|tok:%d", presale, buyer, amount)
}

// -----------------------------------------------------------------------------
// Treasury
// -----------------------------------------------------------------------------

// emitRefund uses "rr" for the locked half and "rd" for the dev half.
func (c *invocation) emitRefund(kind treasuryKind, presale, buyer, asset solana.PublicKey, amount uint64) {
	code := "rr"
	if kind == treasuryDev {
		code = "rd"
	}
	c.emitf("%s|id:%s|by:%s|as:%s|am:%d", code, presale, buyer, asset, amount)
}

func (c *invocation) emitWithdrawal(kind treasuryKind, presale, to, asset solana.PublicKey, amount uint64) {
	code := "wl"
	if kind == treasuryDev {
		code = "wd"
	}
	c.emitf("%s|id:%s|to:%s|as:%s|am:%d", code, presale, to, asset, amount)
}

// -----------------------------------------------------------------------------
// Vesting
// -----------------------------------------------------------------------------

func (c *invocation) emitVestingInitialized(vesting solana.PublicKey, v *VestingState) {
	c.emitf("vi|id:%s|total:%d|start:%d|int:%d|n:%d", vesting, v.TotalTokens, v.StartTime, v.ReleaseInterval, v.NumReleases)
}

func (c *invocation) emitBeneficiaryAdded(vesting, beneficiary solana.PublicKey, amount uint64) {
	c.emitf("vb|id:%s|ben:%s|am:%d", vesting, beneficiary, amount)
}

// emitReleased is also written for zero releases so schedulers see the crank ran.
func (c *invocation) emitReleased(vesting, beneficiary solana.PublicKey, amount uint64) {
	c.emitf("vr|id:%s|ben:%s|am:%d", vesting, beneficiary, amount)
}

// -----------------------------------------------------------------------------
// Supply controller
// -----------------------------------------------------------------------------

func (c *invocation) emitControllerInitialized(controller, mint solana.PublicKey) {
	c.emitf("ci|id:%s|mint:%s", controller, mint)
}

func (c *invocation) emitPriceUpdated(controller, feed solana.PublicKey, ctl *AutonomousController) {
	c.emitf("cu|id:%s|feed:%s|p:%d|g:%d|act:%s", controller, feed, ctl.CurrentPrice, ctl.LastGrowthBps, ctl.Pending)
}

// emitFeedRejected notes a feed that was skipped in favour of a backup.
func (c *invocation) emitFeedRejected(feed solana.PublicKey, err error) {
	reason := err.Error()
	if code, ok := CodeOf(err); ok {
		reason = code.Name()
	}
	c.emitf("cf|feed:%s|err:%s", feed, reason)
}

func (c *invocation) emitSupplyChanged(action SupplyAction, controller solana.PublicKey, amount, supply uint64) {
	code := "cm"
	if action == SupplyActionBurn {
		code = "cb"
	}
	c.emitf("%s|id:%s|am:%d|sup:%d", code, controller, amount, supply)
}

func (c *invocation) emitBurnTreasuryInitialized(treasury, controller solana.PublicKey) {
	c.emitf("bi|id:%s|ctl:%s", treasury, controller)
}

func (c *invocation) emitBurnDeposit(treasury, depositor solana.PublicKey, amount uint64) {
	c.emitf("bd|id:%s|by:%s|am:%d", treasury, depositor, amount)
}

// -----------------------------------------------------------------------------
// Upgrade timelock
// -----------------------------------------------------------------------------

func (c *invocation) emitTimelockInitialized(timelock solana.PublicKey, delay int64) {
	c.emitf("ui|id:%s|delay:%d", timelock, delay)
}

// emitUpgradeProposed logs the eta so runners can queue the execute call.
func (c *invocation) emitUpgradeProposed(timelock solana.PublicKey, eta int64) {
	c.emitf("up|id:%s|ready:%s", timelock, strconv.FormatInt(eta, 10))
}

func (c *invocation) emitUpgradeExecuted(timelock, buffer solana.PublicKey, version uint32) {
	c.emitf("ux|id:%s|buf:%s|v:%d", timelock, buffer, version)
}

func (c *invocation) emitUpgradeCancelled(timelock solana.PublicKey) {
	c.emitf("uc|id:%s", timelock)
}

func (c *invocation) emitUpgradesLocked(timelock solana.PublicKey) {
	c.emitf("ul|id:%s", timelock)
}
