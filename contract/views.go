package contract

import (
	"github.com/CosmWasm/tinyjson"
	"github.com/CosmWasm/tinyjson/jwriter"
	"github.com/gagliardetto/solana-go"

	"launchpad/sdk"
)

// -----------------------------------------------------------------------------
// Read-only loaders
// -----------------------------------------------------------------------------

// loadView reads an entity without going through an instruction. Nothing is written.
func loadView(st sdk.State, programID, addr solana.PublicKey, v entity) error {
	acc, err := sdk.LoadAccount(st, addr)
	if err != nil {
		return err
	}
	if acc == nil {
		return fail(ErrUninitializedAccount, "%s", addr)
	}
	if !acc.Owner.Equals(programID) {
		return fail(ErrInvalidAccountOwner, "%s owned by %s", addr, acc.Owner)
	}
	return decodeEntity(acc.Data, v)
}

func LoadMintConfig(st sdk.State, programID, mint solana.PublicKey) (*MintConfig, error) {
	addr, _, err := FindMintConfigAddress(programID, mint)
	if err != nil {
		return nil, err
	}
	v := new(MintConfig)
	return v, loadView(st, programID, addr, v)
}

func LoadPresale(st sdk.State, programID, mint solana.PublicKey) (*PresaleState, error) {
	addr, _, err := FindPresaleAddress(programID, mint)
	if err != nil {
		return nil, err
	}
	v := new(PresaleState)
	return v, loadView(st, programID, addr, v)
}

func LoadVesting(st sdk.State, programID, mint solana.PublicKey) (*VestingState, error) {
	addr, _, err := FindVestingAddress(programID, mint)
	if err != nil {
		return nil, err
	}
	v := new(VestingState)
	return v, loadView(st, programID, addr, v)
}

func LoadController(st sdk.State, programID, mint solana.PublicKey) (*AutonomousController, error) {
	addr, _, err := FindControllerAddress(programID, mint)
	if err != nil {
		return nil, err
	}
	v := new(AutonomousController)
	return v, loadView(st, programID, addr, v)
}

func LoadBurnTreasury(st sdk.State, programID, mint solana.PublicKey) (*BurnTreasury, error) {
	addr, _, err := FindBurnTreasuryAddress(programID, mint)
	if err != nil {
		return nil, err
	}
	v := new(BurnTreasury)
	return v, loadView(st, programID, addr, v)
}

func LoadTimelock(st sdk.State, programID solana.PublicKey) (*UpgradeTimelock, error) {
	addr, _, err := FindTimelockAddress(programID)
	if err != nil {
		return nil, err
	}
	v := new(UpgradeTimelock)
	return v, loadView(st, programID, addr, v)
}

// -----------------------------------------------------------------------------
// JSON views
// -----------------------------------------------------------------------------

// jsonObject writes comma separated fields, first is set on the first call.
type jsonObject struct {
	w     *jwriter.Writer
	first bool
}

func openObject(w *jwriter.Writer) *jsonObject {
	w.RawByte('{')
	return &jsonObject{w: w, first: true}
}

func (o *jsonObject) key(name string) *jwriter.Writer {
	if !o.first {
		o.w.RawByte(',')
	}
	o.first = false
	o.w.String(name)
	o.w.RawByte(':')
	return o.w
}

func (o *jsonObject) str(name, v string) { o.key(name).String(v) }
func (o *jsonObject) key58(name string, k solana.PublicKey) { o.key(name).String(k.String()) }
func (o *jsonObject) u64(name string, v uint64) { o.key(name).Uint64(v) }
func (o *jsonObject) i64(name string, v int64) { o.key(name).Int64(v) }
func (o *jsonObject) boolean(name string, v bool) { o.key(name).Bool(v) }
func (o *jsonObject) close() { o.w.RawByte('}') }

func (m *MintConfig) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w)
	o.key58("authority", m.Authority)
	o.key58("mint", m.Mint)
	o.str("name", m.Name)
	o.str("symbol", m.Symbol)
	o.str("uri", m.URI)
	o.u64("decimals", uint64(m.Decimals))
	o.u64("transferFeeBps", uint64(m.TransferFeeBps))
	o.u64("maxFee", m.MaxFee)
	o.close()
}

// PresaleView renders a presale with every contribution's status at Now.
type PresaleView struct {
	State *PresaleState
	Now   int64
}

func (v PresaleView) MarshalTinyJSON(w *jwriter.Writer) {
	p := v.State
	o := openObject(w)
	o.key58("authority", p.Authority)
	o.key58("mint", p.Mint)
	o.key58("lockedTreasury", p.LockedTreasury)
	o.key58("devTreasury", p.DevTreasury)
	o.i64("startTime", p.StartTime)
	o.i64("endTime", p.EndTime)
	o.u64("pricePerToken", p.PricePerToken)
	o.u64("softCap", p.SoftCap)
	o.u64("hardCap", p.HardCap)
	o.u64("minPurchase", p.MinPurchase)
	o.u64("maxPurchase", p.MaxPurchase)
	o.u64("totalRaised", p.TotalRaised)
	o.u64("totalLocked", p.TotalLocked)
	o.u64("totalDev", p.TotalDev)
	o.u64("totalTokensSold", p.TotalTokensSold)
	o.u64("totalRefunded", p.TotalRefunded)
	o.u64("totalDevRefunded", p.TotalDevRefunded)
	o.boolean("isActive", p.IsActive)
	o.boolean("hasEnded", p.HasEnded)
	o.boolean("softCapReached", p.SoftCapReached)
	o.boolean("hardCapReached", p.HardCapReached)
	o.boolean("devFundsRefundable", p.DevFundsRefundable)
	o.boolean("launched", p.Launched)
	o.i64("launchTime", p.LaunchTime)
	o.i64("refundStart", p.RefundStart)
	o.i64("refundDeadline", p.RefundDeadline)
	o.i64("devRefundStart", p.DevRefundStart)
	o.i64("devRefundDeadline", p.DevRefundDeadline)
	o.u64("maxContributions", uint64(p.MaxContributions))

	aw := o.key("acceptedAssets")
	aw.RawByte('[')
	for i, a := range p.AcceptedAssets {
		if i > 0 {
			aw.RawByte(',')
		}
		aw.String(a.String())
	}
	aw.RawByte(']')

	cw := o.key("contributions")
	cw.RawByte('[')
	for i := range p.Contributions {
		if i > 0 {
			cw.RawByte(',')
		}
		ct := &p.Contributions[i]
		co := openObject(cw)
		co.key58("buyer", ct.Buyer)
		co.key58("asset", ct.Asset)
		co.u64("amount", ct.Amount)
		co.u64("tokenAmount", ct.TokenAmount)
		co.u64("locked", ct.LockedAmount)
		co.u64("dev", ct.DevAmount)
		co.i64("timestamp", ct.Timestamp)
		co.str("status", ct.Status(p, v.Now).String())
		co.close()
	}
	cw.RawByte(']')
	o.close()
}

// VestingView adds the releasable amount per beneficiary at Now.
type VestingView struct {
	State *VestingState
	Now   int64
}

func (v VestingView) MarshalTinyJSON(w *jwriter.Writer) {
	s := v.State
	o := openObject(w)
	o.key58("authority", s.Authority)
	o.key58("mint", s.Mint)
	o.u64("totalTokens", s.TotalTokens)
	o.u64("totalAllocated", s.TotalAllocated)
	o.u64("totalReleased", s.TotalReleased)
	o.i64("startTime", s.StartTime)
	o.i64("releaseInterval", s.ReleaseInterval)
	o.u64("numReleases", uint64(s.NumReleases))
	bw := o.key("beneficiaries")
	bw.RawByte('[')
	for i := range s.Beneficiaries {
		if i > 0 {
			bw.RawByte(',')
		}
		b := &s.Beneficiaries[i]
		releasable, _ := s.Releasable(b, v.Now)
		bo := openObject(bw)
		bo.key58("id", b.ID)
		bo.u64("totalAmount", b.TotalAmount)
		bo.u64("released", b.Released)
		bo.u64("releasable", releasable)
		bo.i64("lastReleaseTime", b.LastReleaseTime)
		bo.close()
	}
	bw.RawByte(']')
	o.close()
}

func (ctl *AutonomousController) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w)
	o.key58("authority", ctl.Authority)
	o.key58("mint", ctl.Mint)
	o.u64("currentSupply", ctl.CurrentSupply)
	o.u64("currentPrice", ctl.CurrentPrice)
	o.i64("lastGrowthBps", ctl.LastGrowthBps)
	o.i64("lastPriceUpdate", ctl.LastPriceUpdate)
	o.i64("lastMintTime", ctl.LastMintTime)
	o.i64("lastBurnTime", ctl.LastBurnTime)
	o.str("pending", ctl.Pending.String())
	o.i64("pendingGrowthBps", ctl.PendingGrowthBps)
	o.i64("observationTime", ctl.ObservationTime)
	o.u64("observationCount", ctl.ObservationCount)
	o.u64("totalMinted", ctl.TotalMinted)
	o.u64("totalBurned", ctl.TotalBurned)
	o.key58("burnTreasury", ctl.BurnTreasury)
	o.u64("highSupplyThreshold", ctl.Params.HighSupplyThreshold)
	o.u64("supplyFloor", ctl.Params.SupplyFloor)
	o.key58("oracleProgram", ctl.Params.OracleProgram)
	o.key58("mintRecipient", ctl.Params.MintRecipient)
	o.close()
}

func (bt *BurnTreasury) MarshalTinyJSON(w *jwriter.Writer) {
	o := openObject(w)
	o.key58("controller", bt.Controller)
	o.key58("mint", bt.Mint)
	o.key58("tokenAccount", bt.TokenAccount)
	o.u64("totalDeposited", bt.TotalDeposited)
	o.u64("totalBurned", bt.TotalBurned)
	o.close()
}

// TimelockView adds the derived status at Now.
type TimelockView struct {
	State *UpgradeTimelock
	Now   int64
}

func (v TimelockView) MarshalTinyJSON(w *jwriter.Writer) {
	t := v.State
	o := openObject(w)
	o.key58("authority", t.Authority)
	o.i64("delay", t.Delay)
	o.i64("proposedTime", t.ProposedTime)
	o.boolean("pending", t.Pending)
	o.boolean("permanentlyLocked", t.PermanentlyLocked)
	o.u64("version", uint64(t.Version))
	o.key58("currentBuffer", t.CurrentBuffer)
	o.i64("lastUpgradeTime", t.LastUpgradeTime)
	o.str("status", t.Status(v.Now).String())
	o.close()
}

// MarshalView renders any of the views above.
func MarshalView(v tinyjson.Marshaler) ([]byte, error) {
	return tinyjson.Marshal(v)
}
