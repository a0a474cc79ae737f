package contract_test

import (
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/contract"
	"launchpad/pkg/pricefeed"
	"launchpad/pkg/token2022"
)

// cents is a USD price in cents at the 8 decimals feeds publish with.
func cents(n int64) int64 {
	return n * 1_000_000
}

// setupController mints supply whole tokens to a holder and starts a controller at 1 USD.
func (h *harness) setupController(supply, floor uint64) (holder solana.PublicKey) {
	h.t.Helper()
	h.initToken()
	holder = solana.NewWallet().PublicKey()
	h.seedSupply(holder, tokens(supply))
	h.CallContract(contract.NewInitializeAutonomousControllerInstruction(h.programID, h.mint, h.authority, contract.ControllerParams{
		InitialPrice:        1_000_000,
		HighSupplyThreshold: tokens(5_000_000),
		SupplyFloor:         tokens(floor),
		OracleProgram:       h.oracle,
	}), h.authority)
	return holder
}

// observe publishes price on a fresh feed at the current time and feeds it to the controller.
func (h *harness) observe(price int64) *contract.Receipt {
	h.t.Helper()
	feed := solana.NewWallet().PublicKey()
	h.publish(feed, price, h.now)
	return h.CallContract(contract.NewUpdateOraclePriceInstruction(h.programID, h.mint, feed))
}

func (h *harness) mintIx() *contract.Instruction {
	return contract.NewExecuteAutonomousMintInstruction(h.programID, h.mint, h.authority)
}

func (h *harness) burnIx() *contract.Instruction {
	return contract.NewExecuteAutonomousBurnInstruction(h.programID, h.mint)
}

// =================================
// ===== Oracle                =====
// =================================

// TestPriceManipulationRejected checks the 60% jump flow so we dont break it again: the
// update is refused and supply and price stay put.
func TestPriceManipulationRejected(t *testing.T) {
	h := newHarness(t)
	h.setupController(1_000_000, 100_000)
	feed := solana.NewWallet().PublicKey()
	h.publish(feed, cents(160), h.now)

	h.expectErr(contract.ErrPriceManipulation, contract.NewUpdateOraclePriceInstruction(h.programID, h.mint, feed))
	ctl := h.controller()
	assert.EqualValues(t, 1_000_000, ctl.CurrentPrice)
	assert.Zero(t, ctl.ObservationCount)
	assert.Equal(t, contract.SupplyActionNone, ctl.Pending)
	assert.Equal(t, tokens(1_000_000), h.supply())
	h.expectErr(contract.ErrNoPendingAction, h.mintIx())
}

// TestPriceChangeBoundIsInclusive checks exactly 50% still passes.
func TestPriceChangeBoundIsInclusive(t *testing.T) {
	h := newHarness(t)
	h.setupController(1_000_000, 100_000)
	h.observe(cents(150))

	ctl := h.controller()
	assert.EqualValues(t, 1_500_000, ctl.CurrentPrice)
	assert.EqualValues(t, 5000, ctl.LastGrowthBps)
	assert.Equal(t, contract.SupplyActionMint, ctl.Pending)
}

// TestOracleFeedChecks runs single bad feeds through the update.
func TestOracleFeedChecks(t *testing.T) {
	h := newHarness(t)
	h.setupController(1_000_000, 100_000)
	h.at(h.start + contract.Day)
	update := func(feed solana.PublicKey) *contract.Instruction {
		return contract.NewUpdateOraclePriceInstruction(h.programID, h.mint, feed)
	}
	write := func(owner solana.PublicKey, p pricefeed.PriceAccount) solana.PublicKey {
		feed := solana.NewWallet().PublicKey()
		require.NoError(t, pricefeed.Publish(h.st, feed, owner, p))
		return feed
	}
	good := pricefeed.PriceAccount{Price: cents(101), Conf: 1000, Expo: -8, PublishTime: h.now, Status: pricefeed.StatusTrading}

	wrongOwner := write(solana.NewWallet().PublicKey(), good)
	h.expectErr(contract.ErrInvalidAccountOwner, update(wrongOwner))

	halted := good
	halted.Status = pricefeed.StatusHalted
	h.expectErr(contract.ErrInvalidOracleData, update(write(h.oracle, halted)))

	negative := good
	negative.Price = -5
	h.expectErr(contract.ErrInvalidOracleData, update(write(h.oracle, negative)))

	wide := good
	wide.Conf = uint64(good.Price) / 10
	h.expectErr(contract.ErrInvalidOracleData, update(write(h.oracle, wide)))

	future := good
	future.PublishTime = h.now + contract.OracleMaxClockSkew + 1
	h.expectErr(contract.ErrInvalidOracleData, update(write(h.oracle, future)))

	stale := good
	stale.PublishTime = h.now - contract.FallbackStandardMaxAge - 1
	h.expectErr(contract.ErrStaleOracleData, update(write(h.oracle, stale)))

	h.expectErr(contract.ErrInvalidOracleData, update(solana.NewWallet().PublicKey()))

	h.CallContract(update(write(h.oracle, good)))
	assert.EqualValues(t, 1_010_000, h.controller().CurrentPrice)
}

// TestOracleBackupFeed checks a failing primary falls through to the backup and the
// skip shows up in the receipt.
func TestOracleBackupFeed(t *testing.T) {
	h := newHarness(t)
	h.setupController(1_000_000, 100_000)
	h.at(h.start + contract.Day)

	primary := solana.NewWallet().PublicKey()
	backup := solana.NewWallet().PublicKey()
	h.publish(primary, cents(102), h.now-5*contract.Hour)
	h.publish(backup, cents(103), h.now)

	r := h.CallContract(contract.NewUpdateOraclePriceInstruction(h.programID, h.mint, primary, backup))
	require.Len(t, r.Logs, 2)
	assert.True(t, strings.HasPrefix(r.Logs[0], "cf|feed:"+primary.String()))
	assert.Contains(t, r.Logs[0], "StaleOracleData")
	assert.True(t, strings.HasPrefix(r.Logs[1], "cu|"))
	assert.EqualValues(t, 1_030_000, h.controller().CurrentPrice)
}

// TestOracleAllFeedsFail checks the primary's reason is what the caller gets back.
func TestOracleAllFeedsFail(t *testing.T) {
	h := newHarness(t)
	h.setupController(1_000_000, 100_000)
	h.at(h.start + contract.Day)

	primary := solana.NewWallet().PublicKey()
	backup := solana.NewWallet().PublicKey()
	h.publish(primary, cents(102), h.now-5*contract.Hour)
	require.NoError(t, pricefeed.Publish(h.st, backup, solana.NewWallet().PublicKey(), pricefeed.PriceAccount{
		Price: cents(102), Expo: -8, PublishTime: h.now, Status: pricefeed.StatusTrading,
	}))
	h.expectErr(contract.ErrStaleOracleData, contract.NewUpdateOraclePriceInstruction(h.programID, h.mint, primary, backup))
}

// =================================
// ===== Autonomous mint       =====
// =================================

// TestAutonomousMint checks the 8% growth flow so we dont break it again: one mint of 5%
// of supply to the recipient, then nothing left to execute.
func TestAutonomousMint(t *testing.T) {
	h := newHarness(t)
	h.setupController(1_000_000, 100_000)
	h.at(h.start + 10*60)

	r := h.observe(cents(108))
	assert.Contains(t, r.Logs[0], "|act:mint")
	ctl := h.controller()
	assert.Equal(t, contract.SupplyActionMint, ctl.Pending)
	assert.EqualValues(t, 800, ctl.PendingGrowthBps)

	h.CallContract(h.mintIx())
	assert.Equal(t, tokens(1_050_000), h.supply())
	assert.Equal(t, tokens(50_000), h.tokenBalance(h.authority))

	ctl = h.controller()
	assert.Equal(t, contract.SupplyActionNone, ctl.Pending)
	assert.Equal(t, tokens(50_000), ctl.TotalMinted)
	assert.Equal(t, tokens(1_050_000), ctl.CurrentSupply)
	assert.Equal(t, h.now, ctl.LastMintTime)

	h.expectErr(contract.ErrNoPendingAction, h.mintIx())
	h.expectErr(contract.ErrNoPendingAction, h.burnIx())
}

// TestAutonomousMintRespectsInterval checks two mints need MinActionInterval between them.
func TestAutonomousMintRespectsInterval(t *testing.T) {
	h := newHarness(t)
	h.setupController(1_000_000, 100_000)
	first := h.start + contract.Hour
	h.at(first).observe(cents(108))
	h.CallContract(h.mintIx())

	h.at(first + 10*60).observe(116_640_000)
	assert.Equal(t, contract.SupplyActionMint, h.controller().Pending)
	h.expectErr(contract.ErrTooEarlyForExecution, h.mintIx())

	h.CallContractAt(first+contract.Hour, h.mintIx())
	assert.EqualValues(t, 2, h.controller().ObservationCount)
}

// TestAutonomousMintNeedsFreshObservation checks a pending action goes stale with its reading.
func TestAutonomousMintNeedsFreshObservation(t *testing.T) {
	h := newHarness(t)
	h.setupController(1_000_000, 100_000)
	h.observe(cents(108))

	h.at(h.start + contract.Hour + 1)
	h.expectErr(contract.ErrStaleOracleData, h.mintIx())
	assert.Equal(t, tokens(1_000_000), h.supply())
}

// TestOldReadingDoesNotArm checks a reading past the strict age moves the price but arms nothing.
func TestOldReadingDoesNotArm(t *testing.T) {
	h := newHarness(t)
	h.setupController(1_000_000, 100_000)
	h.at(h.start + contract.Day)
	feed := solana.NewWallet().PublicKey()
	h.publish(feed, cents(120), h.now-2*contract.Hour)
	h.CallContract(contract.NewUpdateOraclePriceInstruction(h.programID, h.mint, feed))

	ctl := h.controller()
	assert.EqualValues(t, 1_200_000, ctl.CurrentPrice)
	assert.EqualValues(t, 2000, ctl.LastGrowthBps)
	assert.Equal(t, contract.SupplyActionNone, ctl.Pending)
	h.expectErr(contract.ErrNoPendingAction, h.mintIx())
}

// =================================
// ===== Autonomous burn       =====
// =================================

// setupBurnTreasury opens the treasury and moves deposit whole tokens into it from holder.
func (h *harness) setupBurnTreasury(holder solana.PublicKey, deposit uint64) solana.PublicKey {
	h.t.Helper()
	h.CallContract(contract.NewInitializeBurnTreasuryInstruction(h.programID, h.mint, h.authority), h.authority)
	h.CallContract(contract.NewDepositToBurnTreasuryInstruction(h.programID, h.mint, holder, tokens(deposit)), holder)
	bt, _, err := contract.FindBurnTreasuryAddress(h.programID, h.mint)
	require.NoError(h.t, err)
	return bt
}

// TestAutonomousBurnStopsAtFloor checks the decline flow so we dont break it again: the
// burn is clipped to the floor and comes only out of the burn treasury.
func TestAutonomousBurnStopsAtFloor(t *testing.T) {
	h := newHarness(t)
	holder := h.setupController(1_000_000, 990_000)
	bt := h.setupBurnTreasury(holder, 50_000)

	h.at(h.start + contract.Hour).observe(cents(85))
	assert.Equal(t, contract.SupplyActionBurn, h.controller().Pending)
	h.expectErr(contract.ErrNoPendingAction, h.mintIx())

	h.CallContract(h.burnIx())
	assert.Equal(t, tokens(990_000), h.supply())
	assert.Equal(t, tokens(40_000), h.tokenBalance(bt))
	assert.Equal(t, tokens(950_000), h.tokenBalance(holder))

	btState, err := contract.LoadBurnTreasury(h.st, h.programID, h.mint)
	require.NoError(t, err)
	assert.Equal(t, tokens(50_000), btState.TotalDeposited)
	assert.Equal(t, tokens(10_000), btState.TotalBurned)
	assert.Equal(t, tokens(10_000), h.controller().TotalBurned)

	// at the floor a further decline burns nothing
	h.at(h.start + 3*contract.Hour).observe(cents(80))
	assert.Equal(t, contract.SupplyActionBurn, h.controller().Pending)
	r := h.CallContract(h.burnIx())
	assert.True(t, strings.HasSuffix(r.Logs[len(r.Logs)-1], "|am:0|sup:"+formatUint(tokens(990_000))))
	assert.Equal(t, tokens(990_000), h.supply())
	assert.Equal(t, contract.SupplyActionNone, h.controller().Pending)
}

// TestAutonomousBurnLimitedByTreasury checks the burn never exceeds what was deposited.
func TestAutonomousBurnLimitedByTreasury(t *testing.T) {
	h := newHarness(t)
	holder := h.setupController(1_000_000, 100_000)
	h.setupBurnTreasury(holder, 1_000)

	h.at(h.start + contract.Hour).observe(cents(93))
	h.CallContract(h.burnIx())
	assert.Equal(t, tokens(999_000), h.supply())
}

// TestAutonomousBurnSourceIsFixed checks a burn pointed at any other token account is refused.
func TestAutonomousBurnSourceIsFixed(t *testing.T) {
	h := newHarness(t)
	holder := h.setupController(1_000_000, 100_000)
	h.setupBurnTreasury(holder, 1_000)
	h.at(h.start + contract.Hour).observe(cents(85))

	ix := h.burnIx()
	data, err := ix.Data()
	require.NoError(t, err)
	metas := append([]*solana.AccountMeta{}, ix.Accounts()...)
	metas[3] = solana.Meta(token2022.MustAssociatedTokenAddress(holder, h.mint)).WRITE()
	forged, err := contract.DecodeInstruction(h.programID, metas, data)
	require.NoError(t, err)

	h.expectErr(contract.ErrUnauthorizedBurnSource, forged)
	assert.Equal(t, tokens(1_000_000), h.supply())
}

// TestBurnTreasurySetup checks the treasury can only be opened once and deposits need an amount.
func TestBurnTreasurySetup(t *testing.T) {
	h := newHarness(t)
	holder := h.setupController(1_000, 100)

	h.expectErr(contract.ErrNoPendingAction, h.burnIx())
	h.setupBurnTreasury(holder, 10)
	h.expectErr(contract.ErrAlreadyInitialized,
		contract.NewInitializeBurnTreasuryInstruction(h.programID, h.mint, h.authority), h.authority)
	h.expectErr(contract.ErrInvalidParameters,
		contract.NewDepositToBurnTreasuryInstruction(h.programID, h.mint, holder, 0), holder)
	h.expectErr(contract.ErrUnauthorized,
		contract.NewDepositToBurnTreasuryInstruction(h.programID, h.mint, holder, 1))
}

// TestInitializeControllerValidation checks inconsistent params never make it into state.
func TestInitializeControllerValidation(t *testing.T) {
	h := newHarness(t)
	h.initToken()
	ix := func(p contract.ControllerParams) *contract.Instruction {
		return contract.NewInitializeAutonomousControllerInstruction(h.programID, h.mint, h.authority, p)
	}
	h.expectErr(contract.ErrInvalidParameters, ix(contract.ControllerParams{}), h.authority)
	h.expectErr(contract.ErrInvalidParameters, ix(contract.ControllerParams{
		OracleProgram: h.oracle, SupplyFloor: tokens(10), HighSupplyThreshold: tokens(5),
	}), h.authority)
	h.expectErr(contract.ErrInvalidParameters, ix(contract.ControllerParams{
		OracleProgram: h.oracle, StrictMaxAge: 5 * contract.Hour, StandardMaxAge: 4 * contract.Hour,
	}), h.authority)
	intruder := h.newWallet()
	h.expectErr(contract.ErrUnauthorized, contract.NewInitializeAutonomousControllerInstruction(h.programID, h.mint, intruder,
		contract.ControllerParams{OracleProgram: h.oracle}), intruder)

	h.CallContract(ix(contract.ControllerParams{OracleProgram: h.oracle}), h.authority)
	ctl := h.controller()
	assert.Equal(t, tokens(contract.FallbackSupplyFloorTokens), ctl.Params.SupplyFloor)
	assert.Equal(t, tokens(contract.FallbackHighSupplyThresholdTokens), ctl.Params.HighSupplyThreshold)
	assert.Equal(t, h.authority, ctl.Params.MintRecipient)
	assert.EqualValues(t, contract.FallbackMaxPriceChangeBps, ctl.Params.MaxPriceChangeBps)
}
