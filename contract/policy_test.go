package contract

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultParams(t *testing.T) ControllerParams {
	t.Helper()
	p := ControllerParams{OracleProgram: solana.NewWallet().PublicKey()}
	require.NoError(t, normalizeControllerParams(&p, 6))
	return p
}

// TestDecideTiers pins every tier boundary of the supply policy.
func TestDecideTiers(t *testing.T) {
	p := defaultParams(t)
	low := p.HighSupplyThreshold / 2
	high := p.HighSupplyThreshold

	cases := []struct {
		name   string
		growth int64
		supply uint64
		action SupplyAction
		rate   uint64
	}{
		{"flat", 0, low, SupplyActionNone, 0},
		{"below mint tier", 499, low, SupplyActionNone, 0},
		{"mint tier starts", 500, low, SupplyActionMint, 500},
		{"high tier is exclusive", 1000, low, SupplyActionMint, 500},
		{"high tier", 1001, low, SupplyActionMint, 1000},
		{"above threshold no extreme", 2999, high, SupplyActionNone, 0},
		{"above threshold extreme", 3000, high, SupplyActionMint, 200},
		{"below burn tier", -499, low, SupplyActionNone, 0},
		{"burn tier starts", -500, low, SupplyActionBurn, 500},
		{"burn high is exclusive", -1000, low, SupplyActionBurn, 500},
		{"burn high", -1001, low, SupplyActionBurn, 1000},
		{"burn ignores threshold", -1500, high, SupplyActionBurn, 1000},
	}
	for _, tc := range cases {
		action, rate := p.Decide(tc.growth, tc.supply)
		assert.Equal(t, tc.action, action, tc.name)
		assert.Equal(t, tc.rate, rate, tc.name)
	}
}

// TestNormalizeControllerParams checks zero values take the fallbacks scaled by decimals.
func TestNormalizeControllerParams(t *testing.T) {
	p := defaultParams(t)
	assert.EqualValues(t, 5_000_000_000_000_000, p.HighSupplyThreshold)
	assert.EqualValues(t, 1_000_000_000_000_000, p.SupplyFloor)
	assert.Equal(t, FallbackStrictMaxAge, p.StrictMaxAge)
	assert.Equal(t, FallbackStandardMaxAge, p.StandardMaxAge)

	bad := ControllerParams{OracleProgram: solana.NewWallet().PublicKey(), MintLowGrowthBps: 2000, MintHighGrowthBps: 1000}
	assert.ErrorIs(t, normalizeControllerParams(&bad, 6), ErrInvalidParameters)

	rate := ControllerParams{OracleProgram: solana.NewWallet().PublicKey(), BurnHighRateBps: 10_001}
	assert.ErrorIs(t, normalizeControllerParams(&rate, 6), ErrInvalidParameters)

	age := ControllerParams{OracleProgram: solana.NewWallet().PublicKey(), StandardMaxAge: 2 * OracleHardMaxAge}
	assert.ErrorIs(t, normalizeControllerParams(&age, 6), ErrInvalidParameters)
}

// TestVestedAmount checks the linear schedule including the remainder on the last release.
func TestVestedAmount(t *testing.T) {
	v := &VestingState{StartTime: 1000, ReleaseInterval: 10, NumReleases: 4}
	cases := []struct {
		now  int64
		want uint64
	}{
		{999, 0},
		{1000, 0},
		{1009, 0},
		{1010, 25},
		{1029, 50},
		{1039, 75},
		{1040, 103},
		{5000, 103},
	}
	for _, tc := range cases {
		got, err := v.VestedAmount(103, tc.now)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "now=%d", tc.now)
	}

	b := &VestingBeneficiary{TotalAmount: 103, Released: 50}
	r, err := v.Releasable(b, 1035)
	require.NoError(t, err)
	assert.EqualValues(t, 25, r)
	r, err = v.Releasable(b, 1015)
	require.NoError(t, err)
	assert.Zero(t, r)
}

func TestSplitPayment(t *testing.T) {
	for _, amount := range []uint64{0, 1, 2, 99, 100_000_001} {
		locked, dev := splitPayment(amount)
		assert.Equal(t, amount, locked+dev)
		assert.LessOrEqual(t, dev-locked, uint64(1))
	}
}

// TestTokensForPayment checks pricing rounds down and never overflows silently.
func TestTokensForPayment(t *testing.T) {
	got, err := tokensForPayment(100_000_000, 30_000, 6)
	require.NoError(t, err)
	assert.EqualValues(t, 3_333_333_333, got)

	got, err = tokensForPayment(1_000_000, 1_000_000, 9)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000_000_000, got)

	_, err = tokensForPayment(1, 0, 6)
	assert.Error(t, err)
}

// TestTimelockStatus checks the derived timelock states.
func TestTimelockStatus(t *testing.T) {
	tl := &UpgradeTimelock{Delay: Day}
	assert.Equal(t, TimelockNoProposal, tl.Status(0))
	tl.Pending, tl.ProposedTime = true, 100
	assert.Equal(t, TimelockProposed, tl.Status(99))
	assert.Equal(t, TimelockExecutable, tl.Status(100))
	tl.PermanentlyLocked = true
	assert.Equal(t, TimelockPermanentlyLocked, tl.Status(100))
}
