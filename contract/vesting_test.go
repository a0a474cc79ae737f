package contract_test

import (
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/contract"
)

// setupVesting creates a 12 month schedule starting at h.start with one beneficiary
// holding total tokens.
func (h *harness) setupVesting(total uint64) solana.PublicKey {
	h.t.Helper()
	h.initToken()
	h.CallContract(contract.NewInitializeVestingInstruction(h.programID, h.mint, h.authority, contract.InitializeVestingArgs{
		TotalTokens:     total,
		StartTime:       h.start,
		ReleaseInterval: contract.Month,
		NumReleases:     12,
	}), h.authority)
	beneficiary := solana.NewWallet().PublicKey()
	h.CallContract(contract.NewAddVestingBeneficiaryInstruction(h.programID, h.mint, h.authority, beneficiary, total), h.authority)
	return beneficiary
}

// TestVestingReleaseAfterThreeMonths checks the linear unlock flow so we dont break it
// again: 600M over 12 months is 150M after three.
func TestVestingReleaseAfterThreeMonths(t *testing.T) {
	h := newHarness(t)
	ben := h.setupVesting(tokens(600_000_000))
	release := contract.NewReleaseVestedTokensInstruction(h.programID, h.mint, ben)

	h.CallContractAt(h.start+3*contract.Month-1, release)
	assert.EqualValues(t, tokens(100_000_000), h.tokenBalance(ben))

	h.CallContractAt(h.start+3*contract.Month, release)
	assert.EqualValues(t, tokens(150_000_000), h.tokenBalance(ben))

	v := h.vesting()
	assert.EqualValues(t, tokens(150_000_000), v.Beneficiaries[0].Released)
	assert.EqualValues(t, tokens(150_000_000), v.TotalReleased)
	assert.Equal(t, h.start+3*contract.Month, v.Beneficiaries[0].LastReleaseTime)
}

// TestVestingReleaseIsIdempotent checks a second crank in the same period is a logged no-op.
func TestVestingReleaseIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ben := h.setupVesting(tokens(1200))
	release := contract.NewReleaseVestedTokensInstruction(h.programID, h.mint, ben)

	h.CallContractAt(h.start+contract.Month, release)
	r := h.CallContract(release)
	require.Len(t, r.Logs, 1)
	assert.True(t, strings.HasPrefix(r.Logs[0], "vr|"))
	assert.True(t, strings.HasSuffix(r.Logs[0], "|am:0"))
	assert.EqualValues(t, tokens(100), h.tokenBalance(ben))

	// nothing before start either
	h2 := newHarness(t)
	ben2 := h2.setupVesting(tokens(1200))
	h2.CallContractAt(h2.start-1, contract.NewReleaseVestedTokensInstruction(h2.programID, h2.mint, ben2))
	assert.Zero(t, h2.supply())
}

// TestVestingFullScheduleIsMonotonic walks the whole schedule and checks releases never
// shrink and end at the exact entitlement, rounding dust included.
func TestVestingFullScheduleIsMonotonic(t *testing.T) {
	h := newHarness(t)
	total := tokens(1_000) + 7 // does not divide by 12
	ben := h.setupVesting(total)
	release := contract.NewReleaseVestedTokensInstruction(h.programID, h.mint, ben)

	var last uint64
	for month := int64(0); month <= 13; month++ {
		h.CallContractAt(h.start+month*contract.Month+contract.Day, release)
		got := h.tokenBalance(ben)
		assert.GreaterOrEqual(t, got, last, "month %d", month)
		last = got
	}
	assert.Equal(t, total, last)

	v := h.vesting()
	assert.LessOrEqual(t, v.TotalReleased, v.TotalAllocated)
	assert.LessOrEqual(t, v.TotalAllocated, v.TotalTokens)
	assert.Equal(t, v.TotalReleased, h.supply())
}

// TestVestingBeneficiaries checks the beneficiary list rules and the accounting totals.
func TestVestingBeneficiaries(t *testing.T) {
	h := newHarness(t)
	ben := h.setupVesting(tokens(100))
	add := func(id solana.PublicKey, amount uint64) *contract.Instruction {
		return contract.NewAddVestingBeneficiaryInstruction(h.programID, h.mint, h.authority, id, amount)
	}

	h.expectErr(contract.ErrBeneficiaryExists, add(ben, tokens(1)), h.authority)
	h.expectErr(contract.ErrInvalidParameters, add(solana.NewWallet().PublicKey(), 0), h.authority)
	intruder := h.newWallet()
	h.expectErr(contract.ErrUnauthorized,
		contract.NewAddVestingBeneficiaryInstruction(h.programID, h.mint, intruder, solana.NewWallet().PublicKey(), 1), intruder)

	for i := 1; i < contract.MaxBeneficiaries; i++ {
		h.CallContract(add(solana.NewWallet().PublicKey(), tokens(1)), h.authority)
	}
	h.expectErr(contract.ErrCapacityExceeded, add(solana.NewWallet().PublicKey(), tokens(1)), h.authority)

	v := h.vesting()
	assert.Len(t, v.Beneficiaries, contract.MaxBeneficiaries)
	assert.Equal(t, tokens(100)+tokens(uint64(contract.MaxBeneficiaries-1)), v.TotalAllocated)
	assert.Equal(t, v.TotalAllocated, v.TotalTokens)

	stranger := solana.NewWallet().PublicKey()
	h.expectErr(contract.ErrBeneficiaryNotFound, contract.NewReleaseVestedTokensInstruction(h.programID, h.mint, stranger))
}

// TestInitializeVestingValidation checks a schedule needs an interval and releases.
func TestInitializeVestingValidation(t *testing.T) {
	h := newHarness(t)
	h.initToken()
	ix := func(interval int64, n uint32) *contract.Instruction {
		return contract.NewInitializeVestingInstruction(h.programID, h.mint, h.authority, contract.InitializeVestingArgs{
			TotalTokens: tokens(10), StartTime: h.start, ReleaseInterval: interval, NumReleases: n,
		})
	}
	h.expectErr(contract.ErrInvalidParameters, ix(0, 12), h.authority)
	h.expectErr(contract.ErrInvalidParameters, ix(contract.Month, 0), h.authority)
	h.CallContract(ix(contract.Month, 12), h.authority)
	h.expectErr(contract.ErrAlreadyInitialized, ix(contract.Month, 12), h.authority)
}
