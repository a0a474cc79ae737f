package cmd

import (
	"os"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/logx"

	"launchpad/contract"
	"launchpad/internal/config"
	"launchpad/pkg/pricefeed"
	"launchpad/pkg/token2022"
	"launchpad/sdk"
)

func TestMain(m *testing.M) {
	logx.Disable()
	os.Exit(m.Run())
}

type crankFixture struct {
	st          *sdk.MemoryState
	program     *contract.Program
	mint        solana.PublicKey
	authority   solana.PublicKey
	beneficiary solana.PublicKey
	oracle      solana.PublicKey
	feed        solana.PublicKey
	start       int64
}

func (f *crankFixture) call(t *testing.T, ix *contract.Instruction, signers ...solana.PublicKey) {
	t.Helper()
	_, err := f.program.Process(f.st, sdk.Env{TxID: "setup", Timestamp: f.start, Signers: signers}, ix)
	require.NoError(t, err, "%s", ix.Tag)
}

// newCrankFixture sets up a token with a vesting schedule and a supply controller at 1 USD.
func newCrankFixture(t *testing.T) *crankFixture {
	t.Helper()
	start, ok := sdk.ParseTimestamp("2025-09-03T00:00:00")
	require.True(t, ok)
	f := &crankFixture{
		st:          sdk.NewMemoryState(),
		mint:        solana.NewWallet().PublicKey(),
		authority:   solana.NewWallet().PublicKey(),
		beneficiary: solana.NewWallet().PublicKey(),
		oracle:      solana.NewWallet().PublicKey(),
		feed:        solana.NewWallet().PublicKey(),
		start:       start,
	}
	pid := solana.NewWallet().PublicKey()
	f.program = contract.New(pid)
	require.NoError(t, sdk.Airdrop(f.st, f.authority, 1_000_000_000_000))

	f.call(t, contract.NewInitializeTokenInstruction(pid, f.mint, f.authority, contract.InitializeTokenArgs{
		Name: "Okinoko", Symbol: "OKI", Decimals: 6,
	}), f.authority, f.mint)

	// an existing circulating supply for the controller to act on
	ledger := token2022.NewLedger(f.st)
	mintAuthority, _, err := contract.FindMintAuthorityAddress(pid, f.mint)
	require.NoError(t, err)
	holder, err := ledger.CreateAssociatedAccount(solana.NewWallet().PublicKey(), f.mint)
	require.NoError(t, err)
	require.NoError(t, ledger.MintTo(f.mint, holder, mintAuthority, 1_000_000_000_000))

	f.call(t, contract.NewInitializeVestingInstruction(pid, f.mint, f.authority, contract.InitializeVestingArgs{
		TotalTokens:     12_000_000,
		StartTime:       start,
		ReleaseInterval: contract.Month,
		NumReleases:     12,
	}), f.authority)
	f.call(t, contract.NewAddVestingBeneficiaryInstruction(pid, f.mint, f.authority, f.beneficiary, 12_000_000), f.authority)

	f.call(t, contract.NewInitializeAutonomousControllerInstruction(pid, f.mint, f.authority, contract.ControllerParams{
		InitialPrice:        1_000_000,
		HighSupplyThreshold: 5_000_000_000_000,
		SupplyFloor:         100_000_000_000,
		OracleProgram:       f.oracle,
	}), f.authority)
	return f
}

func (f *crankFixture) publish(t *testing.T, price, ts int64) {
	t.Helper()
	require.NoError(t, pricefeed.Publish(f.st, f.feed, f.oracle, pricefeed.PriceAccount{
		Price:       price,
		Conf:        uint64(price) / 1000,
		Expo:        -8,
		PublishTime: ts,
		Status:      pricefeed.StatusTrading,
	}))
}

func (f *crankFixture) cranker() *Cranker {
	return &Cranker{
		Program: f.program,
		State:   f.st,
		Feeds:   []config.FeedConf{{Mint: f.mint.String(), Primary: f.feed.String()}},
		Crank:   config.CrankConf{Release: true, Execute: true},
	}
}

// TestCrankRound checks one round releases vesting, observes the feed and executes
// the armed mint, and that a repeat round has nothing left to do.
func TestCrankRound(t *testing.T) {
	f := newCrankFixture(t)
	ts := f.start + 3*contract.Month
	f.publish(t, 108_000_000, ts)
	c := f.cranker()

	stats := c.Round(ts)
	assert.Equal(t, CrankStats{Released: 1, Updated: 1, Executed: 1}, stats)

	ledger := token2022.NewLedger(f.st)
	got, err := ledger.Balance(token2022.MustAssociatedTokenAddress(f.beneficiary, f.mint))
	require.NoError(t, err)
	assert.EqualValues(t, 3_000_000, got)

	ctl, err := contract.LoadController(f.st, f.program.ID(), f.mint)
	require.NoError(t, err)
	assert.Equal(t, contract.SupplyActionNone, ctl.Pending)
	assert.NotZero(t, ctl.TotalMinted)

	stats = c.Round(ts)
	assert.Equal(t, CrankStats{Updated: 1}, stats)
}

// TestCrankSkipsDisabledDuties checks the Release and Execute switches.
func TestCrankSkipsDisabledDuties(t *testing.T) {
	f := newCrankFixture(t)
	ts := f.start + 3*contract.Month
	f.publish(t, 108_000_000, ts)
	c := f.cranker()
	c.Crank = config.CrankConf{}

	assert.Equal(t, CrankStats{Updated: 1}, c.Round(ts))
	ctl, err := contract.LoadController(f.st, f.program.ID(), f.mint)
	require.NoError(t, err)
	assert.Equal(t, contract.SupplyActionMint, ctl.Pending)
}

// TestCrankCountsFailures checks bad config and a stale feed are counted, not fatal.
func TestCrankCountsFailures(t *testing.T) {
	f := newCrankFixture(t)
	ts := f.start + 3*contract.Month
	f.publish(t, 108_000_000, ts-contract.Day)
	c := f.cranker()
	c.Crank.Execute = false
	c.Feeds = append(c.Feeds, config.FeedConf{Mint: "not-a-key", Primary: f.feed.String()})

	stats := c.Round(ts)
	assert.Equal(t, 1, stats.Released)
	assert.Equal(t, 0, stats.Updated)
	assert.Equal(t, 2, stats.Failed)
}

// TestCrankCountsReleaseFailures checks a release that can not go through is logged and
// counted while settled beneficiaries are skipped.
func TestCrankCountsReleaseFailures(t *testing.T) {
	f := newCrankFixture(t)
	ts := f.start + 3*contract.Month
	c := f.cranker()

	v, err := contract.LoadVesting(f.st, f.program.ID(), f.mint)
	require.NoError(t, err)
	v.Beneficiaries = append(v.Beneficiaries, contract.VestingBeneficiary{
		ID:          solana.NewWallet().PublicKey(),
		TotalAmount: 10,
		Released:    10,
	})

	var stats CrankStats
	c.releaseDue(ts, solana.NewWallet().PublicKey(), v, &stats)
	assert.Equal(t, CrankStats{Failed: 1}, stats)

	stats = CrankStats{}
	c.releaseDue(ts, f.mint, v, &stats)
	assert.Equal(t, CrankStats{Released: 1}, stats)
}
