package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"

	"launchpad/contract"
	"launchpad/internal/config"
	"launchpad/sdk"
)

var crankCmd = &cobra.Command{
	Use:   "crank",
	Short: "Run the permissionless keeper duties",
	Long: `For every configured feed the crank releases due vesting tranches, pushes a
fresh oracle observation and executes whatever supply action it armed. None of
these need a signer, so any operator can run it.`,
	RunE: runCrank,
}

func init() {
	rootCmd.AddCommand(crankCmd)
	crankCmd.Flags().Bool("once", false, "run a single round and exit")
}

// CrankStats counts what one round did.
type CrankStats struct {
	Released int
	Updated  int
	Executed int
	Failed   int
}

func (s CrankStats) String() string {
	return fmt.Sprintf("released=%d updated=%d executed=%d failed=%d", s.Released, s.Updated, s.Executed, s.Failed)
}

// Cranker runs keeper rounds against one state.
type Cranker struct {
	Program *contract.Program
	State   sdk.State
	Feeds   []config.FeedConf
	Crank   config.CrankConf

	round int
}

func runCrank(cmd *cobra.Command, _ []string) error {
	pid, err := programID()
	if err != nil {
		return err
	}
	if len(config.C.Feeds) == 0 {
		return errors.New("no feeds configured")
	}
	once, _ := cmd.Flags().GetBool("once")

	st, err := openState()
	if err != nil {
		return err
	}
	defer st.Close()

	c := &Cranker{Program: contract.New(pid), State: st, Feeds: config.C.Feeds, Crank: config.C.Crank}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(config.C.Crank.Interval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ts, err := now()
		if err != nil {
			return err
		}
		logx.Infof("crank round: %s", c.Round(ts))
		if once {
			return nil
		}
		select {
		case <-ctx.Done():
			logx.Info("crank stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Round runs every duty once at ts. Beneficiaries with nothing due are skipped and
// expected refusals of an armed action are not counted as failures.
func (c *Cranker) Round(ts int64) CrankStats {
	c.round++
	var stats CrankStats
	for _, feed := range c.Feeds {
		mint, primary, backups, err := feed.Keys()
		if err != nil {
			logx.Errorf("crank: %v", err)
			stats.Failed++
			continue
		}
		if c.Crank.Release {
			c.releaseVesting(ts, mint, &stats)
		}
		c.updateOracle(ts, mint, primary, backups, &stats)
		if c.Crank.Execute {
			c.executePending(ts, mint, &stats)
		}
	}
	return stats
}

func (c *Cranker) releaseVesting(ts int64, mint solana.PublicKey, stats *CrankStats) {
	v, err := contract.LoadVesting(c.State, c.Program.ID(), mint)
	if errors.Is(err, contract.ErrUninitializedAccount) {
		return
	}
	if err != nil {
		logx.Errorf("crank: load vesting %s: %v", mint, err)
		stats.Failed++
		return
	}
	c.releaseDue(ts, mint, v, stats)
}

// releaseDue releases for every beneficiary of v with something due at ts.
func (c *Cranker) releaseDue(ts int64, mint solana.PublicKey, v *contract.VestingState, stats *CrankStats) {
	for i := range v.Beneficiaries {
		b := &v.Beneficiaries[i]
		due, err := v.Releasable(b, ts)
		if err != nil {
			logx.Errorf("crank: releasable %s for %s: %v", mint, b.ID, err)
			stats.Failed++
			continue
		}
		if due == 0 {
			continue
		}
		if err := c.process(ts, contract.NewReleaseVestedTokensInstruction(c.Program.ID(), mint, b.ID)); err != nil {
			logx.Errorf("crank: release %s for %s: %v", mint, b.ID, err)
			stats.Failed++
			continue
		}
		stats.Released++
	}
}

func (c *Cranker) updateOracle(ts int64, mint, primary solana.PublicKey, backups []solana.PublicKey, stats *CrankStats) {
	if err := c.process(ts, contract.NewUpdateOraclePriceInstruction(c.Program.ID(), mint, primary, backups...)); err != nil {
		logx.Errorf("crank: oracle update %s: %v", mint, err)
		stats.Failed++
		return
	}
	stats.Updated++
}

func (c *Cranker) executePending(ts int64, mint solana.PublicKey, stats *CrankStats) {
	ctl, err := contract.LoadController(c.State, c.Program.ID(), mint)
	if err != nil {
		logx.Errorf("crank: load controller %s: %v", mint, err)
		stats.Failed++
		return
	}
	var ix *contract.Instruction
	switch ctl.Pending {
	case contract.SupplyActionMint:
		ix = contract.NewExecuteAutonomousMintInstruction(c.Program.ID(), mint, ctl.Params.MintRecipient)
	case contract.SupplyActionBurn:
		ix = contract.NewExecuteAutonomousBurnInstruction(c.Program.ID(), mint)
	default:
		return
	}
	switch err := c.process(ts, ix); {
	case err == nil:
		stats.Executed++
	case errors.Is(err, contract.ErrNoPendingAction), errors.Is(err, contract.ErrTooEarlyForExecution):
		logx.Infof("crank: %s %s skipped: %v", ctl.Pending, mint, err)
	default:
		logx.Errorf("crank: %s %s: %v", ctl.Pending, mint, err)
		stats.Failed++
	}
}

func (c *Cranker) process(ts int64, ix *contract.Instruction) error {
	receipt, err := c.Program.Process(c.State, sdk.Env{
		TxID:      fmt.Sprintf("crank-%d-%d", c.round, ts),
		Timestamp: ts,
	}, ix)
	if err != nil {
		return err
	}
	for _, l := range receipt.Logs {
		logx.Info(l)
	}
	return nil
}
