package cmd

import (
	"fmt"

	"github.com/CosmWasm/tinyjson"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"launchpad/contract"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <config|presale|vesting|controller|burn|timelock> [mint]",
	Short: "Print a program account as json",
	Long: `Prints one program account as json. Every kind except timelock needs the
sale token mint. Presale, vesting and timelock views include values derived
from the current clock (see --at).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	pid, err := programID()
	if err != nil {
		return err
	}
	ts, err := now()
	if err != nil {
		return err
	}
	st, err := openState()
	if err != nil {
		return err
	}
	defer st.Close()

	kind := args[0]
	if kind == "timelock" {
		tl, err := contract.LoadTimelock(st, pid)
		if err != nil {
			return err
		}
		return printView(contract.TimelockView{State: tl, Now: ts})
	}
	if len(args) < 2 {
		return errors.Errorf("%s needs a mint", kind)
	}
	mint, err := parseKey(args[1])
	if err != nil {
		return err
	}

	var view tinyjson.Marshaler
	switch kind {
	case "config":
		view, err = contract.LoadMintConfig(st, pid, mint)
	case "presale":
		var p *contract.PresaleState
		p, err = contract.LoadPresale(st, pid, mint)
		view = contract.PresaleView{State: p, Now: ts}
	case "vesting":
		var v *contract.VestingState
		v, err = contract.LoadVesting(st, pid, mint)
		view = contract.VestingView{State: v, Now: ts}
	case "controller":
		view, err = contract.LoadController(st, pid, mint)
	case "burn":
		view, err = contract.LoadBurnTreasury(st, pid, mint)
	default:
		return errors.Errorf("unknown account kind %q", kind)
	}
	if err != nil {
		return err
	}
	return printView(view)
}

func printView(v tinyjson.Marshaler) error {
	raw, err := contract.MarshalView(v)
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
