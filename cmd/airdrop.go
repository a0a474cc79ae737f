package cmd

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"

	"launchpad/sdk"
)

var airdropCmd = &cobra.Command{
	Use:   "airdrop <wallet> <lamports>",
	Short: "Credit lamports to a wallet in the local state",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		wallet, err := parseKey(args[0])
		if err != nil {
			return err
		}
		lamports, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return errors.Wrap(err, "lamports")
		}
		st, err := openState()
		if err != nil {
			return err
		}
		defer st.Close()
		if err := sdk.Airdrop(st, wallet, lamports); err != nil {
			return err
		}
		logx.Infof("airdropped %d lamports to %s", lamports, wallet)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(airdropCmd)
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
