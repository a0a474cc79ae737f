package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"

	"launchpad/pkg/pricefeed"
)

var feedCmd = &cobra.Command{
	Use:   "feed <feed account> <price>",
	Short: "Publish a price into a local feed account",
	Long: `Writes a price feed account the way an oracle would. Only useful against a
local state, to drive the supply controller without a live oracle.`,
	Args: cobra.ExactArgs(2),
	RunE: runFeed,
}

func init() {
	rootCmd.AddCommand(feedCmd)
	feedCmd.Flags().String("owner", "", "oracle program owning the feed (required)")
	feedCmd.Flags().Int32("expo", -8, "price exponent")
	feedCmd.Flags().Uint64("conf", 0, "confidence interval, same exponent as price")
	feedCmd.Flags().Bool("halted", false, "publish with halted status")
	_ = feedCmd.MarkFlagRequired("owner")
}

func runFeed(cmd *cobra.Command, args []string) error {
	feed, err := parseKey(args[0])
	if err != nil {
		return err
	}
	price, err := parseInt(args[1])
	if err != nil {
		return errors.Wrap(err, "price")
	}
	ownerArg, _ := cmd.Flags().GetString("owner")
	owner, err := parseKey(ownerArg)
	if err != nil {
		return err
	}
	expo, _ := cmd.Flags().GetInt32("expo")
	confidence, _ := cmd.Flags().GetUint64("conf")
	halted, _ := cmd.Flags().GetBool("halted")
	ts, err := now()
	if err != nil {
		return err
	}

	status := pricefeed.StatusTrading
	if halted {
		status = pricefeed.StatusHalted
	}
	st, err := openState()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := pricefeed.Publish(st, feed, owner, pricefeed.PriceAccount{
		Price:       price,
		Conf:        confidence,
		Expo:        expo,
		PublishTime: ts,
		Status:      status,
	}); err != nil {
		return err
	}
	logx.Infof("published %d (expo %d) to %s at %d", price, expo, feed, ts)
	return nil
}
