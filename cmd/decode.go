package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/treeout"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"launchpad/contract"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex data> [account...]",
	Short: "Decode instruction data into a readable tree",
	Long: `Decodes raw instruction data for the configured program. Accounts are given
in instruction order; the count must match what the instruction expects.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(_ *cobra.Command, args []string) error {
	pid, err := programID()
	if err != nil {
		return err
	}
	data, err := hex.DecodeString(args[0])
	if err != nil {
		return errors.Wrap(err, "instruction data")
	}
	metas := make([]*solana.AccountMeta, 0, len(args)-1)
	for _, a := range args[1:] {
		key, err := parseKey(a)
		if err != nil {
			return err
		}
		metas = append(metas, solana.Meta(key))
	}
	ix, err := contract.DecodeInstruction(pid, metas, data)
	if err != nil {
		return err
	}
	tree := treeout.New("Instruction")
	ix.EncodeToTree(tree)
	fmt.Print(tree.String())
	return nil
}
