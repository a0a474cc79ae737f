package cmd

import (
	"os"
	"time"

	"github.com/avast/retry-go"
	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"

	"launchpad/internal/config"
	"launchpad/sdk"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "launchctl",
	Short: "Operate the token launchpad program against a local state",
	Long: `launchctl runs the launchpad program against a pebble backed state directory.

It can inspect presale, vesting, controller and timelock accounts, decode
instructions, publish price feeds for testing and crank the keeper duties
(vesting releases, oracle updates and autonomous supply actions).`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "f", "etc/launchctl.yaml", "config file")
	rootCmd.PersistentFlags().String("state", "", "state directory (overrides StateDir)")
	rootCmd.PersistentFlags().String("program", "", "program id (overrides ProgramID)")
	rootCmd.PersistentFlags().String("at", "", "clock override, e.g. 2025-09-03T00:00:00")

	viper.SetEnvPrefix("LAUNCHCTL")
	viper.AutomaticEnv()
	for _, name := range []string{"state", "program", "at"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func loadConfig(_ *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	var c config.Config
	if _, err := os.Stat(cfgFile); err == nil {
		conf.MustLoad(cfgFile, &c)
	} else if err := conf.FillDefault(&c); err != nil {
		return errors.Wrap(err, "config defaults")
	}
	if v := viper.GetString("state"); v != "" {
		c.StateDir = v
	}
	if v := viper.GetString("program"); v != "" {
		c.ProgramID = v
	}
	config.C = c

	logx.MustSetup(c.Log.LogConf)
	return nil
}

// openState opens the configured state dir. Callers close it. Another launchctl
// (usually a running crank) may hold the pebble lock for a moment, so retry a bit.
func openState() (*sdk.PebbleState, error) {
	var st *sdk.PebbleState
	err := retry.Do(func() error {
		var err error
		st, err = sdk.OpenPebbleState(config.C.StateDir)
		return err
	}, retry.Attempts(3), retry.Delay(500*time.Millisecond), retry.LastErrorOnly(true), retry.DelayType(retry.BackOffDelay))
	return st, errors.Wrapf(err, "open state %s", config.C.StateDir)
}

func programID() (solana.PublicKey, error) {
	return config.C.Program()
}

// now is the wall clock unless --at pins it.
func now() (int64, error) {
	at := viper.GetString("at")
	if at == "" {
		return time.Now().Unix(), nil
	}
	ts, ok := sdk.ParseTimestamp(at)
	if !ok {
		return 0, errors.Errorf("bad timestamp %q", at)
	}
	return ts, nil
}

func parseKey(s string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(s)
	return key, errors.Wrapf(err, "key %q", s)
}
