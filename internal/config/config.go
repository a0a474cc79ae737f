package config

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

var C Config

type Config struct {
	Log       LogConf
	ProgramID string `json:",optional"`
	StateDir  string `json:",default=data/state"`
	Crank     CrankConf
	Feeds     []FeedConf `json:",optional"`
}

type LogConf struct {
	logx.LogConf
}

// CrankConf drives the keeper loop.
type CrankConf struct {
	Interval int  `json:",default=60"` // seconds between rounds
	Release  bool `json:",default=true"`
	Execute  bool `json:",default=true"`
}

// FeedConf names the price feeds for one sale token, primary first.
type FeedConf struct {
	Mint    string
	Primary string
	Backups []string `json:",optional"`
}

// Program parses ProgramID.
func (c Config) Program() (solana.PublicKey, error) {
	if c.ProgramID == "" {
		return solana.PublicKey{}, errors.New("program id not configured")
	}
	key, err := solana.PublicKeyFromBase58(c.ProgramID)
	return key, errors.Wrap(err, "program id")
}

func (f FeedConf) Keys() (mint, primary solana.PublicKey, backups []solana.PublicKey, err error) {
	if mint, err = solana.PublicKeyFromBase58(f.Mint); err != nil {
		return mint, primary, nil, errors.Wrapf(err, "feed mint %q", f.Mint)
	}
	if primary, err = solana.PublicKeyFromBase58(f.Primary); err != nil {
		return mint, primary, nil, errors.Wrapf(err, "primary feed %q", f.Primary)
	}
	for _, b := range f.Backups {
		key, err := solana.PublicKeyFromBase58(b)
		if err != nil {
			return mint, primary, nil, errors.Wrapf(err, "backup feed %q", b)
		}
		backups = append(backups, key)
	}
	return mint, primary, backups, nil
}
