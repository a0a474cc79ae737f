package contract

import (
	"github.com/gagliardetto/solana-go"

	"launchpad/pkg/pricefeed"
	"launchpad/pkg/safemath"
	"launchpad/sdk"
)

// feedReading is one price observation that passed every check.
type feedReading struct {
	feed        solana.PublicKey
	price       uint64 // 6 decimals
	publishTime int64
	age         int64
	growthBps   int64 // vs the last accepted price, 0 for a baseline
}

// readFeed validates a single feed account. Order: owner, layout, status, clock, age,
// confidence, and last the jump against the previous accepted price.
func (c *invocation) readFeed(meta *solana.AccountMeta, params *ControllerParams, lastPrice uint64) (*feedReading, error) {
	acc, err := sdk.LoadAccount(c.st, meta.PublicKey)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fail(ErrInvalidOracleData, "feed %s missing", meta.PublicKey)
	}
	if !acc.Owner.Equals(params.OracleProgram) {
		return nil, fail(ErrInvalidAccountOwner, "feed %s owned by %s", meta.PublicKey, acc.Owner)
	}
	pa, err := pricefeed.Decode(acc.Data)
	if err != nil {
		return nil, fail(ErrInvalidOracleData, "feed %s: %v", meta.PublicKey, err)
	}
	if pa.Status != pricefeed.StatusTrading {
		return nil, fail(ErrInvalidOracleData, "feed %s not trading", meta.PublicKey)
	}
	if pa.Price <= 0 {
		return nil, fail(ErrInvalidOracleData, "feed %s price %d", meta.PublicKey, pa.Price)
	}

	now := c.now()
	if pa.PublishTime > now+OracleMaxClockSkew {
		return nil, fail(ErrInvalidOracleData, "feed %s published in the future", meta.PublicKey)
	}
	age := now - pa.PublishTime
	if age < 0 {
		age = 0
	}
	if age > OracleHardMaxAge || age > params.StandardMaxAge {
		return nil, fail(ErrStaleOracleData, "feed %s is %ds old", meta.PublicKey, age)
	}

	raw := uint64(pa.Price)
	maxConf, err := safemath.BpsOf(raw, params.MaxConfidenceBps)
	if err != nil {
		return nil, calcErr(err, "confidence bound")
	}
	if pa.Conf > maxConf {
		return nil, fail(ErrInvalidOracleData, "feed %s confidence %d above %d", meta.PublicKey, pa.Conf, maxConf)
	}
	price, err := pricefeed.Scale6(raw, pa.Expo)
	if err != nil || price == 0 {
		return nil, fail(ErrInvalidOracleData, "feed %s unscalable price", meta.PublicKey)
	}

	r := &feedReading{feed: meta.PublicKey, price: price, publishTime: pa.PublishTime, age: age}
	if lastPrice == 0 {
		return r, nil
	}
	if r.growthBps, err = safemath.GrowthBps(price, lastPrice); err != nil {
		return nil, calcErr(err, "growth")
	}
	change := r.growthBps
	if change < 0 {
		change = -change
	}
	if uint64(change) > params.MaxPriceChangeBps {
		return nil, fail(ErrPriceManipulation, "feed %s moved %d bps", meta.PublicKey, r.growthBps)
	}
	return r, nil
}

// readFeeds returns the first feed that passes, primary first. When all of them fail the
// primary's error is what the caller sees.
func (c *invocation) readFeeds(feeds []*solana.AccountMeta, params *ControllerParams, lastPrice uint64) (*feedReading, error) {
	var primaryErr error
	for i, meta := range feeds {
		r, err := c.readFeed(meta, params, lastPrice)
		if err == nil {
			return r, nil
		}
		if i == 0 {
			primaryErr = err
		}
		c.emitFeedRejected(meta.PublicKey, err)
	}
	return nil, primaryErr
}
