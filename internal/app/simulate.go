package app

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"vault-liquidity-alerts/internal/fetcher"
	"vault-liquidity-alerts/internal/monitor"
)

// SimulateAlert drives a synthetic liquidity value through evaluation and the
// configured notifier, which makes it possible to verify Telegram wiring end
// to end. Values below the threshold evaluate without sending anything.
func (a *App) SimulateAlert(ctx context.Context, liquidity decimal.Decimal) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}

	f := &staticFetcher{value: liquidity, symbol: "SIM"}
	mon := monitor.New(a.Config, f, notifier, a.Logger)

	return mon.Poll(ctx)
}

type staticFetcher struct {
	value  decimal.Decimal
	symbol string
}

func (s *staticFetcher) FetchLiquidity(ctx context.Context) (fetcher.Reading, error) {
	return fetcher.Reading{
		Raw:        big.NewInt(0),
		Value:      s.value,
		Symbol:     s.symbol,
		ObservedAt: time.Now().UTC(),
	}, nil
}

var _ fetcher.LiquidityFetcher = (*staticFetcher)(nil)
