package fetcher

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Reading is a single observation of the vault's available liquidity.
type Reading struct {
	Raw        *big.Int
	Value      decimal.Decimal
	Symbol     string
	Decimals   uint8
	Asset      common.Address
	ObservedAt time.Time
}

// LiquidityFetcher retrieves the vault's on-chain available liquidity.
type LiquidityFetcher interface {
	FetchLiquidity(ctx context.Context) (Reading, error)
}
