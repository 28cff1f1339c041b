package fetcher

import (
	"context"
	"math/big"
	"testing"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestChainMissingConfig(t *testing.T) {
	c := NewChain(ChainOptions{}, noopLogger())
	if _, err := c.FetchLiquidity(context.Background()); err == nil {
		t.Fatal("expected error when rpc url is not configured")
	}

	c = NewChain(ChainOptions{RPCURL: "http://localhost"}, noopLogger())
	if _, err := c.FetchLiquidity(context.Background()); err == nil {
		t.Fatal("expected error when vault address is not configured")
	}
}

func TestScaleRaw(t *testing.T) {
	got := ScaleRaw(big.NewInt(123456), 6)
	if got.String() != "0.123456" {
		t.Fatalf("expected 0.123456, got %s", got.String())
	}

	got = ScaleRaw(big.NewInt(0), 18)
	if !got.IsZero() {
		t.Fatalf("zero raw balance should scale to zero, got %s", got.String())
	}

	got = ScaleRaw(big.NewInt(5000), 0)
	if got.String() != "5000" {
		t.Fatalf("zero decimals should leave the value unscaled, got %s", got.String())
	}

	raw, _ := new(big.Int).SetString("123000000000000000000", 10)
	got = ScaleRaw(raw, 18)
	if got.String() != "123" {
		t.Fatalf("expected 123, got %s", got.String())
	}
}
