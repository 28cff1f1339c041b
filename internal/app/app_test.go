package app

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"vault-liquidity-alerts/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Ethereum: config.EthereumConfig{
			RPCURL: "http://localhost:8545",
		},
	}
}

func TestRunRequiresVaultAddress(t *testing.T) {
	a := NewApp(testConfig(), zerolog.Nop())

	err := a.Run(context.Background())
	if err == nil {
		t.Fatal("run without a vault address should fail before the loop starts")
	}
	if !strings.Contains(err.Error(), "vault_address") {
		t.Fatalf("error should point at the missing key, got %q", err)
	}
}

func TestCheckRequiresVaultAddress(t *testing.T) {
	a := NewApp(testConfig(), zerolog.Nop())

	if err := a.Check(context.Background()); err == nil {
		t.Fatal("check without a vault address should fail")
	}
}

func TestSimulateAlertRequiresAlerting(t *testing.T) {
	a := NewApp(testConfig(), zerolog.Nop())

	if err := a.SimulateAlert(context.Background(), decimal.NewFromInt(6000)); err == nil {
		t.Fatal("simulate-alert should fail when alerting is disabled")
	}

	cfg := testConfig()
	cfg.Alerting.Enabled = true
	a = NewApp(cfg, zerolog.Nop())
	if err := a.SimulateAlert(context.Background(), decimal.NewFromInt(6000)); err == nil {
		t.Fatal("simulate-alert should fail without a configured channel")
	}
}
