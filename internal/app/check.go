package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"vault-liquidity-alerts/internal/alerting"
)

// Check performs a single liquidity read and prints it.
func (a *App) Check(ctx context.Context) error {
	if err := a.requireVault(); err != nil {
		return err
	}

	reading, err := a.newFetcher().FetchLiquidity(ctx)
	if err != nil {
		return fmt.Errorf("fetch liquidity: %w", err)
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Time (UTC)\t%s\n", reading.ObservedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(writer, "Vault\t%s\n", a.Config.Ethereum.VaultAddress)
	fmt.Fprintf(writer, "Asset\t%s (%s, %d decimals)\n", reading.Asset.Hex(), reading.Symbol, reading.Decimals)
	fmt.Fprintf(writer, "Available liquidity\t%s %s\n", alerting.FormatAmount(reading.Value), reading.Symbol)
	fmt.Fprintf(writer, "Raw balance\t%s\n", reading.Raw.String())
	return writer.Flush()
}
