package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var simulateLiquidity float64

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Feed a synthetic liquidity value through the alert path",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateLiquidity <= 0 {
			return errors.New("--liquidity must be greater than 0")
		}

		return getApp().SimulateAlert(cmd.Context(), decimal.NewFromFloat(simulateLiquidity))
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateLiquidity, "liquidity", 0, "Synthetic liquidity value in display units")
}
