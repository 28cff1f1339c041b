package main

import (
	"vault-liquidity-alerts/internal/cli"
)

func main() {
	cli.Execute()
}
