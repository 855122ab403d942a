package relayer

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const tokenDecimals = 18

// formatAmount renders a base-unit token amount with 18 decimals
func formatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -tokenDecimals).String()
}

// amountFloat is used for gauges only
func amountFloat(amount *big.Int) float64 {
	if amount == nil {
		return 0
	}
	return decimal.NewFromBigInt(amount, -tokenDecimals).InexactFloat64()
}
