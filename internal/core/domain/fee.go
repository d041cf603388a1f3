package domain

import (
	"math"
	"time"
)

// FeePolicy prices a rental by the number of started days since it began.
type FeePolicy struct {
	InitialDays int
	InitialRate float64
	LaterRate   float64
}

var DefaultFeePolicy = FeePolicy{InitialDays: 3, InitialRate: 1.0, LaterRate: 0.5}

// ElapsedDays counts started 24h periods between rentalDate and now.
// Returns 0 when now precedes rentalDate.
func ElapsedDays(rentalDate, now time.Time) int {
	if now.Before(rentalDate) {
		return 0
	}
	return int(math.Ceil(now.Sub(rentalDate).Seconds() / 86400))
}

// Calculate returns the fee owed at now for a rental started at rentalDate.
func (p FeePolicy) Calculate(rentalDate, now time.Time) float64 {
	days := ElapsedDays(rentalDate, now)
	if days <= p.InitialDays {
		return p.InitialRate * float64(days)
	}
	return p.InitialRate*float64(p.InitialDays) + p.LaterRate*float64(days-p.InitialDays)
}
