package tracker

import (
	"database/sql"
	"math"
	"time"

	"github.com/booktrackerbot/booktracker/booktracker/database/models"
)

// UpsertPlan is the write instruction produced by one reconciliation: the
// merged book row plus the observation to append. One observation is
// appended per refresh regardless of whether the price moved, so the
// history captures every cycle.
type UpsertPlan struct {
	Book        *models.Book
	Observation *models.PriceObservation
	IsNew       bool
}

// Reconcile merges a freshly normalized book against the stored record for
// the same URL. With no existing record the previous price and delta stay
// absent; otherwise the previous price is exactly the prior cycle's current
// price, never older.
func Reconcile(existing, incoming *models.Book, now time.Time) UpsertPlan {
	incoming.LastCheckedAt = now

	if existing == nil {
		return UpsertPlan{
			Book: incoming,
			Observation: &models.PriceObservation{
				BookURL:    incoming.URL,
				Price:      incoming.CurrentPrice,
				ObservedAt: now,
			},
			IsNew: true,
		}
	}

	incoming.ID = existing.ID
	incoming.CreatedAt = existing.CreatedAt
	incoming.PreviousPrice = sql.NullFloat64{Float64: existing.CurrentPrice, Valid: true}
	incoming.PriceChange = sql.NullFloat64{
		Float64: roundPrice(incoming.CurrentPrice - existing.CurrentPrice),
		Valid:   true,
	}
	if incoming.CoverURL == "" {
		incoming.CoverURL = existing.CoverURL
	}

	return UpsertPlan{
		Book: incoming,
		Observation: &models.PriceObservation{
			BookURL:    incoming.URL,
			Price:      incoming.CurrentPrice,
			ObservedAt: now,
		},
	}
}

func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}
