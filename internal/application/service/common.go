package service

import (
	"time"

	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/daterange"
)

// Clock returns the current time; tests replace it.
type Clock func() time.Time

// RangeInput is the date filter shape shared by the ledger and sales screens.
type RangeInput struct {
	Name  string
	Start string
	End   string
}

func resolveRange(in RangeInput, loc *time.Location, now time.Time) (*daterange.Range, error) {
	rng, err := daterange.Resolve(in.Name, in.Start, in.End, loc, now)
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}
	return rng, nil
}
