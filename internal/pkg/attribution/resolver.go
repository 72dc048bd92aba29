package attribution

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RodrigoFalk/LinkPulse/app/models"
)

// Attribution tiers, in the order they are tried. No backtracking: the
// first tier that produces a click wins.
const (
	TierClickID     = "click_id"
	TierTermAsClick = "utm_term_as_click_id"
	TierTermHistory = "utm_term_history"
	TierNone        = "none"
)

// ClickLookup is the slice of the click ledger the resolver needs.
type ClickLookup interface {
	GetByClickID(clickID string) (*models.Click, error)
	GetLatestByAccountAndTerm(accountID uint, term string) (*models.Click, error)
}

// Result carries the matched click, or Attributed=false when every tier
// missed. The sale then persists without smart link or variant and surfaces
// in the unattributed-sales review list.
type Result struct {
	Attributed bool
	Tier       string
	Click      *models.Click
}

// Resolve maps a sale back to the click that generated it.
//
//  1. Direct click-id match: the payload echoed back a click_id/sck value.
//  2. The fallback utm_term looked up as if it were a click id. The
//     redirect handler duplicates the click id into utm_term because some
//     platforms strip custom query parameters but pass standard UTM
//     parameters through verbatim.
//  3. Account-scoped search over the clicks' own recorded utm_term column,
//     newest first, for platforms that echo the original campaign term
//     instead of the carried click id.
func Resolve(clicks ClickLookup, clickID, fallbackTerm string, accountID uint) (*Result, error) {
	if clickID != "" {
		click, err := clicks.GetByClickID(clickID)
		if err == nil {
			return &Result{Attributed: true, Tier: TierClickID, Click: click}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if fallbackTerm != "" {
		click, err := clicks.GetByClickID(fallbackTerm)
		if err == nil {
			return &Result{Attributed: true, Tier: TierTermAsClick, Click: click}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		if accountID != 0 {
			click, err = clicks.GetLatestByAccountAndTerm(accountID, fallbackTerm)
			if err == nil {
				return &Result{Attributed: true, Tier: TierTermHistory, Click: click}, nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
	}

	return &Result{Attributed: false, Tier: TierNone}, nil
}
