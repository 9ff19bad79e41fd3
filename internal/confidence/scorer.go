// Package confidence scores how likely an ambiguous transaction is to belong
// to a target spending category, such as lunch.
package confidence

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/spice-ask/internal/model"
)

// Assessment is the result of scoring one transaction.
type Assessment struct {
	Merchant string
	Reasons  []string // In the order the adjustments fired
	Amount   float64
	Score    int
	IsLikely bool
}

// IsUncertain reports whether the score is below the acceptance threshold
// but at or above the uncertain floor.
func (a Assessment) IsUncertain(floor int) bool {
	return !a.IsLikely && a.Score >= floor
}

// Scorer estimates, per transaction, whether it was a lunch purchase using
// time of day, merchant class, amount and category hints. It holds only
// read-only configuration and is safe for concurrent use.
type Scorer struct {
	merchants MerchantClasses
	config    Config
}

// NewScorer creates a scorer.
func NewScorer(merchants MerchantClasses, config Config) *Scorer {
	return &Scorer{merchants: merchants, config: config}
}

// NewDefaultScorer creates a scorer with the built-in lists and thresholds.
func NewDefaultScorer() *Scorer {
	return NewScorer(DefaultMerchantClasses(), DefaultConfig())
}

// Config returns the scorer's thresholds.
func (s *Scorer) Config() Config {
	return s.config
}

// Score assesses a single transaction.
func (s *Scorer) Score(txn model.Transaction) Assessment {
	amount := txn.Magnitude()
	merchant := strings.ToLower(txn.Merchant())
	class := s.merchants.Classify(merchant)
	small := amount <= s.config.SmallPurchaseMax

	score := Baseline
	var reasons []string
	add := func(delta int, reason string) {
		score += delta
		reasons = append(reasons, reason)
	}

	if txn.PostedAt != nil {
		hour, minute := txn.PostedAt.Hour(), txn.PostedAt.Minute()
		clock := fmt.Sprintf("%d:%02d", hour, minute)
		switch {
		case s.inLunchWindow(hour):
			add(LunchHourBoost, "Lunch time ("+clock+")")
		case slices.Contains(s.config.NearHours, hour):
			add(NearLunchHourBoost, "Near lunch time ("+clock+")")
		default:
			add(OffHourPenalty, "Outside lunch hours ("+clock+")")
		}
	} else {
		reasons = append(reasons, "No time data available")
	}

	switch class {
	case ClassTarget:
		add(TargetMerchantBoost, "Known lunch merchant")
	case ClassGrocery:
		if small {
			add(GrocerySmallBoost, fmt.Sprintf("Grocery store, small amount ($%.2f)", amount))
		} else {
			add(GroceryLargePenalty, fmt.Sprintf("Grocery store, large amount ($%.2f) - likely full shopping", amount))
		}
	case ClassFuel:
		if small {
			add(FuelSmallBoost, fmt.Sprintf("Gas station, small amount ($%.2f) - likely food", amount))
		} else {
			add(FuelLargePenalty, fmt.Sprintf("Gas station, large amount ($%.2f) - likely gas purchase", amount))
		}
	default:
		add(UnknownMerchantCost, "Unknown merchant type")
	}

	switch {
	case amount <= s.config.TypicalMax:
		add(TypicalAmountBoost, fmt.Sprintf("Typical lunch amount ($%.2f)", amount))
	case amount <= s.config.ModerateMax:
		add(ModerateAmountBoost, fmt.Sprintf("Moderate amount ($%.2f)", amount))
	default:
		add(LargeAmountPenalty, fmt.Sprintf("Large amount ($%.2f) - unlikely to be lunch", amount))
	}

	switch {
	case slices.Contains(s.config.TargetCategories, txn.ExpenseCategory):
		add(FoodCategoryBoost, "Restaurant/food category")
	case txn.PrimaryCategory != "" && strings.Contains(txn.PrimaryCategory, s.config.FoodMarker):
		add(FoodCategoryBoost, "Food category")
	case class == ClassGrocery && !small:
		add(LargeGroceryPenalty, "Large grocery purchase")
	}

	score = max(MinScore, min(MaxScore, score))

	return Assessment{
		Score:    score,
		Reasons:  reasons,
		IsLikely: score >= s.config.LikelyThreshold,
		Amount:   amount,
		Merchant: merchant,
	}
}

// IsCandidate is the broad pre-filter for lunch detection: it keeps anything
// the scorer could plausibly accept so that scoring decides, not the filter.
func (s *Scorer) IsCandidate(txn model.Transaction) bool {
	if txn.PostedAt != nil && s.inLunchWindow(txn.PostedAt.Hour()) {
		return true
	}

	small := txn.Magnitude() <= s.config.SmallPurchaseMax
	for _, name := range []string{txn.MerchantName, txn.Name} {
		switch s.merchants.Classify(name) {
		case ClassTarget:
			return true
		case ClassGrocery, ClassFuel:
			if small {
				return true
			}
		}
	}

	if slices.Contains(s.config.TargetCategories, txn.ExpenseCategory) {
		return true
	}
	if containsFold(txn.PrimaryCategory, s.config.FoodMarker) {
		return true
	}
	for _, marker := range s.config.DetailedMarkers {
		if containsFold(txn.DetailedCategory, marker) {
			return true
		}
	}
	return false
}

func (s *Scorer) inLunchWindow(hour int) bool {
	return hour >= s.config.LunchStart && hour <= s.config.LunchEnd
}

func containsFold(s, substr string) bool {
	if s == "" || substr == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(s), strings.ToUpper(substr))
}
