package confidence

import (
	"fmt"

	"github.com/Veraticus/spice-ask/internal/common"
)

// Score bounds and the neutral starting point.
const (
	Baseline = 50
	MinScore = 0
	MaxScore = 100
)

// Score adjustments. Each is added to the running score when its condition
// holds.
const (
	LunchHourBoost      = 30
	NearLunchHourBoost  = 10
	OffHourPenalty      = -20
	TargetMerchantBoost = 40
	GrocerySmallBoost   = 20
	GroceryLargePenalty = -50
	FuelSmallBoost      = 25
	FuelLargePenalty    = -40
	UnknownMerchantCost = -10
	TypicalAmountBoost  = 15
	ModerateAmountBoost = 5
	LargeAmountPenalty  = -30
	FoodCategoryBoost   = 10
	LargeGroceryPenalty = -20
)

// Default thresholds.
const (
	DefaultLikely        = 60
	DefaultUncertain     = 40
	DefaultSmallPurchase = 15.0
	DefaultTypicalMax    = 20.0
	DefaultModerateMax   = 25.0
)

// Config holds the tunable thresholds of the heuristic.
type Config struct {
	// Hours in [LunchStart, LunchEnd] count as lunch time.
	LunchStart int
	LunchEnd   int
	// Hours adjacent to lunch earn a smaller boost.
	NearHours []int

	// Grocery and fuel purchases at or below this are treated as food.
	SmallPurchaseMax float64
	TypicalMax       float64
	ModerateMax      float64

	// A score at or above LikelyThreshold is accepted; scores in
	// [UncertainFloor, LikelyThreshold) are reported as uncertain.
	LikelyThreshold int
	UncertainFloor  int

	// Expense categories that mark a transaction as food.
	TargetCategories []string
	// Substring of the provider's primary category that marks food.
	FoodMarker string
	// Substrings of the detailed category that mark food; used only by the
	// candidate filter.
	DetailedMarkers []string
}

// DefaultConfig returns the standard lunch heuristic settings.
func DefaultConfig() Config {
	return Config{
		LunchStart:       11,
		LunchEnd:         14,
		NearHours:        []int{8, 9, 10, 15, 16},
		SmallPurchaseMax: DefaultSmallPurchase,
		TypicalMax:       DefaultTypicalMax,
		ModerateMax:      DefaultModerateMax,
		LikelyThreshold:  DefaultLikely,
		UncertainFloor:   DefaultUncertain,
		TargetCategories: []string{"restaurants", "food"},
		FoodMarker:       "FOOD",
		DetailedMarkers:  []string{"RESTAURANT", "FOOD"},
	}
}

// Validate checks that thresholds are ordered sensibly.
func (c Config) Validate() error {
	if c.LunchStart < 0 || c.LunchEnd > 23 || c.LunchStart > c.LunchEnd {
		return fmt.Errorf("%w: lunch window %d-%d", common.ErrInvalidConfig, c.LunchStart, c.LunchEnd)
	}
	if c.UncertainFloor < MinScore || c.LikelyThreshold > MaxScore || c.UncertainFloor > c.LikelyThreshold {
		return fmt.Errorf("%w: uncertain floor %d must not exceed likely threshold %d within [0,100]",
			common.ErrInvalidConfig, c.UncertainFloor, c.LikelyThreshold)
	}
	if c.SmallPurchaseMax < 0 || c.TypicalMax > c.ModerateMax {
		return fmt.Errorf("%w: amount thresholds out of order", common.ErrInvalidConfig)
	}
	return nil
}
