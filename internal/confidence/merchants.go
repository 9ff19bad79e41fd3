package confidence

import "strings"

// MerchantClasses are the static merchant name lists the scorer tests
// membership against. Names are lowercase; a merchant belongs to a list when
// its lowercased name contains one of the entries.
type MerchantClasses struct {
	Target  []string // Known lunch spots
	Grocery []string // Grocery stores that may sell a lunch
	Fuel    []string // Gas stations that may sell food
}

// DefaultMerchantClasses returns the built-in merchant lists.
func DefaultMerchantClasses() MerchantClasses {
	return MerchantClasses{
		Target: []string{
			"chipotle", "firehouse", "taco bell", "subway",
			"panera", "jimmy johns", "potbelly", "qdoba", "moe's",
			"panda express", "pita pit", "which wich", "jersey mike's",
			"firehouse subs", "blaze pizza", "mod pizza", "papa johns",
			"domino's", "pizza hut", "mcdonald's", "burger king", "wendy's",
		},
		Grocery: []string{
			"king soupers", "albertsons", "safeway", "kroger", "walmart",
			"target", "whole foods", "trader joe's", "aldi", "costco",
			"publix", "giant eagle", "wegmans", "stop & shop",
		},
		Fuel: []string{
			"shell", "exxon", "bp", "chevron", "7-eleven", "wawa", "sheetz",
			"speedway", "circle k", "arco", "mobil", "phillips 66",
		},
	}
}

// MerchantClass is the scorer's view of a merchant.
type MerchantClass int

const (
	// ClassUnknown is a merchant on none of the lists.
	ClassUnknown MerchantClass = iota
	// ClassTarget is a known lunch merchant.
	ClassTarget
	// ClassGrocery is a grocery store.
	ClassGrocery
	// ClassFuel is a gas station.
	ClassFuel
)

// Classify returns the class of merchant, checking target, grocery and fuel
// lists in that order.
func (m MerchantClasses) Classify(merchant string) MerchantClass {
	name := strings.ToLower(merchant)
	switch {
	case containsAny(name, m.Target):
		return ClassTarget
	case containsAny(name, m.Grocery):
		return ClassGrocery
	case containsAny(name, m.Fuel):
		return ClassFuel
	default:
		return ClassUnknown
	}
}

func containsAny(name string, entries []string) bool {
	if name == "" {
		return false
	}
	for _, entry := range entries {
		if strings.Contains(name, entry) {
			return true
		}
	}
	return false
}
