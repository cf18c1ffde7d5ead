package rules

import (
	"github.com/xmasshowdown/showdown-server-go/internal/game/mana"
)

// GiftClass ranks a gift's value and cost tier.
type GiftClass string

const (
	GiftClassI   GiftClass = "I"
	GiftClassII  GiftClass = "II"
	GiftClassIII GiftClass = "III"
)

// Value returns the score contribution of a gift of this class.
func (c GiftClass) Value() int {
	switch c {
	case GiftClassI:
		return 1
	case GiftClassII:
		return 2
	case GiftClassIII:
		return 3
	default:
		return 0
	}
}

// Valid reports whether c is a known gift class.
func (c GiftClass) Valid() bool {
	switch c {
	case GiftClassI, GiftClassII, GiftClassIII:
		return true
	default:
		return false
	}
}

// BuildingType identifies a one-time, permanent player upgrade.
type BuildingType string

const (
	BuildingThiefsGloves     BuildingType = "thiefs_gloves"     // steal discard cost reduced by 2
	BuildingCrowbar          BuildingType = "crowbar"           // optional +1 lock when stealing
	BuildingReinforcedRibbon BuildingType = "reinforced_ribbon" // wrapping adds 2 locks
	BuildingSupplyWarehouse  BuildingType = "supply_warehouse"  // recycling draws 2 cards
)

// ParseBuilding converts a wire string into a BuildingType.
func ParseBuilding(s string) (BuildingType, bool) {
	switch BuildingType(s) {
	case BuildingThiefsGloves, BuildingCrowbar, BuildingReinforcedRibbon, BuildingSupplyWarehouse:
		return BuildingType(s), true
	default:
		return "", false
	}
}

const (
	// MaxLocks is the lock count at which a gift becomes sealed.
	MaxLocks = 5

	// StealDiscardReduction is the discard cost reduction granted by the
	// thief's gloves building.
	StealDiscardReduction = 2
)

var giftCosts = map[GiftClass]struct{ total, colored int }{
	GiftClassI:   {3, 2},
	GiftClassII:  {5, 3},
	GiftClassIII: {7, 4},
}

var buildingColors = map[BuildingType]mana.Color{
	BuildingThiefsGloves:     mana.ColorBlack,
	BuildingCrowbar:          mana.ColorRed,
	BuildingReinforcedRibbon: mana.ColorGreen,
	BuildingSupplyWarehouse:  mana.ColorBlue,
}

// GiftCost returns the payment required to claim or steal a gift of the
// given class. The color requirement is always the gift's own color.
func GiftCost(class GiftClass, color mana.Color) mana.Cost {
	c := giftCosts[class]
	return mana.WithColor(c.total, c.colored, color)
}

// WrapCost returns the payment required to add locks to an owned gift.
func WrapCost() mana.Cost {
	return mana.Fixed(2)
}

// BuildingColor returns the color tied to a building type.
func BuildingColor(building BuildingType) mana.Color {
	return buildingColors[building]
}

// BuildingCost returns the one-time payment required to build.
func BuildingCost(building BuildingType) mana.Cost {
	return mana.WithColor(4, 2, buildingColors[building])
}

// WrapLocks returns how many locks a wrap action adds for a player holding
// the given building.
func WrapLocks(building BuildingType) int {
	if building == BuildingReinforcedRibbon {
		return 2
	}
	return 1
}

// StealDiscardCount returns how many hand cards a steal costs against a gift
// with the given lock count, for a player holding the given building.
func StealDiscardCount(locks int, building BuildingType) int {
	count := locks
	if building == BuildingThiefsGloves {
		count -= StealDiscardReduction
	}
	if count < 0 {
		count = 0
	}
	return count
}
