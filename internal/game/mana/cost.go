package mana

import "fmt"

// Cost represents a payment requirement over a player's lands in play.
// Colored of the Total taps must come from lands matching Color; the rest
// can be paid with any untapped land.
type Cost struct {
	Total   int
	Colored int
	Color   Color
}

// Fixed returns a cost with no color requirement.
func Fixed(total int) Cost {
	return Cost{Total: total}
}

// WithColor returns a cost requiring colored taps of the given color.
func WithColor(total, colored int, color Color) Cost {
	return Cost{Total: total, Colored: colored, Color: color}
}

// String returns a compact representation, e.g. "3 (2 G)".
func (c Cost) String() string {
	if c.Colored > 0 {
		return fmt.Sprintf("%d (%d %s)", c.Total, c.Colored, c.Color)
	}
	return fmt.Sprintf("%d", c.Total)
}
