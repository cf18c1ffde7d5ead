package mana

import "fmt"

// Land is a single mana source in play.
type Land struct {
	Color  Color
	Tapped bool
}

// FailureKind classifies why a payment could not be planned.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureInsufficientLands
	FailureInsufficientColor
)

// Plan lists the indices of the lands to tap, colored requirement first.
type Plan struct {
	Indices []int
}

// Result represents the outcome of a payment calculation.
type Result struct {
	Success bool
	Plan    *Plan
	Failure FailureKind
	Reason  string
}

// CalculatePayment selects untapped lands to satisfy a cost without mutating
// anything. Lands are considered in play order: the first Colored untapped
// lands matching the required color are taken, then the remaining slots are
// filled with the next untapped lands in order. Tapping happens separately
// via ExecutePayment so that a failed check never leaves a partial payment.
func CalculatePayment(cost Cost, lands []Land) *Result {
	untapped := make([]int, 0, len(lands))
	for i, land := range lands {
		if !land.Tapped {
			untapped = append(untapped, i)
		}
	}

	if len(untapped) < cost.Total {
		return &Result{
			Failure: FailureInsufficientLands,
			Reason:  fmt.Sprintf("insufficient untapped lands (need %d, have %d)", cost.Total, len(untapped)),
		}
	}

	chosen := make([]int, 0, cost.Total)
	taken := make(map[int]bool, cost.Total)

	if cost.Colored > 0 {
		for _, i := range untapped {
			if lands[i].Color != cost.Color {
				continue
			}
			chosen = append(chosen, i)
			taken[i] = true
			if len(chosen) == cost.Colored {
				break
			}
		}
		if len(chosen) < cost.Colored {
			return &Result{
				Failure: FailureInsufficientColor,
				Reason:  fmt.Sprintf("insufficient %s lands (need %d, have %d)", cost.Color, cost.Colored, len(chosen)),
			}
		}
	}

	for _, i := range untapped {
		if len(chosen) == cost.Total {
			break
		}
		if taken[i] {
			continue
		}
		chosen = append(chosen, i)
		taken[i] = true
	}

	return &Result{
		Success: true,
		Plan:    &Plan{Indices: chosen},
	}
}

// ExecutePayment taps exactly the planned lands. It returns false without
// tapping anything if the plan no longer matches the lands, which indicates
// the plan was computed against a different state.
func ExecutePayment(plan *Plan, lands []Land) bool {
	if plan == nil {
		return true
	}
	for _, i := range plan.Indices {
		if i < 0 || i >= len(lands) || lands[i].Tapped {
			return false
		}
	}
	for _, i := range plan.Indices {
		lands[i].Tapped = true
	}
	return true
}
