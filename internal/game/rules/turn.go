package rules

// TurnTracker tracks turn ownership and the per-turn flags over a fixed
// round-robin player order.
type TurnTracker struct {
	order          []string
	index          int
	number         int
	hasPlayedLand  bool
	hasTakenAction bool
}

// NewTurnTracker creates a tracker at turn 1 with the first player active.
// The order is copied and never changes for the life of the game.
func NewTurnTracker(order []string) *TurnTracker {
	fixed := make([]string, len(order))
	copy(fixed, order)
	return &TurnTracker{
		order:  fixed,
		number: 1,
	}
}

// ActivePlayer returns the player who currently owns the turn.
func (t *TurnTracker) ActivePlayer() string {
	if len(t.order) == 0 {
		return ""
	}
	return t.order[t.index]
}

// Number returns the current turn number (1-based, strictly increasing).
func (t *TurnTracker) Number() int {
	return t.number
}

// HasPlayedLand reports whether the active player already played a land.
func (t *TurnTracker) HasPlayedLand() bool {
	return t.hasPlayedLand
}

// MarkLandPlayed records the once-per-turn land play.
func (t *TurnTracker) MarkLandPlayed() {
	t.hasPlayedLand = true
}

// HasTakenAction reports whether the active player already took a main action.
func (t *TurnTracker) HasTakenAction() bool {
	return t.hasTakenAction
}

// MarkActionTaken records the once-per-turn main action.
func (t *TurnTracker) MarkActionTaken() {
	t.hasTakenAction = true
}

// Advance rotates ownership to the next player in round-robin order,
// increments the turn number and resets the per-turn flags. It returns the
// new active player.
func (t *TurnTracker) Advance() string {
	t.index = (t.index + 1) % len(t.order)
	t.number++
	t.hasPlayedLand = false
	t.hasTakenAction = false
	return t.order[t.index]
}
