package game

import "fmt"

// RuleError is a rule violation caused by a single player action. It is
// reported back to the acting player only and never alters game state,
// with the one exception of ErrDeckEmpty which also ends the game.
type RuleError struct {
	Code    string
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

var (
	ErrGameEnded                  = &RuleError{Code: "game_ended", Message: "The game has ended."}
	ErrNotYourTurn                = &RuleError{Code: "not_your_turn", Message: "It is not your turn."}
	ErrActionAlreadyTaken         = &RuleError{Code: "action_already_taken", Message: "You already took a main action this turn."}
	ErrLandAlreadyPlayed          = &RuleError{Code: "land_already_played", Message: "You already played a land this turn."}
	ErrLandLimitReached           = &RuleError{Code: "land_limit_reached", Message: "Land limit reached."}
	ErrInvalidLandIndex           = &RuleError{Code: "invalid_index", Message: "Invalid land selection."}
	ErrInvalidDiscardIndex        = &RuleError{Code: "invalid_index", Message: "Invalid discard selection."}
	ErrGiftNotAvailable           = &RuleError{Code: "gift_not_available", Message: "Gift not available."}
	ErrGiftNotFound               = &RuleError{Code: "gift_not_found", Message: "Gift not found."}
	ErrCannotStealOwnGift         = &RuleError{Code: "cannot_steal_own_gift", Message: "You must steal from another player."}
	ErrGiftSealed                 = &RuleError{Code: "gift_sealed", Message: "That gift is sealed and cannot be stolen."}
	ErrNotYourGift                = &RuleError{Code: "not_your_gift", Message: "You do not own that gift."}
	ErrInsufficientMana           = &RuleError{Code: "insufficient_mana", Message: "Not enough untapped lands."}
	ErrInsufficientColor          = &RuleError{Code: "insufficient_color", Message: "Not enough required color mana."}
	ErrInsufficientHandForDiscard = &RuleError{Code: "insufficient_hand", Message: "Not enough cards in hand to pay lock cost."}
	ErrInvalidDiscardSelection    = &RuleError{Code: "invalid_discard_selection", Message: "Incorrect discard selection."}
	ErrBuildingAlreadyBuilt       = &RuleError{Code: "building_already_built", Message: "You already built a building."}
	ErrUnknownBuilding            = &RuleError{Code: "unknown_building", Message: "Unknown building type."}
	ErrDiscardAlreadyPending      = &RuleError{Code: "discard_pending", Message: "You must discard before recycling again."}
	ErrNoDiscardRequired          = &RuleError{Code: "no_discard_required", Message: "No discard is required."}
	ErrDiscardRequired            = &RuleError{Code: "discard_required", Message: "You must discard before ending your turn."}
	ErrDeckEmpty                  = &RuleError{Code: "deck_empty", Message: "The deck is empty."}
	ErrUnknownAction              = &RuleError{Code: "unknown_action", Message: "Unknown action."}
	ErrPlayerNotFound             = &RuleError{Code: "player_not_found", Message: "Player not found."}
	ErrGameNotFound               = &RuleError{Code: "game_not_found", Message: "Game not found."}
)

// invalidPayload reports a structurally malformed action payload.
func invalidPayload(format string, args ...any) *RuleError {
	return &RuleError{Code: "invalid_payload", Message: fmt.Sprintf(format, args...)}
}
