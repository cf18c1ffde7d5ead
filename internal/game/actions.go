package game

import (
	"encoding/json"
)

// Action names accepted from the transport layer.
const (
	ActionPlayLand      = "play_land"
	ActionClaimGift     = "claim_gift"
	ActionStealGift     = "steal_gift"
	ActionWrapGift      = "wrap_gift"
	ActionBuildBuilding = "build_building"
	ActionRecycle       = "recycle"
	ActionDiscard       = "discard"
	ActionEndTurn       = "end_turn"
)

// Action is one validated player action. The set is closed: the engine
// dispatches with an exhaustive type switch, so new kinds must be added
// here and handled there.
type Action interface {
	isAction()
}

// PlayLandAction moves a hand card into play as an untapped land.
type PlayLandAction struct {
	Index int
}

// ClaimGiftAction claims a gift from the display pool.
type ClaimGiftAction struct {
	GiftID string
}

// StealGiftAction takes a gift owned by another player. DiscardIndices nil
// means the lock cost is paid from the front of the hand.
type StealGiftAction struct {
	GiftID         string
	AddLock        bool
	DiscardIndices []int
}

// WrapGiftAction adds locks to a gift the requester owns.
type WrapGiftAction struct {
	GiftID string
}

// BuildBuildingAction builds the requester's one permanent upgrade.
type BuildBuildingAction struct {
	Building string
}

// RecycleAction draws replacement cards and queues a mandatory discard.
type RecycleAction struct{}

// DiscardAction discards one hand card while a discard is pending.
type DiscardAction struct {
	Index int
}

// EndTurnAction passes the turn to the next player.
type EndTurnAction struct{}

func (*PlayLandAction) isAction()      {}
func (*ClaimGiftAction) isAction()     {}
func (*StealGiftAction) isAction()     {}
func (*WrapGiftAction) isAction()      {}
func (*BuildBuildingAction) isAction() {}
func (*RecycleAction) isAction()       {}
func (*DiscardAction) isAction()       {}
func (*EndTurnAction) isAction()       {}

// DecodeAction parses a named action and its raw payload into a typed,
// structurally validated Action. Payloads come from the network and are
// never trusted: missing or mistyped fields fail with a RuleError.
func DecodeAction(name string, payload json.RawMessage) (Action, error) {
	switch name {
	case ActionPlayLand:
		var p struct {
			Index *int `json:"index"`
		}
		if err := unmarshalPayload(payload, &p); err != nil {
			return nil, err
		}
		if p.Index == nil {
			return nil, invalidPayload("Missing land index.")
		}
		return &PlayLandAction{Index: *p.Index}, nil

	case ActionClaimGift:
		var p struct {
			GiftID string `json:"gift_id"`
		}
		if err := unmarshalPayload(payload, &p); err != nil {
			return nil, err
		}
		if p.GiftID == "" {
			return nil, invalidPayload("Missing gift id.")
		}
		return &ClaimGiftAction{GiftID: p.GiftID}, nil

	case ActionStealGift:
		var p struct {
			GiftID         string `json:"gift_id"`
			AddLock        bool   `json:"add_lock"`
			DiscardIndices *[]int `json:"discard_indices"`
		}
		if err := unmarshalPayload(payload, &p); err != nil {
			return nil, err
		}
		if p.GiftID == "" {
			return nil, invalidPayload("Missing gift id.")
		}
		action := &StealGiftAction{GiftID: p.GiftID, AddLock: p.AddLock}
		if p.DiscardIndices != nil {
			action.DiscardIndices = *p.DiscardIndices
		}
		return action, nil

	case ActionWrapGift:
		var p struct {
			GiftID string `json:"gift_id"`
		}
		if err := unmarshalPayload(payload, &p); err != nil {
			return nil, err
		}
		if p.GiftID == "" {
			return nil, invalidPayload("Missing gift id.")
		}
		return &WrapGiftAction{GiftID: p.GiftID}, nil

	case ActionBuildBuilding:
		var p struct {
			Building string `json:"building"`
		}
		if err := unmarshalPayload(payload, &p); err != nil {
			return nil, err
		}
		if p.Building == "" {
			return nil, invalidPayload("Missing building type.")
		}
		return &BuildBuildingAction{Building: p.Building}, nil

	case ActionRecycle:
		return &RecycleAction{}, nil

	case ActionDiscard:
		var p struct {
			Index *int `json:"index"`
		}
		if err := unmarshalPayload(payload, &p); err != nil {
			return nil, err
		}
		if p.Index == nil {
			return nil, invalidPayload("Missing discard index.")
		}
		return &DiscardAction{Index: *p.Index}, nil

	case ActionEndTurn:
		return &EndTurnAction{}, nil

	default:
		return nil, ErrUnknownAction
	}
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalidPayload("Malformed action payload.")
	}
	return nil
}
