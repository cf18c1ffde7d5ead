package game

import "time"

// View is one viewer's snapshot of the game. Only the viewer block carries
// hand contents; every other player exposes a hand count. Views are rebuilt
// from scratch on every request and never cached.
type View struct {
	GameID       string     `json:"game_id"`
	RoomID       string     `json:"room_id"`
	Status       GameStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	Turn         TurnView   `json:"turn"`
	Players      []PlayerView `json:"players"`
	GiftsDisplay []GiftView   `json:"gifts_display"`
	Viewer       ViewerView   `json:"viewer"`
	DeckCount    int          `json:"deck_count"`
}

// TurnView mirrors the turn block of the snapshot contract.
type TurnView struct {
	PlayerID       string `json:"player_id"`
	Number         int    `json:"number"`
	HasPlayedLand  bool   `json:"has_played_land"`
	HasTakenAction bool   `json:"has_taken_action"`
}

// LandView is a land in play with its tap state.
type LandView struct {
	Color  string `json:"color"`
	Tapped bool   `json:"tapped"`
}

// GiftView is the public shape of a gift.
type GiftView struct {
	GiftID    string `json:"gift_id"`
	Color     string `json:"color"`
	GiftClass string `json:"gift_class"`
	Locks     int    `json:"locks"`
	OwnerID   string `json:"owner_id,omitempty"`
	Sealed    bool   `json:"sealed"`
}

// PlayerView is the public shape of a seat: no hand contents.
type PlayerView struct {
	MemberID    string     `json:"member_id"`
	Name        string     `json:"name"`
	Score       int        `json:"score"`
	HandCount   int        `json:"hand_count"`
	LandsInPlay []LandView `json:"lands_in_play"`
	Gifts       []GiftView `json:"gifts"`
	Building    string     `json:"building,omitempty"`
}

// ViewerView is the private block for the requesting player.
type ViewerView struct {
	MemberID       string     `json:"member_id"`
	Name           string     `json:"name"`
	Hand           []string   `json:"hand"`
	LandsInPlay    []LandView `json:"lands_in_play"`
	Building       string     `json:"building,omitempty"`
	PendingDiscard int        `json:"pending_discard"`
}

// MemberView pairs a member id with that member's snapshot, for broadcast.
type MemberView struct {
	MemberID string
	View     *View
}

// View renders a snapshot for the given viewer.
func (e *Engine) View(viewerID string) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	player := e.findPlayer(viewerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	return e.viewLocked(player), nil
}

// Views renders one snapshot per seated player.
func (e *Engine) Views() []MemberView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewsLocked()
}

func (e *Engine) viewsLocked() []MemberView {
	views := make([]MemberView, 0, len(e.players))
	for _, player := range e.players {
		views = append(views, MemberView{
			MemberID: player.MemberID,
			View:     e.viewLocked(player),
		})
	}
	return views
}

func (e *Engine) viewLocked(viewer *Player) *View {
	players := make([]PlayerView, 0, len(e.players))
	for _, player := range e.players {
		players = append(players, PlayerView{
			MemberID:    player.MemberID,
			Name:        player.Name,
			Score:       player.Score(),
			HandCount:   len(player.Hand),
			LandsInPlay: landViews(player),
			Gifts:       giftViews(player.Gifts),
			Building:    string(player.Building),
		})
	}

	hand := make([]string, 0, len(viewer.Hand))
	for _, color := range viewer.Hand {
		hand = append(hand, string(color))
	}

	return &View{
		GameID:       e.id,
		RoomID:       e.roomID,
		Status:       e.status,
		CreatedAt:    e.createdAt,
		Turn: TurnView{
			PlayerID:       e.turn.ActivePlayer(),
			Number:         e.turn.Number(),
			HasPlayedLand:  e.turn.HasPlayedLand(),
			HasTakenAction: e.turn.HasTakenAction(),
		},
		Players:      players,
		GiftsDisplay: giftViews(e.display),
		Viewer: ViewerView{
			MemberID:       viewer.MemberID,
			Name:           viewer.Name,
			Hand:           hand,
			LandsInPlay:    landViews(viewer),
			Building:       string(viewer.Building),
			PendingDiscard: viewer.PendingDiscard,
		},
		DeckCount: len(e.deck),
	}
}

func landViews(player *Player) []LandView {
	lands := make([]LandView, 0, len(player.LandsInPlay))
	for _, land := range player.LandsInPlay {
		lands = append(lands, LandView{Color: string(land.Color), Tapped: land.Tapped})
	}
	return lands
}

func giftViews(gifts []*Gift) []GiftView {
	views := make([]GiftView, 0, len(gifts))
	for _, gift := range gifts {
		views = append(views, GiftView{
			GiftID:    gift.ID,
			Color:     string(gift.Color),
			GiftClass: string(gift.Class),
			Locks:     gift.Locks,
			OwnerID:   gift.OwnerID,
			Sealed:    gift.Sealed(),
		})
	}
	return views
}
