package game

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xmasshowdown/showdown-server-go/internal/game/mana"
	"github.com/xmasshowdown/showdown-server-go/internal/game/rules"
)

// Engine runs one game: it guards the turn structure, validates actions and
// applies them to the aggregate state. All mutation is serialized by the
// engine's own mutex, so at most one action is in flight per game while
// unrelated games never block each other.
type Engine struct {
	mu sync.Mutex

	id        string
	roomID    string
	createdAt time.Time
	cfg       Config
	logger    *zap.Logger

	status  GameStatus
	players []*Player
	deck    []mana.Color
	display []*Gift
	turn    *rules.TurnTracker
}

// ScoreEntry reports one player's final standing.
type ScoreEntry struct {
	MemberID string
	Name     string
	Score    int
}

// NewEngine creates a game for the given room and seats, builds and shuffles
// the deck, fills the gift display, deals opening hands and starts turn 1.
// Seat order is turn order.
func NewEngine(roomID string, seats []Seat, cfg Config, logger *zap.Logger) (*Engine, error) {
	if len(seats) < 2 {
		return nil, fmt.Errorf("at least 2 players required")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	e := &Engine{
		id:        uuid.NewString(),
		roomID:    roomID,
		createdAt: time.Now().UTC(),
		cfg:       cfg,
		logger:    logger,
		status:    GameStatusActive,
		deck:      buildDeck(cfg, rng),
		display:   buildGifts(cfg, rng),
	}

	order := make([]string, 0, len(seats))
	for _, seat := range seats {
		e.players = append(e.players, &Player{
			MemberID: seat.MemberID,
			Name:     seat.Name,
		})
		order = append(order, seat.MemberID)
	}
	e.turn = rules.NewTurnTracker(order)

	for _, p := range e.players {
		if err := e.draw(p, cfg.InitialHand); err != nil {
			return nil, fmt.Errorf("deck too small for opening hands: %w", err)
		}
	}
	if err := e.startTurn(); err != nil {
		return nil, fmt.Errorf("failed to start first turn: %w", err)
	}

	logger.Info("game created",
		zap.String("game_id", e.id),
		zap.String("room_id", roomID),
		zap.Int("players", len(seats)),
		zap.Int("deck_size", len(e.deck)),
	)

	return e, nil
}

func buildDeck(cfg Config, rng *rand.Rand) []mana.Color {
	deck := make([]mana.Color, 0, cfg.DeckSizePerColor*len(mana.Colors))
	for _, color := range mana.Colors {
		for i := 0; i < cfg.DeckSizePerColor; i++ {
			deck = append(deck, color)
		}
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// buildGifts generates the gift pool with classes weighted 5/3/2 and trims
// it to the display size.
func buildGifts(cfg Config, rng *rand.Rand) []*Gift {
	gifts := make([]*Gift, 0, cfg.GiftPoolSize)
	for i := 0; i < cfg.GiftPoolSize; i++ {
		var class rules.GiftClass
		switch roll := rng.Intn(10); {
		case roll < 5:
			class = rules.GiftClassI
		case roll < 8:
			class = rules.GiftClassII
		default:
			class = rules.GiftClassIII
		}
		gifts = append(gifts, &Gift{
			ID:    uuid.NewString(),
			Color: mana.Colors[rng.Intn(len(mana.Colors))],
			Class: class,
		})
	}
	if len(gifts) > cfg.GiftsInDisplay {
		gifts = gifts[:cfg.GiftsInDisplay]
	}
	return gifts
}

// ID returns the game's unique identifier.
func (e *Engine) ID() string {
	return e.id
}

// RoomID returns the room this game belongs to.
func (e *Engine) RoomID() string {
	return e.roomID
}

// Status returns the game's lifecycle state.
func (e *Engine) Status() GameStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// MemberIDs returns the ids of all seated players in turn order.
func (e *Engine) MemberIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.players))
	for _, p := range e.players {
		ids = append(ids, p.MemberID)
	}
	return ids
}

// FinalScores returns each player's current score in seat order.
func (e *Engine) FinalScores() []ScoreEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	scores := make([]ScoreEntry, 0, len(e.players))
	for _, p := range e.players {
		scores = append(scores, ScoreEntry{
			MemberID: p.MemberID,
			Name:     p.Name,
			Score:    p.Score(),
		})
	}
	return scores
}

// ApplyAction validates and applies one action for the requester. On success
// it returns fresh per-viewer snapshots computed before the lock is released,
// so the caller can broadcast a state no concurrent mutation has touched.
// On failure the state is unchanged, except for the sanctioned deck-empty
// failure which flips the game to ended.
func (e *Engine) ApplyAction(requesterID string, action Action) ([]MemberView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.apply(requesterID, action); err != nil {
		return nil, err
	}
	return e.viewsLocked(), nil
}

// apply dispatches over the closed action set. Every handler validates
// before mutating so a failed action commits nothing.
func (e *Engine) apply(playerID string, action Action) error {
	switch a := action.(type) {
	case *PlayLandAction:
		return e.playLand(playerID, a.Index)
	case *ClaimGiftAction:
		return e.claimGift(playerID, a.GiftID)
	case *StealGiftAction:
		return e.stealGift(playerID, a)
	case *WrapGiftAction:
		return e.wrapGift(playerID, a.GiftID)
	case *BuildBuildingAction:
		return e.buildBuilding(playerID, a.Building)
	case *RecycleAction:
		return e.recycle(playerID)
	case *DiscardAction:
		return e.discardFromHand(playerID, a.Index)
	case *EndTurnAction:
		return e.endTurn(playerID)
	default:
		return ErrUnknownAction
	}
}

// ==================== Guards ====================

func (e *Engine) requireTurn(playerID string) error {
	if e.status != GameStatusActive {
		return ErrGameEnded
	}
	if e.turn.ActivePlayer() != playerID {
		return ErrNotYourTurn
	}
	return nil
}

func (e *Engine) requireMainAction(playerID string) error {
	if err := e.requireTurn(playerID); err != nil {
		return err
	}
	if e.turn.HasTakenAction() {
		return ErrActionAlreadyTaken
	}
	return nil
}

// ==================== Action handlers ====================

func (e *Engine) playLand(playerID string, index int) error {
	if err := e.requireTurn(playerID); err != nil {
		return err
	}
	player := e.findPlayer(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if e.turn.HasPlayedLand() {
		return ErrLandAlreadyPlayed
	}
	if len(player.LandsInPlay) >= e.cfg.LandLimit {
		return ErrLandLimitReached
	}
	if index < 0 || index >= len(player.Hand) {
		return ErrInvalidLandIndex
	}

	color := player.Hand[index]
	player.Hand = append(player.Hand[:index], player.Hand[index+1:]...)
	player.LandsInPlay = append(player.LandsInPlay, mana.Land{Color: color})
	e.turn.MarkLandPlayed()

	e.logger.Debug("land played",
		zap.String("game_id", e.id),
		zap.String("player", playerID),
		zap.String("color", string(color)),
	)
	return nil
}

func (e *Engine) claimGift(playerID, giftID string) error {
	if err := e.requireMainAction(playerID); err != nil {
		return err
	}
	player := e.findPlayer(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	gift := e.findDisplayGift(giftID)
	if gift == nil {
		return ErrGiftNotAvailable
	}

	plan, err := e.planPayment(player, rules.GiftCost(gift.Class, gift.Color))
	if err != nil {
		return err
	}

	mana.ExecutePayment(plan, player.LandsInPlay)
	gift.OwnerID = playerID
	gift.addLocks(1)
	player.Gifts = append(player.Gifts, gift)
	e.removeDisplayGift(giftID)
	e.turn.MarkActionTaken()

	e.logger.Debug("gift claimed",
		zap.String("game_id", e.id),
		zap.String("player", playerID),
		zap.String("gift_id", giftID),
	)
	return nil
}

func (e *Engine) stealGift(playerID string, a *StealGiftAction) error {
	if err := e.requireMainAction(playerID); err != nil {
		return err
	}
	player := e.findPlayer(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	gift, owner := e.findOwnedGift(a.GiftID)
	if gift == nil {
		return ErrGiftNotFound
	}
	if owner.MemberID == playerID {
		return ErrCannotStealOwnGift
	}
	if gift.Sealed() {
		return ErrGiftSealed
	}

	plan, err := e.planPayment(player, rules.GiftCost(gift.Class, gift.Color))
	if err != nil {
		return err
	}

	discardCount := rules.StealDiscardCount(gift.Locks, player.Building)
	if len(player.Hand) < discardCount {
		return ErrInsufficientHandForDiscard
	}
	discards, err := planDiscards(a.DiscardIndices, discardCount, len(player.Hand))
	if err != nil {
		return err
	}

	// All checks passed; commit atomically.
	mana.ExecutePayment(plan, player.LandsInPlay)
	removeHandIndices(player, discards)
	owner.removeGift(a.GiftID)
	gift.OwnerID = playerID
	if a.AddLock && player.Building == rules.BuildingCrowbar {
		gift.addLocks(1)
	}
	player.Gifts = append(player.Gifts, gift)
	e.turn.MarkActionTaken()

	e.logger.Debug("gift stolen",
		zap.String("game_id", e.id),
		zap.String("player", playerID),
		zap.String("victim", owner.MemberID),
		zap.String("gift_id", a.GiftID),
		zap.Int("discards", discardCount),
	)
	return nil
}

func (e *Engine) wrapGift(playerID, giftID string) error {
	if err := e.requireMainAction(playerID); err != nil {
		return err
	}
	player := e.findPlayer(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	gift := player.findGift(giftID)
	if gift == nil {
		return ErrNotYourGift
	}

	plan, err := e.planPayment(player, rules.WrapCost())
	if err != nil {
		return err
	}

	mana.ExecutePayment(plan, player.LandsInPlay)
	gift.addLocks(rules.WrapLocks(player.Building))
	e.turn.MarkActionTaken()

	e.logger.Debug("gift wrapped",
		zap.String("game_id", e.id),
		zap.String("player", playerID),
		zap.String("gift_id", giftID),
		zap.Int("locks", gift.Locks),
	)
	return nil
}

func (e *Engine) buildBuilding(playerID, rawBuilding string) error {
	if err := e.requireMainAction(playerID); err != nil {
		return err
	}
	player := e.findPlayer(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	building, ok := rules.ParseBuilding(rawBuilding)
	if !ok {
		return ErrUnknownBuilding
	}
	if player.Building != "" {
		return ErrBuildingAlreadyBuilt
	}

	plan, err := e.planPayment(player, rules.BuildingCost(building))
	if err != nil {
		return err
	}

	mana.ExecutePayment(plan, player.LandsInPlay)
	player.Building = building
	e.turn.MarkActionTaken()

	e.logger.Debug("building built",
		zap.String("game_id", e.id),
		zap.String("player", playerID),
		zap.String("building", string(building)),
	)
	return nil
}

func (e *Engine) recycle(playerID string) error {
	if err := e.requireMainAction(playerID); err != nil {
		return err
	}
	player := e.findPlayer(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if player.PendingDiscard > 0 {
		return ErrDiscardAlreadyPending
	}

	count := 1
	if player.Building == rules.BuildingSupplyWarehouse {
		count = 2
	}
	if err := e.draw(player, count); err != nil {
		return err
	}
	player.PendingDiscard = 1
	e.turn.MarkActionTaken()

	e.logger.Debug("recycled",
		zap.String("game_id", e.id),
		zap.String("player", playerID),
		zap.Int("drawn", count),
	)
	return nil
}

func (e *Engine) discardFromHand(playerID string, index int) error {
	if err := e.requireTurn(playerID); err != nil {
		return err
	}
	player := e.findPlayer(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if player.PendingDiscard <= 0 {
		return ErrNoDiscardRequired
	}
	if index < 0 || index >= len(player.Hand) {
		return ErrInvalidDiscardIndex
	}

	player.Hand = append(player.Hand[:index], player.Hand[index+1:]...)
	player.PendingDiscard--
	return nil
}

func (e *Engine) endTurn(playerID string) error {
	if err := e.requireTurn(playerID); err != nil {
		return err
	}
	player := e.findPlayer(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if player.PendingDiscard > 0 {
		return ErrDiscardRequired
	}

	// Overflow is trimmed from the tail without player choice.
	if len(player.Hand) > e.cfg.HandLimit {
		player.Hand = player.Hand[:e.cfg.HandLimit]
	}

	next := e.turn.Advance()
	e.logger.Debug("turn advanced",
		zap.String("game_id", e.id),
		zap.String("from", playerID),
		zap.String("to", next),
		zap.Int("turn", e.turn.Number()),
	)
	return e.startTurn()
}

// ==================== Turn lifecycle ====================

// startTurn untaps the active player's lands and draws their card for the
// turn. A failed draw ends the game.
func (e *Engine) startTurn() error {
	player := e.findPlayer(e.turn.ActivePlayer())
	if player == nil {
		return ErrPlayerNotFound
	}
	for i := range player.LandsInPlay {
		player.LandsInPlay[i].Tapped = false
	}
	return e.draw(player, 1)
}

// draw moves count cards from the front of the deck into the hand. Deck
// exhaustion is the terminal condition: it flips the game to ended and the
// error propagates to the caller.
func (e *Engine) draw(player *Player, count int) error {
	for i := 0; i < count; i++ {
		if len(e.deck) == 0 {
			e.status = GameStatusEnded
			e.logger.Info("deck exhausted, game ended",
				zap.String("game_id", e.id),
				zap.Int("turn", e.turn.Number()),
			)
			return ErrDeckEmpty
		}
		player.Hand = append(player.Hand, e.deck[0])
		e.deck = e.deck[1:]
	}
	return nil
}

// ==================== Helpers ====================

func (e *Engine) planPayment(player *Player, cost mana.Cost) (*mana.Plan, error) {
	result := mana.CalculatePayment(cost, player.LandsInPlay)
	if !result.Success {
		if result.Failure == mana.FailureInsufficientColor {
			return nil, ErrInsufficientColor
		}
		return nil, ErrInsufficientMana
	}
	return result.Plan, nil
}

// planDiscards resolves the steal discard cost into hand indices sorted
// descending, so removal keeps the remaining indices stable. A nil selection
// discards from the front of the hand.
func planDiscards(indices []int, count, handSize int) ([]int, error) {
	if indices == nil {
		discards := make([]int, 0, count)
		for i := count - 1; i >= 0; i-- {
			discards = append(discards, i)
		}
		return discards, nil
	}

	unique := make(map[int]bool, len(indices))
	for _, idx := range indices {
		unique[idx] = true
	}
	if len(unique) != count {
		return nil, ErrInvalidDiscardSelection
	}
	discards := make([]int, 0, count)
	for idx := range unique {
		if idx < 0 || idx >= handSize {
			return nil, ErrInvalidDiscardSelection
		}
		discards = append(discards, idx)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(discards)))
	return discards, nil
}

func removeHandIndices(player *Player, descending []int) {
	for _, idx := range descending {
		player.Hand = append(player.Hand[:idx], player.Hand[idx+1:]...)
	}
}

func (e *Engine) findPlayer(playerID string) *Player {
	for _, player := range e.players {
		if player.MemberID == playerID {
			return player
		}
	}
	return nil
}

func (e *Engine) findDisplayGift(giftID string) *Gift {
	for _, gift := range e.display {
		if gift.ID == giftID {
			return gift
		}
	}
	return nil
}

func (e *Engine) removeDisplayGift(giftID string) {
	kept := e.display[:0]
	for _, gift := range e.display {
		if gift.ID != giftID {
			kept = append(kept, gift)
		}
	}
	e.display = kept
}

func (e *Engine) findOwnedGift(giftID string) (*Gift, *Player) {
	for _, player := range e.players {
		if gift := player.findGift(giftID); gift != nil {
			return gift, player
		}
	}
	return nil, nil
}
