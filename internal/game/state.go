package game

import (
	"github.com/xmasshowdown/showdown-server-go/internal/game/mana"
	"github.com/xmasshowdown/showdown-server-go/internal/game/rules"
)

// GameStatus represents the lifecycle state of a game.
type GameStatus string

const (
	GameStatusActive GameStatus = "active"
	GameStatusEnded  GameStatus = "ended"
)

// Gift is a collectible item with a class-based value and a lock count.
// A gift with MaxLocks locks is sealed and immune to theft.
type Gift struct {
	ID      string
	Color   mana.Color
	Class   rules.GiftClass
	Locks   int
	OwnerID string // empty while the gift sits in the display pool
}

// Sealed reports whether the gift can no longer be stolen.
func (g *Gift) Sealed() bool {
	return g.Locks >= rules.MaxLocks
}

func (g *Gift) addLocks(n int) {
	g.Locks += n
	if g.Locks > rules.MaxLocks {
		g.Locks = rules.MaxLocks
	}
}

// Player holds one seat's cards, lands, gifts and upgrade. Hand cards are
// bare colors; a played land becomes a mana.Land carrying a tapped flag.
// LandsInPlay only ever grows.
type Player struct {
	MemberID       string
	Name           string
	Hand           []mana.Color
	LandsInPlay    []mana.Land
	Gifts          []*Gift
	Building       rules.BuildingType // empty until built, then permanent
	PendingDiscard int
}

// Score returns the sum of the player's gift class values.
func (p *Player) Score() int {
	score := 0
	for _, gift := range p.Gifts {
		score += gift.Class.Value()
	}
	return score
}

func (p *Player) findGift(giftID string) *Gift {
	for _, gift := range p.Gifts {
		if gift.ID == giftID {
			return gift
		}
	}
	return nil
}

func (p *Player) removeGift(giftID string) {
	kept := p.Gifts[:0]
	for _, gift := range p.Gifts {
		if gift.ID != giftID {
			kept = append(kept, gift)
		}
	}
	p.Gifts = kept
}

// Seat names one player joining a game, in turn order.
type Seat struct {
	MemberID string
	Name     string
}

// Config carries the tunable rules for one game.
type Config struct {
	InitialHand      int
	HandLimit        int
	LandLimit        int
	DeckSizePerColor int
	GiftsInDisplay   int
	GiftPoolSize     int
}

// DefaultConfig returns the standard game configuration.
func DefaultConfig() Config {
	return Config{
		InitialHand:      5,
		HandLimit:        7,
		LandLimit:        10,
		DeckSizePerColor: 12,
		GiftsInDisplay:   8,
		GiftPoolSize:     24,
	}
}
