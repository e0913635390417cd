package domain

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// Ranks above ten. Lower ranks use their face value directly.
const (
	RankJack  = 11
	RankQueen = 12
	RankKing  = 13
	RankAce   = 14
)

// Suits in dealing order.
var Suits = []string{"S", "H", "D", "C"}

// Card is a single playing card. Immutable once drawn.
type Card struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"` // 2..10, 11=J, 12=Q, 13=K, 14=A
	Suit string `json:"suit"` // "S","H","D","C"
}

// Value returns the blackjack value of the card, counting aces as 11.
// Soft-ace reduction is handled by Hand.Total.
func (c Card) Value() int {
	switch {
	case c.Rank >= RankJack && c.Rank <= RankKing:
		return 10
	case c.Rank == RankAce:
		return 11
	default:
		return c.Rank
	}
}

// RNG is the randomness source used for shuffles and bot decisions.
// Tests inject deterministic sequences; production uses the CSPRNG.
type RNG interface {
	// Intn returns a uniform value in [0, n). n must be > 0.
	Intn(n int) int
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
}

type cryptoRNG struct{}

// NewCryptoRNG returns an RNG backed by crypto/rand.
func NewCryptoRNG() RNG {
	return cryptoRNG{}
}

func (cryptoRNG) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the platform entropy source is broken.
		panic(err)
	}
	return int(v.Int64())
}

func (r cryptoRNG) Float64() float64 {
	const resolution = 1 << 53
	return float64(r.Intn(resolution)) / float64(resolution)
}

// Deck is a shoe of cards drawn from the top. Shuffled once per round.
type Deck struct {
	cards []Card
}

// NewDeck builds a full 52-card deck and Fisher-Yates shuffles it with rng.
func NewDeck(rng RNG) *Deck {
	cards := make([]Card, 0, 52)
	for _, s := range Suits {
		for r := 2; r <= RankAce; r++ {
			cards = append(cards, Card{ID: uuid.NewString(), Rank: r, Suit: s})
		}
	}
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
	return &Deck{cards: cards}
}

// NewStackedDeck builds a deck with the given cards in draw order. Tests use
// it to script deals.
func NewStackedDeck(cards ...Card) *Deck {
	return &Deck{cards: cards}
}

// Draw pops the next card. ok is false when the deck is exhausted.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, true
}

// Remaining returns the number of undrawn cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
