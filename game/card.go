package game

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	mathrand "math/rand"
	"strconv"
	"strings"
	"time"
)

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

var suitNames = [...]string{"hearts", "diamonds", "clubs", "spades"}

func (s Suit) String() string {
	if s < Hearts || s > Spades {
		return fmt.Sprintf("suit(%d)", int(s))
	}
	return suitNames[s]
}

// Valid reports whether s is one of the four suits
func (s Suit) Valid() bool {
	return s >= Hearts && s <= Spades
}

// MarshalText encodes the suit by name
func (s Suit) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: suit %d", ErrInvalidCard, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a suit name, ignoring case
func (s *Suit) UnmarshalText(text []byte) error {
	parsed, err := ParseSuit(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSuit parses a suit name such as "hearts"
func ParseSuit(name string) (Suit, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range suitNames {
		if n == name {
			return Suit(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown suit %q", ErrInvalidCard, name)
}

// AllSuits returns all suits in order
func AllSuits() []Suit {
	return []Suit{Hearts, Diamonds, Clubs, Spades}
}

// Rank represents a card rank (2-14, where 11=J, 12=Q, 13=K, 14=A)
type Rank int

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

func (r Rank) String() string {
	switch r {
	case Jack:
		return "jack"
	case Queen:
		return "queen"
	case King:
		return "king"
	case Ace:
		return "ace"
	default:
		return strconv.Itoa(int(r))
	}
}

// Valid reports whether r is between Two and Ace
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// MarshalText encodes the rank as "2".."10" or a face name
func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: rank %d", ErrInvalidCard, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rank, ignoring case
func (r *Rank) UnmarshalText(text []byte) error {
	parsed, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRank parses "2".."10", "jack", "queen", "king" or "ace"
func ParseRank(name string) (Rank, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "jack":
		return Jack, nil
	case "queen":
		return Queen, nil
	case "king":
		return King, nil
	case "ace":
		return Ace, nil
	}
	n, err := strconv.Atoi(name)
	if err != nil || !Rank(n).Valid() || Rank(n) > Ten {
		return 0, fmt.Errorf("%w: unknown rank %q", ErrInvalidCard, name)
	}
	return Rank(n), nil
}

// AllRanks returns all ranks in order (2-A)
func AllRanks() []Rank {
	return []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
}

// Card represents a playing card. Cards are comparable with ==.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// NewCard creates a card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

func (c Card) String() string {
	return c.Rank.String() + "_" + c.Suit.String()
}

// Valid reports whether the card is one of the 52 standard cards
func (c Card) Valid() bool {
	return c.Rank.Valid() && c.Suit.Valid()
}

// Beats returns true if this card takes the other card given the trump suit.
// Trump outranks every other suit; otherwise only a higher card of the same
// suit wins, so an off-suit card never displaces the current best.
func (c Card) Beats(other Card, trump Suit) bool {
	cIsTrump := c.Suit == trump
	otherIsTrump := other.Suit == trump

	if cIsTrump && !otherIsTrump {
		return true
	}
	if !cIsTrump && otherIsTrump {
		return false
	}
	if c.Suit == other.Suit {
		return c.Rank > other.Rank
	}
	return false
}

// Deck represents a deck of cards
type Deck struct {
	Cards []Card
}

// DeckSource produces the deck used for a new hand
type DeckSource func() *Deck

// ShuffledDeck is the default DeckSource
func ShuffledDeck() *Deck {
	d := NewDeck()
	d.Shuffle()
	return d
}

// NewDeck returns the 52 cards in suit then rank order
func NewDeck() *Deck {
	cards := make([]Card, 0, len(suitNames)*len(AllRanks()))
	for _, suit := range AllSuits() {
		for _, rank := range AllRanks() {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return &Deck{Cards: cards}
}

// seedSource feeds shuffle seeds
var seedSource io.Reader = rand.Reader

// shuffleSeed reads a seed from seedSource, falling back to the clock when
// the reader fails.
func shuffleSeed() int64 {
	var seed int64
	if err := binary.Read(seedSource, binary.LittleEndian, &seed); err != nil || seed == 0 {
		seed = time.Now().UnixNano()
	}
	return seed
}

// Shuffle puts the deck in a uniformly random order
func (d *Deck) Shuffle() {
	cards := d.Cards
	mathrand.New(mathrand.NewSource(shuffleSeed())).Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Deal takes up to n cards off the top. The result does not alias the deck.
func (d *Deck) Deal(n int) []Card {
	n = min(n, len(d.Cards))
	hand := append([]Card(nil), d.Cards[:n]...)
	d.Cards = d.Cards[n:]
	return hand
}

// Remaining is the number of undealt cards
func (d *Deck) Remaining() int { return len(d.Cards) }
