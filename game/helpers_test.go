package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func c(rank Rank, suit Suit) Card {
	return NewCard(rank, suit)
}

// stackedDeck returns a DeckSource whose deck starts with top, in order,
// followed by the rest of the 52 cards.
func stackedDeck(top ...Card) DeckSource {
	return func() *Deck {
		used := make(map[Card]bool, len(top))
		d := &Deck{Cards: make([]Card, 0, 52)}
		for _, card := range top {
			used[card] = true
			d.Cards = append(d.Cards, card)
		}
		for _, card := range NewDeck().Cards {
			if !used[card] {
				d.Cards = append(d.Cards, card)
			}
		}
		return d
	}
}

func playerIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%d", i+1)
	}
	return ids
}

// newLobby seats n players named p1..pn
func newLobby(t *testing.T, n int, opts ...Option) *Session {
	t.Helper()
	s := NewSession("table", opts...)
	for _, id := range playerIDs(n) {
		_, err := s.Join(id, "name-"+id)
		require.NoError(t, err)
	}
	return s
}

// newBidding seats n players and deals a hand of the given size
func newBidding(t *testing.T, n, size int, opts ...Option) *Session {
	t.Helper()
	s := newLobby(t, n, opts...)
	s.RoundSize = size
	s.dealHand()
	require.Equal(t, PhaseBidding, s.Phase)
	return s
}

// newPlaying builds a session already in trick play with the given hands,
// p1 on lead.
func newPlaying(t *testing.T, trump Card, hands ...[]Card) *Session {
	t.Helper()
	s := NewSession("table")
	for i, id := range playerIDs(len(hands)) {
		bid := 0
		s.Players = append(s.Players, &Player{
			ID:   id,
			Name: "name-" + id,
			Hand: append([]Card{}, hands[i]...),
			Bid:  &bid,
		})
	}
	s.RoundSize = len(hands[0])
	s.Phase = PhasePlaying
	s.Round = 1
	s.Trump = &trump
	s.Deck = &Deck{}
	s.Trick = &Trick{Cards: []TrickCard{}, Turn: s.Players[0].ID}
	return s
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func findEvent(events []Event, typ EventType) (Event, bool) {
	for _, e := range events {
		if e.Type == typ {
			return e, true
		}
	}
	return Event{}, false
}

// requirePartition checks that hands, table, trump, deck and out-of-play
// cards hold every card exactly once.
func requirePartition(t *testing.T, s *Session) {
	t.Helper()
	seen := make(map[Card]int, 52)
	for _, p := range s.Players {
		for _, card := range p.Hand {
			seen[card]++
		}
	}
	if s.Trick != nil {
		for _, tc := range s.Trick.Cards {
			seen[tc.Card]++
		}
	}
	for _, tr := range s.CompletedTricks {
		for _, tc := range tr.Cards {
			seen[tc.Card]++
		}
	}
	if s.Trump != nil {
		seen[*s.Trump]++
	}
	if s.Deck != nil {
		for _, card := range s.Deck.Cards {
			seen[card]++
		}
	}
	for _, card := range s.OutOfPlay {
		seen[card]++
	}
	require.Len(t, seen, 52)
	for card, n := range seen {
		require.Equalf(t, 1, n, "card %s seen %d times", card, n)
	}
}
