package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrickWinnerTrumpBeatsHigherRank(t *testing.T) {
	cards := []TrickCard{
		{PlayerID: "p1", Card: c(Ten, Hearts)},
		{PlayerID: "p2", Card: c(Ace, Hearts)},
		{PlayerID: "p3", Card: c(Two, Spades)},
	}

	assert.Equal(t, 2, TrickWinner(cards, Spades))
}

func TestTrickWinner(t *testing.T) {
	tests := []struct {
		name  string
		cards []Card
		trump Suit
		want  int
	}{
		{"leader keeps trick when nobody follows", []Card{c(Five, Clubs), c(Ace, Hearts), c(King, Diamonds)}, Spades, 0},
		{"highest of requested suit", []Card{c(Five, Clubs), c(Jack, Clubs), c(Nine, Clubs)}, Spades, 1},
		{"highest trump among several", []Card{c(Ace, Clubs), c(Four, Spades), c(Queen, Spades), c(King, Clubs)}, Spades, 2},
		{"trump lead", []Card{c(Three, Hearts), c(Ace, Clubs), c(Two, Hearts)}, Hearts, 0},
		{"single card", []Card{c(Two, Diamonds)}, Clubs, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trick := make([]TrickCard, len(tt.cards))
			for i, card := range tt.cards {
				trick[i] = TrickCard{PlayerID: playerIDs(len(tt.cards))[i], Card: card}
			}
			assert.Equal(t, tt.want, TrickWinner(trick, tt.trump))
		})
	}
}

func TestCheckLegal(t *testing.T) {
	hearts := Hearts
	tests := []struct {
		name string
		hand []Card
		card Card
		want error
	}{
		{"must follow requested suit", []Card{c(Two, Hearts), c(Ace, Clubs)}, c(Ace, Clubs), ErrMustFollowSuit},
		{"cannot trump while holding requested suit", []Card{c(Two, Hearts), c(Ace, Spades)}, c(Ace, Spades), ErrMustFollowSuit},
		{"follows suit", []Card{c(Two, Hearts), c(Ace, Clubs)}, c(Two, Hearts), nil},
		{"must trump when out of suit", []Card{c(Ace, Clubs), c(Three, Spades)}, c(Ace, Clubs), ErrMustPlayTrump},
		{"trumps when out of suit", []Card{c(Ace, Clubs), c(Three, Spades)}, c(Three, Spades), nil},
		{"anything when holding neither", []Card{c(Ace, Clubs), c(Four, Diamonds)}, c(Four, Diamonds), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckLegal(tt.hand, tt.card, &hearts, Spades)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
				assert.ErrorIs(t, err, ErrRuleViolation)
			}
		})
	}

	assert.NoError(t, CheckLegal([]Card{c(Ace, Clubs), c(Two, Spades)}, c(Ace, Clubs), nil, Spades), "leader plays anything")
}

func TestPlayCardErrors(t *testing.T) {
	s := newPlaying(t, c(Nine, Diamonds),
		[]Card{c(Ten, Hearts), c(Four, Clubs)},
		[]Card{c(Ace, Hearts), c(Two, Spades)},
	)

	_, err := s.PlayCard("p2", c(Ace, Hearts))
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.ErrorIs(t, err, ErrTurn)

	_, err = s.PlayCard("p1", c(Ace, Hearts))
	assert.ErrorIs(t, err, ErrCardNotHeld)
	assert.ErrorIs(t, err, ErrOwnership)

	_, err = s.PlayCard("p1", Card{Rank: 1, Suit: Hearts})
	assert.ErrorIs(t, err, ErrInvalidCard)

	_, err = s.PlayCard("ghost", c(Ten, Hearts))
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	_, err = s.PlayCard("p1", c(Ten, Hearts))
	require.NoError(t, err)

	_, err = s.PlayCard("p2", c(Two, Spades))
	assert.ErrorIs(t, err, ErrMustFollowSuit)

	assert.Len(t, s.Trick.Cards, 1)
	assert.Len(t, s.Player("p2").Hand, 2)
	assert.Equal(t, "p2", s.Trick.Turn)
}

func TestPlayCardFlow(t *testing.T) {
	s := newPlaying(t, c(Nine, Spades),
		[]Card{c(Ten, Hearts), c(Four, Clubs)},
		[]Card{c(Ace, Hearts), c(Five, Clubs)},
		[]Card{c(Two, Spades), c(Six, Clubs)},
	)

	events, err := s.PlayCard("p1", c(Ten, Hearts))
	require.NoError(t, err)
	assert.Equal(t, []EventType{EventGameStateUpdated, EventCardPlayed, EventTurnAdvanced}, eventTypes(events))
	assert.Equal(t, "hearts", *events[0].Patch.RequestedSuit)
	require.NotNil(t, s.Trick.RequestedSuit)
	assert.Equal(t, Hearts, *s.Trick.RequestedSuit)
	assert.Equal(t, "p2", events[2].PlayerID)

	events, err = s.PlayCard("p2", c(Ace, Hearts))
	require.NoError(t, err)
	assert.Equal(t, []EventType{EventCardPlayed, EventTurnAdvanced}, eventTypes(events))

	// p3 has no hearts and must trump
	_, err = s.PlayCard("p3", c(Six, Clubs))
	assert.ErrorIs(t, err, ErrMustPlayTrump)

	events, err = s.PlayCard("p3", c(Two, Spades))
	require.NoError(t, err)
	assert.Equal(t, []EventType{
		EventCardPlayed,
		EventTrickResolved,
		EventRosterUpdated,
		EventGameStateUpdated,
		EventCardsCleared,
		EventTurnAdvanced,
	}, eventTypes(events))

	resolved := events[1]
	assert.Equal(t, "p3", resolved.PlayerID)
	assert.Equal(t, c(Two, Spades), *resolved.Card)
	assert.Equal(t, "", *events[3].Patch.RequestedSuit)

	assert.Equal(t, 1, s.Player("p3").TricksWon)
	assert.Equal(t, "p3", s.Trick.Turn)
	assert.Empty(t, s.Trick.Cards)
	assert.Nil(t, s.Trick.RequestedSuit)
	require.Len(t, s.CompletedTricks, 1)
	assert.Equal(t, "p3", s.CompletedTricks[0].WinnerID)

	// the winner leads the next trick
	_, err = s.PlayCard("p1", c(Four, Clubs))
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = s.PlayCard("p3", c(Six, Clubs))
	require.NoError(t, err)
	assert.Equal(t, "p1", s.Trick.Turn)
}

func TestRoundEndsAfterLastTrick(t *testing.T) {
	s := newPlaying(t, c(Nine, Spades),
		[]Card{c(Ten, Hearts)},
		[]Card{c(Ace, Hearts)},
	)
	_, err := s.PlayCard("p1", c(Ten, Hearts))
	require.NoError(t, err)
	events, err := s.PlayCard("p2", c(Ace, Hearts))
	require.NoError(t, err)

	advanced, ok := findEvent(events, EventRoundAdvanced)
	require.True(t, ok)
	assert.Equal(t, 2, *advanced.RoundSize)

	// p2 bid 0 and took the trick, p1 bid 0 and took nothing
	assert.Equal(t, 1, s.Player("p1").Score)
	assert.Equal(t, -1, s.Player("p2").Score)

	// seats rotated and the next hand is dealt
	assert.Equal(t, []string{"p2", "p1"}, []string{s.Players[0].ID, s.Players[1].ID})
	assert.Equal(t, PhaseBidding, s.Phase)
	assert.Equal(t, 2, s.Round)
	for _, p := range s.Players {
		assert.Len(t, p.Hand, 2)
	}
	turn, ok := findEvent(events, EventBidTurn)
	require.True(t, ok)
	assert.Equal(t, "p2", turn.PlayerID)
}
