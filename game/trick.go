package game

// CheckLegal reports whether a player holding hand may play card into a
// trick whose requested suit is requested (nil when leading).
func CheckLegal(hand []Card, card Card, requested *Suit, trump Suit) error {
	if requested == nil {
		return nil
	}
	hasRequested := false
	hasTrump := false
	for _, c := range hand {
		if c.Suit == *requested {
			hasRequested = true
		}
		if c.Suit == trump {
			hasTrump = true
		}
	}

	switch {
	case hasRequested:
		if card.Suit != *requested {
			return ErrMustFollowSuit
		}
	case hasTrump:
		if card.Suit != trump {
			return ErrMustPlayTrump
		}
	}
	return nil
}

// TrickWinner returns the index of the winning card. The first card is the
// initial best and is replaced by every later card that beats it.
func TrickWinner(cards []TrickCard, trump Suit) int {
	best := 0
	for i := 1; i < len(cards); i++ {
		if cards[i].Card.Beats(cards[best].Card, trump) {
			best = i
		}
	}
	return best
}

func (s *Session) playCard(playerID string, card Card) ([]Event, error) {
	if s.Phase != PhasePlaying {
		return nil, ErrNotPlaying
	}
	seat := s.seatOf(playerID)
	if seat < 0 {
		return nil, ErrUnknownPlayer
	}
	if playerID != s.Trick.Turn {
		return nil, ErrNotYourTurn
	}

	player := s.Players[seat]
	cardIdx := player.cardIndex(card)
	if cardIdx < 0 {
		return nil, ErrCardNotHeld
	}
	if err := CheckLegal(player.Hand, card, s.Trick.RequestedSuit, s.Trump.Suit); err != nil {
		return nil, err
	}

	var events []Event
	if len(s.Trick.Cards) == 0 {
		suit := card.Suit
		s.Trick.RequestedSuit = &suit
		events = append(events, requestedSuitEvent(&suit))
	}

	player.Hand = append(player.Hand[:cardIdx], player.Hand[cardIdx+1:]...)
	s.Trick.Cards = append(s.Trick.Cards, TrickCard{PlayerID: playerID, Card: card})
	s.Trick.Turn = s.Players[s.nextSeat(seat)].ID

	played := card
	events = append(events, Event{Type: EventCardPlayed, PlayerID: playerID, Card: &played})

	if len(s.Trick.Cards) < len(s.Players) {
		return append(events, Event{Type: EventTurnAdvanced, PlayerID: s.Trick.Turn}), nil
	}

	return append(events, s.resolveTrick()...), nil
}

// resolveTrick awards the full trick, resets the table and either continues
// with the winner on lead or ends the round when every hand is empty.
func (s *Session) resolveTrick() []Event {
	cards := s.Trick.Cards
	winnerIdx := TrickWinner(cards, s.Trump.Suit)
	winner := cards[winnerIdx]

	if p := s.Player(winner.PlayerID); p != nil {
		p.TricksWon++
	}
	s.CompletedTricks = append(s.CompletedTricks, CompletedTrick{
		Cards:    append([]TrickCard{}, cards...),
		WinnerID: winner.PlayerID,
	})

	s.Trick.Cards = []TrickCard{}
	s.Trick.RequestedSuit = nil
	s.Trick.Turn = winner.PlayerID

	winningCard := winner.Card
	events := []Event{
		{Type: EventTrickResolved, PlayerID: winner.PlayerID, Card: &winningCard},
		rosterEvent(s),
		requestedSuitEvent(nil),
		{Type: EventCardsCleared},
	}

	if !s.handsEmpty() {
		return append(events, Event{Type: EventTurnAdvanced, PlayerID: winner.PlayerID})
	}

	return append(events, s.endRound()...)
}

func (s *Session) handsEmpty() bool {
	for _, p := range s.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}
