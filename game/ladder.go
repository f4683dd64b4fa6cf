package game

// NextRoundSize returns the hand size and direction for the round after a
// round of the given size. The ladder climbs 1..7, plays the peak twice, then
// descends to 0, which ends the game.
func NextRoundSize(size int, increasing bool) (int, bool) {
	switch {
	case increasing && size < MaxRoundSize:
		return size + 1, true
	case increasing:
		return size, false
	default:
		return size - 1, false
	}
}

// rotateSeats moves the first player to the back
func (s *Session) rotateSeats() {
	if len(s.Players) < 2 {
		return
	}
	first := s.Players[0]
	copy(s.Players, s.Players[1:])
	s.Players[len(s.Players)-1] = first
}

// endRound scores the finished hand, climbs or descends the ladder, rotates
// the seats and either deals the next hand or ends the game.
func (s *Session) endRound() []Event {
	s.Phase = PhaseScoring
	s.Trick = nil
	s.LastResults = ScoreRound(s.Players)
	events := []Event{rosterEvent(s)}

	s.RoundSize, s.Increasing = NextRoundSize(s.RoundSize, s.Increasing)
	s.rotateSeats()

	size := s.RoundSize
	events = append(events,
		Event{Type: EventRoundAdvanced, RoundSize: &size},
		rosterEvent(s),
	)

	if s.RoundSize > 0 {
		return append(events, s.dealHand()...)
	}

	s.Phase = PhaseEnded
	s.Trump = nil
	s.Deck = nil
	return append(events, Event{Type: EventGameEnded, Players: s.Roster()})
}

// dealHand deals RoundSize cards to every player, turns up the trump card
// and opens bidding with the first seat.
func (s *Session) dealHand() []Event {
	s.Round++
	s.Deck = s.newDeck()
	s.CompletedTricks = nil
	s.OutOfPlay = nil

	events := make([]Event, 0, len(s.Players)+3)
	for _, p := range s.Players {
		p.Hand = s.Deck.Deal(s.RoundSize)
		p.Bid = nil
		p.TricksWon = 0
		hand := append([]Card{}, p.Hand...)
		events = append(events, Event{Type: EventHandDealt, To: p.ID, Cards: hand})
	}

	trump := s.Deck.Deal(1)[0]
	s.Trump = &trump

	s.Phase = PhaseBidding
	s.Trick = nil
	s.Bidding = &Bidding{Bids: []Bid{}}

	started := true
	size := s.RoundSize
	shown := trump
	events = append(events,
		Event{Type: EventGameStateUpdated, Patch: &StatePatch{Started: &started, Trump: &shown, RoundSize: &size}},
		rosterEvent(s),
		bidTurnEvent(s.Players[0].ID),
	)
	return events
}
