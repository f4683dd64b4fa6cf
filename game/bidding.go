package game

import "fmt"

func (s *Session) submitBid(playerID string, value int) ([]Event, error) {
	if s.Phase != PhaseBidding {
		return nil, ErrNotBidding
	}
	seat := s.seatOf(playerID)
	if seat < 0 {
		return nil, ErrUnknownPlayer
	}
	if seat != s.Bidding.BidderIndex {
		return nil, ErrNotYourBid
	}
	if value < 0 || value > s.RoundSize {
		return nil, fmt.Errorf("%w: must be between 0 and %d", ErrBidOutOfRange, s.RoundSize)
	}

	player := s.Players[seat]
	bid := value
	player.Bid = &bid
	s.Bidding.Bids = append(s.Bidding.Bids, Bid{PlayerID: playerID, Value: value})
	s.Bidding.BidderIndex++

	if s.Bidding.BidderIndex < len(s.Players) {
		recorded := value
		return []Event{
			{Type: EventBidRecorded, PlayerID: playerID, BidValue: &recorded},
			rosterEvent(s),
			bidTurnEvent(s.Players[s.Bidding.BidderIndex].ID),
		}, nil
	}

	return s.closeBidding(true), nil
}

// closeBidding runs once every seated player has a bid. When the bids add up
// to the round size the last bid is withdrawn and its owner bids again;
// otherwise trick play begins with the first seat. announce adds the
// bidRecorded notification for the final bid.
func (s *Session) closeBidding(announce bool) []Event {
	total := 0
	for _, b := range s.Bidding.Bids {
		total += b.Value
	}

	if total == s.RoundSize {
		last := s.Bidding.Bids[len(s.Bidding.Bids)-1]
		s.Bidding.Bids = s.Bidding.Bids[:len(s.Bidding.Bids)-1]
		s.Bidding.BidderIndex = len(s.Players) - 1
		if p := s.Player(last.PlayerID); p != nil {
			p.Bid = nil
		}
		return []Event{
			{
				Type:     EventBidRejected,
				To:       last.PlayerID,
				PlayerID: last.PlayerID,
				Reason:   fmt.Sprintf("bids cannot add up to %d", s.RoundSize),
			},
			rosterEvent(s),
			bidTurnEvent(s.Players[s.Bidding.BidderIndex].ID),
		}
	}

	var events []Event
	if n := len(s.Bidding.Bids); announce && n > 0 {
		last := s.Bidding.Bids[n-1]
		recorded := last.Value
		events = append(events, Event{Type: EventBidRecorded, PlayerID: last.PlayerID, BidValue: &recorded})
	}

	s.Phase = PhasePlaying
	s.Bidding = nil
	s.Trick = &Trick{Cards: []TrickCard{}, Turn: s.Players[0].ID}

	return append(events,
		rosterEvent(s),
		Event{Type: EventRoundStarted, PlayerID: s.Trick.Turn},
	)
}
