package game

import (
	"errors"
	"fmt"
)

// Action types
type ActionType string

const (
	ActionJoin       ActionType = "join"
	ActionStart      ActionType = "start"
	ActionSubmitBid  ActionType = "submitBid"
	ActionPlayCard   ActionType = "playCard"
	ActionDisconnect ActionType = "disconnect"
)

// Action represents a game action
type Action struct {
	Type       ActionType
	PlayerID   string
	PlayerName string
	BidValue   int
	Card       Card
}

// Error categories. Every error returned by the engine wraps exactly one of
// these, so callers can classify with errors.Is.
var (
	ErrProtocol      = errors.New("protocol error")
	ErrTurn          = errors.New("turn error")
	ErrOwnership     = errors.New("ownership error")
	ErrRuleViolation = errors.New("rule violation")
	ErrLifecycle     = errors.New("lifecycle error")
)

// Common errors
var (
	ErrInvalidCard    = fmt.Errorf("%w: invalid card", ErrProtocol)
	ErrMissingName    = fmt.Errorf("%w: player name is required", ErrProtocol)
	ErrUnknownAction  = fmt.Errorf("%w: unknown action", ErrProtocol)
	ErrNotYourTurn    = fmt.Errorf("%w: not your turn", ErrTurn)
	ErrNotYourBid     = fmt.Errorf("%w: not your turn to bid", ErrTurn)
	ErrCardNotHeld    = fmt.Errorf("%w: card not held", ErrOwnership)
	ErrMustFollowSuit = fmt.Errorf("%w: must follow the requested suit", ErrRuleViolation)
	ErrMustPlayTrump  = fmt.Errorf("%w: must play trump when out of the requested suit", ErrRuleViolation)
	ErrBidOutOfRange  = fmt.Errorf("%w: bid out of range", ErrRuleViolation)
	ErrAlreadyStarted = fmt.Errorf("%w: game already started", ErrLifecycle)
	ErrSessionFull    = fmt.Errorf("%w: session is full", ErrLifecycle)
	ErrNoPlayers      = fmt.Errorf("%w: no players", ErrLifecycle)
	ErrNotBidding     = fmt.Errorf("%w: not in bidding phase", ErrLifecycle)
	ErrNotPlaying     = fmt.Errorf("%w: not in playing phase", ErrLifecycle)
	ErrUnknownPlayer  = fmt.Errorf("%w: player not in session", ErrLifecycle)
	ErrGameEnded      = fmt.Errorf("%w: game has ended", ErrLifecycle)
)

// ApplyAction applies an action to the session and returns the
// notifications it produced. On error the session is left unchanged.
func ApplyAction(s *Session, action Action) ([]Event, error) {
	if s.Phase == PhaseEnded && action.Type != ActionDisconnect {
		return nil, ErrGameEnded
	}
	switch action.Type {
	case ActionJoin:
		return s.join(action.PlayerID, action.PlayerName)
	case ActionStart:
		return s.start()
	case ActionSubmitBid:
		return s.submitBid(action.PlayerID, action.BidValue)
	case ActionPlayCard:
		if !action.Card.Valid() {
			return nil, ErrInvalidCard
		}
		return s.playCard(action.PlayerID, action.Card)
	case ActionDisconnect:
		return s.disconnect(action.PlayerID)
	default:
		return nil, ErrUnknownAction
	}
}

// Join seats a new player. Joining twice with the same id is a no-op.
func (s *Session) Join(playerID, name string) ([]Event, error) {
	return ApplyAction(s, Action{Type: ActionJoin, PlayerID: playerID, PlayerName: name})
}

// Start deals the first hand
func (s *Session) Start() ([]Event, error) {
	return ApplyAction(s, Action{Type: ActionStart})
}

// SubmitBid records a bid for the current bidder
func (s *Session) SubmitBid(playerID string, value int) ([]Event, error) {
	return ApplyAction(s, Action{Type: ActionSubmitBid, PlayerID: playerID, BidValue: value})
}

// PlayCard plays a card for the player on turn
func (s *Session) PlayCard(playerID string, card Card) ([]Event, error) {
	return ApplyAction(s, Action{Type: ActionPlayCard, PlayerID: playerID, Card: card})
}

// Disconnect removes a player
func (s *Session) Disconnect(playerID string) ([]Event, error) {
	return ApplyAction(s, Action{Type: ActionDisconnect, PlayerID: playerID})
}

func (s *Session) join(playerID, name string) ([]Event, error) {
	if playerID == "" || name == "" {
		return nil, ErrMissingName
	}
	if s.seatOf(playerID) >= 0 {
		return nil, nil
	}
	if s.Started() {
		return nil, ErrAlreadyStarted
	}
	if len(s.Players) >= s.maxPlayers {
		return nil, ErrSessionFull
	}

	s.Players = append(s.Players, &Player{ID: playerID, Name: name})
	return []Event{rosterEvent(s)}, nil
}

func (s *Session) start() ([]Event, error) {
	if s.Started() {
		return nil, ErrAlreadyStarted
	}
	if len(s.Players) == 0 {
		return nil, ErrNoPlayers
	}
	s.RoundSize = 1
	s.Increasing = true
	return s.dealHand(), nil
}

// disconnect removes the player and repairs whatever phase state referred to
// them. The removed hand is kept out of play so the deck stays partitioned.
func (s *Session) disconnect(playerID string) ([]Event, error) {
	seat := s.seatOf(playerID)
	if seat < 0 {
		return nil, ErrUnknownPlayer
	}

	player := s.Players[seat]
	s.OutOfPlay = append(s.OutOfPlay, player.Hand...)
	player.Hand = nil
	s.Players = append(s.Players[:seat], s.Players[seat+1:]...)

	if len(s.Players) == 0 {
		s.Phase = PhaseEnded
		s.Bidding = nil
		s.Trick = nil
		return nil, nil
	}

	switch s.Phase {
	case PhaseBidding:
		return s.removeBidder(playerID, seat), nil
	case PhasePlaying:
		return s.removeFromTrick(playerID, seat), nil
	}
	return []Event{rosterEvent(s)}, nil
}

func (s *Session) removeBidder(playerID string, seat int) []Event {
	b := s.Bidding
	for i, bid := range b.Bids {
		if bid.PlayerID == playerID {
			b.Bids = append(b.Bids[:i], b.Bids[i+1:]...)
			break
		}
	}
	if seat < b.BidderIndex {
		b.BidderIndex--
	}

	events := []Event{rosterEvent(s)}
	if b.BidderIndex >= len(s.Players) {
		return append(events, s.closeBidding(false)...)
	}
	if seat == b.BidderIndex {
		events = append(events, bidTurnEvent(s.Players[b.BidderIndex].ID))
	}
	return events
}

func (s *Session) removeFromTrick(playerID string, seat int) []Event {
	t := s.Trick
	for i, tc := range t.Cards {
		if tc.PlayerID == playerID {
			s.OutOfPlay = append(s.OutOfPlay, tc.Card)
			t.Cards = append(t.Cards[:i], t.Cards[i+1:]...)
			break
		}
	}
	events := []Event{rosterEvent(s)}
	if len(t.Cards) == 0 && t.RequestedSuit != nil {
		t.RequestedSuit = nil
		events = append(events, requestedSuitEvent(nil))
	} else if len(t.Cards) > 0 && *t.RequestedSuit != t.Cards[0].Card.Suit {
		suit := t.Cards[0].Card.Suit
		t.RequestedSuit = &suit
		events = append(events, requestedSuitEvent(&suit))
	}

	turnMoved := t.Turn == playerID
	if turnMoved {
		t.Turn = s.Players[seat%len(s.Players)].ID
	}

	if len(t.Cards) > 0 && len(t.Cards) >= len(s.Players) {
		return append(events, s.resolveTrick()...)
	}
	if len(t.Cards) == 0 && s.handsEmpty() {
		return append(events, s.endRound()...)
	}
	if turnMoved {
		events = append(events, Event{Type: EventTurnAdvanced, PlayerID: t.Turn})
	}
	return events
}
