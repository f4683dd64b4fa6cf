package game

// EventType names an outbound notification
type EventType string

const (
	EventRosterUpdated    EventType = "rosterUpdated"
	EventHandDealt        EventType = "handDealt"
	EventGameStateUpdated EventType = "gameStateUpdated"
	EventBidTurn          EventType = "bidTurn"
	EventBidRecorded      EventType = "bidRecorded"
	EventBidRejected      EventType = "bidRejected"
	EventRoundStarted     EventType = "roundStarted"
	EventCardPlayed       EventType = "cardPlayed"
	EventTurnAdvanced     EventType = "turnAdvanced"
	EventTrickResolved    EventType = "trickResolved"
	EventCardsCleared     EventType = "cardsCleared"
	EventMoveRejected     EventType = "moveRejected"
	EventRoundAdvanced    EventType = "roundAdvanced"
	EventGameEnded        EventType = "gameEnded"
)

// StatePatch is a partial game state update. Nil fields are unchanged; an
// empty RequestedSuit means the requested suit was cleared.
type StatePatch struct {
	Started       *bool   `json:"started,omitempty"`
	Trump         *Card   `json:"trumpCard,omitempty"`
	RequestedSuit *string `json:"requestedSuit,omitempty"`
	RoundSize     *int    `json:"roundSize,omitempty"`
}

// Event is a notification produced by a state transition. To is the
// recipient connection; an empty To addresses the whole session.
type Event struct {
	Type      EventType
	To        string
	Players   []Player
	Cards     []Card
	Card      *Card
	PlayerID  string
	BidValue  *int
	Reason    string
	Patch     *StatePatch
	RoundSize *int
}

func rosterEvent(s *Session) Event {
	return Event{Type: EventRosterUpdated, Players: s.Roster()}
}

func bidTurnEvent(playerID string) Event {
	return Event{Type: EventBidTurn, PlayerID: playerID}
}

func requestedSuitEvent(suit *Suit) Event {
	name := ""
	if suit != nil {
		name = suit.String()
	}
	return Event{Type: EventGameStateUpdated, Patch: &StatePatch{RequestedSuit: &name}}
}
