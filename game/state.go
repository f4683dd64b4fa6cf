package game

// Phase represents the current session phase
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhaseBidding Phase = "bidding"
	PhasePlaying Phase = "playing"
	PhaseScoring Phase = "scoring"
	PhaseEnded   Phase = "ended"
)

const (
	// MaxRoundSize is the peak of the round ladder
	MaxRoundSize = 7
	// MaxPlayers is the most players a 52-card deck can serve at the peak
	// (7 hands of 7 plus the trump card).
	MaxPlayers = 7
)

// Player represents a seated player. ID is the connection identifier.
type Player struct {
	ID        string `json:"playerId"`
	Name      string `json:"name"`
	Hand      []Card `json:"-"`
	Score     int    `json:"score"`
	Bid       *int   `json:"bid"`
	TricksWon int    `json:"tricksWon"`
	LastDelta int    `json:"lastDelta"`
	CardCount int    `json:"cardCount"`
}

func (p *Player) cardIndex(card Card) int {
	for i, c := range p.Hand {
		if c == card {
			return i
		}
	}
	return -1
}

// Bid represents a bid declared by a player
type Bid struct {
	PlayerID string `json:"playerId"`
	Value    int    `json:"bidValue"`
}

// Bidding is the state that only exists while bids are collected
type Bidding struct {
	BidderIndex int   `json:"bidderIndex"`
	Bids        []Bid `json:"bids"`
}

// TrickCard represents a card played in a trick with its player
type TrickCard struct {
	PlayerID string `json:"playerId"`
	Card     Card   `json:"card"`
}

// Trick is the state that only exists while cards are played
type Trick struct {
	Cards         []TrickCard `json:"cards"`
	RequestedSuit *Suit       `json:"requestedSuit"`
	Turn          string      `json:"currentTurn"`
}

// CompletedTrick stores a finished trick with its winner
type CompletedTrick struct {
	Cards    []TrickCard `json:"cards"`
	WinnerID string      `json:"winnerId"`
}

// Session is the complete state of one game. It is not safe for concurrent
// use; the owner serializes every call.
type Session struct {
	ID         string
	Phase      Phase
	Players    []*Player
	RoundSize  int
	Increasing bool
	Round      int
	Trump      *Card
	Deck       *Deck

	// Bidding is non-nil only in PhaseBidding
	Bidding *Bidding
	// Trick is non-nil only in PhasePlaying
	Trick *Trick

	// CompletedTricks of the round in progress
	CompletedTricks []CompletedTrick

	// OutOfPlay holds cards of players who left mid-round
	OutOfPlay []Card

	// LastResults is the scoring breakdown of the last finished round
	LastResults []RoundResult

	maxPlayers int
	newDeck    DeckSource
}

// Option configures a Session
type Option func(*Session)

// WithDeckSource replaces the shuffled deck used for each hand
func WithDeckSource(src DeckSource) Option {
	return func(s *Session) {
		s.newDeck = src
	}
}

// WithMaxPlayers caps the number of seats, up to MaxPlayers
func WithMaxPlayers(n int) Option {
	return func(s *Session) {
		if n > 0 && n < MaxPlayers {
			s.maxPlayers = n
		}
	}
}

// NewSession creates a session in the lobby phase
func NewSession(id string, opts ...Option) *Session {
	s := &Session{
		ID:         id,
		Phase:      PhaseLobby,
		RoundSize:  1,
		Increasing: true,
		maxPlayers: MaxPlayers,
		newDeck:    ShuffledDeck,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Started reports whether the session has left the lobby
func (s *Session) Started() bool {
	return s.Phase != PhaseLobby
}

// Player returns the player with the given id, or nil
func (s *Session) Player(id string) *Player {
	if i := s.seatOf(id); i >= 0 {
		return s.Players[i]
	}
	return nil
}

func (s *Session) seatOf(id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// nextSeat returns the seat after i, wrapping around
func (s *Session) nextSeat(i int) int {
	return (i + 1) % len(s.Players)
}

// CurrentActor returns the id of the player expected to act, if any
func (s *Session) CurrentActor() string {
	switch s.Phase {
	case PhaseBidding:
		if s.Bidding.BidderIndex < len(s.Players) {
			return s.Players[s.Bidding.BidderIndex].ID
		}
	case PhasePlaying:
		return s.Trick.Turn
	}
	return ""
}

// Roster returns a copy of the players in seating order
func (s *Session) Roster() []Player {
	roster := make([]Player, 0, len(s.Players))
	for _, p := range s.Players {
		view := *p
		view.Hand = nil
		view.CardCount = len(p.Hand)
		if p.Bid != nil {
			bid := *p.Bid
			view.Bid = &bid
		}
		roster = append(roster, view)
	}
	return roster
}

// Snapshot is the public view of a session (no hands)
type Snapshot struct {
	ID              string           `json:"sessionId"`
	Phase           Phase            `json:"phase"`
	Started         bool             `json:"started"`
	Players         []Player         `json:"players"`
	Round           int              `json:"round"`
	RoundSize       int              `json:"roundSize"`
	Increasing      bool             `json:"sizeIncreasing"`
	Trump           *Card            `json:"trumpCard"`
	Bidding         *Bidding         `json:"bidding,omitempty"`
	Trick           *Trick           `json:"trick,omitempty"`
	CompletedTricks []CompletedTrick `json:"completedTricks"`
}

// Snapshot builds the public view of the session
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:              s.ID,
		Phase:           s.Phase,
		Started:         s.Started(),
		Players:         s.Roster(),
		Round:           s.Round,
		RoundSize:       s.RoundSize,
		Increasing:      s.Increasing,
		CompletedTricks: append([]CompletedTrick{}, s.CompletedTricks...),
	}
	if s.Trump != nil {
		trump := *s.Trump
		snap.Trump = &trump
	}
	if s.Bidding != nil {
		snap.Bidding = &Bidding{
			BidderIndex: s.Bidding.BidderIndex,
			Bids:        append([]Bid{}, s.Bidding.Bids...),
		}
	}
	if s.Trick != nil {
		trick := &Trick{
			Cards: append([]TrickCard{}, s.Trick.Cards...),
			Turn:  s.Trick.Turn,
		}
		if s.Trick.RequestedSuit != nil {
			suit := *s.Trick.RequestedSuit
			trick.RequestedSuit = &suit
		}
		snap.Trick = trick
	}
	return snap
}
