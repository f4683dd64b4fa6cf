package server

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"ohhell/game"
)

// Server-side request errors
var (
	ErrMissingSession = fmt.Errorf("%w: session id is required", game.ErrProtocol)
	ErrMissingBid     = fmt.Errorf("%w: bid value is required", game.ErrProtocol)
	ErrMissingCard    = fmt.Errorf("%w: card is required", game.ErrProtocol)
	ErrNoSession      = fmt.Errorf("%w: no such session", game.ErrLifecycle)
)

// Notifier delivers outbound messages. Broadcast reaches every connection
// added to the session's group.
type Notifier interface {
	Broadcast(sessionID string, msg ServerMessage)
	Send(connID string, msg ServerMessage)
	AddToGroup(sessionID, connID string)
	DropGroup(sessionID string)
}

// Options tunes a GameServer
type Options struct {
	ClearDelay time.Duration
	MaxPlayers int
	DeckSource game.DeckSource
}

// table serializes every transition of one session
type table struct {
	mu      sync.Mutex
	session *game.Session
	closed  bool
}

// GameServer owns all live sessions and routes client messages to them
type GameServer struct {
	notifier Notifier
	log      logrus.FieldLogger
	opts     Options

	mu      sync.Mutex
	tables  map[string]*table
	members map[string]map[string]struct{} // connID -> sessionIDs
}

// NewGameServer creates a new game server
func NewGameServer(notifier Notifier, log logrus.FieldLogger, opts Options) *GameServer {
	return &GameServer{
		notifier: notifier,
		log:      log,
		opts:     opts,
		tables:   make(map[string]*table),
		members:  make(map[string]map[string]struct{}),
	}
}

// HandleMessage routes a message to the appropriate handler
func (gs *GameServer) HandleMessage(connID string, msg ClientMessage) {
	log := gs.log.WithFields(logrus.Fields{
		"conn":    connID,
		"session": msg.SessionID,
		"type":    msg.Type,
	})

	var err error
	switch msg.Type {
	case MsgJoinGame:
		err = gs.Join(msg.SessionID, msg.PlayerName, connID)
	case MsgStartGame:
		err = gs.Start(msg.SessionID)
	case MsgSubmitBid:
		err = gs.SubmitBid(msg.SessionID, connID, msg.BidValue)
	case MsgPlayCard:
		err = gs.PlayCard(msg.SessionID, connID, msg.Card)
	default:
		log.Warn("unknown message type")
		gs.notifier.Send(connID, NewErrorMessage("unknown_message", "Unknown message type"))
		return
	}

	if err != nil {
		gs.logRejection(log, msg.Type, err)
	}
}

func (gs *GameServer) logRejection(log logrus.FieldLogger, typ MessageType, err error) {
	switch {
	case typ == MsgSubmitBid && errors.Is(err, game.ErrTurn):
		log.WithError(err).Debug("out-of-turn bid ignored")
	case errors.Is(err, game.ErrTurn), errors.Is(err, game.ErrOwnership), errors.Is(err, game.ErrRuleViolation):
		log.WithError(err).Info("move rejected")
	default:
		log.WithError(err).Warn("request dropped")
	}
}

// Join seats the connection in the session, creating the session on first use
func (gs *GameServer) Join(sessionID, name, connID string) error {
	name = strings.TrimSpace(name)
	if strings.TrimSpace(sessionID) == "" {
		return ErrMissingSession
	}
	if name == "" {
		return game.ErrMissingName
	}

	for {
		t := gs.tableFor(sessionID, true)
		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			continue
		}

		events, err := t.session.Join(connID, name)
		if err != nil {
			if errors.Is(err, game.ErrSessionFull) {
				gs.notifier.Send(connID, ServerMessage{
					Type:      MsgJoinRejected,
					SessionID: sessionID,
					Reason:    err.Error(),
				})
			}
			t.mu.Unlock()
			return err
		}

		if events != nil {
			gs.addMember(connID, sessionID)
			gs.notifier.AddToGroup(sessionID, connID)
			gs.log.WithFields(logrus.Fields{
				"session": sessionID,
				"conn":    connID,
				"player":  name,
			}).Info("player joined")
		}
		gs.emit(t, events)
		t.mu.Unlock()
		return nil
	}
}

// Start deals the first hand of the session
func (gs *GameServer) Start(sessionID string) error {
	return gs.apply(sessionID, func(s *game.Session) ([]game.Event, error) {
		events, err := s.Start()
		if err == nil {
			gs.log.WithFields(logrus.Fields{
				"session": sessionID,
				"players": len(s.Players),
			}).Info("game started")
		}
		return events, err
	})
}

// SubmitBid records the connection's bid. Out-of-range bids are answered
// with bidRejected.
func (gs *GameServer) SubmitBid(sessionID, connID string, value *int) error {
	if value == nil {
		return ErrMissingBid
	}
	return gs.apply(sessionID, func(s *game.Session) ([]game.Event, error) {
		events, err := s.SubmitBid(connID, *value)
		if errors.Is(err, game.ErrRuleViolation) {
			return []game.Event{{
				Type:     game.EventBidRejected,
				To:       connID,
				PlayerID: connID,
				Reason:   err.Error(),
			}}, err
		}
		return events, err
	})
}

// PlayCard plays a card for the connection. Illegal plays are answered with
// moveRejected.
func (gs *GameServer) PlayCard(sessionID, connID string, card *game.Card) error {
	if card == nil {
		return ErrMissingCard
	}
	return gs.apply(sessionID, func(s *game.Session) ([]game.Event, error) {
		events, err := s.PlayCard(connID, *card)
		if errors.Is(err, game.ErrTurn) || errors.Is(err, game.ErrOwnership) || errors.Is(err, game.ErrRuleViolation) {
			return []game.Event{{
				Type:   game.EventMoveRejected,
				To:     connID,
				Reason: err.Error(),
			}}, err
		}
		return events, err
	})
}

// HandleDisconnect removes the connection from every session it joined
func (gs *GameServer) HandleDisconnect(connID string) {
	gs.mu.Lock()
	sessionIDs := make([]string, 0, len(gs.members[connID]))
	for id := range gs.members[connID] {
		sessionIDs = append(sessionIDs, id)
	}
	delete(gs.members, connID)
	gs.mu.Unlock()

	for _, sessionID := range sessionIDs {
		err := gs.apply(sessionID, func(s *game.Session) ([]game.Event, error) {
			return s.Disconnect(connID)
		})
		if err != nil {
			gs.log.WithError(err).WithFields(logrus.Fields{
				"session": sessionID,
				"conn":    connID,
			}).Warn("disconnect")
			continue
		}
		gs.log.WithFields(logrus.Fields{
			"session": sessionID,
			"conn":    connID,
		}).Info("player left")
	}
}

// apply runs fn under the session's lock and delivers what it produced.
// Events are delivered even when fn fails so rejections reach the sender.
func (gs *GameServer) apply(sessionID string, fn func(*game.Session) ([]game.Event, error)) error {
	t := gs.tableFor(sessionID, false)
	if t == nil {
		return ErrNoSession
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrNoSession
	}

	round := t.session.Round
	events, err := fn(t.session)
	gs.emit(t, events)
	if err != nil {
		return err
	}

	if t.session.Round != round || t.session.Phase == game.PhaseEnded {
		gs.logResults(t.session)
	}
	if t.session.Phase == game.PhaseEnded {
		gs.destroy(t)
	}
	return nil
}

// emit delivers events in order. cardsCleared is held back for the
// configured delay so clients can show the finished trick.
func (gs *GameServer) emit(t *table, events []game.Event) {
	sessionID := t.session.ID
	for _, e := range events {
		msg := NewServerMessage(sessionID, e)
		switch {
		case e.Type == game.EventCardsCleared && gs.opts.ClearDelay > 0:
			time.AfterFunc(gs.opts.ClearDelay, func() {
				t.mu.Lock()
				defer t.mu.Unlock()
				if !t.closed {
					gs.notifier.Broadcast(sessionID, msg)
				}
			})
		case e.To != "":
			gs.notifier.Send(e.To, msg)
		default:
			gs.notifier.Broadcast(sessionID, msg)
		}
	}
}

func (gs *GameServer) logResults(s *game.Session) {
	if len(s.LastResults) == 0 {
		return
	}
	for _, r := range s.LastResults {
		gs.log.WithFields(logrus.Fields{
			"session": s.ID,
			"player":  r.Name,
			"bid":     r.Bid,
			"won":     r.TricksWon,
			"delta":   r.Delta,
			"total":   r.Total,
		}).Info("round scored")
	}
	s.LastResults = nil
}

// destroy forgets an ended session; callers hold t.mu
func (gs *GameServer) destroy(t *table) {
	t.closed = true
	sessionID := t.session.ID

	gs.mu.Lock()
	if gs.tables[sessionID] == t {
		delete(gs.tables, sessionID)
	}
	for connID, sessions := range gs.members {
		delete(sessions, sessionID)
		if len(sessions) == 0 {
			delete(gs.members, connID)
		}
	}
	gs.mu.Unlock()

	gs.notifier.DropGroup(sessionID)
	gs.log.WithField("session", sessionID).Info("session closed")
}

func (gs *GameServer) tableFor(sessionID string, create bool) *table {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	t, ok := gs.tables[sessionID]
	if !ok && create {
		opts := []game.Option{game.WithMaxPlayers(gs.opts.MaxPlayers)}
		if gs.opts.DeckSource != nil {
			opts = append(opts, game.WithDeckSource(gs.opts.DeckSource))
		}
		t = &table{session: game.NewSession(sessionID, opts...)}
		gs.tables[sessionID] = t
		gs.log.WithField("session", sessionID).Info("session created")
	}
	return t
}

func (gs *GameServer) addMember(connID, sessionID string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	sessions, ok := gs.members[connID]
	if !ok {
		sessions = make(map[string]struct{})
		gs.members[connID] = sessions
	}
	sessions[sessionID] = struct{}{}
}

// Sessions returns a snapshot of every live session, ordered by id
func (gs *GameServer) Sessions() []game.Snapshot {
	gs.mu.Lock()
	tables := make([]*table, 0, len(gs.tables))
	for _, t := range gs.tables {
		tables = append(tables, t)
	}
	gs.mu.Unlock()

	snaps := make([]game.Snapshot, 0, len(tables))
	for _, t := range tables {
		t.mu.Lock()
		if !t.closed {
			snaps = append(snaps, t.session.Snapshot())
		}
		t.mu.Unlock()
	}
	slices.SortFunc(snaps, func(a, b game.Snapshot) int {
		return strings.Compare(a.ID, b.ID)
	})
	return snaps
}

// Snapshot returns the public view of one session
func (gs *GameServer) Snapshot(sessionID string) (game.Snapshot, bool) {
	t := gs.tableFor(sessionID, false)
	if t == nil {
		return game.Snapshot{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return game.Snapshot{}, false
	}
	return t.session.Snapshot(), true
}
