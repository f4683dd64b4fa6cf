package server

import "ohhell/game"

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Client -> Server messages
	MsgJoinGame  MessageType = "joinGame"
	MsgStartGame MessageType = "startGame"
	MsgSubmitBid MessageType = "submitBid"
	MsgPlayCard  MessageType = "playCard"

	// Server -> Client messages
	MsgRosterUpdated    MessageType = "rosterUpdated"
	MsgHandDealt        MessageType = "handDealt"
	MsgGameStateUpdated MessageType = "gameStateUpdated"
	MsgBidTurn          MessageType = "bidTurn"
	MsgBidRecorded      MessageType = "bidRecorded"
	MsgBidRejected      MessageType = "bidRejected"
	MsgRoundStarted     MessageType = "roundStarted"
	MsgCardPlayed       MessageType = "cardPlayed"
	MsgTurnAdvanced     MessageType = "turnAdvanced"
	MsgTrickResolved    MessageType = "trickResolved"
	MsgCardsCleared     MessageType = "cardsCleared"
	MsgMoveRejected     MessageType = "moveRejected"
	MsgRoundAdvanced    MessageType = "roundAdvanced"
	MsgGameEnded        MessageType = "gameEnded"
	MsgJoinRejected     MessageType = "joinRejected" // To one: session full
	MsgError            MessageType = "error"        // To one: malformed or unknown message
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type       MessageType `json:"type"`
	SessionID  string      `json:"sessionId"`
	PlayerName string      `json:"playerName,omitempty"`
	BidValue   *int        `json:"bidValue,omitempty"`
	Card       *game.Card  `json:"card,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type          MessageType   `json:"type"`
	SessionID     string        `json:"sessionId,omitempty"`
	Players       []game.Player `json:"players,omitempty"`
	Cards         []game.Card   `json:"cards,omitempty"`
	PlayerID      string        `json:"playerId,omitempty"`
	FirstPlayerID string        `json:"firstPlayerId,omitempty"`
	WinnerID      string        `json:"winnerId,omitempty"`
	Card          *game.Card    `json:"card,omitempty"`
	WinningCard   *game.Card    `json:"winningCard,omitempty"`
	BidValue      *int          `json:"bidValue,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Started       *bool         `json:"started,omitempty"`
	TrumpCard     *game.Card    `json:"trumpCard,omitempty"`
	RequestedSuit *string       `json:"requestedSuit,omitempty"`
	RoundSize     *int          `json:"roundSize,omitempty"`
	Error         *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorMessage creates an error message
func NewErrorMessage(code, message string) ServerMessage {
	return ServerMessage{
		Type: MsgError,
		Error: &ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// NewServerMessage converts an engine event into its wire form
func NewServerMessage(sessionID string, e game.Event) ServerMessage {
	msg := ServerMessage{
		Type:      MessageType(e.Type),
		SessionID: sessionID,
	}

	switch e.Type {
	case game.EventRosterUpdated, game.EventGameEnded:
		msg.Players = e.Players
	case game.EventHandDealt:
		msg.Cards = e.Cards
	case game.EventGameStateUpdated:
		if e.Patch != nil {
			msg.Started = e.Patch.Started
			msg.TrumpCard = e.Patch.Trump
			msg.RequestedSuit = e.Patch.RequestedSuit
			msg.RoundSize = e.Patch.RoundSize
		}
	case game.EventBidTurn, game.EventTurnAdvanced:
		msg.PlayerID = e.PlayerID
	case game.EventBidRecorded:
		msg.PlayerID = e.PlayerID
		msg.BidValue = e.BidValue
	case game.EventBidRejected:
		msg.PlayerID = e.PlayerID
		msg.Reason = e.Reason
	case game.EventRoundStarted:
		msg.FirstPlayerID = e.PlayerID
	case game.EventCardPlayed:
		msg.PlayerID = e.PlayerID
		msg.Card = e.Card
	case game.EventTrickResolved:
		msg.WinnerID = e.PlayerID
		msg.WinningCard = e.Card
	case game.EventMoveRejected:
		msg.Reason = e.Reason
	case game.EventRoundAdvanced:
		msg.RoundSize = e.RoundSize
	}

	return msg
}
