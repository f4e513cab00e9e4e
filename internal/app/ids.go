package app

import "github.com/google/uuid"

// BotSeat is the seat holder recorded for the computer player.
const BotSeat = "bot"

func newGameID() string { return uuid.NewString() }

// NewPlayerID returns a random identifier for a human seat.
func NewPlayerID() string { return "p-" + uuid.NewString() }
