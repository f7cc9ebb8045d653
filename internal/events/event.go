package events

import "time"

// Event is the envelope that flows through the event bus.
// Every domain event (prediction made, game resolved, model updated)
// is wrapped in one.
type Event struct {
	ID        string
	Type      EventType
	Season    string
	GameID    string
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// Pipeline events
	EventPredictionMade EventType = "prediction_made"
	// Scores feed events
	EventGameResolved EventType = "game_resolved"
	// Learning engine events
	EventModelUpdated EventType = "model_updated"
)
