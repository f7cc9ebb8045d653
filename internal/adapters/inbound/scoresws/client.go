package scoresws

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dmarsh417/hoopcast/internal/core/teams"
	"github.com/dmarsh417/hoopcast/internal/events"
	"github.com/dmarsh417/hoopcast/internal/telemetry"
)

const (
	minBackoff  = 1 * time.Second
	maxBackoff  = 30 * time.Second
	readTimeout = 90 * time.Second

	// maxPublished caps the dedupe set; oldest game ids are evicted FIFO.
	// Replays arrive within minutes of a final, so a few thousand entries
	// outlive any realistic replay window.
	maxPublished = 4096
)

// Client connects to the resolved-scores WebSocket, parses final-score
// messages, and publishes GameResolved events to the bus. Each final is
// published once; repeats from feed replays are dropped.
type Client struct {
	wsURL string
	token string
	bus   *events.Bus

	published map[string]bool // game ids already dispatched
	order     []string        // insertion order, oldest first
}

func NewClient(wsURL, token string, bus *events.Bus) *Client {
	return &Client{
		wsURL:     wsURL,
		token:     token,
		bus:       bus,
		published: make(map[string]bool),
	}
}

// ConnectWithRetry connects to the feed and reconnects on failure with
// exponential backoff. Blocks until ctx is cancelled.
func (c *Client) ConnectWithRetry(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		connStart := time.Now()
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return
		}

		if time.Since(connStart) > time.Minute {
			attempt = 0
		}

		attempt++
		telemetry.Metrics.FeedReconnects.Inc()
		backoff := time.Duration(float64(minBackoff) * math.Pow(2, float64(min(attempt-1, 5))))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}

		if err != nil {
			telemetry.Warnf("scoresws: connection lost (attempt %d): %v — retrying in %s",
				attempt, err, backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// wsMessage is the feed envelope. Only "final" messages carry scores.
type wsMessage struct {
	Type       string   `json:"type"`
	GameID     string   `json:"game_id"`
	Season     string   `json:"season"`
	HomeTeam   string   `json:"home_team"`
	AwayTeam   string   `json:"away_team"`
	HomeScore  int      `json:"home_score"`
	AwayScore  int      `json:"away_score"`
	MarketLine *float64 `json:"market_line,omitempty"`
	FinishedAt string   `json:"finished_at,omitempty"` // RFC 3339
}

func (c *Client) connect(ctx context.Context) error {
	url := c.wsURL
	if c.token != "" {
		url = fmt.Sprintf("%s?tkn=%s", c.wsURL, c.token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	// Reset deadline on server pings so quiet nights don't trigger a timeout.
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	telemetry.Infof("scoresws: connected")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		telemetry.Metrics.FeedMessages.Inc()

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			telemetry.Metrics.FeedParseErrors.Inc()
			telemetry.Warnf("scoresws: unmarshal: %v", err)
			continue
		}

		switch msg.Type {
		case "final":
			c.handleFinal(&msg)
		case "heartbeat":
		default:
			telemetry.Debugf("scoresws: unknown message type %q", msg.Type)
		}
	}
}

func (c *Client) handleFinal(msg *wsMessage) {
	if msg.GameID == "" {
		telemetry.Metrics.FeedParseErrors.Inc()
		telemetry.Warnf("scoresws: final without game id, dropping")
		return
	}
	if c.published[msg.GameID] {
		telemetry.Debugf("scoresws: repeat final for %s, dropping", msg.GameID)
		return
	}
	c.markPublished(msg.GameID)

	var finishedAt *time.Time
	if msg.FinishedAt != "" {
		if t, err := time.Parse(time.RFC3339, msg.FinishedAt); err == nil {
			finishedAt = &t
		}
	}

	c.bus.Publish(events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventGameResolved,
		Season:    msg.Season,
		GameID:    msg.GameID,
		Timestamp: time.Now().UTC(),
		Payload: events.GameResolvedEvent{
			GameID:     msg.GameID,
			HomeTeam:   teams.Normalize(msg.HomeTeam),
			AwayTeam:   teams.Normalize(msg.AwayTeam),
			HomeScore:  msg.HomeScore,
			AwayScore:  msg.AwayScore,
			MarketLine: msg.MarketLine,
			FinishedAt: finishedAt,
		},
	})

	telemetry.Infof("scoresws: final %s  %s %d - %d %s",
		msg.GameID, msg.HomeTeam, msg.HomeScore, msg.AwayScore, msg.AwayTeam)
}

func (c *Client) markPublished(gameID string) {
	if len(c.published) >= maxPublished {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.published, oldest)
	}
	c.published[gameID] = true
	c.order = append(c.order, gameID)
}
