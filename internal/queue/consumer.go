package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// ResultsConsumer listens to ShowScoredQueue and appends a one-line summary
// of every event to a log file.
type ResultsConsumer struct {
	URL     string
	LogPath string
	Log     zerolog.Logger
}

// Run connects to the broker, declares the queue and consumes until ctx is
// cancelled, reconnecting with exponential backoff.
func (c *ResultsConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn().Err(err).Dur("retry_in", backoff).Msg("results-consumer: failed to dial broker")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn().Err(err).Msg("results-consumer: consume loop ended; reconnecting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *ResultsConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn().Err(err).Msg("results-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(ShowScoredQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, ShowScoredQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handleMessage(d.Body); err != nil {
			c.Log.Error().Err(err).Msg("results-consumer: handle message failed")
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *ResultsConsumer) handleMessage(body []byte) error {
	var ev ShowScoredEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	path := c.LogPath
	if path == "" {
		path = filepath.Join("logs", "results.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatSummary(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatSummary renders an event as a single log line.
func FormatSummary(ev ShowScoredEvent) string {
	leaders := make([]string, 0, len(ev.Leaders))
	for _, l := range ev.Leaders {
		leaders = append(leaders, fmt.Sprintf("%s=%.3f", l.UserID, l.Total))
	}
	return fmt.Sprintf("[%s] Show scored | season_id=%s | result_id=%s | stage=%s -> %s | status=%s | participants=%d | leaders=[%s]\n",
		ev.ScoredAt, ev.SeasonID, ev.ResultID, ev.Stage, ev.NextStage, ev.SeasonStatus, ev.Participants, strings.Join(leaders, ","))
}
