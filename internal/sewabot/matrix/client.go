// Package matrix is the transport adapter: it receives citizen messages
// from a Matrix homeserver and sends the engine's replies back.
package matrix

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/smartgov-sikkim/sewabot/common/retry"
)

// Config holds Matrix client configuration.
type Config struct {
	Homeserver  string
	UserID      string
	AccessToken string

	// AllowedRooms optionally restricts which rooms the bot answers in.
	// Empty means every room the bot is a member of, which is the normal
	// deployment: citizens open a direct chat with the bot.
	AllowedRooms []string

	// DB is an optional SQLite connection used to persist the sync token
	// (next_batch) across restarts. When nil an in-memory store is used
	// and room history replays on every restart.
	DB *sql.DB
}

// MessageHandler processes one inbound text message.
type MessageHandler func(ctx context.Context, evt *event.Event)

// sendRetry bounds per-message delivery retries. Replies are conversational;
// after a few seconds the citizen has moved on and the retry is noise.
var sendRetry = retry.Config{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
}

const (
	backoffMin = 2 * time.Second
	backoffMax = 5 * time.Minute

	// backoffResetAfter: a sync that stayed up at least this long counts as
	// a recovered connection, so the next failure starts the ladder over.
	backoffResetAfter = time.Minute
)

// syncBackoff tracks the reconnect delay across consecutive sync failures.
type syncBackoff struct {
	cur time.Duration
}

// next returns the delay to wait before reconnecting, given how long the
// failed sync had been running. Consecutive quick failures double the delay
// up to backoffMax; a sync that ran long enough resets it.
func (b *syncBackoff) next(ran time.Duration) time.Duration {
	if b.cur == 0 || ran >= backoffResetAfter {
		b.cur = backoffMin
		return b.cur
	}
	b.cur *= 2
	if b.cur > backoffMax {
		b.cur = backoffMax
	}
	return b.cur
}

// Client wraps the mautrix client.
type Client struct {
	client     *mautrix.Client
	config     *Config
	stopCh     chan struct{}
	msgHandler MessageHandler
}

// New creates a Matrix client. It does not connect until Start.
func New(config *Config) (*Client, error) {
	client, err := mautrix.NewClient(config.Homeserver, id.UserID(config.UserID), config.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("matrix: create client: %w", err)
	}

	c := &Client{
		client: client,
		config: config,
		stopCh: make(chan struct{}),
	}

	if config.DB != nil {
		client.Store = newDBSyncStore(config.DB)
		slog.Info("matrix sync store: persistent SQLite store")
	} else {
		slog.Warn("matrix sync store: no DB configured, history will replay on restart")
	}

	return c, nil
}

// Start begins syncing with the homeserver and dispatching messages to
// handler. The sync loop reconnects with exponential backoff: a transient
// homeserver error must not leave the bot deaf to citizen messages.
func (c *Client) Start(ctx context.Context, handler MessageHandler) error {
	c.msgHandler = handler

	syncer := c.client.Syncer.(*mautrix.DefaultSyncer)
	syncer.OnEventType(event.EventMessage, c.handleMessage)
	syncer.OnEventType(event.StateMember, c.handleMembership)

	go func() {
		var backoff syncBackoff
		for {
			started := time.Now()
			if err := c.client.Sync(); err != nil {
				select {
				case <-c.stopCh:
					return
				default:
				}
				delay := backoff.next(time.Since(started))
				slog.Error("matrix sync stopped; reconnecting", "err", err, "backoff", delay)
				select {
				case <-c.stopCh:
					return
				case <-time.After(delay):
				}
				continue
			}
			// Sync returned nil; only happens on a clean StopSync call.
			return
		}
	}()

	return nil
}

// Stop stops the sync loop.
func (c *Client) Stop() {
	close(c.stopCh)
	c.client.StopSync()
}

// SendMessage sends a plain text message, retrying transient failures.
func (c *Client) SendMessage(ctx context.Context, roomID, message string) error {
	err := retry.Do(ctx, sendRetry, func() error {
		_, err := c.client.SendText(ctx, id.RoomID(roomID), message)
		return err
	})
	if err != nil {
		return fmt.Errorf("matrix: send message: %w", err)
	}
	return nil
}

// ReplyToMessage sends message threaded under the given event.
func (c *Client) ReplyToMessage(ctx context.Context, roomID, eventID, message string) error {
	content := event.MessageEventContent{
		MsgType: event.MsgText,
		Body:    message,
		RelatesTo: &event.RelatesTo{
			InReplyTo: &event.InReplyTo{
				EventID: id.EventID(eventID),
			},
		},
	}

	err := retry.Do(ctx, sendRetry, func() error {
		_, err := c.client.SendMessageEvent(ctx, id.RoomID(roomID), event.EventMessage, &content)
		return err
	})
	if err != nil {
		return fmt.Errorf("matrix: send reply: %w", err)
	}
	return nil
}

// SetTyping toggles the typing indicator while a turn is being processed.
func (c *Client) SetTyping(ctx context.Context, roomID string, typing bool, timeout time.Duration) error {
	if _, err := c.client.UserTyping(ctx, id.RoomID(roomID), typing, timeout); err != nil {
		return fmt.Errorf("matrix: set typing: %w", err)
	}
	return nil
}

// UserID returns the bot's own Matrix user ID.
func (c *Client) UserID() string {
	return c.config.UserID
}

// roomAllowed reports whether the bot answers in the given room.
func (c *Client) roomAllowed(roomID string) bool {
	if len(c.config.AllowedRooms) == 0 {
		return true
	}
	for _, r := range c.config.AllowedRooms {
		if r == roomID {
			return true
		}
	}
	return false
}

// handleMessage filters inbound events down to citizen text messages.
func (c *Client) handleMessage(ctx context.Context, evt *event.Event) {
	if evt.Sender == id.UserID(c.config.UserID) {
		return
	}

	msgContent := evt.Content.AsMessage()
	if msgContent == nil || msgContent.MsgType != event.MsgText {
		return
	}

	if !c.roomAllowed(evt.RoomID.String()) {
		return
	}

	if c.msgHandler != nil {
		c.msgHandler(ctx, evt)
	}
}

// handleMembership auto-accepts invites so a citizen can start a chat with
// the bot without operator involvement.
func (c *Client) handleMembership(ctx context.Context, evt *event.Event) {
	member := evt.Content.AsMember()
	if member == nil || member.Membership != event.MembershipInvite {
		return
	}
	if evt.GetStateKey() != c.config.UserID {
		return
	}
	if !c.roomAllowed(evt.RoomID.String()) {
		return
	}

	if _, err := c.client.JoinRoomByID(ctx, evt.RoomID); err != nil {
		if errors.Is(err, mautrix.MForbidden) {
			slog.Warn("join after invite: already a member or access denied", "room", evt.RoomID)
			return
		}
		slog.Error("join after invite failed", "room", evt.RoomID, "err", err)
		return
	}
	slog.Info("joined room after invite", "room", evt.RoomID)
}
