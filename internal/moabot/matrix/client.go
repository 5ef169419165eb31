// Package matrix is the optional chat front-end: the bot joins rooms on a
// Matrix homeserver and answers every text message through the conversation
// controller. The sender's MXID is the identity key, so each user gets their
// own session and off-topic counter regardless of which room they write in.
package matrix

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/moadev/moabot/internal/moabot/conversation"
)

// Config holds the Matrix front-end configuration.
type Config struct {
	Homeserver  string
	UserID      string
	AccessToken string
	// SyncDBPath is the SQLite file persisting the sync position. Empty
	// falls back to an in-memory store; room history replays on restart.
	SyncDBPath string
}

// Bridge connects a Matrix homeserver to the conversation controller.
type Bridge struct {
	client     *mautrix.Client
	controller *conversation.Controller
	log        *slog.Logger
	stopCh     chan struct{}
	db         *sql.DB

	// creds maps sender MXID to the ledger credential captured from a
	// successful sign-in over chat. In-memory only, like session state.
	mu    sync.Mutex
	creds map[id.UserID]string
}

// New creates the bridge. The sync database is opened (and bootstrapped)
// here so Start can fail only on homeserver problems.
func New(cfg Config, controller *conversation.Controller, log *slog.Logger) (*Bridge, error) {
	if log == nil {
		log = slog.Default()
	}
	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("create matrix client: %w", err)
	}

	b := &Bridge{
		client:     client,
		controller: controller,
		log:        log,
		stopCh:     make(chan struct{}),
		creds:      make(map[id.UserID]string),
	}

	if cfg.SyncDBPath != "" {
		db, err := openSyncDB(cfg.SyncDBPath)
		if err != nil {
			return nil, err
		}
		b.db = db
		client.Store = newDBSyncStore(db)
	} else {
		log.Warn("matrix sync store: no database configured, history will replay on restart")
	}

	return b, nil
}

// Start begins syncing in the background and keeps reconnecting with
// exponential backoff until Stop is called. A transient homeserver error
// must not leave the bot deaf to new messages.
func (b *Bridge) Start(ctx context.Context) error {
	syncer := b.client.Syncer.(*mautrix.DefaultSyncer)
	syncer.OnEventType(event.EventMessage, b.handleMessage)
	syncer.OnEventType(event.StateMember, b.handleInvite)

	go func() {
		const (
			backoffMin = 2 * time.Second
			backoffMax = 5 * time.Minute
		)
		backoff := backoffMin
		for {
			if err := b.client.Sync(); err != nil {
				select {
				case <-b.stopCh:
					return
				default:
				}
				b.log.Error("matrix sync stopped, reconnecting", "error", err, "backoff", backoff)
				select {
				case <-b.stopCh:
					return
				case <-time.After(backoff):
				}
				backoff *= 2
				if backoff > backoffMax {
					backoff = backoffMax
				}
				continue
			}
			return
		}
	}()

	return nil
}

// Stop ends syncing and closes the sync database.
func (b *Bridge) Stop() {
	close(b.stopCh)
	b.client.StopSync()
	if b.db != nil {
		b.db.Close()
	}
}

func (b *Bridge) handleMessage(ctx context.Context, evt *event.Event) {
	if evt.Sender == b.client.UserID {
		return
	}
	content := evt.Content.AsMessage()
	if content == nil || content.MsgType != event.MsgText {
		return
	}
	message := strings.TrimSpace(content.Body)
	if message == "" {
		return
	}

	_, _ = b.client.UserTyping(ctx, evt.RoomID, true, 10*time.Second)
	defer func() { _, _ = b.client.UserTyping(ctx, evt.RoomID, false, 0) }()

	resp, err := b.controller.Handle(ctx, conversation.Request{
		Identity: evt.Sender.String(),
		Auth:     b.credential(evt.Sender),
		Message:  message,
	})
	if err != nil {
		b.log.Error("conversation turn failed", "sender", evt.Sender, "error", err)
		_, _ = b.client.SendText(ctx, evt.RoomID, "요청 처리 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.")
		return
	}

	reply := resp.Reply
	if resp.Token != "" {
		// Keep the credential out of the room; the bridge attaches it to
		// every later ledger call on this user's behalf.
		b.setCredential(evt.Sender, "Bearer "+resp.Token)
		reply = "로그인 성공했습니다. 이제 가계부를 바로 사용할 수 있어요."
	}

	if _, err := b.client.SendText(ctx, evt.RoomID, reply); err != nil {
		b.log.Error("send reply failed", "room", evt.RoomID, "error", err)
	}
}

// handleInvite auto-joins rooms the bot is invited to.
func (b *Bridge) handleInvite(ctx context.Context, evt *event.Event) {
	if evt.GetStateKey() != b.client.UserID.String() {
		return
	}
	if m := evt.Content.AsMember(); m == nil || m.Membership != event.MembershipInvite {
		return
	}
	if _, err := b.client.JoinRoomByID(ctx, evt.RoomID); err != nil {
		b.log.Warn("join invited room failed", "room", evt.RoomID, "error", err)
		return
	}
	b.log.Info("joined room on invite", "room", evt.RoomID, "inviter", evt.Sender)
}

func (b *Bridge) credential(user id.UserID) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.creds[user]
}

func (b *Bridge) setCredential(user id.UserID, auth string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.creds[user] = auth
}

func openSyncDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sync database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS matrix_sync_state (
			user_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (user_id, key)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap sync table: %w", err)
	}
	return db, nil
}
