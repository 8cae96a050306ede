// Package notify persists operator notifications in a small SQLite
// store and fans new entries out to live stream subscribers. Kind and
// severity are free-form strings declared by callers; the store does
// not interpret them beyond filtering.
package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/sijill/pkg/normalize"
)

// ErrNotFound is returned for operations on a notification ID that
// does not exist.
var ErrNotFound = errors.New("notification not found")

// Notification is one stored entry.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Kind      string    `json:"kind"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// ListFilter narrows a listing. Query matches against the normalized
// title and body, so Arabic diacritics and letter variants on either
// side do not matter.
type ListFilter struct {
	Kind       string
	Severity   string
	Query      string
	UnreadOnly bool
}

// Store is a SQLite-backed notification log.
type Store struct {
	db *sql.DB

	mu   sync.Mutex
	subs map[chan Notification]struct{}
}

const schema = `
CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	kind       TEXT NOT NULL DEFAULT '',
	severity   TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	read       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);
`

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open notifications db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init notifications schema: %w", err)
	}
	return &Store{db: db, subs: make(map[chan Notification]struct{})}, nil
}

// Close closes the database and every subscriber channel.
func (s *Store) Close() error {
	s.mu.Lock()
	for ch := range s.subs {
		close(ch)
	}
	s.subs = make(map[chan Notification]struct{})
	s.mu.Unlock()
	return s.db.Close()
}

// Add stores a notification and broadcasts it to subscribers. A zero ID
// gets a fresh UUID; a zero CreatedAt gets the current time.
func (s *Store) Add(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, title, body, kind, severity, created_at, read)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Body, n.Kind, n.Severity, n.CreatedAt.Format(time.RFC3339Nano), boolInt(n.Read))
	if err != nil {
		return Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	s.broadcast(n)
	return n, nil
}

// List returns notifications newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Notification, error) {
	q := `SELECT id, title, body, kind, severity, created_at, read FROM notifications`
	var conds []string
	var args []any
	if f.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.Severity != "" {
		conds = append(conds, "severity = ?")
		args = append(args, f.Severity)
	}
	if f.UnreadOnly {
		conds = append(conds, "read = 0")
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	key := normalize.Text(f.Query)
	var out []Notification
	for rows.Next() {
		var n Notification
		var created string
		var read int
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.Kind, &n.Severity, &created, &read); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		n.Read = read != 0
		if key != "" &&
			!strings.Contains(normalize.Text(n.Title), key) &&
			!strings.Contains(normalize.Text(n.Body), key) {
			continue
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead marks one notification as read.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return oneRow(res)
}

// MarkAllRead marks every notification as read and reports how many changed.
func (s *Store) MarkAllRead(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE read = 0`)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes one notification.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return oneRow(res)
}

// DeleteAll clears the store and reports how many entries were removed.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications`)
	if err != nil {
		return 0, fmt.Errorf("delete all notifications: %w", err)
	}
	return res.RowsAffected()
}

// Subscribe returns a channel receiving every notification added after
// this call, plus a cancel function. A slow subscriber drops messages
// rather than blocking writers.
func (s *Store) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 16)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

func (s *Store) broadcast(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
