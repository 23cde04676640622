package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/christopherklint97/kalendr/internal/assistant"
	"github.com/google/uuid"
)

type Event struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	GroupName   string    `json:"group_name,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`
	Time        string    `json:"time,omitempty"`
	EndTime     string    `json:"end_time,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToCalendarEvent maps a stored event onto the assistant's input type.
func (e Event) ToCalendarEvent() assistant.CalendarEvent {
	group := e.GroupName
	if group == "" {
		group = e.GroupID
	}
	return assistant.CalendarEvent{
		Date:    e.Date,
		Time:    e.Time,
		EndTime: e.EndTime,
		Title:   e.Title,
		Group:   group,
	}
}

func CalendarEvents(events []Event) []assistant.CalendarEvent {
	out := make([]assistant.CalendarEvent, len(events))
	for i, e := range events {
		out[i] = e.ToCalendarEvent()
	}
	return out
}

// Validate checks the date and clock fields. EndTime needs Time and must be
// later on the same day.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("event title is empty: %w", ErrInvalid)
	}
	if _, err := time.Parse(assistant.DateLayout, e.Date); err != nil {
		return fmt.Errorf("event date %q is not YYYY-MM-DD: %w", e.Date, ErrInvalid)
	}
	if e.Time != "" && !validClock(e.Time) {
		return fmt.Errorf("event time %q is not HH:MM: %w", e.Time, ErrInvalid)
	}
	if e.EndTime != "" {
		if e.Time == "" {
			return fmt.Errorf("event end time without start time: %w", ErrInvalid)
		}
		if !validClock(e.EndTime) {
			return fmt.Errorf("event end time %q is not HH:MM: %w", e.EndTime, ErrInvalid)
		}
		if e.EndTime <= e.Time {
			return fmt.Errorf("event ends at %s before it starts at %s: %w", e.EndTime, e.Time, ErrInvalid)
		}
	}
	return nil
}

func validClock(s string) bool {
	if len(s) != len(assistant.ClockLayout) {
		return false
	}
	_, err := time.Parse(assistant.ClockLayout, s)
	return err == nil
}

// InsertEvent stores e in its group after checking that CreatedBy is a
// member. ID and CreatedAt are assigned here.
func (db *DB) InsertEvent(ctx context.Context, e Event) (Event, error) {
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	ok, err := db.IsMember(ctx, e.GroupID, e.CreatedBy)
	if err != nil {
		return Event{}, err
	}
	if !ok {
		return Event{}, fmt.Errorf("creating event in group %s: %w", e.GroupID, ErrNotMember)
	}

	e.ID = uuid.NewString()
	created := db.timestamp()
	e.CreatedAt = parseTimestamp(created)

	_, err = db.ExecContext(ctx,
		`INSERT INTO events (id, group_id, title, description, date, time, end_time, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.GroupID, e.Title, e.Description, e.Date, e.Time, e.EndTime, e.CreatedBy, created,
	)
	if err != nil {
		return Event{}, fmt.Errorf("inserting event: %w", err)
	}
	return e, nil
}

const eventColumns = `e.id, e.group_id, g.name, e.title, e.description, e.date, e.time, e.end_time, e.created_by, e.created_at`

func (db *DB) GetEvent(ctx context.Context, id string) (Event, error) {
	events, err := db.queryEvents(ctx,
		`SELECT `+eventColumns+`
		 FROM events e JOIN calendar_groups g ON g.id = e.group_id
		 WHERE e.id = ?`,
		id,
	)
	if err != nil {
		return Event{}, err
	}
	if len(events) == 0 {
		return Event{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return events[0], nil
}

// DeleteEvent removes an event on behalf of userID, who must belong to the
// event's group.
func (db *DB) DeleteEvent(ctx context.Context, id, userID string) error {
	e, err := db.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	ok, err := db.IsMember(ctx, e.GroupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("deleting event %s: %w", id, ErrNotMember)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

// EventsForUser returns events in every group userID belongs to with
// from <= date < to, ordered by date and start time.
func (db *DB) EventsForUser(ctx context.Context, userID, from, to string) ([]Event, error) {
	return db.queryEvents(ctx,
		`SELECT `+eventColumns+`
		 FROM events e
		 JOIN calendar_groups g ON g.id = e.group_id
		 JOIN group_members m ON m.group_id = e.group_id
		 WHERE m.user_id = ? AND e.date >= ? AND e.date < ?
		 ORDER BY e.date ASC, e.time ASC, e.title ASC`,
		userID, from, to,
	)
}

func (db *DB) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var created string
		if err := rows.Scan(
			&e.ID, &e.GroupID, &e.GroupName, &e.Title, &e.Description,
			&e.Date, &e.Time, &e.EndTime, &e.CreatedBy, &created,
		); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.CreatedAt = parseTimestamp(created)
		events = append(events, e)
	}

	return events, rows.Err()
}

// Exchange is one assistant question and the reply that was sent back.
type Exchange struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Intent    string    `json:"intent"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (db *DB) LogExchange(ctx context.Context, userID, text, intent, message string) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO exchanges (user_id, text, intent, message, created_at) VALUES (?, ?, ?, ?, ?)",
		userID, text, intent, message, db.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("logging exchange: %w", err)
	}
	return nil
}

// RecentExchanges returns the newest n exchanges of userID, oldest first.
func (db *DB) RecentExchanges(ctx context.Context, userID string, n int) ([]Exchange, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, text, intent, message, created_at FROM (
			SELECT * FROM exchanges WHERE user_id = ? ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`,
		userID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("querying exchanges: %w", err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var x Exchange
		var created string
		if err := rows.Scan(&x.ID, &x.UserID, &x.Text, &x.Intent, &x.Message, &created); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		x.CreatedAt = parseTimestamp(created)
		out = append(out, x)
	}
	return out, rows.Err()
}

