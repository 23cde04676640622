package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EnsureUser creates the user if it does not exist. A non-empty name
// replaces the stored one.
func (db *DB) EnsureUser(ctx context.Context, id, name string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("user id is empty: %w", ErrInvalid)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = CASE WHEN excluded.name = '' THEN users.name ELSE excluded.name END`,
		id, name, db.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("ensuring user: %w", err)
	}
	return nil
}

// CreateGroup creates a group owned by ownerID and makes the owner its first
// member.
func (db *DB) CreateGroup(ctx context.Context, name, ownerID string) (Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Group{}, fmt.Errorf("group name is empty: %w", ErrInvalid)
	}
	if err := db.EnsureUser(ctx, ownerID, ""); err != nil {
		return Group{}, err
	}

	g := Group{ID: uuid.NewString(), Name: name, OwnerID: ownerID}
	created := db.timestamp()
	g.CreatedAt = parseTimestamp(created)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Group{}, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO calendar_groups (id, name, owner_id, created_at) VALUES (?, ?, ?, ?)",
		g.ID, g.Name, g.OwnerID, created,
	); err != nil {
		return Group{}, fmt.Errorf("inserting group: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id) VALUES (?, ?)", g.ID, ownerID,
	); err != nil {
		return Group{}, fmt.Errorf("adding owner to group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Group{}, fmt.Errorf("committing group: %w", err)
	}
	return g, nil
}

func (db *DB) GetGroup(ctx context.Context, id string) (Group, error) {
	var g Group
	var created string
	err := db.QueryRowContext(ctx,
		"SELECT id, name, owner_id, created_at FROM calendar_groups WHERE id = ?", id,
	).Scan(&g.ID, &g.Name, &g.OwnerID, &created)
	if err == sql.ErrNoRows {
		return Group{}, fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Group{}, fmt.Errorf("getting group: %w", err)
	}
	g.CreatedAt = parseTimestamp(created)
	return g, nil
}

// AddMember adds userID to the group. Adding an existing member is a no-op.
func (db *DB) AddMember(ctx context.Context, groupID, userID string) error {
	if _, err := db.GetGroup(ctx, groupID); err != nil {
		return err
	}
	if err := db.EnsureUser(ctx, userID, ""); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("adding member: %w", err)
	}
	return nil
}

func (db *DB) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return n > 0, nil
}

func (db *DB) GroupsForUser(ctx context.Context, userID string) ([]Group, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT g.id, g.name, g.owner_id, g.created_at
		 FROM calendar_groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.name, g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying groups: %w", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		var created string
		if err := rows.Scan(&g.ID, &g.Name, &g.OwnerID, &created); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		g.CreatedAt = parseTimestamp(created)
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
