// Package prefs persists per-user rename preferences in SQLite.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"refile/internal/config"
	"refile/internal/services"
)

// Store manages user preference persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the preference database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.DBPath)
}

// OpenPath opens the database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsureUser inserts a default record for the user when none exists.
func (s *Store) EnsureUser(ctx context.Context, userID int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO users (user_id, join_date, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(user_id) DO NOTHING`,
		userID, now, now,
	)
	if err != nil {
		return fmt.Errorf("ensure user %d: %w", userID, err)
	}
	return nil
}

// Get loads the full preference record for a user. Missing users yield
// services.ErrNotFound.
func (s *Store) Get(ctx context.Context, userID int64) (*Preferences, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT user_id, join_date, format_template, file_source, caption,
                thumbnail_ref, metadata_enabled,
                meta_title, meta_artist, meta_author,
                meta_video_title, meta_audio_title, meta_subtitle_title,
                banned, ban_reason, banned_on
         FROM users WHERE user_id = ?`,
		userID,
	)

	var (
		p        Preferences
		joinDate string
		source   string
		bannedOn string
	)
	err := row.Scan(
		&p.UserID, &joinDate, &p.FormatTemplate, &source, &p.Caption,
		&p.ThumbnailRef, &p.MetadataEnabled,
		&p.Metadata.Title, &p.Metadata.Artist, &p.Metadata.Author,
		&p.Metadata.VideoTitle, &p.Metadata.AudioTitle, &p.Metadata.SubtitleTitle,
		&p.Ban.Banned, &p.Ban.Reason, &bannedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "prefs", "get", fmt.Sprintf("user %d not found", userID), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}

	p.FileSource = FileSource(source)
	if t, parseErr := time.Parse(time.RFC3339Nano, joinDate); parseErr == nil {
		p.JoinDate = t
	}
	if bannedOn != "" {
		if t, parseErr := time.Parse(time.RFC3339Nano, bannedOn); parseErr == nil {
			p.Ban.BannedOn = t
		}
	}
	return &p, nil
}

// SetFormatTemplate stores the user's rename template. An empty template
// clears it.
func (s *Store) SetFormatTemplate(ctx context.Context, userID int64, template string) error {
	return s.setColumn(ctx, userID, "format_template", template)
}

// FormatTemplate returns the stored template, empty when unset.
func (s *Store) FormatTemplate(ctx context.Context, userID int64) (string, error) {
	return s.stringColumn(ctx, userID, "format_template")
}

// SetFileSource stores which text feeds the classifiers.
func (s *Store) SetFileSource(ctx context.Context, userID int64, source FileSource) error {
	if source != SourceFilename && source != SourceCaption {
		return services.Wrap(services.ErrConfiguration, "prefs", "set file source", fmt.Sprintf("unsupported source %q", source), nil)
	}
	return s.setColumn(ctx, userID, "file_source", string(source))
}

// SetCaption stores the user's upload caption. Empty clears it.
func (s *Store) SetCaption(ctx context.Context, userID int64, caption string) error {
	return s.setColumn(ctx, userID, "caption", caption)
}

// SetThumbnail stores the transport reference of the user's thumbnail.
// Empty clears it.
func (s *Store) SetThumbnail(ctx context.Context, userID int64, ref string) error {
	return s.setColumn(ctx, userID, "thumbnail_ref", ref)
}

// SetMetadataEnabled toggles metadata tagging for the user.
func (s *Store) SetMetadataEnabled(ctx context.Context, userID int64, enabled bool) error {
	return s.setColumn(ctx, userID, "metadata_enabled", enabled)
}

// SetMetadataFields stores all six metadata values at once.
func (s *Store) SetMetadataFields(ctx context.Context, userID int64, fields MetadataFields) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE users SET meta_title = ?, meta_artist = ?, meta_author = ?,
                meta_video_title = ?, meta_audio_title = ?, meta_subtitle_title = ?,
                updated_at = ?
         WHERE user_id = ?`,
		fields.Title, fields.Artist, fields.Author,
		fields.VideoTitle, fields.AudioTitle, fields.SubtitleTitle,
		now, userID,
	)
	if err != nil {
		return fmt.Errorf("update metadata fields for %d: %w", userID, err)
	}
	return s.requireRow(res, userID)
}

// Ban marks the user banned with a reason.
func (s *Store) Ban(ctx context.Context, userID int64, reason string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE users SET banned = 1, ban_reason = ?, banned_on = ?, updated_at = ? WHERE user_id = ?`,
		reason, now, now, userID,
	)
	if err != nil {
		return fmt.Errorf("ban user %d: %w", userID, err)
	}
	return s.requireRow(res, userID)
}

// Unban clears the user's ban.
func (s *Store) Unban(ctx context.Context, userID int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE users SET banned = 0, ban_reason = '', banned_on = '', updated_at = ? WHERE user_id = ?`,
		now, userID,
	)
	if err != nil {
		return fmt.Errorf("unban user %d: %w", userID, err)
	}
	return s.requireRow(res, userID)
}

// TotalUsers counts registered users.
func (s *Store) TotalUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// AllUserIDs lists every registered user ordered by join date.
func (s *Store) AllUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT user_id FROM users ORDER BY join_date")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteUser removes a user record entirely.
func (s *Store) DeleteUser(ctx context.Context, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE user_id = ?", userID)
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) setColumn(ctx context.Context, userID int64, column string, value any) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		fmt.Sprintf("UPDATE users SET %s = ?, updated_at = ? WHERE user_id = ?", column),
		value, now, userID,
	)
	if err != nil {
		return fmt.Errorf("update %s for %d: %w", column, userID, err)
	}
	return s.requireRow(res, userID)
}

func (s *Store) stringColumn(ctx context.Context, userID int64, column string) (string, error) {
	var value string
	err := s.db.QueryRowContext(
		ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE user_id = ?", column),
		userID,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", services.Wrap(services.ErrNotFound, "prefs", "get", fmt.Sprintf("user %d not found", userID), nil)
	}
	if err != nil {
		return "", fmt.Errorf("load %s for %d: %w", column, userID, err)
	}
	return value, nil
}

func (s *Store) requireRow(res sql.Result, userID int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "prefs", "update", fmt.Sprintf("user %d not found", userID), nil)
	}
	return nil
}
