package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rumdood/Moneo-sub002/internal/chat"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// Store is the conversation journal. Every method honors ctx for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveEntry records one exchanged message. A zero ID is replaced by a fresh UUID.
	SaveEntry(ctx context.Context, entry *chat.ConversationEntry) error

	// RecentEntries returns up to limit of the newest entries of a conversation, oldest first.
	RecentEntries(ctx context.Context, conversationID int64, limit int) ([]chat.ConversationEntry, error)

	// PruneEntriesBefore deletes entries older than cutoff and reports how many were removed.
	PruneEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteConversation deletes every entry of one conversation.
	DeleteConversation(ctx context.Context, conversationID int64) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store on top of sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by a connected sqlx.DB.
func NewStore(db *sqlx.DB, log *slog.Logger) Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: log.With("component", "journal_store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveEntry(ctx context.Context, entry *chat.ConversationEntry) error {
	if entry == nil {
		return errors.New("cannot save nil entry")
	}
	if entry.ConversationID == 0 {
		return errors.New("entry must have a non-zero conversation_id")
	}
	if entry.Message == "" {
		return errors.New("entry must have non-empty message")
	}
	if entry.Timestamp.IsZero() {
		return errors.New("entry must have a non-zero timestamp")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	query := `
        INSERT INTO conversation_entries
            (id, conversation_id, user_id, username, first_name, last_name, message, direction, timestamp)
        VALUES
            (:id, :conversation_id, :user_id, :username, :first_name, :last_name, :message, :direction, :timestamp);
    `
	result, err := s.db.NamedExecContext(ctx, query, rowFromEntry(entry))
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving journal entry",
			"conversation_id", entry.ConversationID, "direction", entry.Direction, "error", err)
		return fmt.Errorf("failed to save entry (conversation %d): %w", entry.ConversationID, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected != 1 {
		s.logger.WarnContext(ctx, "Unexpected number of rows affected when saving entry",
			"conversation_id", entry.ConversationID, "affected", affected)
	}

	s.logger.DebugContext(ctx, "Journal entry saved",
		"conversation_id", entry.ConversationID, "entry_id", entry.ID, "direction", entry.Direction)
	return nil
}

func (s *sqlxStore) RecentEntries(ctx context.Context, conversationID int64, limit int) ([]chat.ConversationEntry, error) {
	if conversationID == 0 {
		return nil, errors.New("conversation_id cannot be zero")
	}

	if limit <= 0 {
		limit = defaultRecentLimit
	} else if limit > maxRecentLimit {
		s.logger.DebugContext(ctx, "Limit exceeded maximum value, capping",
			"conversation_id", conversationID, "capped_limit", maxRecentLimit)
		limit = maxRecentLimit
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var rows []entryRow
	query := `
        SELECT id, conversation_id, user_id, username, first_name, last_name, message, direction, timestamp
        FROM conversation_entries
        WHERE conversation_id = ?
        ORDER BY timestamp DESC, rowid DESC
        LIMIT ?;
    `
	if err := s.db.SelectContext(ctx, &rows, query, conversationID, limit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []chat.ConversationEntry{}, nil
		}
		s.logger.ErrorContext(ctx, "Error fetching recent journal entries", "conversation_id", conversationID, "error", err)
		return nil, fmt.Errorf("failed to fetch entries for conversation %d: %w", conversationID, err)
	}

	entries := make([]chat.ConversationEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	slices.Reverse(entries)
	return entries, nil
}

func (s *sqlxStore) PruneEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, errors.New("prune cutoff cannot be zero")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM conversation_entries WHERE timestamp < ?`, cutoff.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning journal entries", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to prune entries before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	deleted, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Pruned journal entries", "cutoff", cutoff, "deleted", deleted)
	return deleted, nil
}

func (s *sqlxStore) DeleteConversation(ctx context.Context, conversationID int64) (int64, error) {
	if conversationID == 0 {
		return 0, errors.New("conversation_id cannot be zero")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM conversation_entries WHERE conversation_id = ?`, conversationID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting conversation", "conversation_id", conversationID, "error", err)
		return 0, fmt.Errorf("failed to delete conversation %d: %w", conversationID, err)
	}

	deleted, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Deleted conversation journal", "conversation_id", conversationID, "deleted", deleted)
	return deleted, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
