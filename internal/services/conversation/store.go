// Package conversation owns session/turn persistence and the turn
// orchestration pipeline. All writes for one turn happen inside a single
// transaction: a session and its first turn exist together or not at all, and
// an appended turn never leaves a half-applied title behind.
package conversation

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "budget-assistant/internal/common/errors"
	"budget-assistant/internal/common/logger"
	"budget-assistant/internal/models"
)

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "conversation-store"}),
	}
}

// CreateSessionWithTurn persists a new session and its opening turn as one
// atomic unit. On any failure both writes are rolled back; no orphaned
// session or turn is ever observable.
func (s *Store) CreateSessionWithTurn(ctx context.Context, sess *models.Session, turn *models.Turn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewPersistenceFailedError(err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, title, created_at)
		VALUES ($1, $2, $3, $4)`,
		sess.ID, sess.UserID, sess.Title, sess.CreatedAt,
	); err != nil {
		return s.rollback(tx, fmt.Errorf("insert session: %w", err))
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO conversations (id, session_id, user_id, prompt, response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		turn.ID, turn.SessionID, turn.UserID, turn.Prompt, turn.Response, turn.CreatedAt,
	); err != nil {
		return s.rollback(tx, fmt.Errorf("insert turn: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewPersistenceFailedError(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// AppendTurn inserts a turn into an existing session and backfills the
// session title when it is still empty, all in one transaction. The session
// row is locked for the read-title/decide/write sequence so two concurrent
// turns cannot both win the backfill.
func (s *Store) AppendTurn(ctx context.Context, turn *models.Turn, titleCandidate string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewPersistenceFailedError(err)
	}

	var currentTitle string
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(title, '') FROM sessions WHERE id = $1 FOR UPDATE`,
		turn.SessionID,
	).Scan(&currentTitle)
	if err == sql.ErrNoRows {
		_ = tx.Rollback()
		return apperrors.NewSessionNotFoundError(turn.SessionID)
	}
	if err != nil {
		return s.rollback(tx, fmt.Errorf("lock session: %w", err))
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO conversations (id, session_id, user_id, prompt, response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		turn.ID, turn.SessionID, turn.UserID, turn.Prompt, turn.Response, turn.CreatedAt,
	); err != nil {
		return s.rollback(tx, fmt.Errorf("insert turn: %w", err))
	}

	// Backfill once: empty -> non-empty, never overwritten afterwards.
	if currentTitle == "" && titleCandidate != "" {
		if _, err := tx.ExecContext(ctx, `
			UPDATE sessions SET title = $1 WHERE id = $2`,
			titleCandidate, turn.SessionID,
		); err != nil {
			return s.rollback(tx, fmt.Errorf("backfill title: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewPersistenceFailedError(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// GetSession looks a session up by id.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	sess := &models.Session{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, COALESCE(title, ''), created_at
		FROM sessions WHERE id = $1`,
		sessionID,
	).Scan(&sess.ID, &sess.UserID, &sess.Title, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewSessionNotFoundError(sessionID)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceFailedError(err)
	}
	return sess, nil
}

// RecentTurns returns up to limit turns of a session, newest first. The
// composer reverses the batch into chronological order.
func (s *Store) RecentTurns(ctx context.Context, sessionID string, limit int) ([]models.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, user_id, prompt, response, created_at
		FROM conversations
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, apperrors.NewPersistenceFailedError(err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

// HistoryByUser returns a user's turns across sessions, newest first.
func (s *Store) HistoryByUser(ctx context.Context, userID string, limit int) ([]models.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, user_id, prompt, response, created_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, apperrors.NewPersistenceFailedError(err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

func scanTurns(rows *sql.Rows) ([]models.Turn, error) {
	var turns []models.Turn
	for rows.Next() {
		var t models.Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UserID, &t.Prompt, &t.Response, &t.CreatedAt); err != nil {
			return nil, apperrors.NewPersistenceFailedError(err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceFailedError(err)
	}
	return turns, nil
}

func (s *Store) rollback(tx *sql.Tx, cause error) error {
	if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
		s.logger.Error("rollback failed", map[string]interface{}{
			"cause": cause.Error(),
			"error": rbErr.Error(),
		})
	}
	return apperrors.NewPersistenceFailedError(cause)
}
