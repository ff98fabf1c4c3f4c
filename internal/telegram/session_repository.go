package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cookdna/internal/app"
	"cookdna/internal/database"
	"cookdna/internal/planner"
)

const (
	sessionTypePlan = "plan"

	stateProposed = "proposed"
	stateSwapped  = "swapped"
)

// Session represents an active user session (e.g., a plan awaiting acceptance)
type Session struct {
	ID          int64
	UserID      string
	SessionType string
	State       string
	ContextData string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// SessionContextData holds structured data stored in the context_data JSON field
type SessionContextData struct {
	Proposal planner.WeeklyPlanProposal `json:"proposal"`
	Request  PlanArgs                   `json:"request"`
	Swaps    int                        `json:"swaps,omitempty"`
}

// PlanArgs are the inputs a proposal was generated with. Swaps replay them.
type PlanArgs struct {
	WeekStart time.Time               `json:"week_start"`
	DayModes  map[int]planner.DayMode `json:"day_modes,omitempty"`
}

func (a PlanArgs) request() app.PlanRequest {
	return app.PlanRequest{WeekStart: a.WeekStart, DayModes: a.DayModes}
}

// SessionRepository provides access to session persistence operations
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository creates a new SessionRepository instance
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Create creates a new session and returns its ID
func (sr *SessionRepository) Create(ctx context.Context, userID, sessionType, state string, contextData SessionContextData, ttl time.Duration) (int64, error) {
	jsonData, err := json.Marshal(contextData)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal session data: %w", err)
	}

	now := sr.now()
	res, err := sr.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, session_type, state, context_data, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, sessionType, state, string(jsonData),
		database.FormatTime(now.Add(ttl)), database.FormatTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	return res.LastInsertId()
}

// GetActive retrieves the most recent non-expired session of a type for a user
func (sr *SessionRepository) GetActive(ctx context.Context, userID, sessionType string) (*Session, error) {
	row := sr.db.QueryRowContext(ctx, `
		SELECT id, user_id, session_type, state, context_data, expires_at, created_at
		FROM sessions
		WHERE user_id = ? AND session_type = ? AND expires_at > ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		userID, sessionType, database.FormatTime(sr.now()))

	var (
		s                  Session
		expires, createdAt string
	)
	err := row.Scan(&s.ID, &s.UserID, &s.SessionType, &s.State, &s.ContextData, &expires, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	if s.ExpiresAt, err = database.ParseTime(expires); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetContextData unmarshals the context_data JSON field
func (s *Session) GetContextData() (SessionContextData, error) {
	var data SessionContextData
	err := json.Unmarshal([]byte(s.ContextData), &data)
	return data, err
}

// Update updates the state and context_data for a session
func (sr *SessionRepository) Update(ctx context.Context, sessionID int64, state string, contextData SessionContextData) error {
	jsonData, err := json.Marshal(contextData)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}
	_, err = sr.db.ExecContext(ctx,
		`UPDATE sessions SET state = ?, context_data = ? WHERE id = ?`,
		state, string(jsonData), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session %d: %w", sessionID, err)
	}
	return nil
}

// Delete removes a session
func (sr *SessionRepository) Delete(ctx context.Context, sessionID int64) error {
	if _, err := sr.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", sessionID, err)
	}
	return nil
}

// CleanupExpired removes all expired sessions
func (sr *SessionRepository) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := sr.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, database.FormatTime(sr.now()))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	return res.RowsAffected()
}
