package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"portal-service/internal/models"
)

var (
	ErrToolNotFound = errors.New("tool not found")
	// ErrInsufficientCredits signals the caller must purchase credits before
	// starting a session.
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrSessionActive       = errors.New("a tool session is already active")
	ErrNoActiveSession     = errors.New("no active tool session")
)

const uniqueViolation = "23505"

// CreditRepository tracks tool definitions, balances and metered sessions.
type CreditRepository interface {
	ListTools(ctx context.Context) ([]models.Tool, error)
	GetTool(ctx context.Context, toolID int) (models.Tool, error)
	GetBalance(ctx context.Context, userID int) (models.MemberCredit, error)
	AddCredits(ctx context.Context, userID int, amount int) (models.MemberCredit, error)
	StartSession(ctx context.Context, userID int, toolID int) (models.ToolSession, error)
	StopSession(ctx context.Context, userID int) (models.ToolSession, error)
	ActiveSession(ctx context.Context, userID int) (models.ToolSession, error)
}

// CreditRepo is a sqlx implementation of CreditRepository.
type CreditRepo struct {
	db *sqlx.DB
}

// NewCreditRepo constructs a CreditRepo.
func NewCreditRepo(db *sqlx.DB) *CreditRepo {
	return &CreditRepo{db: db}
}

// ListTools returns every tool.
func (r *CreditRepo) ListTools(ctx context.Context) ([]models.Tool, error) {
	var tools []models.Tool
	err := r.db.SelectContext(ctx, &tools, `SELECT id, name, credit_cost, created_at FROM tools ORDER BY id`)
	return tools, err
}

// GetTool fetches a tool by id.
func (r *CreditRepo) GetTool(ctx context.Context, toolID int) (models.Tool, error) {
	var tool models.Tool
	err := r.db.GetContext(ctx, &tool, `SELECT id, name, credit_cost, created_at FROM tools WHERE id=$1`, toolID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tool{}, ErrToolNotFound
	}
	return tool, err
}

// GetBalance returns the member's balance, zero when no row exists yet.
func (r *CreditRepo) GetBalance(ctx context.Context, userID int) (models.MemberCredit, error) {
	var credit models.MemberCredit
	err := r.db.GetContext(ctx, &credit, `SELECT user_id, balance, updated_at FROM member_credits WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MemberCredit{UserID: userID}, nil
	}
	return credit, err
}

// AddCredits tops up the member's balance.
func (r *CreditRepo) AddCredits(ctx context.Context, userID int, amount int) (models.MemberCredit, error) {
	var credit models.MemberCredit
	err := r.db.QueryRowxContext(ctx, `INSERT INTO member_credits (user_id, balance, updated_at) VALUES ($1, $2, NOW())
        ON CONFLICT (user_id) DO UPDATE SET balance = member_credits.balance + EXCLUDED.balance, updated_at = NOW()
        RETURNING user_id, balance, updated_at`, userID, amount).
		Scan(&credit.UserID, &credit.Balance, &credit.UpdatedAt)
	return credit, err
}

// StartSession opens a metered session inside one transaction. The partial
// unique index on active sessions rejects a concurrent double start, and the
// guarded decrement keeps the balance from going negative; both races from
// the read-then-write version are closed here.
func (r *CreditRepo) StartSession(ctx context.Context, userID int, toolID int) (models.ToolSession, error) {
	tool, err := r.GetTool(ctx, toolID)
	if err != nil {
		return models.ToolSession{}, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ToolSession{}, err
	}
	defer tx.Rollback()

	var session models.ToolSession
	err = tx.QueryRowxContext(ctx, `INSERT INTO tool_sessions (user_id, tool_id, credits_spent)
        VALUES ($1, $2, $3)
        RETURNING id, user_id, tool_id, credits_spent, started_at, ended_at`,
		userID, toolID, tool.CreditCost).
		Scan(&session.ID, &session.UserID, &session.ToolID, &session.CreditsSpent, &session.StartedAt, &session.EndedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.ToolSession{}, ErrSessionActive
		}
		return models.ToolSession{}, err
	}

	res, err := tx.ExecContext(ctx, `UPDATE member_credits SET balance = balance - $1, updated_at = NOW()
        WHERE user_id=$2 AND balance >= $1`, tool.CreditCost, userID)
	if err != nil {
		return models.ToolSession{}, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return models.ToolSession{}, err
	}
	if count == 0 {
		return models.ToolSession{}, ErrInsufficientCredits
	}

	if err := tx.Commit(); err != nil {
		return models.ToolSession{}, err
	}
	return session, nil
}

// StopSession closes the member's active session.
func (r *CreditRepo) StopSession(ctx context.Context, userID int) (models.ToolSession, error) {
	var session models.ToolSession
	err := r.db.QueryRowxContext(ctx, `UPDATE tool_sessions SET ended_at = NOW()
        WHERE user_id=$1 AND ended_at IS NULL
        RETURNING id, user_id, tool_id, credits_spent, started_at, ended_at`, userID).
		Scan(&session.ID, &session.UserID, &session.ToolID, &session.CreditsSpent, &session.StartedAt, &session.EndedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ToolSession{}, ErrNoActiveSession
	}
	return session, err
}

// ActiveSession fetches the member's active session, if any.
func (r *CreditRepo) ActiveSession(ctx context.Context, userID int) (models.ToolSession, error) {
	var session models.ToolSession
	err := r.db.GetContext(ctx, &session, `SELECT id, user_id, tool_id, credits_spent, started_at, ended_at
        FROM tool_sessions WHERE user_id=$1 AND ended_at IS NULL`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ToolSession{}, ErrNoActiveSession
	}
	return session, err
}
