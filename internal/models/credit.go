package models

import "time"

// Tool is a metered professional tool billed per session.
type Tool struct {
	ID         int       `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	CreditCost int       `db:"credit_cost" json:"credit_cost"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// MemberCredit is a member's spendable balance.
type MemberCredit struct {
	UserID    int       `db:"user_id" json:"user_id"`
	Balance   int       `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ToolSession is one metered period of tool use. EndedAt is NULL while the
// session is active.
type ToolSession struct {
	ID           int        `db:"id" json:"id"`
	UserID       int        `db:"user_id" json:"user_id"`
	ToolID       int        `db:"tool_id" json:"tool_id"`
	CreditsSpent int        `db:"credits_spent" json:"credits_spent"`
	StartedAt    time.Time  `db:"started_at" json:"started_at"`
	EndedAt      *time.Time `db:"ended_at" json:"ended_at,omitempty"`
}
