package models

import "time"

// AuditAction enumerates recorded audit actions.
type AuditAction string

const (
	AuditActionLogin             AuditAction = "LOGIN"
	AuditActionLogout            AuditAction = "LOGOUT"
	AuditActionRankingCreate     AuditAction = "RANKING_CREATE"
	AuditActionRankingReorder    AuditAction = "RANKING_REORDER"
	AuditActionRankingDistribute AuditAction = "RANKING_DISTRIBUTE"
	AuditActionRankingFinalize   AuditAction = "RANKING_FINALIZE"
	AuditActionRankingUnfinalize AuditAction = "RANKING_UNFINALIZE"
	AuditActionRankingDelete     AuditAction = "RANKING_DELETE"
	AuditActionApplicationReview AuditAction = "APPLICATION_REVIEW"
)

// AuditLog captures a mutating action for traceability.
type AuditLog struct {
	ID         string      `db:"id" json:"id"`
	UserID     *string     `db:"user_id" json:"user_id,omitempty"`
	Action     AuditAction `db:"action" json:"action"`
	Resource   string      `db:"resource" json:"resource"`
	ResourceID *string     `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte      `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte      `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string      `db:"ip_address" json:"-"`
	UserAgent  string      `db:"user_agent" json:"-"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}
