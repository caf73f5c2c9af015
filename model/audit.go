package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records API actions and awards.
type AuditLog struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID       string         `gorm:"index:idx_audit_trace;size:36" json:"trace_id"`
	Action        string         `gorm:"size:64;not null" json:"action"`
	AchievementID *int           `gorm:"index:idx_audit_achievement" json:"achievement_id"`
	RunID         *int64         `json:"run_id"`
	Detail        datatypes.JSON `json:"detail"`
	Error         string         `gorm:"type:text" json:"error"`
	IP            string         `gorm:"size:45" json:"ip"`
	CreatedAt     time.Time      `gorm:"index:idx_audit_created;autoCreateTime:milli" json:"created_at"`
}
