package model

import "time"

// AwardRecord is the durable proof that an achievement was granted.
// There is at most one row per AchievementID.
type AwardRecord struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AchievementID int       `gorm:"uniqueIndex:idx_award_achievement;not null" json:"achievement_id"`
	AwardedAt     time.Time `gorm:"not null" json:"awarded_at"`
}

// PendingAward is an award whose ledger write failed and is awaiting retry.
type PendingAward struct {
	AchievementID int       `gorm:"primaryKey;autoIncrement:false" json:"achievement_id"`
	AwardedAt     time.Time `gorm:"not null" json:"awarded_at"`
	Attempts      int       `gorm:"default:0" json:"attempts"`
	LastError     string    `gorm:"type:text" json:"last_error"`
}
