package model

import "time"

// OverlayMode tags the overlay session mode a quest was run under.
type OverlayMode string

const (
	OverlayNormal   OverlayMode = "Normal"
	OverlayZen      OverlayMode = "Zen"
	OverlaySpeedrun OverlayMode = "Speedrun"
)

// FramesPerSecond is the game's fixed tick rate.
const FramesPerSecond = 30

// QuestRun is one completed quest attempt. Rows are append-only.
//
// The *Log columns hold frame-indexed JSON objects exactly as captured by the
// overlay; they are decoded by the history package when a snapshot is taken.
type QuestRun struct {
	RunID            int64       `gorm:"column:run_id;primaryKey;autoIncrement" json:"run_id"`
	QuestID          int         `gorm:"index:idx_run_quest;not null" json:"quest_id"`
	AreaID           int         `json:"area_id"`
	WeaponTypeID     int         `gorm:"index:idx_run_weapon" json:"weapon_type_id"`
	FinalTimeValue   int         `gorm:"not null" json:"final_time_value"`
	FinalTimeDisplay string      `gorm:"size:16" json:"final_time_display"`
	PartySize        int         `gorm:"default:1" json:"party_size"`
	OverlayMode      OverlayMode `gorm:"size:16;default:Normal" json:"overlay_mode"`

	KeystrokesLog    string `gorm:"type:text" json:"keystrokes_log,omitempty"`
	GamepadInputLog  string `gorm:"type:text" json:"gamepad_input_log,omitempty"`
	HitsTakenBlocked string `gorm:"type:text" json:"hits_taken_blocked,omitempty"`
	PlayerStamina    string `gorm:"type:text" json:"player_stamina,omitempty"`
	AttackBuff       string `gorm:"type:text" json:"attack_buff,omitempty"`
	Carts            string `gorm:"type:text" json:"carts,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Solo reports whether the run was cleared alone.
func (q *QuestRun) Solo() bool { return q.PartySize <= 1 }

// QuestAttempt counts attempts of a quest per weapon and overlay mode.
type QuestAttempt struct {
	ID           int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestID      int         `gorm:"uniqueIndex:idx_attempt_key;not null" json:"quest_id"`
	WeaponTypeID int         `gorm:"uniqueIndex:idx_attempt_key" json:"weapon_type_id"`
	OverlayMode  OverlayMode `gorm:"uniqueIndex:idx_attempt_key;size:16" json:"overlay_mode"`
	Attempts     int         `gorm:"default:0" json:"attempts"`
}

// PersonalBestAttempt counts attempts made while chasing a personal best.
type PersonalBestAttempt struct {
	ID           int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestID      int         `gorm:"uniqueIndex:idx_pb_attempt_key;not null" json:"quest_id"`
	WeaponTypeID int         `gorm:"uniqueIndex:idx_pb_attempt_key" json:"weapon_type_id"`
	OverlayMode  OverlayMode `gorm:"uniqueIndex:idx_pb_attempt_key;size:16" json:"overlay_mode"`
	Attempts     int         `gorm:"default:0" json:"attempts"`
}

// OverlaySession is one launch of the overlay.
type OverlaySession struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StartedAt time.Time `gorm:"autoCreateTime" json:"started_at"`
}
