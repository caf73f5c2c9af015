package model

import "time"

// Bingo is one finished bingo board.
type Bingo struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Difficulty     int       `json:"difficulty"` // 0 easy, 1 normal, 2 hard, 3 extreme
	WeaponTypeID   int       `json:"weapon_type_id"`
	FinalScore     int       `json:"final_score"`
	FinalTimeValue int       `json:"final_time_value"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// GachaCard is one card pulled from the overlay gacha.
type GachaCard struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CardID    int       `gorm:"index;not null" json:"card_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// GauntletRun is the common shape of all gauntlet tables.
type GauntletRun struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WeaponTypeID       int       `json:"weapon_type_id"`
	Category           string    `gorm:"size:32" json:"category"`
	TotalFramesElapsed int       `json:"total_frames_elapsed"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type ZenithGauntlet struct{ GauntletRun }

type SolsticeGauntlet struct{ GauntletRun }

type MusouGauntlet struct{ GauntletRun }

// MezFes is one MezFes minigame result.
type MezFes struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MinigameID int       `gorm:"index" json:"minigame_id"`
	Score      int       `json:"score"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MezFes) TableName() string { return "mezfes" }

// QuestToggleMode records the quest toggle (e.g. "Hardcore") a run used.
type QuestToggleMode struct {
	RunID int64  `gorm:"column:run_id;primaryKey" json:"run_id"`
	Mode  string `gorm:"size:32" json:"mode"`
}

// QuestDiva records diva song and prayer gem state for a run.
type QuestDiva struct {
	RunID            int64 `gorm:"column:run_id;primaryKey" json:"run_id"`
	SongActive       bool  `json:"song_active"`
	PrayerGemSkillID int   `json:"prayer_gem_skill_id"`
}

func (QuestDiva) TableName() string { return "quests_diva" }

// QuestGuildPoogie records the guild poogie outfit and its skills.
type QuestGuildPoogie struct {
	RunID    int64 `gorm:"column:run_id;primaryKey" json:"run_id"`
	OutfitID int   `json:"outfit_id"`
	Skill1   int   `json:"skill1"`
	Skill2   int   `json:"skill2"`
	Skill3   int   `json:"skill3"`
}

// QuestHalk records the halk pet state for a run.
type QuestHalk struct {
	RunID        int64 `gorm:"column:run_id;primaryKey" json:"run_id"`
	PotEffectOn  bool  `json:"pot_effect_on"`
	Level        int   `json:"level"`
	Intelligence int   `json:"intelligence"`
	Elemental    int   `json:"elemental"`
}

// QuestActiveFeature records the active-feature bitfield during a run.
type QuestActiveFeature struct {
	RunID    int64 `gorm:"column:run_id;primaryKey" json:"run_id"`
	Features int   `json:"features"`
}

// QuestWeaponBuffs holds a frame-indexed JSON object of buff id -> value.
type QuestWeaponBuffs struct {
	RunID int64  `gorm:"column:run_id;primaryKey" json:"run_id"`
	Buffs string `gorm:"type:text" json:"buffs"`
}
