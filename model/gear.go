package model

// SkillKind discriminates the skill sets recorded per run.
type SkillKind string

const (
	SkillActive    SkillKind = "active"
	SkillZenith    SkillKind = "zenith"
	SkillAutomatic SkillKind = "automatic"
	SkillCaravan   SkillKind = "caravan"
	SkillStyleRank SkillKind = "style_rank"
)

// PlayerGear is the equipment snapshot taken when a run completes (1:1 with QuestRun).
type PlayerGear struct {
	RunID        int64  `gorm:"column:run_id;primaryKey" json:"run_id"`
	WeaponTypeID int    `json:"weapon_type_id"`
	WeaponID     int    `json:"weapon_id"`
	WeaponName   string `gorm:"size:64" json:"weapon_name"`
	StyleID      int    `json:"style_id"`
	HeadID       int    `json:"head_id"`
	ChestID      int    `json:"chest_id"`
	ArmsID       int    `json:"arms_id"`
	WaistID      int    `json:"waist_id"`
	LegsID       int    `json:"legs_id"`
	GuildFoodID  int    `json:"guild_food_id"`
	// Slot-indexed JSON objects: {"1": {"item_id": 1, "quantity": 3}, ...}
	Inventory  string `gorm:"type:text" json:"inventory,omitempty"`
	AmmoPouch  string `gorm:"type:text" json:"ammo_pouch,omitempty"`
	PartnyaBag string `gorm:"type:text" json:"partnya_bag,omitempty"`
}

// RunSkill is one skill that was active during a run.
type RunSkill struct {
	ID      int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID   int64     `gorm:"column:run_id;index:idx_skill_run;not null" json:"run_id"`
	Kind    SkillKind `gorm:"size:16;index:idx_skill_kind;not null" json:"kind"`
	SkillID int       `gorm:"not null" json:"skill_id"`
}

// PlayerInventory is the item pouch captured at the end of a run.
type PlayerInventory struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID int64  `gorm:"column:run_id;uniqueIndex;not null" json:"run_id"`
	Items string `gorm:"type:text" json:"items"`
}
