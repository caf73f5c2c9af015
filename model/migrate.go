package model

import "gorm.io/gorm"

// allModels lists every model to be auto-migrated.
var allModels = []interface{}{
	&QuestRun{},
	&PlayerGear{},
	&RunSkill{},
	&PlayerInventory{},
	&QuestAttempt{},
	&PersonalBestAttempt{},
	&OverlaySession{},
	&Bingo{},
	&GachaCard{},
	&ZenithGauntlet{},
	&SolsticeGauntlet{},
	&MusouGauntlet{},
	&MezFes{},
	&QuestToggleMode{},
	&QuestDiva{},
	&QuestGuildPoogie{},
	&QuestHalk{},
	&QuestActiveFeature{},
	&QuestWeaponBuffs{},
	&AwardRecord{},
	&PendingAward{},
	&AuditLog{},
}

// AutoMigrate creates or updates all tables in the given database.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}
