// Package history is the append-only quest history and award ledger.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/kasuganosora/hunterlog/model"
	"github.com/kasuganosora/hunterlog/series"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store reads and appends quest history. It never updates or deletes history
// rows; the only mutable tables are the attempt counters and the award outbox.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a Store over db.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// ---- ordered collections ----

func (s *Store) AllQuests(ctx context.Context) ([]model.QuestRun, error) {
	var rows []model.QuestRun
	err := s.db.WithContext(ctx).Order("run_id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllPlayerGear(ctx context.Context) ([]model.PlayerGear, error) {
	var rows []model.PlayerGear
	err := s.db.WithContext(ctx).Order("run_id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllPlayerInventories(ctx context.Context) ([]model.PlayerInventory, error) {
	var rows []model.PlayerInventory
	err := s.db.WithContext(ctx).Order("run_id").Find(&rows).Error
	return rows, err
}

func (s *Store) allSkills(ctx context.Context, kind model.SkillKind) ([]model.RunSkill, error) {
	var rows []model.RunSkill
	err := s.db.WithContext(ctx).Where("kind = ?", kind).Order("run_id, id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllActiveSkills(ctx context.Context) ([]model.RunSkill, error) {
	return s.allSkills(ctx, model.SkillActive)
}

func (s *Store) AllZenithSkills(ctx context.Context) ([]model.RunSkill, error) {
	return s.allSkills(ctx, model.SkillZenith)
}

func (s *Store) AllStyleRankSkills(ctx context.Context) ([]model.RunSkill, error) {
	return s.allSkills(ctx, model.SkillStyleRank)
}

func (s *Store) AllQuestAttempts(ctx context.Context) ([]model.QuestAttempt, error) {
	var rows []model.QuestAttempt
	err := s.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllPersonalBestAttempts(ctx context.Context) ([]model.PersonalBestAttempt, error) {
	var rows []model.PersonalBestAttempt
	err := s.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllBingo(ctx context.Context) ([]model.Bingo, error) {
	var rows []model.Bingo
	err := s.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllGachaCards(ctx context.Context) ([]model.GachaCard, error) {
	var rows []model.GachaCard
	err := s.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllZenithGauntlets(ctx context.Context) ([]model.ZenithGauntlet, error) {
	var rows []model.ZenithGauntlet
	err := s.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllSolsticeGauntlets(ctx context.Context) ([]model.SolsticeGauntlet, error) {
	var rows []model.SolsticeGauntlet
	err := s.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllMusouGauntlets(ctx context.Context) ([]model.MusouGauntlet, error) {
	var rows []model.MusouGauntlet
	err := s.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllMezFes(ctx context.Context) ([]model.MezFes, error) {
	var rows []model.MezFes
	err := s.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllQuestsToggleMode(ctx context.Context) ([]model.QuestToggleMode, error) {
	var rows []model.QuestToggleMode
	err := s.db.WithContext(ctx).Order("run_id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllQuestsDiva(ctx context.Context) ([]model.QuestDiva, error) {
	var rows []model.QuestDiva
	err := s.db.WithContext(ctx).Order("run_id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllQuestsGuildPoogie(ctx context.Context) ([]model.QuestGuildPoogie, error) {
	var rows []model.QuestGuildPoogie
	err := s.db.WithContext(ctx).Order("run_id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllQuestsHalk(ctx context.Context) ([]model.QuestHalk, error) {
	var rows []model.QuestHalk
	err := s.db.WithContext(ctx).Order("run_id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllQuestsActiveFeature(ctx context.Context) ([]model.QuestActiveFeature, error) {
	var rows []model.QuestActiveFeature
	err := s.db.WithContext(ctx).Order("run_id").Find(&rows).Error
	return rows, err
}

func (s *Store) AllQuestsWeaponBuffs(ctx context.Context) ([]model.QuestWeaponBuffs, error) {
	var rows []model.QuestWeaponBuffs
	err := s.db.WithContext(ctx).Order("run_id").Find(&rows).Error
	return rows, err
}

// TotalOverlaySessions counts recorded overlay launches.
func (s *Store) TotalOverlaySessions(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.OverlaySession{}).Count(&n).Error
	return n, err
}

// GetTotalQuestTimeElapsed sums FinalTimeValue over every run, in frames.
func (s *Store) GetTotalQuestTimeElapsed(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&model.QuestRun{}).
		Select("COALESCE(SUM(final_time_value), 0)").Scan(&total).Error
	return total, err
}

// ---- snapshot ----

// Snapshot loads every collection once and builds the RunID join indexes.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := &Store{db: tx, logger: s.logger}
		return r.fill(ctx, snap)
	})
	if err != nil {
		return nil, fmt.Errorf("history snapshot: %w", err)
	}
	return snap, nil
}

func (s *Store) fill(ctx context.Context, snap *Snapshot) error {
	runs, err := s.AllQuests(ctx)
	if err != nil {
		return err
	}
	snap.Quests = make([]Run, len(runs))
	for i, row := range runs {
		snap.Quests[i] = decodeRun(row)
		snap.TotalQuestTimeElapsed += int64(row.FinalTimeValue)
	}

	gear, err := s.AllPlayerGear(ctx)
	if err != nil {
		return err
	}
	snap.Gear = make(map[int64]Gear, len(gear))
	for _, g := range gear {
		snap.Gear[g.RunID] = decodeGear(g)
	}

	invs, err := s.AllPlayerInventories(ctx)
	if err != nil {
		return err
	}
	snap.Inventories = make(map[int64]map[int]InventorySlot, len(invs))
	for _, inv := range invs {
		snap.Inventories[inv.RunID] = decodeSlots(inv.Items)
	}

	for _, idx := range []struct {
		load func(context.Context) ([]model.RunSkill, error)
		dst  *map[int64][]int
	}{
		{s.AllActiveSkills, &snap.ActiveSkills},
		{s.AllZenithSkills, &snap.ZenithSkills},
		{s.AllStyleRankSkills, &snap.StyleRankSkills},
	} {
		rows, err := idx.load(ctx)
		if err != nil {
			return err
		}
		m := make(map[int64][]int)
		for _, sk := range rows {
			m[sk.RunID] = append(m[sk.RunID], sk.SkillID)
		}
		*idx.dst = m
	}

	if snap.QuestAttempts, err = s.AllQuestAttempts(ctx); err != nil {
		return err
	}
	if snap.PersonalBestAttempts, err = s.AllPersonalBestAttempts(ctx); err != nil {
		return err
	}
	if snap.Bingo, err = s.AllBingo(ctx); err != nil {
		return err
	}
	if snap.GachaCards, err = s.AllGachaCards(ctx); err != nil {
		return err
	}
	if snap.ZenithGauntlets, err = s.AllZenithGauntlets(ctx); err != nil {
		return err
	}
	if snap.SolsticeGauntlets, err = s.AllSolsticeGauntlets(ctx); err != nil {
		return err
	}
	if snap.MusouGauntlets, err = s.AllMusouGauntlets(ctx); err != nil {
		return err
	}
	if snap.MezFes, err = s.AllMezFes(ctx); err != nil {
		return err
	}

	toggles, err := s.AllQuestsToggleMode(ctx)
	if err != nil {
		return err
	}
	snap.ToggleModes = indexByRun(toggles, func(r model.QuestToggleMode) int64 { return r.RunID })

	diva, err := s.AllQuestsDiva(ctx)
	if err != nil {
		return err
	}
	snap.Diva = indexByRun(diva, func(r model.QuestDiva) int64 { return r.RunID })

	poogie, err := s.AllQuestsGuildPoogie(ctx)
	if err != nil {
		return err
	}
	snap.GuildPoogie = indexByRun(poogie, func(r model.QuestGuildPoogie) int64 { return r.RunID })

	halk, err := s.AllQuestsHalk(ctx)
	if err != nil {
		return err
	}
	snap.Halk = indexByRun(halk, func(r model.QuestHalk) int64 { return r.RunID })

	features, err := s.AllQuestsActiveFeature(ctx)
	if err != nil {
		return err
	}
	snap.ActiveFeatures = indexByRun(features, func(r model.QuestActiveFeature) int64 { return r.RunID })

	buffs, err := s.AllQuestsWeaponBuffs(ctx)
	if err != nil {
		return err
	}
	snap.WeaponBuffs = make(map[int64]series.Frames[map[string]int], len(buffs))
	for _, b := range buffs {
		snap.WeaponBuffs[b.RunID] = series.Decode[map[string]int](b.Buffs)
	}

	snap.TotalOverlaySessions, err = s.TotalOverlaySessions(ctx)
	return err
}

func indexByRun[T any](rows []T, key func(T) int64) map[int64]T {
	m := make(map[int64]T, len(rows))
	for _, r := range rows {
		m[key(r)] = r
	}
	return m
}

// ---- award ledger ----

// GetPlayerAchievementIDList returns every awarded achievement ID, ascending.
func (s *Store) GetPlayerAchievementIDList(ctx context.Context) ([]int, error) {
	var ids []int
	err := s.db.WithContext(ctx).Model(&model.AwardRecord{}).
		Order("achievement_id").Pluck("achievement_id", &ids).Error
	return ids, err
}

// AwardTimes maps awarded achievement IDs to their award time, including
// awards still waiting in the outbox.
func (s *Store) AwardTimes(ctx context.Context) (map[int]time.Time, error) {
	var rows []model.AwardRecord
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	pending, err := s.PendingAwards(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int]time.Time, len(rows)+len(pending))
	for _, p := range pending {
		out[p.AchievementID] = p.AwardedAt
	}
	for _, r := range rows {
		out[r.AchievementID] = r.AwardedAt
	}
	return out, nil
}

// StoreAchievement writes the ledger row for id. Writing an ID that is
// already present is a no-op, so callers may retry freely.
func (s *Store) StoreAchievement(ctx context.Context, id int, awardedAt time.Time) error {
	rec := &model.AwardRecord{AchievementID: id, AwardedAt: awardedAt.UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "achievement_id"}}, DoNothing: true}).
		Create(rec).Error
}

// AddPendingAward records id in the retry outbox, bumping its attempt count.
func (s *Store) AddPendingAward(ctx context.Context, id int, awardedAt time.Time, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	row := &model.PendingAward{AchievementID: id, AwardedAt: awardedAt.UTC(), Attempts: 1, LastError: msg}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "achievement_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": msg,
		}),
	}).Create(row).Error
}

// PendingAwards lists the outbox, oldest award first.
func (s *Store) PendingAwards(ctx context.Context) ([]model.PendingAward, error) {
	var rows []model.PendingAward
	err := s.db.WithContext(ctx).Order("awarded_at, achievement_id").Find(&rows).Error
	return rows, err
}

// ClearPendingAward removes id from the outbox once its ledger row exists.
func (s *Store) ClearPendingAward(ctx context.Context, id int) error {
	return s.db.WithContext(ctx).Delete(&model.PendingAward{}, "achievement_id = ?", id).Error
}
