package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/kasuganosora/hunterlog/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestRecord is everything captured when a quest completes. Only Run is
// required; the per-run extras are written when non-nil.
type QuestRecord struct {
	Run             model.QuestRun          `json:"run"`
	Gear            *model.PlayerGear       `json:"gear,omitempty"`
	Inventory       string                  `json:"inventory,omitempty"`
	ActiveSkills    []int                   `json:"active_skills,omitempty"`
	ZenithSkills    []int                   `json:"zenith_skills,omitempty"`
	AutoSkills      []int                   `json:"automatic_skills,omitempty"`
	CaravanSkills   []int                   `json:"caravan_skills,omitempty"`
	StyleRankSkills []int                   `json:"style_rank_skills,omitempty"`
	ToggleMode      string                  `json:"toggle_mode,omitempty"`
	Diva            *model.QuestDiva        `json:"diva,omitempty"`
	GuildPoogie     *model.QuestGuildPoogie `json:"guild_poogie,omitempty"`
	Halk            *model.QuestHalk        `json:"halk,omitempty"`
	ActiveFeatures  *int                    `json:"active_features,omitempty"`
	WeaponBuffs     string                  `json:"weapon_buffs,omitempty"`
}

// RecordQuest appends a completed run and its per-run records in one
// transaction and returns the new RunID.
func (s *Store) RecordQuest(ctx context.Context, rec *QuestRecord) (int64, error) {
	run := rec.Run
	run.RunID = 0
	if run.OverlayMode == "" {
		run.OverlayMode = model.OverlayNormal
	}
	if run.PartySize <= 0 {
		run.PartySize = 1
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		id := run.RunID

		if rec.Gear != nil {
			g := *rec.Gear
			g.RunID = id
			if err := tx.Create(&g).Error; err != nil {
				return fmt.Errorf("insert gear: %w", err)
			}
		}
		if rec.Inventory != "" {
			if err := tx.Create(&model.PlayerInventory{RunID: id, Items: rec.Inventory}).Error; err != nil {
				return fmt.Errorf("insert inventory: %w", err)
			}
		}

		var skills []model.RunSkill
		for kind, ids := range map[model.SkillKind][]int{
			model.SkillActive:    rec.ActiveSkills,
			model.SkillZenith:    rec.ZenithSkills,
			model.SkillAutomatic: rec.AutoSkills,
			model.SkillCaravan:   rec.CaravanSkills,
			model.SkillStyleRank: rec.StyleRankSkills,
		} {
			for _, sid := range ids {
				skills = append(skills, model.RunSkill{RunID: id, Kind: kind, SkillID: sid})
			}
		}
		if len(skills) > 0 {
			if err := tx.Create(&skills).Error; err != nil {
				return fmt.Errorf("insert skills: %w", err)
			}
		}

		if rec.ToggleMode != "" {
			if err := tx.Create(&model.QuestToggleMode{RunID: id, Mode: rec.ToggleMode}).Error; err != nil {
				return fmt.Errorf("insert toggle mode: %w", err)
			}
		}
		if rec.Diva != nil {
			d := *rec.Diva
			d.RunID = id
			if err := tx.Create(&d).Error; err != nil {
				return fmt.Errorf("insert diva: %w", err)
			}
		}
		if rec.GuildPoogie != nil {
			p := *rec.GuildPoogie
			p.RunID = id
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("insert guild poogie: %w", err)
			}
		}
		if rec.Halk != nil {
			h := *rec.Halk
			h.RunID = id
			if err := tx.Create(&h).Error; err != nil {
				return fmt.Errorf("insert halk: %w", err)
			}
		}
		if rec.ActiveFeatures != nil {
			if err := tx.Create(&model.QuestActiveFeature{RunID: id, Features: *rec.ActiveFeatures}).Error; err != nil {
				return fmt.Errorf("insert active feature: %w", err)
			}
		}
		if rec.WeaponBuffs != "" {
			if err := tx.Create(&model.QuestWeaponBuffs{RunID: id, Buffs: rec.WeaponBuffs}).Error; err != nil {
				return fmt.Errorf("insert weapon buffs: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("quest recorded",
		zap.Int64("run_id", run.RunID),
		zap.Int("quest_id", run.QuestID),
		zap.String("mode", string(run.OverlayMode)))
	return run.RunID, nil
}

// RecordOverlaySession appends one overlay launch.
func (s *Store) RecordOverlaySession(ctx context.Context) error {
	return s.db.WithContext(ctx).Create(&model.OverlaySession{}).Error
}

// RecordAttempt bumps the attempt counter for (quest, weapon, mode). When
// personalBest is set the personal-best counter is bumped as well.
func (s *Store) RecordAttempt(ctx context.Context, questID, weaponTypeID int, mode model.OverlayMode, personalBest bool) error {
	if mode == "" {
		mode = model.OverlayNormal
	}
	bump := clause.OnConflict{
		Columns: []clause.Column{{Name: "quest_id"}, {Name: "weapon_type_id"}, {Name: "overlay_mode"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"attempts": gorm.Expr("attempts + 1"),
		}),
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a := &model.QuestAttempt{QuestID: questID, WeaponTypeID: weaponTypeID, OverlayMode: mode, Attempts: 1}
		if err := tx.Clauses(bump).Create(a).Error; err != nil {
			return err
		}
		if !personalBest {
			return nil
		}
		pb := &model.PersonalBestAttempt{QuestID: questID, WeaponTypeID: weaponTypeID, OverlayMode: mode, Attempts: 1}
		return tx.Clauses(bump).Create(pb).Error
	})
}

func (s *Store) RecordBingo(ctx context.Context, b *model.Bingo) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *Store) RecordGachaCard(ctx context.Context, cardID int) error {
	return s.db.WithContext(ctx).Create(&model.GachaCard{CardID: cardID}).Error
}

func (s *Store) RecordMezFes(ctx context.Context, m *model.MezFes) error {
	return s.db.WithContext(ctx).Create(m).Error
}

// GauntletKind names one of the gauntlet tables.
type GauntletKind string

const (
	GauntletZenith   GauntletKind = "zenith"
	GauntletSolstice GauntletKind = "solstice"
	GauntletMusou    GauntletKind = "musou"
)

// ErrUnknownGauntlet is returned for a GauntletKind outside the known set.
var ErrUnknownGauntlet = errors.New("unknown gauntlet kind")

// RecordGauntlet appends a finished gauntlet to the table for kind.
func (s *Store) RecordGauntlet(ctx context.Context, kind GauntletKind, run model.GauntletRun) error {
	run.ID = 0
	var row interface{}
	switch kind {
	case GauntletZenith:
		row = &model.ZenithGauntlet{GauntletRun: run}
	case GauntletSolstice:
		row = &model.SolsticeGauntlet{GauntletRun: run}
	case GauntletMusou:
		row = &model.MusouGauntlet{GauntletRun: run}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownGauntlet, kind)
	}
	return s.db.WithContext(ctx).Create(row).Error
}
