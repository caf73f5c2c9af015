// Package live holds the current-session counters pushed by the game memory
// reader. Unlike history these values can go down as well as up.
package live

import (
	"sync"

	"github.com/kasuganosora/hunterlog/model"
)

// Weapon type IDs as the game reports them.
const (
	WeaponGreatSword = iota
	WeaponHeavyBowgun
	WeaponHammer
	WeaponLance
	WeaponSwordAndShield
	WeaponLightBowgun
	WeaponDualSwords
	WeaponLongSword
	WeaponHuntingHorn
	WeaponGunlance
	WeaponBow
	WeaponTonfa
	WeaponSwitchAxeF
	WeaponMagnetSpike

	WeaponTypeCount
)

var weaponNames = [WeaponTypeCount]string{
	"Great Sword", "Heavy Bowgun", "Hammer", "Lance", "Sword and Shield",
	"Light Bowgun", "Dual Swords", "Long Sword", "Hunting Horn", "Gunlance",
	"Bow", "Tonfa", "Switch Axe F", "Magnet Spike",
}

// WeaponName returns the display name of a weapon type, or "" if unknown.
func WeaponName(weaponTypeID int) string {
	if weaponTypeID < 0 || weaponTypeID >= WeaponTypeCount {
		return ""
	}
	return weaponNames[weaponTypeID]
}

// Snapshot is a copy of the live counters at one instant.
type Snapshot struct {
	Zenny                   int64 `json:"zenny"`
	GCP                     int64 `json:"gcp"`
	NetcafePoints           int64 `json:"netcafe_points"`
	FrontierPoints          int64 `json:"frontier_points"`
	PoogieBond              int   `json:"poogie_bond"`
	CaravanPoints           int64 `json:"caravan_points"`
	RoadMaxStageSolo        int   `json:"road_max_stage_solo"`
	RoadMaxStageMultiplayer int   `json:"road_max_stage_multiplayer"`
	PartnerLevel            int   `json:"partner_level"`
	RavienteHunts           int   `json:"raviente_hunts"`
	TotalHunts              int   `json:"total_hunts"`
	// SRLevels maps weapon type ID to skill rank level.
	SRLevels map[int]int `json:"sr_levels"`
	// ActiveFeatures has bit n set when weapon type n is the active feature.
	ActiveFeatures int               `json:"active_features"`
	OverlayMode    model.OverlayMode `json:"overlay_mode"`
}

// HasFeature tests the active-feature bit for a weapon type.
func (s Snapshot) HasFeature(weaponTypeID int) bool {
	if weaponTypeID < 0 || weaponTypeID >= WeaponTypeCount {
		return false
	}
	return s.ActiveFeatures&(1<<uint(weaponTypeID)) != 0
}

// SRLevel returns the skill rank for a weapon type, zero if never reported.
func (s Snapshot) SRLevel(weaponTypeID int) int { return s.SRLevels[weaponTypeID] }

func (s Snapshot) clone() Snapshot {
	if s.SRLevels != nil {
		m := make(map[int]int, len(s.SRLevels))
		for k, v := range s.SRLevels {
			m[k] = v
		}
		s.SRLevels = m
	}
	return s
}

// Source supplies the current live counters.
type Source interface {
	Live() Snapshot
}

// Store is the in-process Source, replaced wholesale by the memory reader.
type Store struct {
	mu  sync.RWMutex
	cur Snapshot
}

func NewStore() *Store {
	return &Store{cur: Snapshot{OverlayMode: model.OverlayNormal}}
}

// Live returns a copy that is safe to read while the store is updated.
func (s *Store) Live() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.clone()
}

// Set replaces the stored counters.
func (s *Store) Set(snap Snapshot) {
	snap = snap.clone()
	if snap.OverlayMode == "" {
		snap.OverlayMode = model.OverlayNormal
	}
	s.mu.Lock()
	s.cur = snap
	s.mu.Unlock()
}
