package history

import (
	"github.com/kasuganosora/hunterlog/model"
	"github.com/kasuganosora/hunterlog/series"
)

// HitSample is one hits-taken/blocked sample.
type HitSample struct {
	Taken   int `json:"taken"`
	Blocked int `json:"blocked"`
}

// InventorySlot is one entry of a slot-indexed pouch.
type InventorySlot struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

// Run is a QuestRun with its embedded series decoded.
type Run struct {
	model.QuestRun

	Keystrokes   series.Frames[string]
	GamepadInput series.Frames[string]
	Hits         series.Frames[HitSample]
	Stamina      series.Frames[int]
	AttackBuff   series.Frames[int]
	Carts        series.Frames[int]
}

// CartCount is the number of carts in the run, read from the cumulative cart
// series. ok is false when the series is absent.
func (r *Run) CartCount() (n int, ok bool) {
	if !r.Carts.Present() {
		return 0, false
	}
	m, has := series.MaxInt(r.Carts)
	if !has {
		return 0, true
	}
	return m, true
}

func decodeRun(row model.QuestRun) Run {
	return Run{
		QuestRun:     row,
		Keystrokes:   series.Decode[string](row.KeystrokesLog),
		GamepadInput: series.Decode[string](row.GamepadInputLog),
		Hits:         series.Decode[HitSample](row.HitsTakenBlocked),
		Stamina:      series.Decode[int](row.PlayerStamina),
		AttackBuff:   series.Decode[int](row.AttackBuff),
		Carts:        series.Decode[int](row.Carts),
	}
}

// Gear is PlayerGear with its pouches decoded.
type Gear struct {
	model.PlayerGear

	Inventory  map[int]InventorySlot
	AmmoPouch  map[int]InventorySlot
	PartnyaBag map[int]InventorySlot
}

func decodeGear(row model.PlayerGear) Gear {
	return Gear{
		PlayerGear: row,
		Inventory:  decodeSlots(row.Inventory),
		AmmoPouch:  decodeSlots(row.AmmoPouch),
		PartnyaBag: decodeSlots(row.PartnyaBag),
	}
}

// decodeSlots returns nil for absent or malformed pouches.
func decodeSlots(raw string) map[int]InventorySlot {
	f := series.Decode[InventorySlot](raw)
	if !f.Present() {
		return nil
	}
	out := make(map[int]InventorySlot, f.Len())
	for _, slot := range f.Frames() {
		out[slot], _ = f.At(slot)
	}
	return out
}

// Snapshot is an immutable view of the whole history taken at one instant.
// Every slice is ordered by its primary key; the maps index per-run records
// by RunID for joins.
type Snapshot struct {
	Quests []Run

	Gear            map[int64]Gear
	Inventories     map[int64]map[int]InventorySlot
	ActiveSkills    map[int64][]int
	ZenithSkills    map[int64][]int
	StyleRankSkills map[int64][]int

	QuestAttempts        []model.QuestAttempt
	PersonalBestAttempts []model.PersonalBestAttempt
	Bingo                []model.Bingo
	GachaCards           []model.GachaCard
	ZenithGauntlets      []model.ZenithGauntlet
	SolsticeGauntlets    []model.SolsticeGauntlet
	MusouGauntlets       []model.MusouGauntlet
	MezFes               []model.MezFes

	ToggleModes    map[int64]model.QuestToggleMode
	Diva           map[int64]model.QuestDiva
	GuildPoogie    map[int64]model.QuestGuildPoogie
	Halk           map[int64]model.QuestHalk
	ActiveFeatures map[int64]model.QuestActiveFeature
	WeaponBuffs    map[int64]series.Frames[map[string]int]

	TotalOverlaySessions  int64
	TotalQuestTimeElapsed int64 // frames
}

// CountRuns returns how many runs satisfy pred.
func (s *Snapshot) CountRuns(pred func(*Run) bool) int {
	n := 0
	for i := range s.Quests {
		if pred(&s.Quests[i]) {
			n++
		}
	}
	return n
}

// AnyRun reports whether some run satisfies pred.
func (s *Snapshot) AnyRun(pred func(*Run) bool) bool {
	for i := range s.Quests {
		if pred(&s.Quests[i]) {
			return true
		}
	}
	return false
}

// HasSkill reports whether skillID is in the given per-run skill index.
func HasSkill(index map[int64][]int, runID int64, skillID int) bool {
	for _, id := range index[runID] {
		if id == skillID {
			return true
		}
	}
	return false
}
