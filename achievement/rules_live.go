package achievement

import (
	"strconv"

	"github.com/kasuganosora/hunterlog/live"
	"github.com/kasuganosora/hunterlog/model"
)

// Rules over the live counters. These can become false again when a counter
// drops; once awarded they stay awarded.
func liveRules() []Rule {
	type threshold struct {
		id    int
		title string
		obj   string
		rank  Rank
		check func(l *live.Snapshot) bool
	}
	ts := []threshold{
		{800, "Pocket Change", "Hold 1,000,000 zenny.", RankBronze, func(l *live.Snapshot) bool { return l.Zenny >= 1_000_000 }},
		{801, "Wealthy", "Hold 10,000,000 zenny.", RankSilver, func(l *live.Snapshot) bool { return l.Zenny >= 10_000_000 }},
		{802, "Tycoon", "Hold 100,000,000 zenny.", RankGold, func(l *live.Snapshot) bool { return l.Zenny >= 100_000_000 }},
		{803, "Guild Contributor", "Hold 1,000,000 GCP.", RankSilver, func(l *live.Snapshot) bool { return l.GCP >= 1_000_000 }},
		{804, "Netcafe Regular", "Hold 100,000 netcafe points.", RankBronze, func(l *live.Snapshot) bool { return l.NetcafePoints >= 100_000 }},
		{805, "Frontier Saver", "Hold 10,000 frontier points.", RankSilver, func(l *live.Snapshot) bool { return l.FrontierPoints >= 10_000 }},
		{806, "Best Friends", "Reach poogie bond 100.", RankSilver, func(l *live.Snapshot) bool { return l.PoogieBond >= 100 }},
		{807, "Caravan Captain", "Hold 100,000 caravan points.", RankSilver, func(l *live.Snapshot) bool { return l.CaravanPoints >= 100_000 }},
		{808, "Road Runner", "Reach floor 50 of the solo road.", RankGold, func(l *live.Snapshot) bool { return l.RoadMaxStageSolo >= 50 }},
		{809, "Road Party", "Reach floor 50 of the multiplayer road.", RankGold, func(l *live.Snapshot) bool { return l.RoadMaxStageMultiplayer >= 50 }},
		{810, "Trusted Partner", "Raise your partner to level 999.", RankGold, func(l *live.Snapshot) bool { return l.PartnerLevel >= 999 }},
		{811, "Raviente Regular", "Hunt Raviente 100 times.", RankSilver, func(l *live.Snapshot) bool { return l.RavienteHunts >= 100 }},
		{812, "Hunter", "Complete 1000 hunts.", RankSilver, func(l *live.Snapshot) bool { return l.TotalHunts >= 1000 }},
		{813, "Master Hunter", "Complete 10000 hunts.", RankPlatinum, func(l *live.Snapshot) bool { return l.TotalHunts >= 10000 }},
		{814, "Skill Rank Master", "Reach skill rank 999 with any weapon.", RankGold, func(l *live.Snapshot) bool {
			for w := 0; w < live.WeaponTypeCount; w++ {
				if l.SRLevel(w) >= 999 {
					return true
				}
			}
			return false
		}},
		{815, "Grand Master", "Reach skill rank 999 with every weapon.", RankPlatinum, func(l *live.Snapshot) bool {
			for w := 0; w < live.WeaponTypeCount; w++ {
				if l.SRLevel(w) < 999 {
					return false
				}
			}
			return true
		}},
		{816, "In the Zone", "Play in Zen mode while a weapon is featured.", RankBronze, func(l *live.Snapshot) bool {
			return l.OverlayMode == model.OverlayZen && l.ActiveFeatures != 0
		}},
	}

	rules := make([]Rule, 0, len(ts))
	for _, t := range ts {
		check := t.check
		rules = append(rules, Rule{
			Achievement: Achievement{ID: t.id, Title: t.title, Objective: t.obj, Rank: t.rank},
			Check:       func(in *Input) bool { return check(&in.Live) },
		})
	}
	return rules
}

// reservedFirst..reservedLast are allocated for future content and never
// satisfied.
const (
	reservedFirst = 900
	reservedLast  = 949
)

func reservedRules() []Rule {
	rules := make([]Rule, 0, reservedLast-reservedFirst+1)
	for id := reservedFirst; id <= reservedLast; id++ {
		rules = append(rules, Rule{
			Achievement: Achievement{ID: id, Title: "Coming Soon", Objective: "Not yet available.", Hidden: true},
			Check:       func(*Input) bool { return false },
		})
	}
	return rules
}

func itoa(n int) string { return strconv.Itoa(n) }
