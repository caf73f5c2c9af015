package achievement

import (
	"github.com/kasuganosora/hunterlog/history"
	"github.com/kasuganosora/hunterlog/live"
	"github.com/kasuganosora/hunterlog/model"
	"github.com/kasuganosora/hunterlog/series"
)

// Per-run joins on RunID.
func joinRules() []Rule {
	return []Rule{
		{
			Achievement: Achievement{ID: 500, Rank: RankSilver, Title: "Hardcore",
				Objective: "Clear a quest with the Hardcore toggle on."},
			Check: func(in *Input) bool {
				return in.History.AnyRun(func(r *history.Run) bool {
					t, ok := in.History.ToggleModes[r.RunID]
					return ok && t.Mode == "Hardcore"
				})
			},
		},
		{
			Achievement: Achievement{ID: 501, Rank: RankBronze, Title: "Diva Chorus",
				Objective: "Clear a quest with the diva song active and a prayer gem equipped."},
			Check: func(in *Input) bool {
				return in.History.AnyRun(func(r *history.Run) bool {
					d, ok := in.History.Diva[r.RunID]
					return ok && d.SongActive && d.PrayerGemSkillID != 0
				})
			},
		},
		{
			Achievement: Achievement{ID: 502, Rank: RankBronze, Title: "Dressed to Impress",
				Objective: "Clear a quest with a dressed guild poogie that has three skills."},
			Check: func(in *Input) bool {
				return in.History.AnyRun(func(r *history.Run) bool {
					p, ok := in.History.GuildPoogie[r.RunID]
					return ok && p.OutfitID != 0 && p.Skill1 != 0 && p.Skill2 != 0 && p.Skill3 != 0
				})
			},
		},
		{
			Achievement: Achievement{ID: 503, Rank: RankSilver, Title: "Halk Companion",
				Objective: "Clear a quest with a level 50 halk while its pot effect is on."},
			Check: func(in *Input) bool {
				return in.History.AnyRun(func(r *history.Run) bool {
					h, ok := in.History.Halk[r.RunID]
					return ok && h.PotEffectOn && h.Level >= 50
				})
			},
		},
		{
			Achievement: Achievement{ID: 504, Rank: RankGold, Title: "Zenith Loadout",
				Objective: "Clear a quest with five zenith skills active."},
			Check: func(in *Input) bool {
				return in.History.AnyRun(func(r *history.Run) bool {
					return len(in.History.ZenithSkills[r.RunID]) >= 5
				})
			},
		},
		{
			Achievement: Achievement{ID: 505, Rank: RankBronze, Title: "Stylish",
				Objective: "Clear a quest with a style rank skill active."},
			Check: func(in *Input) bool {
				return in.History.AnyRun(func(r *history.Run) bool {
					return len(in.History.StyleRankSkills[r.RunID]) > 0
				})
			},
		},
		{
			Achievement: Achievement{ID: 506, Rank: RankSilver, Title: "Fully Equipped",
				Objective: "Clear a quest solo wearing a full armor set."},
			Check: func(in *Input) bool {
				return in.History.AnyRun(func(r *history.Run) bool {
					g, ok := in.History.Gear[r.RunID]
					return ok && r.Solo() && g.WeaponID != 0 &&
						g.HeadID != 0 && g.ChestID != 0 && g.ArmsID != 0 && g.WaistID != 0 && g.LegsID != 0
				})
			},
		},
		{
			Achievement: Achievement{ID: 507, Rank: RankSilver, Title: "Buffed Up",
				Objective: "Have three weapon buffs active at once."},
			Check: func(in *Input) bool {
				for _, f := range in.History.WeaponBuffs {
					if f.Any(func(b map[string]int) bool { return len(b) >= 3 }) {
						return true
					}
				}
				return false
			},
		},
		{
			Achievement: Achievement{ID: 508, Rank: RankBronze, Title: "Featured Weapon",
				Objective: "Clear a quest with the weapon that was the active feature."},
			Check: func(in *Input) bool {
				return in.History.AnyRun(func(r *history.Run) bool {
					f, ok := in.History.ActiveFeatures[r.RunID]
					return ok && (live.Snapshot{ActiveFeatures: f.Features}).HasFeature(r.WeaponTypeID)
				})
			},
		},
		{
			Achievement: Achievement{ID: 509, Rank: RankBronze, Title: "Packed Pouch",
				Objective: "Finish a quest with twenty stocked item slots."},
			Check: func(in *Input) bool {
				for _, inv := range in.History.Inventories {
					if stocked(inv) >= 20 {
						return true
					}
				}
				return false
			},
		},
		{
			Achievement: Achievement{ID: 510, Rank: RankSilver, Title: "Well Fed",
				Objective: "Clear a quest in under ten minutes after eating guild food."},
			Check: func(in *Input) bool {
				return in.History.AnyRun(func(r *history.Run) bool {
					g, ok := in.History.Gear[r.RunID]
					return ok && g.GuildFoodID != 0 && r.FinalTimeValue < frames10Min
				})
			},
		},
		{
			Achievement: Achievement{ID: 511, Rank: RankGold, Title: "Skill Stacker",
				Objective: "Clear a quest with ten active skills."},
			Check: func(in *Input) bool {
				return in.History.AnyRun(func(r *history.Run) bool {
					return len(in.History.ActiveSkills[r.RunID]) >= 10
				})
			},
		},
		{
			Achievement: Achievement{ID: 512, Rank: RankBronze, Title: "Gunner's Kit",
				Objective: "Clear a quest with a bowgun and a stocked ammo pouch."},
			Check: func(in *Input) bool {
				return in.History.AnyRun(func(r *history.Run) bool {
					g, ok := in.History.Gear[r.RunID]
					gun := r.WeaponTypeID == live.WeaponHeavyBowgun || r.WeaponTypeID == live.WeaponLightBowgun
					return ok && gun && stocked(g.AmmoPouch) > 0
				})
			},
		},
		{
			Achievement: Achievement{ID: 513, Rank: RankBronze, Title: "Partnya Provisions",
				Objective: "Clear a quest with ten stocked partnya bag slots."},
			Check: func(in *Input) bool {
				for _, g := range in.History.Gear {
					if stocked(g.PartnyaBag) >= 10 {
						return true
					}
				}
				return false
			},
		},
		{
			Achievement: Achievement{ID: 514, Rank: RankGold, Title: "Iron Wall",
				Objective: "Clear a quest solo with Absolute Defense active."},
			Check: func(in *Input) bool {
				return in.History.AnyRun(func(r *history.Run) bool {
					return r.Solo() && history.HasSkill(in.History.ActiveSkills, r.RunID, skillAbsoluteDefense)
				})
			},
		},
	}
}

// skillAbsoluteDefense is the active skill ID of Absolute Defense.
const skillAbsoluteDefense = 41

func stocked(slots map[int]history.InventorySlot) int {
	n := 0
	for _, s := range slots {
		if s.ItemID != 0 && s.Quantity > 0 {
			n++
		}
	}
	return n
}

// Whole-history sums and counts.
func aggregateRules() []Rule {
	rules := []Rule{
		{
			Achievement: Achievement{ID: 600, Rank: RankGold, Title: "Frequent Flyer",
				Objective: "Cart 100 times across all quests."},
			Check: func(in *Input) bool {
				total := 0
				for i := range in.History.Quests {
					if n, ok := in.History.Quests[i].CartCount(); ok {
						total += n
					}
				}
				return total >= 100
			},
		},
	}

	for i, t := range []struct {
		n     int64
		title string
		rank  Rank
	}{
		{10, "Regular", RankBronze},
		{100, "Devoted", RankSilver},
		{1000, "Lifer", RankGold},
	} {
		n := t.n
		rules = append(rules, Rule{
			Achievement: Achievement{ID: 601 + i, Rank: t.rank, Title: t.title,
				Objective: "Launch the overlay " + itoa(int(n)) + " times."},
			Check: func(in *Input) bool { return in.History.TotalOverlaySessions >= n },
		})
	}

	for i, t := range []struct {
		hours int64
		title string
		rank  Rank
	}{
		{1, "Time Well Spent", RankBronze},
		{10, "Seasoned", RankSilver},
		{100, "Veteran", RankGold},
	} {
		frames := t.hours * frames1Hour
		rules = append(rules, Rule{
			Achievement: Achievement{ID: 604 + i, Rank: t.rank, Title: t.title,
				Objective: "Spend " + itoa(int(t.hours)) + " hours in quests."},
			Check: func(in *Input) bool { return in.History.TotalQuestTimeElapsed >= frames },
		})
	}

	for i, t := range []struct {
		n     int
		title string
		rank  Rank
	}{
		{1, "First Steps", RankBronze},
		{100, "Centurion", RankSilver},
		{1000, "Thousand Hunts", RankGold},
		{5000, "Legend of the Frontier", RankPlatinum},
	} {
		n := t.n
		rules = append(rules, Rule{
			Achievement: Achievement{ID: 607 + i, Rank: t.rank, Title: t.title,
				Objective: "Clear " + itoa(n) + " quests."},
			Check: func(in *Input) bool { return len(in.History.Quests) >= n },
		})
	}

	rules = append(rules,
		Rule{
			Achievement: Achievement{ID: 611, Rank: RankBronze, Title: "Card Collector",
				Objective: "Pull a gacha card."},
			Check: func(in *Input) bool { return len(in.History.GachaCards) > 0 },
		},
		Rule{
			Achievement: Achievement{ID: 612, Rank: RankSilver, Title: "Gacha Addict",
				Objective: "Pull 100 gacha cards."},
			Check: func(in *Input) bool { return len(in.History.GachaCards) >= 100 },
		},
		Rule{
			Achievement: Achievement{ID: 613, Rank: RankGold, Title: "Complete Binder",
				Objective: "Own 50 different gacha cards."},
			Check: func(in *Input) bool {
				seen := make(map[int]struct{})
				for _, c := range in.History.GachaCards {
					seen[c.CardID] = struct{}{}
				}
				return len(seen) >= 50
			},
		},
		Rule{
			Achievement: Achievement{ID: 614, Rank: RankBronze, Title: "Bingo!",
				Objective: "Finish a bingo board."},
			Check: func(in *Input) bool { return len(in.History.Bingo) > 0 },
		},
		Rule{
			Achievement: Achievement{ID: 615, Rank: RankGold, Title: "Extreme Bingo",
				Objective: "Finish a bingo board on extreme difficulty."},
			Check: func(in *Input) bool {
				for _, b := range in.History.Bingo {
					if b.Difficulty >= 3 {
						return true
					}
				}
				return false
			},
		},
		Rule{
			Achievement: Achievement{ID: 616, Rank: RankGold, Title: "Zenith Gauntlet",
				Objective: "Finish the zenith gauntlet."},
			Check: func(in *Input) bool { return len(in.History.ZenithGauntlets) > 0 },
		},
		Rule{
			Achievement: Achievement{ID: 617, Rank: RankGold, Title: "Solstice Gauntlet",
				Objective: "Finish the solstice gauntlet."},
			Check: func(in *Input) bool { return len(in.History.SolsticeGauntlets) > 0 },
		},
		Rule{
			Achievement: Achievement{ID: 618, Rank: RankPlatinum, Title: "Musou Gauntlet",
				Objective: "Finish the musou gauntlet."},
			Check: func(in *Input) bool { return len(in.History.MusouGauntlets) > 0 },
		},
		Rule{
			Achievement: Achievement{ID: 619, Rank: RankBronze, Title: "Festival Goer",
				Objective: "Play a MezFes minigame."},
			Check: func(in *Input) bool { return len(in.History.MezFes) > 0 },
		},
		Rule{
			Achievement: Achievement{ID: 620, Rank: RankSilver, Title: "Festival Regular",
				Objective: "Play five different MezFes minigames."},
			Check: func(in *Input) bool {
				seen := make(map[int]struct{})
				for _, m := range in.History.MezFes {
					seen[m.MinigameID] = struct{}{}
				}
				return len(seen) >= 5
			},
		},
		Rule{
			Achievement: Achievement{ID: 621, Rank: RankGold, Title: "Festival Champion",
				Objective: "Score 10000 points in a MezFes minigame."},
			Check: func(in *Input) bool {
				for _, m := range in.History.MezFes {
					if m.Score >= 10000 {
						return true
					}
				}
				return false
			},
		},
		Rule{
			Achievement: Achievement{ID: 622, Rank: RankSilver, Title: "Persistence",
				Objective: "Attempt quests 100 times."},
			Check: func(in *Input) bool {
				total := 0
				for _, a := range in.History.QuestAttempts {
					total += a.Attempts
				}
				return total >= 100
			},
		},
		Rule{
			Achievement: Achievement{ID: 623, Rank: RankGold, Title: "Chasing Records",
				Objective: "Make 50 personal best attempts at one quest."},
			Check: func(in *Input) bool {
				for _, a := range in.History.PersonalBestAttempts {
					if a.Attempts >= 50 {
						return true
					}
				}
				return false
			},
		},
		Rule{
			Achievement: Achievement{ID: 624, Rank: RankSilver, Title: "Well Travelled",
				Objective: "Clear 20 different quests."},
			Check: func(in *Input) bool {
				seen := make(map[int]struct{})
				for i := range in.History.Quests {
					seen[in.History.Quests[i].QuestID] = struct{}{}
				}
				return len(seen) >= 20
			},
		},
		Rule{
			Achievement: Achievement{ID: 625, Rank: RankSilver, Title: "Keyboard Warrior",
				Objective: "Log 10000 keystrokes in quests."},
			Check: func(in *Input) bool {
				total := 0
				for i := range in.History.Quests {
					total += in.History.Quests[i].Keystrokes.Len()
				}
				return total >= 10000
			},
		},
		Rule{
			Achievement: Achievement{ID: 626, Rank: RankPlatinum, Title: "Arsenal",
				Objective: "Clear a quest with every weapon type."},
			Check: func(in *Input) bool {
				seen := make(map[int]struct{})
				for i := range in.History.Quests {
					w := in.History.Quests[i].WeaponTypeID
					if w >= 0 && w < live.WeaponTypeCount {
						seen[w] = struct{}{}
					}
				}
				return len(seen) == live.WeaponTypeCount
			},
		},
	)
	return rules
}

// Rules over the frame-indexed series of a run. An absent series never
// satisfies a rule.
func seriesRules() []Rule {
	return []Rule{
		{
			Achievement: Achievement{ID: 700, Rank: RankGold, Title: "Untouchable",
				Objective: "Clear a quest solo without taking a hit."},
			Check: anyRun(func(r *history.Run) bool {
				return r.Solo() && r.Hits.Len() > 0 &&
					r.Hits.All(func(h history.HitSample) bool { return h.Taken == 0 })
			}),
		},
		{
			Achievement: Achievement{ID: 701, Rank: RankSilver, Title: "Iron Wall",
				Objective: "Block 50 hits in one quest."},
			Check: anyRun(func(r *history.Run) bool {
				last, ok := r.Hits.Last()
				return ok && last.Blocked >= 50
			}),
		},
		{
			Achievement: Achievement{ID: 702, Rank: RankSilver, Title: "Overpowered",
				Objective: "Reach an attack buff of 1000."},
			Check: anyRun(func(r *history.Run) bool {
				m, ok := series.MaxInt(r.AttackBuff)
				return ok && m >= 1000
			}),
		},
		{
			Achievement: Achievement{ID: 703, Rank: RankGold, Title: "Endurance",
				Objective: "Clear a quest lasting over ten minutes without carting."},
			Check: anyRun(func(r *history.Run) bool {
				n, ok := r.CartCount()
				return ok && n == 0 && r.FinalTimeValue >= frames10Min
			}),
		},
		{
			Achievement: Achievement{ID: 704, Rank: RankBronze, Title: "Controller Connected",
				Objective: "Clear a quest using a gamepad."},
			Check: anyRun(func(r *history.Run) bool { return r.GamepadInput.Len() > 0 }),
		},
		{
			Achievement: Achievement{ID: 705, Rank: RankSilver, Title: "Second Wind",
				Objective: "Clear a quest solo without stamina dropping below 25."},
			Check: anyRun(func(r *history.Run) bool {
				return r.Solo() && r.Stamina.Len() > 0 &&
					r.Stamina.All(func(v int) bool { return v >= 25 })
			}),
		},
		{
			Achievement: Achievement{ID: 706, Rank: RankBronze, Title: "Close Call",
				Objective: "Clear a quest after carting twice."},
			Check: anyRun(func(r *history.Run) bool {
				n, ok := r.CartCount()
				return ok && n == 2
			}),
		},
		{
			Achievement: Achievement{ID: 707, Rank: RankPlatinum, Title: "Zen Perfection", Hidden: true,
				Objective: "Clear a quest solo in Zen mode without taking a hit or carting."},
			Check: anyRun(func(r *history.Run) bool {
				n, ok := r.CartCount()
				return ok && n == 0 && r.Solo() && r.OverlayMode == model.OverlayZen &&
					r.Hits.Len() > 0 && r.Hits.All(func(h history.HitSample) bool { return h.Taken == 0 })
			}),
		},
	}
}
