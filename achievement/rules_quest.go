package achievement

import (
	"fmt"

	"github.com/kasuganosora/hunterlog/history"
	"github.com/kasuganosora/hunterlog/live"
	"github.com/kasuganosora/hunterlog/model"
)

const (
	frames1Min  = 60 * model.FramesPerSecond
	frames10Min = 10 * frames1Min
	frames1Hour = 60 * frames1Min
)

// Count thresholds shared by every per-target family.
const (
	tierSlayer       = 10
	tierAnnihilator  = 25
	tierExterminator = 50
)

// questTarget is one quest with its own block of achievement IDs. A block
// owns IDs Block*10 .. Block*10+9; the offsets are questFirstClear etc.
type questTarget struct {
	Block   int
	QuestID int
	Name    string
	// ParFrames is the speedrun cutoff for the solo Speedrun achievement.
	ParFrames int
}

const (
	questFirstClear = iota
	questSlayer
	questAnnihilator
	questExterminator
	questSoloZen
	questSpeedrun
)

var questTargets = []questTarget{
	{Block: 1, QuestID: 23648, Name: "Duremudira", ParFrames: 5 * frames1Min},
	{Block: 2, QuestID: 23649, Name: "Arrogant Duremudira", ParFrames: 8 * frames1Min},
	{Block: 3, QuestID: 23097, Name: "Raviente", ParFrames: 20 * frames1Min},
	{Block: 4, QuestID: 23098, Name: "Berserk Raviente", ParFrames: 25 * frames1Min},
	{Block: 5, QuestID: 55796, Name: "Violent Raviente", ParFrames: 25 * frames1Min},
	{Block: 6, QuestID: 55807, Name: "Berserk Raviente Slay", ParFrames: 30 * frames1Min},
	{Block: 7, QuestID: 21731, Name: "Shantien", ParFrames: 6 * frames1Min},
	{Block: 8, QuestID: 21746, Name: "Disufiroa", ParFrames: 6 * frames1Min},
	{Block: 9, QuestID: 21749, Name: "Solo Disufiroa", ParFrames: 7 * frames1Min},
	{Block: 10, QuestID: 21750, Name: "Upper Shiten Unknown", ParFrames: 4 * frames1Min},
	{Block: 11, QuestID: 23601, Name: "Lower Shiten Unknown", ParFrames: 3 * frames1Min},
	{Block: 12, QuestID: 23602, Name: "Upper Shiten Disufiroa", ParFrames: 6 * frames1Min},
	{Block: 13, QuestID: 54751, Name: "Twinhead Rajang", ParFrames: 5 * frames1Min},
	{Block: 14, QuestID: 54761, Name: "Zenith Blangonga", ParFrames: 3 * frames1Min},
	{Block: 15, QuestID: 54765, Name: "Zenith Gravios", ParFrames: 3 * frames1Min},
	{Block: 16, QuestID: 54767, Name: "Zenith Inagami", ParFrames: 3 * frames1Min},
	{Block: 17, QuestID: 54770, Name: "Zenith Espinas", ParFrames: 3 * frames1Min},
	{Block: 18, QuestID: 54772, Name: "Zenith Harudomerugu", ParFrames: 3 * frames1Min},
	{Block: 19, QuestID: 54775, Name: "Zenith Hyujikiki", ParFrames: 3 * frames1Min},
	{Block: 20, QuestID: 54777, Name: "Zenith Rathalos", ParFrames: 3 * frames1Min},
	{Block: 21, QuestID: 54780, Name: "Zenith Akura Vashimu", ParFrames: 3 * frames1Min},
	{Block: 22, QuestID: 54782, Name: "Zenith Anorupatisu", ParFrames: 3 * frames1Min},
	{Block: 23, QuestID: 54785, Name: "Zenith Daimyo Hermitaur", ParFrames: 3 * frames1Min},
	{Block: 24, QuestID: 54787, Name: "Zenith Doragyurosu", ParFrames: 3 * frames1Min},
	{Block: 25, QuestID: 54790, Name: "Zenith Gasurabazura", ParFrames: 4 * frames1Min},
	{Block: 26, QuestID: 54792, Name: "Zenith Giaorugu", ParFrames: 3 * frames1Min},
	{Block: 27, QuestID: 54795, Name: "Zenith Hypnocatrice", ParFrames: 3 * frames1Min},
	{Block: 28, QuestID: 54797, Name: "Zenith Khezu", ParFrames: 3 * frames1Min},
	{Block: 29, QuestID: 54800, Name: "Zenith Midogaron", ParFrames: 3 * frames1Min},
	{Block: 30, QuestID: 54802, Name: "Zenith Plesioth", ParFrames: 3 * frames1Min},
	{Block: 31, QuestID: 54805, Name: "Zenith Rukodiora", ParFrames: 4 * frames1Min},
	{Block: 32, QuestID: 54807, Name: "Zenith Taikun Zamuza", ParFrames: 3 * frames1Min},
	{Block: 33, QuestID: 54810, Name: "Zenith Tigrex", ParFrames: 3 * frames1Min},
	{Block: 34, QuestID: 54812, Name: "Zenith Toridcless", ParFrames: 3 * frames1Min},
	{Block: 35, QuestID: 54815, Name: "Zenith Baruragaru", ParFrames: 3 * frames1Min},
	{Block: 36, QuestID: 54817, Name: "Zenith Bogabadorumu", ParFrames: 3 * frames1Min},
}

func questID(block, offset int) int { return block*10 + offset }

func questRules() []Rule {
	var rules []Rule
	for _, q := range questTargets {
		isQuest := func(r *history.Run) bool { return r.QuestID == q.QuestID }
		rules = append(rules,
			Rule{
				Achievement: Achievement{ID: questID(q.Block, questFirstClear), Rank: RankBronze,
					Title:     q.Name,
					Objective: fmt.Sprintf("Clear %s.", q.Name)},
				Check: anyRun(isQuest),
			},
			countTier(questID(q.Block, questSlayer), q.Name+" Slayer", q.Name, tierSlayer, RankSilver, isQuest),
			countTier(questID(q.Block, questAnnihilator), q.Name+" Annihilator", q.Name, tierAnnihilator, RankGold, isQuest),
			countTier(questID(q.Block, questExterminator), q.Name+" Exterminator", q.Name, tierExterminator, RankPlatinum, isQuest),
			Rule{
				Achievement: Achievement{ID: questID(q.Block, questSoloZen), Rank: RankSilver,
					Title:     "Lone " + q.Name + " Hunter",
					Objective: fmt.Sprintf("Clear %s solo in Zen or Speedrun mode.", q.Name)},
				Check: anyRun(func(r *history.Run) bool {
					return isQuest(r) && r.Solo() &&
						(r.OverlayMode == model.OverlayZen || r.OverlayMode == model.OverlaySpeedrun)
				}),
			},
			Rule{
				Achievement: Achievement{ID: questID(q.Block, questSpeedrun), Rank: RankGold,
					Title:     "Swift " + q.Name,
					Objective: fmt.Sprintf("Clear %s solo in Speedrun mode in under %s.", q.Name, formatFrames(q.ParFrames))},
				Check: anyRun(func(r *history.Run) bool {
					return isQuest(r) && r.Solo() && r.OverlayMode == model.OverlaySpeedrun &&
						r.FinalTimeValue < q.ParFrames
				}),
			},
		)
	}
	return rules
}

func countTier(id int, title, target string, n int, rank Rank, match func(*history.Run) bool) Rule {
	return Rule{
		Achievement: Achievement{ID: id, Title: title, Rank: rank,
			Objective: fmt.Sprintf("Clear %s %d times.", target, n)},
		Check: func(in *Input) bool { return in.History.CountRuns(match) >= n },
	}
}

func anyRun(match func(*history.Run) bool) Predicate {
	return func(in *Input) bool { return in.History.AnyRun(match) }
}

// weaponID packs the four per-weapon achievements into 400..455.
func weaponID(weaponTypeID, offset int) int { return 400 + weaponTypeID*4 + offset }

func weaponRules() []Rule {
	var rules []Rule
	for w := 0; w < live.WeaponTypeCount; w++ {
		name := live.WeaponName(w)
		withWeapon := func(r *history.Run) bool { return r.WeaponTypeID == w }
		rules = append(rules,
			Rule{
				Achievement: Achievement{ID: weaponID(w, 0), Rank: RankBronze, Title: name + " Novice",
					Objective: fmt.Sprintf("Clear %d quests with the %s.", tierSlayer, name)},
				Check: func(in *Input) bool { return in.History.CountRuns(withWeapon) >= tierSlayer },
			},
			Rule{
				Achievement: Achievement{ID: weaponID(w, 1), Rank: RankSilver, Title: name + " Adept",
					Objective: fmt.Sprintf("Clear 100 quests with the %s.", name)},
				Check: func(in *Input) bool { return in.History.CountRuns(withWeapon) >= 100 },
			},
			Rule{
				Achievement: Achievement{ID: weaponID(w, 2), Rank: RankGold, Title: name + " Master",
					Objective: fmt.Sprintf("Clear 500 quests with the %s.", name)},
				Check: func(in *Input) bool { return in.History.CountRuns(withWeapon) >= 500 },
			},
			Rule{
				Achievement: Achievement{ID: weaponID(w, 3), Rank: RankPlatinum, Title: name + " Virtuoso",
					Objective: fmt.Sprintf("Clear any quest solo in Speedrun mode with the %s in under 5 minutes.", name)},
				Check: anyRun(func(r *history.Run) bool {
					return withWeapon(r) && r.Solo() && r.OverlayMode == model.OverlaySpeedrun &&
						r.FinalTimeValue < 5*frames1Min
				}),
			},
		)
	}
	return rules
}

// formatFrames renders a frame count as m:ss for objective text.
func formatFrames(frames int) string {
	secs := frames / model.FramesPerSecond
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
