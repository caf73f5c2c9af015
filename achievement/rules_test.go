package achievement

import (
	"testing"

	"github.com/kasuganosora/hunterlog/history"
	"github.com/kasuganosora/hunterlog/live"
	"github.com/kasuganosora/hunterlog/model"
	"github.com/kasuganosora/hunterlog/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultPreds(t *testing.T) map[int]Predicate {
	t.Helper()
	_, preds, err := Default()
	require.NoError(t, err)
	return preds
}

func runs(n int, fill func(i int) model.QuestRun) *history.Snapshot {
	snap := &history.Snapshot{}
	for i := 0; i < n; i++ {
		q := fill(i)
		q.RunID = int64(i + 1)
		snap.Quests = append(snap.Quests, history.Run{QuestRun: q})
	}
	return snap
}

func TestQuestTiers_TenSoloZenRuns(t *testing.T) {
	preds := defaultPreds(t)
	q := questTargets[0]
	in := &Input{History: runs(10, func(int) model.QuestRun {
		return model.QuestRun{QuestID: q.QuestID, PartySize: 1, OverlayMode: model.OverlayZen, FinalTimeValue: 30 * frames1Min}
	})}

	assert.True(t, preds[questID(q.Block, questFirstClear)](in))
	assert.True(t, preds[questID(q.Block, questSlayer)](in), "10 clears reach the Slayer tier")
	assert.False(t, preds[questID(q.Block, questAnnihilator)](in))
	assert.False(t, preds[questID(q.Block, questExterminator)](in))
	assert.True(t, preds[questID(q.Block, questSoloZen)](in))
	assert.False(t, preds[questID(q.Block, questSpeedrun)](in), "Zen runs are not speedruns")

	other := questTargets[1]
	assert.False(t, preds[questID(other.Block, questFirstClear)](in))
}

func TestQuestTiers_PartyRunsAreNotSolo(t *testing.T) {
	preds := defaultPreds(t)
	q := questTargets[2]
	in := &Input{History: runs(1, func(int) model.QuestRun {
		return model.QuestRun{QuestID: q.QuestID, PartySize: 4, OverlayMode: model.OverlaySpeedrun, FinalTimeValue: 1}
	})}
	assert.True(t, preds[questID(q.Block, questFirstClear)](in))
	assert.False(t, preds[questID(q.Block, questSoloZen)](in))
	assert.False(t, preds[questID(q.Block, questSpeedrun)](in))
}

func TestQuestSpeedrun_ParCutoff(t *testing.T) {
	preds := defaultPreds(t)
	q := questTargets[0]
	at := func(frames int) *Input {
		return &Input{History: runs(1, func(int) model.QuestRun {
			return model.QuestRun{QuestID: q.QuestID, PartySize: 1, OverlayMode: model.OverlaySpeedrun, FinalTimeValue: frames}
		})}
	}
	id := questID(q.Block, questSpeedrun)
	assert.True(t, preds[id](at(q.ParFrames-1)))
	assert.False(t, preds[id](at(q.ParFrames)))
}

func TestHistoryRules_Monotonic(t *testing.T) {
	preds := defaultPreds(t)
	q := questTargets[3]
	fill := func(i int) model.QuestRun {
		return model.QuestRun{QuestID: q.QuestID, PartySize: 1, OverlayMode: model.OverlayZen, WeaponTypeID: live.WeaponTonfa}
	}
	ids := []int{
		questID(q.Block, questFirstClear), questID(q.Block, questSlayer),
		questID(q.Block, questAnnihilator), weaponID(live.WeaponTonfa, 0), 607,
	}

	var truePrev map[int]bool
	for _, n := range []int{1, 10, 25, 30} {
		in := &Input{History: runs(n, fill)}
		now := map[int]bool{}
		for _, id := range ids {
			now[id] = preds[id](in)
			if truePrev[id] {
				assert.True(t, now[id], "achievement %d turned false when history grew to %d runs", id, n)
			}
		}
		truePrev = now
	}
	assert.True(t, truePrev[questID(q.Block, questAnnihilator)])
}

func TestAggregateRules(t *testing.T) {
	preds := defaultPreds(t)

	snap := &history.Snapshot{}
	for i := 0; i < 50; i++ {
		r := history.Run{QuestRun: model.QuestRun{RunID: int64(i + 1), QuestID: 1}, Carts: series.Of(map[int]int{10: 1, 20: 2})}
		snap.Quests = append(snap.Quests, r)
	}
	in := &Input{History: snap}
	assert.True(t, preds[600](in), "50 runs with 2 carts each is 100 carts")

	snap.Quests = snap.Quests[:49]
	assert.False(t, preds[600](in))

	snap.TotalOverlaySessions = 100
	assert.True(t, preds[601](in))
	assert.True(t, preds[602](in))
	assert.False(t, preds[603](in))

	snap.TotalQuestTimeElapsed = frames1Hour
	assert.True(t, preds[604](in))
	assert.False(t, preds[605](in))

	snap.MezFes = []model.MezFes{{MinigameID: 1}, {MinigameID: 2}, {MinigameID: 3}, {MinigameID: 4}, {MinigameID: 4}}
	assert.True(t, preds[619](in))
	assert.False(t, preds[620](in))
	snap.MezFes = append(snap.MezFes, model.MezFes{MinigameID: 5, Score: 12000})
	assert.True(t, preds[620](in))
	assert.True(t, preds[621](in))
}

func TestJoinRules_MatchOnRunID(t *testing.T) {
	preds := defaultPreds(t)
	snap := runs(2, func(i int) model.QuestRun { return model.QuestRun{QuestID: 1, PartySize: 1} })
	in := &Input{History: snap}

	snap.ToggleModes = map[int64]model.QuestToggleMode{99: {RunID: 99, Mode: "Hardcore"}}
	assert.False(t, preds[500](in), "toggle row without a matching run must not count")
	snap.ToggleModes[2] = model.QuestToggleMode{RunID: 2, Mode: "Hardcore"}
	assert.True(t, preds[500](in))

	snap.Halk = map[int64]model.QuestHalk{1: {RunID: 1, PotEffectOn: true, Level: 49}}
	assert.False(t, preds[503](in))
	snap.Halk[1] = model.QuestHalk{RunID: 1, PotEffectOn: true, Level: 50}
	assert.True(t, preds[503](in))

	snap.ZenithSkills = map[int64][]int{1: {1, 2, 3, 4, 5}}
	assert.True(t, preds[504](in))

	snap.ActiveSkills = map[int64][]int{99: {skillAbsoluteDefense}}
	assert.False(t, preds[514](in), "skill row without a matching run must not count")
	snap.ActiveSkills[2] = []int{3, skillAbsoluteDefense}
	assert.True(t, preds[514](in))

	snap.Quests[0].WeaponTypeID = live.WeaponBow
	snap.ActiveFeatures = map[int64]model.QuestActiveFeature{1: {RunID: 1, Features: 1 << live.WeaponBow}}
	assert.True(t, preds[508](in))
}

func TestSeriesRules_AbsentSeriesIsFalse(t *testing.T) {
	preds := defaultPreds(t)
	run := history.Run{QuestRun: model.QuestRun{RunID: 1, PartySize: 1, OverlayMode: model.OverlayZen, FinalTimeValue: frames10Min}}
	in := &Input{History: &history.Snapshot{Quests: []history.Run{run}}}
	for _, id := range []int{700, 701, 702, 703, 704, 705, 706, 707} {
		assert.False(t, preds[id](in), "achievement %d must not hold on absent series", id)
	}

	in.History.Quests[0].Hits = series.Of(map[int]history.HitSample{30: {}, 60: {Blocked: 2}})
	in.History.Quests[0].Carts = series.Of(map[int]int{30: 0})
	assert.True(t, preds[700](in))
	assert.True(t, preds[703](in))
	assert.True(t, preds[707](in))
}

func TestLiveRules(t *testing.T) {
	preds := defaultPreds(t)
	in := &Input{History: &history.Snapshot{}, Live: live.Snapshot{Zenny: 10_000_000}}
	assert.True(t, preds[800](in))
	assert.True(t, preds[801](in))
	assert.False(t, preds[802](in))

	in.Live.Zenny = 0
	assert.False(t, preds[800](in), "live rules follow the counter down")

	in.Live.SRLevels = map[int]int{live.WeaponLance: 999}
	assert.True(t, preds[814](in))
	assert.False(t, preds[815](in))

	in.Live.OverlayMode = model.OverlayZen
	in.Live.ActiveFeatures = 1 << live.WeaponLance
	assert.True(t, preds[816](in))
}

func TestReservedRules_NeverHold(t *testing.T) {
	preds := defaultPreds(t)
	in := &Input{History: runs(100, func(int) model.QuestRun { return model.QuestRun{QuestID: 1} }),
		Live: live.Snapshot{Zenny: 1 << 40, TotalHunts: 1 << 20}}
	for id := reservedFirst; id <= reservedLast; id++ {
		assert.False(t, preds[id](in))
	}
}
