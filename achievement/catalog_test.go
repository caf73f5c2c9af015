package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankFromInt(t *testing.T) {
	cases := map[int]Rank{
		-1: RankNone, 0: RankNone, 1: RankBronze, 2: RankSilver,
		3: RankGold, 4: RankPlatinum, 5: RankNone,
	}
	for n, want := range cases {
		assert.Equal(t, want, RankFromInt(n), "RankFromInt(%d)", n)
	}
	assert.Equal(t, "Platinum", RankPlatinum.String())
	assert.Equal(t, "None", Rank(99).String())
}

func TestNewCatalog_DuplicateID(t *testing.T) {
	_, err := NewCatalog([]Achievement{{ID: 1}, {ID: 2}, {ID: 1}})
	assert.Error(t, err)
}

func TestCatalog_SortedIDs(t *testing.T) {
	c, err := NewCatalog([]Achievement{{ID: 30}, {ID: 2}, {ID: 11}})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 11, 30}, c.IDs())
	assert.Equal(t, 3, c.Len())

	_, ok := c.Get(11)
	assert.True(t, ok)
	_, ok = c.Get(12)
	assert.False(t, ok)
}

func TestProgress_SentinelAndHidden(t *testing.T) {
	c, err := NewCatalog([]Achievement{
		{ID: 1, Title: "One", Objective: "do one"},
		{ID: 2, Title: "Two", Objective: "do two", Hidden: true},
		{ID: 3, Title: "Three", Objective: "do three", Hidden: true},
	})
	require.NoError(t, err)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p := c.Progress(map[int]time.Time{1: at, 3: at})
	require.Len(t, p, 3)
	assert.True(t, p[0].Completed())
	assert.Equal(t, at, p[0].CompletionDate)

	assert.False(t, p[1].Completed())
	assert.True(t, p[1].CompletionDate.Equal(NeverCompleted))
	assert.Equal(t, "???", p[1].Title, "hidden entries stay masked until awarded")

	assert.Equal(t, "Three", p[2].Title)

	done := Completed(p)
	require.Len(t, done, 2)
	assert.Equal(t, 1, done[0].ID)
	assert.Equal(t, 3, done[1].ID)
}

func TestCompleted_EpochAwardCountsAsNever(t *testing.T) {
	c, err := NewCatalog([]Achievement{{ID: 1}})
	require.NoError(t, err)
	p := c.Progress(map[int]time.Time{1: time.Unix(0, 0)})
	assert.Empty(t, Completed(p))
}

func TestDefault_CatalogIsConsistent(t *testing.T) {
	cat, preds, err := Default()
	require.NoError(t, err)
	assert.Greater(t, cat.Len(), 300)

	for _, id := range cat.IDs() {
		a, _ := cat.Get(id)
		assert.NotEmpty(t, a.Title, "achievement %d has no title", id)
		assert.NotEmpty(t, a.Objective, "achievement %d has no objective", id)
		assert.Contains(t, preds, id, "achievement %d has no rule", id)
	}
	for id := reservedFirst; id <= reservedLast; id++ {
		a, ok := cat.Get(id)
		require.True(t, ok)
		assert.True(t, a.Hidden)
	}
}
