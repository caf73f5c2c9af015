package locale

import (
	"testing"

	"github.com/kasuganosora/hunterlog/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnglishSummary(t *testing.T) {
	tr, err := New("en", testutil.Logger())
	require.NoError(t, err)
	assert.Equal(t, "en", tr.Lang())
	assert.Equal(t, "2 left. See the achievements log for the rest.", tr.SummaryContent(2))
	assert.Equal(t, "More achievements unlocked", tr.SummaryTitle())
	assert.Equal(t, "Gold", tr.RankName("Gold"))
	assert.Equal(t, "Mystery", tr.RankName("Mystery"))
}

func TestJapaneseSummary(t *testing.T) {
	tr, err := New("ja", testutil.Logger())
	require.NoError(t, err)
	assert.Equal(t, "ja", tr.Lang())
	assert.Equal(t, "残り3件。実績ログで確認してください。", tr.SummaryContent(3))
	assert.Equal(t, "ゴールド", tr.RankName("Gold"))
}

func TestUnknownLangFallsBack(t *testing.T) {
	tr, err := New("xx-not-a-lang!", testutil.Logger())
	require.NoError(t, err)
	assert.Equal(t, DefaultLang, tr.Lang())
	assert.Contains(t, tr.SummaryContent(4), "4 left")

	tr, err = New("de", testutil.Logger())
	require.NoError(t, err)
	assert.Equal(t, DefaultLang, tr.Lang())
}

func TestEmptyLangIsDefault(t *testing.T) {
	tr, err := New("", testutil.Logger())
	require.NoError(t, err)
	assert.Equal(t, DefaultLang, tr.Lang())
}
