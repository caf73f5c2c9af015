package rest_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/kasuganosora/hunterlog/history"
	"github.com/kasuganosora/hunterlog/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listResponse struct {
	Achievements []struct {
		ID             int    `json:"id"`
		Title          string `json:"title"`
		CompletionDate string `json:"completion_date"`
	} `json:"achievements"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func TestList_FreshInstall(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/api/achievements", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp listResponse
	decode(t, w, &resp)
	assert.Equal(t, e.svc.Catalog().Len(), resp.Total)
	assert.Len(t, resp.Achievements, resp.Total)
	assert.Zero(t, resp.Completed)
	for i := 1; i < len(resp.Achievements); i++ {
		assert.Less(t, resp.Achievements[i-1].ID, resp.Achievements[i].ID)
	}

	w = e.do(http.MethodGet, "/api/achievements/completed", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"achievements":[]}`, w.Body.String())
}

func TestGet_Errors(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/achievements/abc", "", "").Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/achievements/99999", "", "").Code)
}

func TestCheck_AwardsOnceAndNotifies(t *testing.T) {
	e := newEnv(t)
	_, err := e.store.RecordQuest(context.Background(), &history.QuestRecord{
		Run: model.QuestRun{QuestID: 7, FinalTimeValue: 100},
	})
	require.NoError(t, err)

	w := e.do(http.MethodPost, "/api/achievements/check", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var first struct {
		Awarded []int `json:"awarded"`
		Enabled bool  `json:"enabled"`
	}
	decode(t, w, &first)
	assert.True(t, first.Enabled)
	assert.Contains(t, first.Awarded, 607)
	assert.NotEmpty(t, e.queue.C())

	w = e.do(http.MethodPost, "/api/achievements/check", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"awarded":[],"enabled":true}`, w.Body.String())

	w = e.do(http.MethodGet, "/api/achievements/completed", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var done listResponse
	decode(t, w, &done)
	assert.Len(t, done.Achievements, len(first.Awarded))
}
