package sse_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/hunterlog/api/sse"
	"github.com/kasuganosora/hunterlog/config"
	mw "github.com/kasuganosora/hunterlog/middleware"
	"github.com/kasuganosora/hunterlog/notify"
	"github.com/kasuganosora/hunterlog/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sec = config.SecurityConfig{JWTSecret: "sse-secret", JWTTTLH: time.Hour}

func newServer(t *testing.T) (*httptest.Server, *notify.PubSubQueue) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	_, ps := testutil.SetupTestCache(t)
	h := sse.NewHandler(ps, testutil.Logger())

	r := gin.New()
	r.GET("/sse", mw.PresenterAuth(sec), h.ServeSSE)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, notify.NewPubSubQueue(ps)
}

func readUntil(t *testing.T, rd *bufio.Reader, prefix string) string {
	t.Helper()
	for {
		line, err := rd.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
}

func TestServeSSE_MissingToken(t *testing.T) {
	srv, _ := newServer(t)
	resp, err := http.Get(srv.URL + "/sse")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeSSE_WrongScope(t *testing.T) {
	srv, _ := newServer(t)
	tok, err := mw.GenerateToken("overlay", "other", sec.JWTSecret, time.Hour)
	require.NoError(t, err)
	resp, err := http.Get(srv.URL + "/sse?token=" + tok)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeSSE_RelaysNotificationsInOrder(t *testing.T) {
	srv, queue := newServer(t)
	tok, err := mw.GenerateToken("overlay", mw.ScopePresenter, sec.JWTSecret, time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sse", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	rd := bufio.NewReader(resp.Body)
	assert.Equal(t, "connected", readUntil(t, rd, "event: "))

	require.NoError(t, queue.Enqueue(ctx, notify.Notification{Title: "First", AchievementID: 1}))
	require.NoError(t, queue.Enqueue(ctx, notify.Notification{Title: "Second", AchievementID: 2}))

	for _, want := range []string{"First", "Second"} {
		assert.Equal(t, "achievement", readUntil(t, rd, "event: "))
		n, err := notify.Decode(readUntil(t, rd, "data: "))
		require.NoError(t, err)
		assert.Equal(t, want, n.Title)
	}
}
