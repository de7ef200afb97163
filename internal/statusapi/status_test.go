package statusapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbus-mining/poolclient/internal/lib"
	"github.com/nimbus-mining/poolclient/poolmanager"
)

type fakeStatsSource struct {
	stats poolmanager.Stats
}

func (f fakeStatsSource) Stats() poolmanager.Stats { return f.stats }

func TestHandleStatusReturnsSnapshot(t *testing.T) {
	source := fakeStatsSource{stats: poolmanager.Stats{
		Running:       true,
		Connected:     true,
		ActiveAddress: "pool.example:3333",
		Accepted:      4,
	}}
	s := New(":0", source, lib.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got poolmanager.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, source.stats, got)
}

func TestHandleHealthzOKWhenConnected(t *testing.T) {
	source := fakeStatsSource{stats: poolmanager.Stats{Running: true, Connected: true}}
	s := New(":0", source, lib.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestHandleHealthzUnavailableWhenRunningDisconnected(t *testing.T) {
	source := fakeStatsSource{stats: poolmanager.Stats{Running: true, Connected: false}}
	s := New(":0", source, lib.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHandleHealthzOKWhenNotRunning(t *testing.T) {
	source := fakeStatsSource{stats: poolmanager.Stats{Running: false, Connected: false}}
	s := New(":0", source, lib.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}
