package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toorak_vpn/internal/model"
	"toorak_vpn/internal/protector"
	"toorak_vpn/internal/repository/record"
	"toorak_vpn/internal/service/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	p, err := protector.NewProtector(protector.Keys{
		Standard:       bytes.Repeat([]byte{1}, 32),
		Justice:        bytes.Repeat([]byte{2}, 32),
		LawEnforcement: bytes.Repeat([]byte{3}, 32),
	}, protector.Options{})
	require.NoError(t, err)

	s := NewHttpServer(router.NewRouter(p, record.NewMemoryRepo(), router.NewMemoryQueue()))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Shutdown(context.Background())
	})
	return ts
}

func testMessage(id, source string) model.Message {
	return model.Message{
		ID:                  id,
		CreatedAt:           time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
		Payload:             "Secure transaction authorization required",
		SourceIdentity:      source,
		DestinationIdentity: "Hawksburn Village - Asset Management Firm",
		Jurisdiction:        "Toorak, Victoria",
	}
}

func postJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestProcessAndRevealPacket(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/packets", testMessage("m1", "Toorak Village - Legal Advisory Group"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	rec := decode[model.ProtectedRecord](t, resp)
	assert.Equal(t, model.TierJustice, rec.Tier)
	assert.Equal(t, model.ClassificationConfidential, rec.Classification)
	assert.Len(t, rec.SourcePseudonym, 16)

	resp = get(t, ts.URL+"/packets/m1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, rec, decode[model.ProtectedRecord](t, resp))

	resp = postJSON(t, ts.URL+"/packets/m1/reveal", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Secure transaction authorization required", decode[model.RevealResponse](t, resp).Payload)

	resp = postJSON(t, ts.URL+"/reveal", model.RevealRequest{Ciphertext: rec.Ciphertext, Tier: model.TierJustice})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Secure transaction authorization required", decode[model.RevealResponse](t, resp).Payload)

	resp = postJSON(t, ts.URL+"/reveal", model.RevealRequest{Ciphertext: rec.Ciphertext, Tier: model.TierLawEnforcement})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/reveal", model.RevealRequest{Ciphertext: rec.Ciphertext, Tier: "vip"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProcessPacketErrors(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/packets", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/packets", testMessage("", "Legal"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	msg := testMessage("m2", "Legal")
	msg.Jurisdiction = "Sydney, NSW"
	resp = postJSON(t, ts.URL+"/packets", msg)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = get(t, ts.URL+"/packets/unknown")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDrainRouteAndStats(t *testing.T) {
	ts := newTestServer(t)

	postJSON(t, ts.URL+"/packets", testMessage("m1", "Capital Grand Toorak - Private Security Division"))
	postJSON(t, ts.URL+"/packets", testMessage("m2", "Toorak Road Business District - Real Estate Development"))

	resp := get(t, ts.URL+"/routes/law-enforcement")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := decode[[]model.ProtectedRecord](t, resp)
	require.Len(t, records, 1)
	assert.Equal(t, "m1", records[0].MessageID)
	assert.Equal(t, model.ClassificationRestricted, records[0].Classification)

	resp = get(t, ts.URL+"/routes/bogus")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = get(t, ts.URL+"/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[statsResponse](t, resp)
	assert.Equal(t, uint64(2), stats.Routes.TotalProcessed)
	assert.Equal(t, uint64(1), stats.Routes.LawEnforcement)
	assert.Equal(t, uint64(1), stats.Routes.Standard)
	assert.Equal(t, 2, stats.Caches.Ciphertexts.Len)
	assert.Equal(t, 100, stats.Caches.Pseudonyms.Capacity)
	assert.Equal(t, map[model.Tier]int64{
		model.TierJustice:        0,
		model.TierLawEnforcement: 0,
		model.TierStandard:       1,
	}, stats.Queues)
}

func TestStatsWithoutQueue(t *testing.T) {
	p, err := protector.NewProtector(protector.Keys{
		Standard:       bytes.Repeat([]byte{1}, 32),
		Justice:        bytes.Repeat([]byte{2}, 32),
		LawEnforcement: bytes.Repeat([]byte{3}, 32),
	}, protector.Options{})
	require.NoError(t, err)
	s := NewHttpServer(router.NewRouter(p, nil, nil))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"queues"`)
}

func TestValidateJurisdiction(t *testing.T) {
	ts := newTestServer(t)

	resp := get(t, ts.URL+"/jurisdictions/validate?label=Toorak,%20Victoria")
	assert.True(t, decode[jurisdictionResponse](t, resp).Accepted)

	resp = get(t, ts.URL+"/jurisdictions/validate?label=Sydney,%20NSW")
	got := decode[jurisdictionResponse](t, resp)
	assert.False(t, got.Accepted)
	assert.Equal(t, "Sydney, NSW", got.Label)
}

func dialStream(t *testing.T, ts *httptest.Server, clientID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/stream?clientID=" + clientID
	return websocket.DefaultDialer.Dial(url, nil)
}

func TestStream(t *testing.T) {
	ts := newTestServer(t)

	conn, _, err := dialStream(t, ts, "dashboard")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(testMessage("s1", "Capital Grand Toorak - Private Security Division")))
	var event model.StreamEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "s1", event.MessageID)
	assert.Empty(t, event.Error)
	require.NotNil(t, event.Record)
	assert.Equal(t, model.TierLawEnforcement, event.Record.Tier)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	event = model.StreamEvent{}
	require.NoError(t, conn.ReadJSON(&event))
	assert.NotEmpty(t, event.Error)
	assert.Nil(t, event.Record)

	bad := testMessage("s2", "Legal")
	bad.Jurisdiction = "Sydney, NSW"
	require.NoError(t, conn.WriteJSON(bad))
	event = model.StreamEvent{}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "s2", event.MessageID)
	assert.Contains(t, event.Error, "jurisdiction")
}

func TestStreamRejectsMissingOrDuplicateClient(t *testing.T) {
	ts := newTestServer(t)

	_, resp, err := dialStream(t, ts, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	conn, _, err := dialStream(t, ts, "dup")
	require.NoError(t, err)
	defer conn.Close()

	_, resp, err = dialStream(t, ts, "dup")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
