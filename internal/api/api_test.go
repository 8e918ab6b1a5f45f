package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/eventide-gm/internal/api"
	"github.com/mcoot/eventide-gm/internal/api/apierr"
	"github.com/mcoot/eventide-gm/internal/api/response"
	"github.com/mcoot/eventide-gm/internal/bot"
	"github.com/mcoot/eventide-gm/internal/dependencies/mocks"
	"github.com/mcoot/eventide-gm/internal/store"
	"github.com/mcoot/eventide-gm/internal/testutil"
)

const secret = "s3cret-path"

type fakeStats struct {
	stats store.Stats
}

func (f *fakeStats) Stats() store.Stats { return f.stats }

type recordingHandler struct {
	mu     sync.Mutex
	events []bot.Event
	ctxErr error
}

func (h *recordingHandler) Handle(ctx context.Context, ev bot.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	h.ctxErr = ctx.Err()
}

type APISuite struct {
	suite.Suite
	clock   *mocks.MockClock
	stats   *fakeStats
	updates *recordingHandler
	handler http.Handler
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.clock = mocks.NewMockClock(started)
	s.stats = &fakeStats{stats: store.Stats{
		Players:        1234,
		ActivePlayers:  3,
		Missions:       2,
		SecretMissions: 5,
		Recipients:     4,
		LoreSections:   12,
		LoreAvailable:  true,
	}}
	s.updates = &recordingHandler{}
	s.handler = api.NewRouter(api.RouterConfig{
		Logger:        testutil.NopLogger(),
		Stats:         s.stats,
		Clock:         s.clock,
		StartedAt:     started,
		Mode:          api.ModeWebhook,
		Updates:       s.updates,
		WebhookSecret: secret,
	})
}

func (s *APISuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *APISuite) TestHealthCheck() {
	rr := s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"status":"ok"}`, rr.Body.String())
}

func (s *APISuite) TestStatusPage() {
	s.clock.Advance(3 * time.Hour)

	rr := s.do(http.MethodGet, "/status", "")
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(rr.Body)
	s.Require().NoError(err)
	s.Equal("1,234", doc.Find("#players").Text())
	s.Equal("3", doc.Find("#active-players").Text())
	s.Equal("5", doc.Find("#secret-missions").Text())
	s.Equal("4", doc.Find("#recipients").Text())
	s.Equal("12", doc.Find("#lore-sections").Text())
	s.Contains(doc.Find("#uptime").Text(), "3 hours ago")
	s.Contains(doc.Find("#mode").Text(), api.ModeWebhook)
	s.Equal(0, doc.Find("#lore-warning").Length())
}

func (s *APISuite) TestStatusPageWarnsWhenLoreUnavailable() {
	s.stats.stats.LoreAvailable = false

	rr := s.do(http.MethodGet, "/status", "")
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	s.Require().NoError(err)
	s.Equal(1, doc.Find("#lore-warning").Length())
}

func (s *APISuite) TestStatusJSON() {
	s.clock.Advance(90 * time.Second)

	rr := s.do(http.MethodGet, "/api/v1/status", "")
	s.Require().Equal(http.StatusOK, rr.Code)

	var body response.Status
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &body))
	s.Equal(int64(90), body.UptimeSeconds)
	s.Equal(1234, body.Players)
	s.Equal(api.ModeWebhook, body.Mode)
	s.True(body.LoreAvailable)
}

func (s *APISuite) TestWebhookDeliversEvent() {
	rr := s.do(http.MethodPost, "/webhook/"+secret, `{"update_id": 7, "message": {"message_id": 3,
		"from": {"id": 42, "is_bot": false, "first_name": "Rook"},
		"chat": {"id": 42, "type": "private"}, "date": 0, "text": "/start"}}`)
	s.Equal(http.StatusNoContent, rr.Code)

	s.Require().Len(s.updates.events, 1)
	s.Equal("/start", s.updates.events[0].Text)
	s.Equal(int64(42), s.updates.events[0].ChatID)
	s.NoError(s.updates.ctxErr)
}

func (s *APISuite) TestWebhookIgnoresUnsupportedUpdates() {
	rr := s.do(http.MethodPost, "/webhook/"+secret, `{"update_id": 8, "edited_message": {"message_id": 1,
		"chat": {"id": 1, "type": "private"}, "date": 0, "text": "edit"}}`)
	s.Equal(http.StatusNoContent, rr.Code)
	s.Empty(s.updates.events)
}

func (s *APISuite) TestWebhookRejectsWrongSecret() {
	rr := s.do(http.MethodPost, "/webhook/guess", `{"update_id": 1}`)
	s.Equal(http.StatusNotFound, rr.Code)
	s.Empty(s.updates.events)

	var body apierr.ErrorResponse
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &body))
	s.Equal(apierr.CodeNotFound, body.Error.Code)
}

func (s *APISuite) TestWebhookRejectsMalformedBody() {
	rr := s.do(http.MethodPost, "/webhook/"+secret, `{"update_id":`)
	s.Equal(http.StatusBadRequest, rr.Code)

	var body apierr.ErrorResponse
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &body))
	s.Equal(apierr.CodeInvalidRequest, body.Error.Code)
}

func (s *APISuite) TestWebhookNotMountedWithoutSecret() {
	h := api.NewRouter(api.RouterConfig{
		Stats:   s.stats,
		Clock:   s.clock,
		Mode:    api.ModePolling,
		Updates: s.updates,
	})
	req := httptest.NewRequest(http.MethodPost, "/webhook/", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	s.Equal(http.StatusNotFound, rr.Code)
}

func (s *APISuite) TestPanicIsRecovered() {
	logger, buf := testutil.BufferLogger()
	h := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		Stats:         s.stats,
		Clock:         s.clock,
		Updates:       panickingHandler{},
		WebhookSecret: secret,
	})
	req := httptest.NewRequest(http.MethodPost, "/webhook/"+secret, strings.NewReader(`{"update_id": 1,
		"message": {"message_id": 1, "from": {"id": 1, "is_bot": false, "first_name": "A"},
		"chat": {"id": 1, "type": "private"}, "date": 0, "text": "hi"}}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	s.Equal(http.StatusInternalServerError, rr.Code)
	s.Contains(buf.String(), "panic recovered")
	s.NotContains(buf.String(), secret)
}

type panickingHandler struct{}

func (panickingHandler) Handle(context.Context, bot.Event) { panic("boom") }
