package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	api "fieldmatch-backend/internal/api/http"
	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/repository/memory"
	"fieldmatch-backend/internal/security"
	"fieldmatch-backend/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	tokens  security.TokenManager
}

type response struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	Data        json.RawMessage   `json:"data"`
	Errors      map[string]string `json:"errors"`
	Page        int               `json:"page"`
	Size        int               `json:"size"`
	Total       int64             `json:"total"`
	TotalPages  int               `json:"totalPages"`
	HasNext     bool              `json:"hasNext"`
	HasPrevious bool              `json:"hasPrevious"`
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T, health api.Pinger) *testServer {
	t.Helper()
	store := memory.NewStore()
	store.PutUser(domain.UserContact{ID: 1, Name: "Alex", Email: "alex@example.com"})
	store.PutUser(domain.UserContact{ID: 2, Name: "Blake", Email: "blake@example.com"})
	start := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
	store.PutBooking(domain.Booking{
		ID: 100, UserID: 1, Status: domain.BookingStatusConfirmed,
		FieldName: "Pitch 1", ComplexName: "Riverside",
		SlotStart: start, SlotEnd: start.Add(time.Hour), Price: decimal.NewFromInt(60),
	})

	now := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := service.NewMatchService(store.MatchRequestRepository, store.ParticipantRepository, store.BookingGateway, store.UserDirectory, nil,
		service.MatchPolicy{JoinCutoff: 2 * time.Hour}, service.WithClock(func() time.Time { return now }))
	tokens := security.NewTokenManager("test-secret", "auth-service")
	return &testServer{handler: api.NewRouter(svc, tokens, health), tokens: tokens}
}

func (s *testServer) token(t *testing.T, userID int64, roles ...string) string {
	t.Helper()
	tok, err := s.tokens.GenerateAccessToken(userID, "", roles, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var resp response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func decodeData(t *testing.T, resp response, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec, resp := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	down := newTestServer(t, failingPinger{})
	rec, resp = down.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, resp.Success)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t, nil)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/match-requests", "", map[string]any{"bookingId": 100})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authorization token is not provided", resp.Message)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/match-requests", "not-a-jwt", map[string]any{"bookingId": 100})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/match-requests/my-history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/match-requests", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "public feed needs no token")

	rec, _ = s.do(t, http.MethodPost, "/api/v1/match-requests/expire-old", s.token(t, 1), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = s.do(t, http.MethodPost, "/api/v1/match-requests/expire-old", s.token(t, 0, "SCHEDULER"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var expired map[string]int
	decodeData(t, resp, &expired)
	assert.Equal(t, 0, expired["expired"])
}

func TestMatchFlow(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.token(t, 1)
	applicant := s.token(t, 2)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/match-requests", owner, map[string]any{"bookingId": 100, "description": "5-a-side"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID        int64  `json:"id"`
		BookingID int64  `json:"bookingId"`
		Status    string `json:"status"`
		Price     string `json:"price"`
	}
	decodeData(t, resp, &created)
	assert.Equal(t, int64(100), created.BookingID)
	assert.Equal(t, "OPEN", created.Status)
	assert.Equal(t, "60", created.Price)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/match-requests", owner, map[string]any{"bookingId": 100})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, resp = s.do(t, http.MethodGet, "/api/v1/match-requests/booking/100/has-request", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var info struct {
		HasRequest     bool  `json:"hasRequest"`
		MatchRequestID int64 `json:"matchRequestId"`
	}
	decodeData(t, resp, &info)
	assert.True(t, info.HasRequest)
	assert.Equal(t, created.ID, info.MatchRequestID)

	rec, resp = s.do(t, http.MethodGet, "/api/v1/match-requests", owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), resp.Total, "owner does not see own request in the feed")

	rec, resp = s.do(t, http.MethodGet, "/api/v1/match-requests?page=1&size=5", applicant, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, 5, resp.Size)
	assert.Equal(t, 1, resp.TotalPages)
	assert.False(t, resp.HasNext)
	assert.False(t, resp.HasPrevious)

	path := "/api/v1/match-requests/" + itoa(created.ID)
	rec, resp = s.do(t, http.MethodPost, path+"/join", applicant, map[string]any{"teamInfo": "Blue FC"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var joined struct {
		ID              int64  `json:"id"`
		StatusFromOwner string `json:"statusFromOwner"`
		TeamInfo        string `json:"teamInfo"`
	}
	decodeData(t, resp, &joined)
	assert.Equal(t, "PENDING", joined.StatusFromOwner)
	assert.Equal(t, "Blue FC", joined.TeamInfo)

	rec, _ = s.do(t, http.MethodPost, path+"/accept/"+itoa(joined.ID), applicant, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = s.do(t, http.MethodPost, path+"/accept/"+itoa(joined.ID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var success struct {
		Opponent struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"opponent"`
	}
	decodeData(t, resp, &success)
	assert.Equal(t, "Blake", success.Opponent.Name)
	assert.Equal(t, "blake@example.com", success.Opponent.Email)

	rec, resp = s.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Request struct {
			Status string `json:"status"`
		} `json:"request"`
		Creator struct {
			Email string `json:"email"`
		} `json:"creator"`
		Participants []struct {
			StatusFromOwner string `json:"statusFromOwner"`
			UserName        string `json:"userName"`
		} `json:"participants"`
	}
	decodeData(t, resp, &detail)
	assert.Equal(t, "MATCHED", detail.Request.Status)
	assert.Empty(t, detail.Creator.Email)
	require.Len(t, detail.Participants, 1)
	assert.Equal(t, "ACCEPTED", detail.Participants[0].StatusFromOwner)

	rec, _ = s.do(t, http.MethodDelete, path, owner, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, resp = s.do(t, http.MethodGet, "/api/v1/match-requests/my-history", applicant, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), resp.Total)
}

func TestRejectOrWithdrawAndCancel(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.token(t, 1)
	applicant := s.token(t, 2)

	_, resp := s.do(t, http.MethodPost, "/api/v1/match-requests", owner, map[string]any{"bookingId": 100})
	var created struct{ ID int64 }
	decodeData(t, resp, &created)
	path := "/api/v1/match-requests/" + itoa(created.ID)

	_, resp = s.do(t, http.MethodPost, path+"/join", applicant, nil)
	var joined struct{ ID int64 }
	decodeData(t, resp, &joined)

	rec, _ := s.do(t, http.MethodPost, path+"/reject-or-withdraw/"+itoa(joined.ID), s.token(t, 3), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodPost, path+"/reject-or-withdraw/"+itoa(joined.ID), applicant, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodPost, path+"/reject-or-withdraw/"+itoa(joined.ID), applicant, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "withdrawing twice is a no-op")

	rec, _ = s.do(t, http.MethodDelete, path, applicant, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(t, http.MethodDelete, path, owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodPost, path+"/join", s.token(t, 3), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBadInput(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.token(t, 1)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/match-requests", owner, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Errors, "body")

	rec, resp = s.do(t, http.MethodPost, "/api/v1/match-requests", owner, `{"bookingId": 100} {"bookingId": 100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Errors, "body")

	rec, resp = s.do(t, http.MethodPost, "/api/v1/match-requests", owner, `{"bookingId": 100}garbage`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Errors, "body")

	rec, resp = s.do(t, http.MethodPost, "/api/v1/match-requests", owner, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "is required", resp.Errors["bookingId"])

	rec, resp = s.do(t, http.MethodGet, "/api/v1/match-requests?page=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Errors, "page")

	rec, _ = s.do(t, http.MethodGet, "/api/v1/match-requests?page=-2", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/match-requests/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, rec.Body.Len(), "missing detail has no body")

	rec, _ = s.do(t, http.MethodPost, "/api/v1/match-requests/999/join", owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/match-requests", owner, map[string]any{"bookingId": 555})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPastTheLastPage(t *testing.T) {
	s := newTestServer(t, nil)
	rec, _ := s.do(t, http.MethodPost, "/api/v1/match-requests", s.token(t, 1), map[string]any{"bookingId": 100})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, query := range []string{"page=2&size=2", "page=9223372036854775807&size=2", "page=9223372036854775807"} {
		rec, resp := s.do(t, http.MethodGet, "/api/v1/match-requests?"+query, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, query)
		var items []json.RawMessage
		decodeData(t, resp, &items)
		assert.Empty(t, items, query)
		assert.Equal(t, int64(1), resp.Total, query)
		assert.False(t, resp.HasNext, query)
	}

	rec, _ = s.do(t, http.MethodGet, "/api/v1/match-requests/my-history?page=9223372036854775807", s.token(t, 1), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
