package http

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mw "github.com/oakline/fieldops-backend/internal/adapters/primary/http/middleware"
	"github.com/oakline/fieldops-backend/internal/auth"
	"github.com/oakline/fieldops-backend/internal/core/mocks"
	"github.com/oakline/fieldops-backend/internal/core/ports"
)

type gpsHandlerFixture struct {
	location  *mocks.MockLocationService
	router    stdhttp.Handler
	tm        *auth.TokenManager
	accountID uuid.UUID
}

func newGPSHandlerFixture(t *testing.T) *gpsHandlerFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	location := &mocks.MockLocationService{}
	handler := NewGPSHandler(location, NewErrorHandler(logger), logger)

	tm := auth.NewTokenManager("test-secret", time.Hour)
	r := chi.NewRouter()
	r.Route("/gps", func(r chi.Router) {
		r.Use(mw.JWTMiddleware(tm))
		handler.RegisterRoutes(r)
	})

	return &gpsHandlerFixture{
		location:  location,
		router:    r,
		tm:        tm,
		accountID: uuid.New(),
	}
}

func (f *gpsHandlerFixture) pingAs(t *testing.T, userID uuid.UUID, role string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	token, err := f.tm.GenerateToken(userID, f.accountID, role)
	require.NoError(t, err)

	req := httptest.NewRequest(stdhttp.MethodPost, "/gps/ping", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

// ping submits a ping with a technician token owned by techID.
func (f *gpsHandlerFixture) ping(t *testing.T, techID uuid.UUID, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	return f.pingAs(t, techID, auth.RoleTechnician, body)
}

func TestHandlePing(t *testing.T) {
	f := newGPSHandlerFixture(t)
	techID := uuid.New()
	recordedAt := time.Date(2025, 6, 12, 14, 29, 40, 0, time.UTC)

	f.location.On("RecordPing", mock.Anything, ports.RecordPingParams{
		AccountID:  f.accountID,
		TechID:     techID,
		Latitude:   39.7684,
		Longitude:  -86.1581,
		RecordedAt: recordedAt,
	}).Return(nil)

	body := []byte(fmt.Sprintf(
		`{"techId":"%s","latitude":39.7684,"longitude":-86.1581,"recordedAt":"2025-06-12T14:29:40Z"}`,
		techID,
	))
	recorder := f.ping(t, techID, body)

	require.Equal(t, stdhttp.StatusNoContent, recorder.Code)
	f.location.AssertExpectations(t)
}

func TestHandlePing_OmittedTimestamp(t *testing.T) {
	f := newGPSHandlerFixture(t)
	techID := uuid.New()

	f.location.On("RecordPing", mock.Anything, mock.MatchedBy(func(p ports.RecordPingParams) bool {
		return p.TechID == techID && p.RecordedAt.IsZero()
	})).Return(nil)

	body := []byte(fmt.Sprintf(`{"techId":"%s","latitude":39.7684,"longitude":-86.1581}`, techID))
	recorder := f.ping(t, techID, body)

	require.Equal(t, stdhttp.StatusNoContent, recorder.Code)
	f.location.AssertExpectations(t)
}

func TestHandlePing_Validation(t *testing.T) {
	f := newGPSHandlerFixture(t)
	techID := uuid.New()

	cases := []struct {
		name string
		body string
	}{
		{"missing tech id", `{"latitude":39.7684,"longitude":-86.1581}`},
		{"malformed tech id", `{"techId":"nope","latitude":39.7684,"longitude":-86.1581}`},
		{"latitude out of range", fmt.Sprintf(`{"techId":"%s","latitude":91,"longitude":-86.1581}`, techID)},
		{"longitude out of range", fmt.Sprintf(`{"techId":"%s","latitude":39.7684,"longitude":181}`, techID)},
		{"bad timestamp", fmt.Sprintf(`{"techId":"%s","latitude":39.7684,"longitude":-86.1581,"recordedAt":"yesterday"}`, techID)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := f.ping(t, techID, []byte(tc.body))
			assert.Equal(t, stdhttp.StatusUnprocessableEntity, recorder.Code)
		})
	}

	f.location.AssertNotCalled(t, "RecordPing", mock.Anything, mock.Anything)
}

func TestHandlePing_PerTechnicianRateLimit(t *testing.T) {
	f := newGPSHandlerFixture(t)
	techID := uuid.New()

	f.location.On("RecordPing", mock.Anything, mock.AnythingOfType("ports.RecordPingParams")).Return(nil)

	body := []byte(fmt.Sprintf(`{"techId":"%s","latitude":39.7684,"longitude":-86.1581}`, techID))

	// The per-technician bucket allows a burst, then throttles.
	var limited bool
	for i := 0; i < pingBurstPerTech+5; i++ {
		recorder := f.ping(t, techID, body)
		if recorder.Code == stdhttp.StatusTooManyRequests {
			limited = true
			break
		}
		require.Equal(t, stdhttp.StatusNoContent, recorder.Code)
	}
	assert.True(t, limited, "expected the ping flood to hit the rate limit")

	// A different technician is unaffected.
	otherTechID := uuid.New()
	otherBody := []byte(fmt.Sprintf(`{"techId":"%s","latitude":39.7684,"longitude":-86.1581}`, otherTechID))
	recorder := f.ping(t, otherTechID, otherBody)
	assert.Equal(t, stdhttp.StatusNoContent, recorder.Code)
}

func TestHandlePing_TechnicianCannotReportForOthers(t *testing.T) {
	f := newGPSHandlerFixture(t)
	victimTechID := uuid.New()

	body := []byte(fmt.Sprintf(`{"techId":"%s","latitude":39.7684,"longitude":-86.1581}`, victimTechID))
	recorder := f.pingAs(t, uuid.New(), auth.RoleTechnician, body)

	assert.Equal(t, stdhttp.StatusForbidden, recorder.Code)
	f.location.AssertNotCalled(t, "RecordPing", mock.Anything, mock.Anything)
}

func TestHandlePing_DispatcherCanReportForAnyTechnician(t *testing.T) {
	f := newGPSHandlerFixture(t)
	techID := uuid.New()

	f.location.On("RecordPing", mock.Anything, mock.MatchedBy(func(p ports.RecordPingParams) bool {
		return p.TechID == techID && p.AccountID == f.accountID
	})).Return(nil)

	body := []byte(fmt.Sprintf(`{"techId":"%s","latitude":39.7684,"longitude":-86.1581}`, techID))
	recorder := f.pingAs(t, uuid.New(), auth.RoleDispatcher, body)

	require.Equal(t, stdhttp.StatusNoContent, recorder.Code)
	f.location.AssertExpectations(t)
}

func TestHandlePing_Unauthenticated(t *testing.T) {
	f := newGPSHandlerFixture(t)

	req := httptest.NewRequest(stdhttp.MethodPost, "/gps/ping", bytes.NewReader([]byte(`{}`)))
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)

	assert.Equal(t, stdhttp.StatusUnauthorized, recorder.Code)
	f.location.AssertNotCalled(t, "RecordPing", mock.Anything, mock.Anything)
}
