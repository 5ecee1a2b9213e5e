package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/queue-service/internal/api/http"
	"github.com/spec-kit/queue-service/internal/api/http/handlers"
	"github.com/spec-kit/queue-service/internal/auth"
	"github.com/spec-kit/queue-service/internal/clock"
	"github.com/spec-kit/queue-service/internal/config"
	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/events"
	"github.com/spec-kit/queue-service/internal/observability"
	"github.com/spec-kit/queue-service/internal/service"
)

// memTicketRepo is an in-memory queue engine for transport tests.
type memTicketRepo struct {
	tickets []domain.Ticket
	now     time.Time
}

func (m *memTicketRepo) Issue(context.Context) (*domain.Ticket, error) {
	var max int64
	for _, t := range m.tickets {
		if t.TicketNumber > max {
			max = t.TicketNumber
		}
	}
	ticket := domain.Ticket{ID: int64(len(m.tickets) + 1), TicketNumber: max + 1, IssuedAt: m.now}
	m.tickets = append(m.tickets, ticket)
	return &ticket, nil
}

func (m *memTicketRepo) CallNext(context.Context) (*domain.Ticket, error) {
	for i := range m.tickets {
		if !m.tickets[i].Attended {
			m.tickets[i].Attended = true
			ticket := m.tickets[i]
			return &ticket, nil
		}
	}
	return nil, domain.ErrQueueEmpty
}

func (m *memTicketRepo) Status(context.Context) (domain.QueueStatus, error) {
	var s domain.QueueStatus
	for _, t := range m.tickets {
		s.TotalIssued++
		if !t.Attended {
			s.WaitingTickets++
		}
		if t.TicketNumber > s.HighestTicket {
			s.HighestTicket = t.TicketNumber
		}
	}
	return s, nil
}

func (m *memTicketRepo) CurrentlyCalled(context.Context) (*domain.Ticket, error) {
	for i := len(m.tickets) - 1; i >= 0; i-- {
		if m.tickets[i].Attended {
			ticket := m.tickets[i]
			return &ticket, nil
		}
	}
	return nil, nil
}

func (m *memTicketRepo) History(_ context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []domain.Ticket
	for i := len(m.tickets) - 1; i >= 0 && len(out) < limit; i-- {
		if m.tickets[i].Attended {
			out = append(out, m.tickets[i])
		}
	}
	return out, nil
}

func (m *memTicketRepo) Reset(context.Context) (int64, error) {
	var n int64
	for i := range m.tickets {
		if !m.tickets[i].Attended {
			m.tickets[i].Attended = true
			n++
		}
	}
	return n, nil
}

func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()

	logger := zap.NewNop()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := &memTicketRepo{now: now}

	queueService := service.NewQueueService(service.QueueDependencies{
		TicketRepo: repo,
		Dispatcher: events.NewInMemoryDispatcher(),
		Clock:      clock.NewFixed(now.Add(2 * time.Minute)),
		Logger:     logger,
	})

	hash, err := auth.HashPassword("hunter2", 4)
	require.NoError(t, err)
	authCfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		StaffUsername:         "operator",
		StaffPasswordHash:     hash,
	}
	tokenManager := auth.NewTokenManager(authCfg.JWTSecret, authCfg.AccessTokenTTLMinutes)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler("test", "test", nil, nil),
		Queue:           handlers.NewQueueHandler(queueService),
		Auth:            handlers.NewAuthHandler(tokenManager, authCfg),
		StaffMiddleware: auth.NewStaffMiddleware(tokenManager, authCfg.StaffUsername),
	})

	token, _, err := tokenManager.GenerateToken("operator")
	require.NoError(t, err)
	return app, token
}

func decodeBody(t *testing.T, resp io.Reader, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp).Decode(into))
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func TestQueueEndpoints(t *testing.T) {
	app, token := newTestApp(t)

	issue := func() map[string]any {
		resp, err := app.Test(httptest.NewRequest("POST", "/api/tickets", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		var body map[string]any
		decodeBody(t, resp.Body, &body)
		return body
	}

	first := issue()
	assert.Equal(t, float64(1), first["ticket_number"])
	assert.Equal(t, false, first["attended"])
	assert.NotEmpty(t, first["timestamp"])

	second := issue()
	assert.Equal(t, float64(2), second["ticket_number"])

	resp, err := app.Test(httptest.NewRequest("GET", "/api/queue/status", nil))
	require.NoError(t, err)
	var status map[string]any
	decodeBody(t, resp.Body, &status)
	assert.Equal(t, float64(2), status["waiting_tickets"])
	assert.Equal(t, float64(2), status["total_issued"])
	assert.Equal(t, float64(2), status["highest_ticket"])

	// Staff route requires the operator token.
	resp, err = app.Test(httptest.NewRequest("POST", "/api/queue/call-next", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	callNext := httptest.NewRequest("POST", "/api/queue/call-next", nil)
	callNext.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(callNext)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var called map[string]any
	decodeBody(t, resp.Body, &called)
	assert.Equal(t, float64(1), called["called_ticket"])
	assert.Equal(t, float64(120), called["wait_time_seconds"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/queue/current", nil))
	require.NoError(t, err)
	var current map[string]any
	decodeBody(t, resp.Body, &current)
	assert.Equal(t, float64(1), current["currently_called"])
	assert.NotEmpty(t, current["called_at"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/queue/history?limit=1", nil))
	require.NoError(t, err)
	var history []map[string]any
	decodeBody(t, resp.Body, &history)
	require.Len(t, history, 1)
	assert.Equal(t, float64(1), history[0]["ticket_number"])

	reset := httptest.NewRequest("POST", "/api/queue/reset", nil)
	reset.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(reset)
	require.NoError(t, err)
	var resetBody map[string]any
	decodeBody(t, resp.Body, &resetBody)
	assert.Equal(t, true, resetBody["success"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/queue/status", nil))
	require.NoError(t, err)
	decodeBody(t, resp.Body, &status)
	assert.Equal(t, float64(0), status["waiting_tickets"])
	assert.Equal(t, float64(2), status["total_issued"])
}

func TestCallNextEmptyQueueReturns404(t *testing.T) {
	app, token := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/queue/call-next", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp.Body, &body)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "QUEUE_EMPTY", errObj["code"])
}

func TestCurrentlyCalledNullWhenNeverCalled(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/queue/current", nil))
	require.NoError(t, err)
	var body map[string]any
	decodeBody(t, resp.Body, &body)
	assert.Nil(t, body["currently_called"])
	assert.Nil(t, body["called_at"])
}

func TestHistoryRejectsInvalidLimit(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/queue/history?limit=-2", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStaffLogin(t *testing.T) {
	app, _ := newTestApp(t)

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/auth/staff/login",
			jsonBody(`{"username":"operator","password":"hunter2"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var body map[string]any
		decodeBody(t, resp.Body, &body)
		assert.NotEmpty(t, body["token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/auth/staff/login",
			jsonBody(`{"username":"operator","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
