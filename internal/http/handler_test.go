package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parklot-service/internal/config"
	"parklot-service/internal/domain/parking"
	"parklot-service/internal/service"
)

const testJWTSecret = "test-secret"

type stubSpotStore struct {
	spot *parking.Spot
}

func (s *stubSpotStore) GetNextAvailable(_ context.Context, _ parking.VehicleType) (*parking.Spot, error) {
	return s.spot, nil
}

func (s *stubSpotStore) UpdateAvailability(_ context.Context, _ *parking.Spot) error {
	return nil
}

type stubTicketStore struct {
	open  *parking.Ticket
	count int64
	saved []*parking.Ticket
}

func (s *stubTicketStore) Save(_ context.Context, ticket *parking.Ticket) error {
	ticket.ID = int64(len(s.saved) + 1)
	s.saved = append(s.saved, ticket)
	return nil
}

func (s *stubTicketStore) GetOpenTicket(_ context.Context, _ string) (*parking.Ticket, error) {
	return s.open, nil
}

func (s *stubTicketStore) Update(_ context.Context, _ *parking.Ticket) error {
	return nil
}

func (s *stubTicketStore) CountForVehicle(_ context.Context, _ string) (int64, error) {
	return s.count, nil
}

func (s *stubTicketStore) ListForVehicle(_ context.Context, _ string, _ int) ([]parking.Ticket, error) {
	tickets := make([]parking.Ticket, 0, len(s.saved))
	for _, t := range s.saved {
		tickets = append(tickets, *t)
	}
	return tickets, nil
}

type stubEventStore struct {
	recorded []*parking.GateEvent
}

func (s *stubEventStore) Record(_ context.Context, event *parking.GateEvent) error {
	s.recorded = append(s.recorded, event)
	return nil
}

func (s *stubEventStore) ListForVehicle(_ context.Context, _ string, _ int) ([]parking.GateEvent, error) {
	events := make([]parking.GateEvent, 0, len(s.recorded))
	for _, e := range s.recorded {
		events = append(events, *e)
	}
	return events, nil
}

func newTestRouter(t *testing.T, spots *stubSpotStore, tickets *stubTicketStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zerolog.Nop()
	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: testJWTSecret},
		Fare: config.FareConfig{CarRatePerHour: 1.5, BikeRatePerHour: 1.0},
	}

	allocator := service.NewSpotAllocator(spots, log)
	fare := service.NewFareEngine(cfg.Fare)
	parkingService := service.NewParkingService(allocator, tickets, &stubEventStore{}, fare, log)

	router := gin.New()
	handler := NewHandler(parkingService, cfg, log)
	handler.Register(router, AuthMiddleware(cfg.Auth.JWTSecret))
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_VehicleEntry(t *testing.T) {
	spots := &stubSpotStore{spot: &parking.Spot{Number: 1, Type: parking.VehicleTypeCar, Available: true}}
	tickets := &stubTicketStore{}
	router := newTestRouter(t, spots, tickets)

	rec := doJSON(router, http.MethodPost, "/api/v1/vehicles/entries", gin.H{
		"selection":          1,
		"vehicle_reg_number": "ABCDEF",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Status        string          `json:"status"`
		Ticket        *parking.Ticket `json:"ticket"`
		RecurringUser bool            `json:"recurring_user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Ticket.Spot.Number)
	assert.Equal(t, "ABCDEF", resp.Ticket.VehicleRegNumber)
	assert.Len(t, tickets.saved, 1)
}

func TestHandler_VehicleEntry_InvalidSelection(t *testing.T) {
	spots := &stubSpotStore{spot: &parking.Spot{Number: 1, Type: parking.VehicleTypeCar, Available: true}}
	tickets := &stubTicketStore{}
	router := newTestRouter(t, spots, tickets)

	rec := doJSON(router, http.MethodPost, "/api/v1/vehicles/entries", gin.H{
		"selection":          3,
		"vehicle_reg_number": "ABCDEF",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, tickets.saved)
}

func TestHandler_VehicleEntry_NoCapacity(t *testing.T) {
	router := newTestRouter(t, &stubSpotStore{}, &stubTicketStore{})

	rec := doJSON(router, http.MethodPost, "/api/v1/vehicles/entries", gin.H{
		"selection":          1,
		"vehicle_reg_number": "ABCDEF",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_VehicleExit(t *testing.T) {
	spot := &parking.Spot{Number: 1, Type: parking.VehicleTypeCar, Available: false}
	tickets := &stubTicketStore{
		open: &parking.Ticket{
			ID:               1,
			Ref:              "ref-1",
			VehicleRegNumber: "ABCDEF",
			Spot:             spot,
			InTime:           time.Now().Add(-time.Hour),
		},
		count: 1,
	}
	router := newTestRouter(t, &stubSpotStore{spot: spot}, tickets)

	rec := doJSON(router, http.MethodPost, "/api/v1/vehicles/exits", gin.H{
		"vehicle_reg_number": "ABCDEF",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Price         float64 `json:"price"`
		DiscountGiven bool    `json:"discount_given"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 1.5, resp.Price, 0.01)
	assert.False(t, resp.DiscountGiven)
}

func TestHandler_VehicleExit_UnknownVehicle(t *testing.T) {
	router := newTestRouter(t, &stubSpotStore{}, &stubTicketStore{})

	rec := doJSON(router, http.MethodPost, "/api/v1/vehicles/exits", gin.H{
		"vehicle_reg_number": "GHOST",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_NextAvailableSpot(t *testing.T) {
	spots := &stubSpotStore{spot: &parking.Spot{Number: 4, Type: parking.VehicleTypeBike, Available: true}}
	router := newTestRouter(t, spots, &stubTicketStore{})

	rec := doJSON(router, http.MethodGet, "/api/v1/spots/next?type=BIKE", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data parking.Spot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Data.Number)
	assert.Equal(t, parking.VehicleTypeBike, resp.Data.Type)
}

func TestHandler_NextAvailableSpot_UnknownType(t *testing.T) {
	router := newTestRouter(t, &stubSpotStore{}, &stubTicketStore{})

	rec := doJSON(router, http.MethodGet, "/api/v1/spots/next?type=PLANE", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ListTickets_RequiresToken(t *testing.T) {
	router := newTestRouter(t, &stubSpotStore{}, &stubTicketStore{})

	rec := doJSON(router, http.MethodGet, "/api/v1/tickets?vehicle=ABCDEF", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_ListTickets_WithToken(t *testing.T) {
	spot := &parking.Spot{Number: 1, Type: parking.VehicleTypeCar, Available: false}
	tickets := &stubTicketStore{
		saved: []*parking.Ticket{
			{ID: 1, Ref: "ref-1", VehicleRegNumber: "ABCDEF", Spot: spot, InTime: time.Now().Add(-time.Hour)},
		},
	}
	router := newTestRouter(t, &stubSpotStore{}, tickets)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets?vehicle=ABCDEF", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []parking.Ticket `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, "ABCDEF", resp.Data[0].VehicleRegNumber)
}
