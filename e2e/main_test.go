package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/api"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/api/handler"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/application"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/availability"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/config"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/gateway"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/session"
)

// fakeTicketAPI はチケットゲートウェイを模したHTTPサーバー
type fakeTicketAPI struct {
	mu       sync.Mutex
	server   *httptest.Server
	bookings []map[string]interface{}
	failNext bool
}

func newFakeTicketAPI() *fakeTicketAPI {
	f := &fakeTicketAPI{}
	mux := http.NewServeMux()

	mux.HandleFunc("/ticket-types", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "adult", "price": 800, "name": map[string]string{"en": "Adult", "ja": "大人"}},
			{"id": "child", "price": 400, "name": map[string]string{"en": "Child", "ja": "子ども"}},
		})
	})

	mux.HandleFunc("/time-slots", func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		w.Header().Set("Content-Type", "application/json")
		start, _ := time.Parse("2006-01-02", date)
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{
				"id":             "slot-1030",
				"startTime":      start.Add(10*time.Hour + 30*time.Minute),
				"endTime":        start.Add(12 * time.Hour),
				"availableSlots": 12,
				"capacity":       30,
			},
		})
	})

	mux.HandleFunc("/bookings", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		failNext := f.failNext
		f.failNext = false
		f.mu.Unlock()

		if failNext {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.bookings = append(f.bookings, payload)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":           "booking-e2e-1",
			"timeSlotId":   payload["timeSlotId"],
			"ticketTypeId": payload["ticketTypeId"],
			"quantity":     payload["quantity"],
			"totalPrice":   payload["totalPrice"],
			"status":       "confirmed",
			"createdAt":    time.Now().UTC(),
		})
	})

	f.server = httptest.NewServer(mux)
	return f
}

func (f *fakeTicketAPI) bookingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

func (f *fakeTicketAPI) lastBooking() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bookings) == 0 {
		return nil
	}
	return f.bookings[len(f.bookings)-1]
}

// TestServer はE2Eテスト用のアプリケーションサーバー
type TestServer struct {
	Echo    *echo.Echo
	Gateway *fakeTicketAPI
	Manager *session.Manager
	Cleanup func()
}

// NewTestServer はフェイクゲートウェイを背後に持つアプリ全体を組み立てる
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	fake := newFakeTicketAPI()

	gwCfg := &config.GatewayConfig{
		BaseURL: fake.server.URL,
		Timeout: 5 * time.Second,
		Source:  "web",
	}
	gw := gateway.NewClient(gwCfg, fake.server.Client(), nil)

	factory := func(id string) *application.BookingSession {
		return application.NewBookingSession(id, gw, availability.NewPrefetcher(gw, nil, 0, nil), nil)
	}
	manager := session.NewManager(factory, nil)

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)

	sessionHandler := handler.NewSessionHandler(manager)
	selectionHandler := handler.NewSelectionHandler(manager)
	availabilityHandler := handler.NewAvailabilityHandler(manager)
	bookingHandler := handler.NewBookingHandler(manager)
	healthHandler := handler.NewHealthHandler()

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)
	v1.POST("/sessions", sessionHandler.Create)
	v1.GET("/sessions/:id", sessionHandler.Get)
	v1.DELETE("/sessions/:id", sessionHandler.Delete)
	v1.GET("/sessions/:id/ticket-types", selectionHandler.ListTicketTypes)
	v1.PUT("/sessions/:id/ticket", selectionHandler.SetTicket)
	v1.PUT("/sessions/:id/date", selectionHandler.SetDate)
	v1.GET("/sessions/:id/time-slots", selectionHandler.ListTimeSlots)
	v1.PUT("/sessions/:id/time-slot", selectionHandler.SetTimeSlot)
	v1.PUT("/sessions/:id/customer", selectionHandler.SetCustomer)
	v1.GET("/sessions/:id/availability", availabilityHandler.GetMonth)
	v1.POST("/sessions/:id/validate", bookingHandler.Validate)
	v1.POST("/sessions/:id/booking", bookingHandler.Create)

	return &TestServer{
		Echo:    e,
		Gateway: fake,
		Manager: manager,
		Cleanup: fake.server.Close,
	}
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}
