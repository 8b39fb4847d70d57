package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/config"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/timeslot"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/pkg/metrics"
)

// Client はチケットAPIのHTTPクライアント
type Client struct {
	httpClient *http.Client
	baseURL    string
	source     string
	metrics    *metrics.Metrics // nil可
}

var _ Gateway = (*Client)(nil)

// NewClient は新しいClientを作成する
// httpClientがnilの場合は設定のタイムアウトを持つデフォルトクライアントを使う
func NewClient(cfg *config.GatewayConfig, httpClient *http.Client, m *metrics.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		source:     cfg.Source,
		metrics:    m,
	}
}

type ticketTypeDTO struct {
	ID        string            `json:"id"`
	Price     int               `json:"price"`
	Name      map[string]string `json:"name"`
	GroupSize *int              `json:"groupSize,omitempty"`
}

type timeSlotDTO struct {
	ID             string    `json:"id"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	AvailableSlots int       `json:"availableSlots"`
	Capacity       int       `json:"capacity"`
}

// GetTicketTypes は販売中の券種一覧を取得する
func (c *Client) GetTicketTypes(ctx context.Context) ([]*ticket.TicketType, error) {
	endpoint := fmt.Sprintf("%s/ticket-types", c.baseURL)

	var dtos []ticketTypeDTO
	if err := c.getJSON(ctx, "get_ticket_types", endpoint, &dtos); err != nil {
		return nil, fmt.Errorf("券種一覧の取得に失敗: %w", err)
	}

	types := make([]*ticket.TicketType, 0, len(dtos))
	for _, d := range dtos {
		types = append(types, &ticket.TicketType{
			ID:        d.ID,
			Price:     d.Price,
			Name:      d.Name,
			GroupSize: d.GroupSize,
		})
	}
	return types, nil
}

// GetTimeSlots は指定券種・日付の時間枠一覧を取得する
func (c *Client) GetTimeSlots(ctx context.Context, ticketTypeID, date string) ([]*timeslot.TimeSlot, error) {
	endpoint := fmt.Sprintf("%s/time-slots?ticketTypeId=%s&date=%s",
		c.baseURL, url.QueryEscape(ticketTypeID), url.QueryEscape(date))

	var dtos []timeSlotDTO
	if err := c.getJSON(ctx, "get_time_slots", endpoint, &dtos); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("時間枠の取得: %w", ErrNoTimeSlots)
		}
		return nil, fmt.Errorf("時間枠の取得に失敗: %w", err)
	}

	slots := make([]*timeslot.TimeSlot, 0, len(dtos))
	for _, d := range dtos {
		slots = append(slots, &timeslot.TimeSlot{
			ID:             d.ID,
			StartTime:      d.StartTime,
			EndTime:        d.EndTime,
			AvailableSlots: d.AvailableSlots,
			Capacity:       d.Capacity,
		})
	}
	return slots, nil
}

// CreateBooking は予約を作成する
func (c *Client) CreateBooking(ctx context.Context, req *booking.Request) (*booking.Booking, error) {
	endpoint := fmt.Sprintf("%s/bookings", c.baseURL)
	if req.Source == "" {
		req.Source = c.source
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("予約ペイロードの変換に失敗: %w", err)
	}

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe("create_booking", "failed", start)
		return nil, fmt.Errorf("予約作成リクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var b booking.Booking
		if err := json.Unmarshal(respBody, &b); err != nil {
			c.observe("create_booking", "failed", start)
			return nil, fmt.Errorf("予約レスポンスの解析に失敗: %w", err)
		}
		c.observe("create_booking", "success", start)
		return &b, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		c.observe("create_booking", "failed", start)
		return nil, fmt.Errorf("%w: %s", ErrValidation, string(respBody))
	default:
		c.observe("create_booking", "failed", start)
		return nil, fmt.Errorf("%w: status=%d", ErrServer, resp.StatusCode)
	}
}

// getJSON はGETリクエストを発行してJSONをデコードする
func (c *Client) getJSON(ctx context.Context, operation, endpoint string, out interface{}) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(operation, "failed", start)
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.observe(operation, "failed", start)
		return fmt.Errorf("レスポンス読み取りに失敗: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.observe(operation, "failed", start)
		return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.observe(operation, "failed", start)
		return fmt.Errorf("JSONの解析に失敗: %w", err)
	}

	c.observe(operation, "success", start)
	return nil
}

func (c *Client) observe(operation, status string, start time.Time) {
	if c.metrics != nil {
		c.metrics.GatewayRequestDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
	}
}
