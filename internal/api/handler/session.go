package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/application"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/timeslot"
)

type SessionHandler struct {
	manager SessionManagerInterface
}

func NewSessionHandler(m SessionManagerInterface) *SessionHandler {
	return &SessionHandler{manager: m}
}

type CreateSessionResponse struct {
	SessionID string    `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	CreatedAt time.Time `json:"created_at"`
}

type SelectedTicketResponse struct {
	TicketTypeID string `json:"ticket_type_id" example:"adult"`
	Quantity     int    `json:"quantity" example:"2"`
}

type TimeSlotResponse struct {
	ID             string    `json:"id" example:"slot-1030"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	AvailableSlots int       `json:"available_slots" example:"12"`
	Capacity       int       `json:"capacity" example:"30"`
}

type CustomerResponse struct {
	Name    string `json:"name" example:"山田太郎"`
	Email   string `json:"email" example:"taro@example.com"`
	IsGuest bool   `json:"is_guest"`
}

type TicketLineResponse struct {
	TicketTypeID string `json:"ticket_type_id" example:"adult"`
	Name         string `json:"name" example:"Adult"`
	Quantity     int    `json:"quantity" example:"2"`
	Subtotal     int    `json:"subtotal" example:"1600"`
}

type SummaryResponse struct {
	Date         *string             `json:"date,omitempty" example:"2025-06-01"`
	TimeSlot     *TimeSlotResponse   `json:"time_slot,omitempty"`
	Ticket       *TicketLineResponse `json:"ticket,omitempty"`
	TotalPrice   int                 `json:"total_price" example:"1600"`
	TotalTickets int                 `json:"total_tickets" example:"2"`
	IsComplete   bool                `json:"is_complete"`
}

type SessionStateResponse struct {
	SessionID        string                  `json:"session_id"`
	SelectedTicket   *SelectedTicketResponse `json:"selected_ticket,omitempty"`
	SelectedDate     *string                 `json:"selected_date,omitempty" example:"2025-06-01"`
	SelectedTimeSlot *TimeSlotResponse       `json:"selected_time_slot,omitempty"`
	Customer         CustomerResponse        `json:"customer"`
	Summary          SummaryResponse         `json:"summary"`
	Errors           map[string]string       `json:"errors"`
}

func toTimeSlotResponse(s *timeslot.TimeSlot) *TimeSlotResponse {
	if s == nil {
		return nil
	}
	return &TimeSlotResponse{
		ID: s.ID, StartTime: s.StartTime, EndTime: s.EndTime,
		AvailableSlots: s.AvailableSlots, Capacity: s.Capacity,
	}
}

func toSummaryResponse(sum booking.Summary) SummaryResponse {
	resp := SummaryResponse{
		TimeSlot:     toTimeSlotResponse(sum.TimeSlot),
		TotalPrice:   sum.TotalPrice,
		TotalTickets: sum.TotalTickets,
		IsComplete:   sum.IsComplete,
	}
	if sum.Date != nil {
		d := sum.Date.Format(booking.DateLayout)
		resp.Date = &d
	}
	if sum.Ticket != nil {
		resp.Ticket = &TicketLineResponse{
			TicketTypeID: sum.Ticket.TicketTypeID,
			Name:         sum.Ticket.Name,
			Quantity:     sum.Ticket.Quantity,
			Subtotal:     sum.Ticket.Subtotal,
		}
	}
	return resp
}

func toValidationErrors(errs booking.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for field, msg := range errs {
		out[string(field)] = msg
	}
	return out
}

func toSessionStateResponse(s *application.BookingSession) SessionStateResponse {
	resp := SessionStateResponse{
		SessionID:        s.ID,
		SelectedTimeSlot: toTimeSlotResponse(s.SelectedTimeSlot()),
		Summary:          toSummaryResponse(s.Summary()),
		Errors:           toValidationErrors(s.ValidationErrors()),
	}
	if selected := s.SelectedTicket(); selected != nil {
		resp.SelectedTicket = &SelectedTicketResponse{
			TicketTypeID: selected.TicketTypeID,
			Quantity:     selected.Quantity,
		}
	}
	if date := s.SelectedDate(); date != nil {
		d := date.Format(booking.DateLayout)
		resp.SelectedDate = &d
	}
	customer := s.CustomerInfo()
	resp.Customer = CustomerResponse{
		Name: customer.Name, Email: customer.Email, IsGuest: customer.IsGuest,
	}
	return resp
}

// Create godoc
// @Summary 予約セッションを作成
// @Description 新しい予約セッションを開始します
// @Tags sessions
// @Produce json
// @Success 201 {object} CreateSessionResponse
// @Router /sessions [post]
func (h *SessionHandler) Create(c echo.Context) error {
	s := h.manager.Create()
	return c.JSON(http.StatusCreated, CreateSessionResponse{
		SessionID: s.ID,
		CreatedAt: s.CreatedAt,
	})
}

// Get godoc
// @Summary セッション状態を取得
// @Description 選択内容・サマリー・検証エラーを返します
// @Tags sessions
// @Produce json
// @Param id path string true "セッションID"
// @Success 200 {object} SessionStateResponse
// @Failure 404 {object} map[string]string
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c echo.Context) error {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionStateResponse(s))
}

// Delete godoc
// @Summary セッションを破棄
// @Description セッションを初期化して破棄します
// @Tags sessions
// @Param id path string true "セッションID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c echo.Context) error {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		return err
	}
	s.Reset()
	if err := h.manager.Delete(s.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
