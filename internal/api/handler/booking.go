package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	domain "github.com/sanosuguru/go-museum-ticket-booking/internal/domain/booking"
)

// BookingHandler は最終検証と予約作成を扱う
type BookingHandler struct {
	manager SessionManagerInterface
}

func NewBookingHandler(m SessionManagerInterface) *BookingHandler {
	return &BookingHandler{manager: m}
}

type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

type BookingResponse struct {
	ID           string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TimeSlotID   string    `json:"time_slot_id" example:"slot-1030"`
	TicketTypeID string    `json:"ticket_type_id" example:"adult"`
	Quantity     int       `json:"quantity" example:"2"`
	TotalPrice   int       `json:"total_price" example:"1600"`
	Status       string    `json:"status" example:"confirmed"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate godoc
// @Summary 選択内容を検証
// @Description 全フィールドを横断検証し、フィールドごとのエラーを返します
// @Tags booking
// @Produce json
// @Param id path string true "セッションID"
// @Success 200 {object} ValidateResponse
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/validate [post]
func (h *BookingHandler) Validate(c echo.Context) error {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		return err
	}

	valid := s.Validate()
	return c.JSON(http.StatusOK, ValidateResponse{
		Valid:  valid,
		Errors: toValidationErrors(s.ValidationErrors()),
	})
}

// Create godoc
// @Summary 予約を作成
// @Description 検証を通過した選択内容で予約を作成します。失敗時は入力が保持され再試行できます
// @Tags booking
// @Produce json
// @Param id path string true "セッションID"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} ValidateResponse "検証エラー"
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string "ゲートウェイ障害"
// @Router /sessions/{id}/booking [post]
func (h *BookingHandler) Create(c echo.Context) error {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		return err
	}

	b, err := s.CreateBooking(c.Request().Context())
	if err != nil {
		if errors.Is(err, domain.ErrValidationFailed) {
			return c.JSON(http.StatusBadRequest, ValidateResponse{
				Valid:  false,
				Errors: toValidationErrors(s.ValidationErrors()),
			})
		}
		return echo.NewHTTPError(http.StatusBadGateway, "予約を作成できませんでした。もう一度お試しください")
	}

	return c.JSON(http.StatusCreated, BookingResponse{
		ID:           b.ID,
		TimeSlotID:   b.TimeSlotID,
		TicketTypeID: b.TicketTypeID,
		Quantity:     b.Quantity,
		TotalPrice:   b.TotalPrice,
		Status:       b.Status,
		CreatedAt:    b.CreatedAt,
	})
}
