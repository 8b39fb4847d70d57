package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/timeslot"
)

// SelectionHandler は予約フローの選択操作を扱う
type SelectionHandler struct {
	manager SessionManagerInterface
}

func NewSelectionHandler(m SessionManagerInterface) *SelectionHandler {
	return &SelectionHandler{manager: m}
}

type TicketTypeResponse struct {
	ID          string `json:"id" example:"adult"`
	Price       int    `json:"price" example:"800"`
	DisplayName string `json:"display_name" example:"Adult"`
	GroupSize   *int   `json:"group_size,omitempty" example:"15"`
}

func toTicketTypeResponse(t *ticket.TicketType, locale string) TicketTypeResponse {
	return TicketTypeResponse{
		ID:          t.ID,
		Price:       t.Price,
		DisplayName: t.DisplayName(locale),
		GroupSize:   t.GroupSize,
	}
}

type SetTicketRequest struct {
	TicketTypeID string `json:"ticket_type_id" validate:"required" example:"adult"`
	Quantity     int    `json:"quantity" example:"2"`
}

type SetDateRequest struct {
	Date string `json:"date" validate:"required" example:"2025-06-01"`
}

type SetTimeSlotRequest struct {
	TimeSlotID string `json:"time_slot_id" validate:"required" example:"slot-1030"`
}

type SetCustomerRequest struct {
	Name    *string `json:"name,omitempty" example:"山田太郎"`
	Email   *string `json:"email,omitempty" example:"taro@example.com"`
	IsGuest *bool   `json:"is_guest,omitempty"`
}

// ListTicketTypes godoc
// @Summary 券種一覧を取得
// @Description ゲートウェイから券種を取得します（初回のみ実際に取得）
// @Tags selection
// @Produce json
// @Param id path string true "セッションID"
// @Param locale query string false "表示ロケール" default(en)
// @Success 200 {array} TicketTypeResponse
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/ticket-types [get]
func (h *SelectionHandler) ListTicketTypes(c echo.Context) error {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		return err
	}

	types, err := s.LoadTicketTypes(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "券種一覧を取得できませんでした")
	}

	locale := c.QueryParam("locale")
	if locale == "" {
		locale = "en"
	}

	resp := make([]TicketTypeResponse, len(types))
	for i, t := range types {
		resp[i] = toTicketTypeResponse(t, locale)
	}
	return c.JSON(http.StatusOK, resp)
}

// SetTicket godoc
// @Summary チケットを選択
// @Description 数量>0は選択を置き換え、数量≤0は選択を解除します
// @Tags selection
// @Accept json
// @Produce json
// @Param id path string true "セッションID"
// @Param request body SetTicketRequest true "チケット選択"
// @Success 200 {object} SessionStateResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/ticket [put]
func (h *SelectionHandler) SetTicket(c echo.Context) error {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		return err
	}

	var req SetTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	s.SetTicket(req.TicketTypeID, req.Quantity)
	return c.JSON(http.StatusOK, toSessionStateResponse(s))
}

// SetDate godoc
// @Summary 来場日を選択
// @Description 日付変更は時間枠の選択と一覧を無効化します
// @Tags selection
// @Accept json
// @Produce json
// @Param id path string true "セッションID"
// @Param request body SetDateRequest true "来場日"
// @Success 200 {object} SessionStateResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/date [put]
func (h *SelectionHandler) SetDate(c echo.Context) error {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		return err
	}

	var req SetDateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	date, err := time.Parse(booking.DateLayout, req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "日付はYYYY-MM-DD形式で指定してください")
	}

	s.SetDate(date)
	return c.JSON(http.StatusOK, toSessionStateResponse(s))
}

// ListTimeSlots godoc
// @Summary 時間枠一覧を取得
// @Description 選択中の券種と日付の組に対する時間枠を取得します
// @Tags selection
// @Produce json
// @Param id path string true "セッションID"
// @Success 200 {array} TimeSlotResponse
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /sessions/{id}/time-slots [get]
func (h *SelectionHandler) ListTimeSlots(c echo.Context) error {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		return err
	}

	slots, err := s.LoadTimeSlots(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "時間枠一覧を取得できませんでした")
	}

	resp := make([]TimeSlotResponse, len(slots))
	for i, slot := range slots {
		resp[i] = *toTimeSlotResponse(slot)
	}
	return c.JSON(http.StatusOK, resp)
}

// SetTimeSlot godoc
// @Summary 時間枠を選択
// @Description 取得済み一覧の中から時間枠を選択します
// @Tags selection
// @Accept json
// @Produce json
// @Param id path string true "セッションID"
// @Param request body SetTimeSlotRequest true "時間枠選択"
// @Success 200 {object} SessionStateResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/time-slot [put]
func (h *SelectionHandler) SetTimeSlot(c echo.Context) error {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		return err
	}

	var req SetTimeSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := s.SelectTimeSlotByID(req.TimeSlotID); err != nil {
		if errors.Is(err, timeslot.ErrTimeSlotNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, toSessionStateResponse(s))
}

// SetCustomer godoc
// @Summary 予約者情報を更新
// @Description 指定されたフィールドだけを部分更新します
// @Tags selection
// @Accept json
// @Produce json
// @Param id path string true "セッションID"
// @Param request body SetCustomerRequest true "予約者情報"
// @Success 200 {object} SessionStateResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/customer [put]
func (h *SelectionHandler) SetCustomer(c echo.Context) error {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		return err
	}

	var req SetCustomerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}

	s.SetCustomerInfo(booking.CustomerInfoPatch{
		Name:    req.Name,
		Email:   req.Email,
		IsGuest: req.IsGuest,
	})
	return c.JSON(http.StatusOK, toSessionStateResponse(s))
}
