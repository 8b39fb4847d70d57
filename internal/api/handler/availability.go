package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// AvailabilityHandler は月単位の空き状況照会を扱う
type AvailabilityHandler struct {
	manager SessionManagerInterface
}

func NewAvailabilityHandler(m SessionManagerInterface) *AvailabilityHandler {
	return &AvailabilityHandler{manager: m}
}

type MonthAvailabilityResponse struct {
	TicketTypeID string            `json:"ticket_type_id" example:"adult"`
	Year         int               `json:"year" example:"2025"`
	Month        int               `json:"month" example:"6"`
	Days         map[string]string `json:"days"`
	Loading      bool              `json:"loading"`
}

// GetMonth godoc
// @Summary 月間の空き状況を取得
// @Description 未調査の日を並行プローブし、日付ごとの状態マップを返します
// @Tags availability
// @Produce json
// @Param id path string true "セッションID"
// @Param ticket_type_id query string true "券種ID"
// @Param year query int true "年"
// @Param month query int true "月(1-12)"
// @Success 200 {object} MonthAvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/availability [get]
func (h *AvailabilityHandler) GetMonth(c echo.Context) error {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		return err
	}

	ticketTypeID := c.QueryParam("ticket_type_id")
	if ticketTypeID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "ticket_type_idは必須です")
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil || year < 2000 || year > 2100 {
		return echo.NewHTTPError(http.StatusBadRequest, "yearが不正です")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "monthは1から12で指定してください")
	}

	statuses := s.LoadMonthAvailability(c.Request().Context(), ticketTypeID, year, time.Month(month))

	days := make(map[string]string, len(statuses))
	for date, status := range statuses {
		days[date] = string(status)
	}

	return c.JSON(http.StatusOK, MonthAvailabilityResponse{
		TicketTypeID: ticketTypeID,
		Year:         year,
		Month:        month,
		Days:         days,
		Loading:      s.IsAvailabilityLoading(),
	})
}
