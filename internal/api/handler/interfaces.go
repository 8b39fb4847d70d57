package handler

import (
	"github.com/sanosuguru/go-museum-ticket-booking/internal/application"
)

// SessionManagerInterface はセッション管理のインターフェース
type SessionManagerInterface interface {
	Create() *application.BookingSession
	Get(id string) (*application.BookingSession, error)
	Delete(id string) error
	Count() int
}
