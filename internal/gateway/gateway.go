package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/timeslot"
)

// Gateway は外部チケットAPIへの接続を表す
// 予約の永続化はゲートウェイ側の責務で、本サービスは何も保存しない
type Gateway interface {
	// GetTicketTypes は販売中の券種一覧を取得する
	GetTicketTypes(ctx context.Context) ([]*ticket.TicketType, error)

	// GetTimeSlots は指定券種・日付の時間枠一覧を取得する
	// 枠が存在しない場合はErrNoTimeSlotsを返す（呼び出し側は空一覧と同様に扱う）
	GetTimeSlots(ctx context.Context, ticketTypeID, date string) ([]*timeslot.TimeSlot, error)

	// CreateBooking は予約を作成する
	// 失敗はErrValidationまたはErrServerにラップされる
	CreateBooking(ctx context.Context, req *booking.Request) (*booking.Booking, error)
}

// ゲートウェイのエラー定義
var (
	ErrNoTimeSlots = errors.New("指定日の時間枠が見つかりません")
	ErrValidation  = errors.New("予約内容がゲートウェイに拒否されました")
	ErrServer      = errors.New("チケットAPIでエラーが発生しました")
)

// APIError はチケットAPIの非2xx応答を表す
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("チケットAPIエラー: status=%d endpoint=%s body=%s", e.StatusCode, e.Endpoint, e.Body)
}

// IsNotFound はエラーが404応答かを返す
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}
