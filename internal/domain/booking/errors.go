package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrValidationFailed    = errors.New("入力内容に誤りがあります")
	ErrTicketNotSelected   = errors.New("チケットが選択されていません")
	ErrDateNotSelected     = errors.New("来場日が選択されていません")
	ErrTimeSlotNotSelected = errors.New("時間枠が選択されていません")
	ErrInvalidQuantity     = errors.New("枚数は1以上である必要があります")
)
