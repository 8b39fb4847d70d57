package timeslot

import "errors"

// TimeSlot ドメインのエラー定義
var (
	ErrTimeSlotNotFound      = errors.New("時間枠が見つかりません")
	ErrTimeSlotIDRequired    = errors.New("時間枠IDは必須です")
	ErrInvalidAvailableSlots = errors.New("残り枠数は0以上である必要があります")
	ErrInvalidCapacity       = errors.New("定員は残り枠数以上である必要があります")
	ErrInvalidSlotTime       = errors.New("終了時刻は開始時刻より後である必要があります")
)
