package availability

import (
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/timeslot"
)

// Status は日単位の予約可否状態を表す
type Status string

const (
	// StatusUnknown は未調査の日
	StatusUnknown Status = "unknown"
	// StatusLoading は調査用プローブが飛行中の日
	StatusLoading Status = "loading"
	// StatusAvailable は予約可能な枠が存在する日
	StatusAvailable Status = "available"
	// StatusUnavailable は枠なし・満席・取得失敗の日
	StatusUnavailable Status = "unavailable"
)

// IsResolved はプローブが完了済みの状態かを返す
func (s Status) IsResolved() bool {
	return s == StatusAvailable || s == StatusUnavailable
}

// Classify は時間枠取得の結果を日単位の状態に変換する
// 取得エラー（枠なし404を含む）は予約不可に折りたたみ、決して呼び出し元へ伝播しない
func Classify(slots []*timeslot.TimeSlot, err error) Status {
	if err != nil {
		return StatusUnavailable
	}
	if len(slots) == 0 || !timeslot.AnyBookable(slots) {
		return StatusUnavailable
	}
	return StatusAvailable
}
