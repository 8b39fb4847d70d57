package timeslot

import "time"

// TimeSlot は特定日の来場時間枠を表す
// (券種ID, 日付) の組ごとに取得し、現在の選択を超えてキャッシュしない
type TimeSlot struct {
	ID             string
	StartTime      time.Time
	EndTime        time.Time
	AvailableSlots int
	Capacity       int
}

// HasCapacityFor は指定枚数を収容できるかを返す
func (s *TimeSlot) HasCapacityFor(quantity int) bool {
	return s.AvailableSlots >= quantity
}

// IsBookable は残り枠があるかを返す
func (s *TimeSlot) IsBookable() bool {
	return s.AvailableSlots > 0
}

// Validate は時間枠の検証を行う
func (s *TimeSlot) Validate() error {
	if s.ID == "" {
		return ErrTimeSlotIDRequired
	}
	if s.AvailableSlots < 0 {
		return ErrInvalidAvailableSlots
	}
	if s.Capacity < s.AvailableSlots {
		return ErrInvalidCapacity
	}
	if !s.EndTime.IsZero() && s.EndTime.Before(s.StartTime) {
		return ErrInvalidSlotTime
	}
	return nil
}

// FindByID は時間枠一覧からIDで検索する（見つからない場合はnil）
func FindByID(slots []*TimeSlot, id string) *TimeSlot {
	for _, s := range slots {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// AnyBookable は予約可能な枠が一つでもあるかを返す
func AnyBookable(slots []*TimeSlot) bool {
	for _, s := range slots {
		if s.IsBookable() {
			return true
		}
	}
	return false
}
