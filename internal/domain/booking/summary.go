package booking

import (
	"time"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/timeslot"
)

// TicketLine は予約サマリーのチケット行を表す
type TicketLine struct {
	TicketTypeID string
	Name         string
	Quantity     int
	Subtotal     int
}

// Summary は現在の選択から導出される読み取り専用の予約サマリー
// IsCompleteが決済ステップへ進めるかの唯一の判断基準となる
type Summary struct {
	Date         *time.Time
	TimeSlot     *timeslot.TimeSlot
	Ticket       *TicketLine
	TotalPrice   int
	TotalTickets int
	IsComplete   bool
}

// TotalPrice は選択中チケットの合計金額を計算する
// 券種未選択、または選択中の券種IDが一覧に存在しない場合は0を返す
// （券種の再取得中に一時的に参照が切れることがあるため、エラーにはしない）
func TotalPrice(selected *SelectedTicket, types []*ticket.TicketType) int {
	if selected == nil {
		return 0
	}
	t := ticket.FindByID(types, selected.TicketTypeID)
	if t == nil {
		return 0
	}
	return t.Price * selected.Quantity
}

// TotalTickets は選択中の合計枚数を返す
func TotalTickets(selected *SelectedTicket) int {
	if selected == nil {
		return 0
	}
	return selected.Quantity
}

// BuildSummary は現在の選択状態からサマリーを導出する
// 副作用を持たない純粋な計算で、入力が変わるたびに呼び直す
func BuildSummary(selected *SelectedTicket, types []*ticket.TicketType, date *time.Time, slot *timeslot.TimeSlot, customer CustomerInfo) Summary {
	s := Summary{
		Date:         date,
		TimeSlot:     slot,
		TotalPrice:   TotalPrice(selected, types),
		TotalTickets: TotalTickets(selected),
	}

	if selected != nil {
		line := &TicketLine{
			TicketTypeID: selected.TicketTypeID,
			Quantity:     selected.Quantity,
			Subtotal:     s.TotalPrice,
		}
		if t := ticket.FindByID(types, selected.TicketTypeID); t != nil {
			line.Name = t.DisplayName("en")
		}
		s.Ticket = line
	}

	s.IsComplete = date != nil &&
		slot != nil &&
		s.TotalTickets > 0 &&
		ValidName(customer.Name) &&
		ValidEmail(customer.Email)

	return s
}
