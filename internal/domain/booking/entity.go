package booking

import "time"

// DateLayout は来場日のISO表記フォーマット
const DateLayout = "2006-01-02"

// SelectedTicket は選択中のチケットを表す
// 同時に選択できる券種は常に一つだけで、数量>0の設定は既存の選択を丸ごと置き換える
type SelectedTicket struct {
	TicketTypeID string
	Quantity     int
}

// CustomerInfo は予約者情報を表す
type CustomerInfo struct {
	Name    string
	Email   string
	IsGuest bool
}

// CustomerInfoPatch はCustomerInfoへの部分更新を表す
// nilのフィールドは変更しない
type CustomerInfoPatch struct {
	Name    *string
	Email   *string
	IsGuest *bool
}

// Apply はパッチをマージした結果を返す
func (c CustomerInfo) Apply(patch CustomerInfoPatch) CustomerInfo {
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.IsGuest != nil {
		c.IsGuest = *patch.IsGuest
	}
	return c
}

// Request はゲートウェイへの予約作成ペイロードを表す
type Request struct {
	TimeSlotID    string `json:"timeSlotId"`
	TicketTypeID  string `json:"ticketTypeId"`
	Quantity      int    `json:"quantity"`
	TotalPrice    int    `json:"totalPrice"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	Source        string `json:"source"`
}

// Booking はゲートウェイで作成済みの予約を表す
type Booking struct {
	ID           string    `json:"id"`
	TimeSlotID   string    `json:"timeSlotId"`
	TicketTypeID string    `json:"ticketTypeId"`
	Quantity     int       `json:"quantity"`
	TotalPrice   int       `json:"totalPrice"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}
