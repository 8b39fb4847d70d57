package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/timeslot"
)

var testTypes = []*ticket.TicketType{
	{ID: "adult", Price: 8, Name: map[string]string{"en": "Adult"}},
	{ID: "child", Price: 4, Name: map[string]string{"en": "Child"}},
}

func TestTotalPrice(t *testing.T) {
	t.Run("価格×枚数を返す", func(t *testing.T) {
		selected := &SelectedTicket{TicketTypeID: "adult", Quantity: 2}
		assert.Equal(t, 16, TotalPrice(selected, testTypes))
	})

	t.Run("未選択は0", func(t *testing.T) {
		assert.Equal(t, 0, TotalPrice(nil, testTypes))
	})

	t.Run("券種一覧に存在しない参照は0（エラーにしない）", func(t *testing.T) {
		selected := &SelectedTicket{TicketTypeID: "senior", Quantity: 3}
		assert.Equal(t, 0, TotalPrice(selected, testTypes))
	})
}

func TestTotalTickets(t *testing.T) {
	assert.Equal(t, 0, TotalTickets(nil))
	assert.Equal(t, 2, TotalTickets(&SelectedTicket{TicketTypeID: "adult", Quantity: 2}))
}

func TestBuildSummary(t *testing.T) {
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	slot := &timeslot.TimeSlot{ID: "slot-1", AvailableSlots: 5, Capacity: 10}
	customer := CustomerInfo{Name: "山田太郎", Email: "taro@example.com"}

	t.Run("全て揃っている場合はIsComplete", func(t *testing.T) {
		selected := &SelectedTicket{TicketTypeID: "adult", Quantity: 2}
		s := BuildSummary(selected, testTypes, &date, slot, customer)

		assert.True(t, s.IsComplete)
		assert.Equal(t, 16, s.TotalPrice)
		assert.Equal(t, 2, s.TotalTickets)
		require.NotNil(t, s.Ticket)
		assert.Equal(t, "adult", s.Ticket.TicketTypeID)
		assert.Equal(t, "Adult", s.Ticket.Name)
		assert.Equal(t, 16, s.Ticket.Subtotal)
	})

	t.Run("日付なしは未完了", func(t *testing.T) {
		selected := &SelectedTicket{TicketTypeID: "adult", Quantity: 2}
		s := BuildSummary(selected, testTypes, nil, slot, customer)
		assert.False(t, s.IsComplete)
	})

	t.Run("時間枠なしは未完了", func(t *testing.T) {
		selected := &SelectedTicket{TicketTypeID: "adult", Quantity: 2}
		s := BuildSummary(selected, testTypes, &date, nil, customer)
		assert.False(t, s.IsComplete)
	})

	t.Run("チケットなしは未完了", func(t *testing.T) {
		s := BuildSummary(nil, testTypes, &date, slot, customer)
		assert.False(t, s.IsComplete)
		assert.Nil(t, s.Ticket)
		assert.Equal(t, 0, s.TotalPrice)
	})

	t.Run("予約者情報が不正な場合は未完了", func(t *testing.T) {
		selected := &SelectedTicket{TicketTypeID: "adult", Quantity: 2}
		s := BuildSummary(selected, testTypes, &date, slot, CustomerInfo{Name: "a", Email: "no-at-sign"})
		assert.False(t, s.IsComplete)
	})
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("山田"))
	assert.True(t, ValidName("  ab  "))
	assert.False(t, ValidName("a"))
	assert.False(t, ValidName("  a  "))
	assert.False(t, ValidName(""))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("taro@example.com"))
	assert.False(t, ValidEmail("taro.example.com"))
	assert.False(t, ValidEmail(""))
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	assert.True(t, v.IsValid())

	v.Set(FieldDate, "来場日を選択してください")
	v.Set(FieldCapacity, "残り枠が不足しています")
	assert.False(t, v.IsValid())
	assert.True(t, v.Has(FieldDate))

	v.Clear(FieldDate, FieldCapacity)
	assert.True(t, v.IsValid())
}

func TestCustomerInfo_Apply(t *testing.T) {
	name := "山田太郎"
	guest := true
	c := CustomerInfo{Name: "old", Email: "old@example.com"}

	merged := c.Apply(CustomerInfoPatch{Name: &name, IsGuest: &guest})

	assert.Equal(t, "山田太郎", merged.Name)
	assert.Equal(t, "old@example.com", merged.Email) // nilフィールドは変更しない
	assert.True(t, merged.IsGuest)
}
