package availability

import (
	"fmt"
	"sync"
	"time"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/booking"
)

// Cache は (券種ID, 日付) → Status のインメモリキャッシュ
// エントリは unknown → loading → {available|unavailable} と遷移し、
// 券種ごとの無効化か全消去がない限り解決済みの日を再取得しない
// loadingマーカー自体が重複取得の抑止機構を兼ねる（飛行中リクエスト表は持たない）
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]Status
	byTicket map[string]map[string]struct{} // 券種ID → 日付集合（券種単位の無効化用索引）
}

// NewCache は空のキャッシュを作成する
func NewCache() *Cache {
	return &Cache{
		entries:  make(map[string]Status),
		byTicket: make(map[string]map[string]struct{}),
	}
}

func cacheKey(ticketTypeID, date string) string {
	return ticketTypeID + "|" + date
}

// Get は指定の券種・日付の状態を返す（未登録はunknown）
func (c *Cache) Get(ticketTypeID, date string) Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.entries[cacheKey(ticketTypeID, date)]; ok {
		return s
	}
	return StatusUnknown
}

// MarkLoading は未登録の日付だけをloadingに設定し、新たにマークした日付を返す
// 既にloading・解決済みの日付はスキップされるため、同月の重複呼び出しは何もしない
func (c *Cache) MarkLoading(ticketTypeID string, dates []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	marked := make([]string, 0, len(dates))
	for _, date := range dates {
		key := cacheKey(ticketTypeID, date)
		if _, ok := c.entries[key]; ok {
			continue
		}
		c.entries[key] = StatusLoading
		c.indexLocked(ticketTypeID, date)
		marked = append(marked, date)
	}
	return marked
}

// ResolveAll はプローブ結果を一括で書き込む
// 月内の全プローブが完了してから一度だけ呼ぶことで、部分更新された月を見せない
func (c *Cache) ResolveAll(ticketTypeID string, results map[string]Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for date, status := range results {
		c.entries[cacheKey(ticketTypeID, date)] = status
		c.indexLocked(ticketTypeID, date)
	}
}

// Month は指定月の日付→状態のビューを返す（未登録の日はunknown）
func (c *Cache) Month(ticketTypeID string, year int, month time.Month) map[string]Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	view := make(map[string]Status)
	for _, date := range MonthDates(year, month) {
		if s, ok := c.entries[cacheKey(ticketTypeID, date)]; ok {
			view[date] = s
		} else {
			view[date] = StatusUnknown
		}
	}
	return view
}

// InvalidateTicketType は指定券種のエントリを全て削除する
// 他の券種のエントリは保持されるため、以前閲覧した券種に戻っても再取得は不要
func (c *Cache) InvalidateTicketType(ticketTypeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for date := range c.byTicket[ticketTypeID] {
		delete(c.entries, cacheKey(ticketTypeID, date))
	}
	delete(c.byTicket, ticketTypeID)
}

// Clear は全エントリを削除する（resetBooking専用）
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Status)
	c.byTicket = make(map[string]map[string]struct{})
}

// Size は登録済みエントリ数を返す
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) indexLocked(ticketTypeID, date string) {
	set, ok := c.byTicket[ticketTypeID]
	if !ok {
		set = make(map[string]struct{})
		c.byTicket[ticketTypeID] = set
	}
	set[date] = struct{}{}
}

// MonthDates は指定月の全日付をISO表記で返す
func MonthDates(year int, month time.Month) []string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	dates := make([]string, 0, days)
	for d := 1; d <= days; d++ {
		dates = append(dates, fmt.Sprintf("%04d-%02d-%02d", year, month, d))
	}
	return dates
}

// FormatDate は日付をキャッシュとゲートウェイで使うISO表記に変換する
func FormatDate(t time.Time) string {
	return t.Format(booking.DateLayout)
}
