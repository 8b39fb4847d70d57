package availability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/timeslot"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/pkg/metrics"
)

// Prober は日単位の空き状況調査に使う時間枠取得インターフェース
type Prober interface {
	GetTimeSlots(ctx context.Context, ticketTypeID, date string) ([]*timeslot.TimeSlot, error)
}

// SnapshotStore はインスタンス間で共有する解決済み状態のスナップショット
// 取得失敗はプローブへのフォールバックで吸収されるため、実装はベストエフォートでよい
type SnapshotStore interface {
	GetStatus(ctx context.Context, ticketTypeID, date string) (Status, error)
	SetStatus(ctx context.Context, ticketTypeID, date string, status Status, ttl time.Duration) error
}

// Prefetcher は月単位の空き状況をキャッシュへ先読みする
type Prefetcher struct {
	prober      Prober
	store       SnapshotStore // nil可
	snapshotTTL time.Duration
	metrics     *metrics.Metrics // nil可
	loading     atomic.Int32
}

// NewPrefetcher は新しいPrefetcherを作成する
// storeとmetricsはnilでもよい（その場合は共有スナップショット・計測なしで動く）
func NewPrefetcher(prober Prober, store SnapshotStore, snapshotTTL time.Duration, m *metrics.Metrics) *Prefetcher {
	return &Prefetcher{
		prober:      prober,
		store:       store,
		snapshotTTL: snapshotTTL,
		metrics:     m,
	}
}

// IsLoading は月ロードが飛行中かを返す（UIのインジケーター用）
func (p *Prefetcher) IsLoading() bool {
	return p.loading.Load() > 0
}

// LoadMonth は指定月の未調査日を並行プローブしてキャッシュへ書き込む
//
// 未登録の日はまずプローブ発行前に同期的にloadingへ設定される。これにより
// 同月への重複呼び出しは調査済みの日について何もしない。全プローブの完了後に
// 結果を一括で書き込み、その後にローディングフラグを下ろす。
// 個々のプローブの失敗は他のプローブを中断せず、unavailableとして解決される
func (p *Prefetcher) LoadMonth(ctx context.Context, cache *Cache, ticketTypeID string, year int, month time.Month) {
	pending := cache.MarkLoading(ticketTypeID, MonthDates(year, month))
	if len(pending) == 0 {
		return
	}

	p.loading.Add(1)

	logger.Debug("空き状況の月間プローブ開始",
		zap.String("ticket_type_id", ticketTypeID),
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Int("pending_days", len(pending)),
	)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]Status, len(pending))
	)
	for _, date := range pending {
		wg.Add(1)
		go func(date string) {
			defer wg.Done()
			status := p.probeDay(ctx, ticketTypeID, date)
			mu.Lock()
			results[date] = status
			mu.Unlock()
		}(date)
	}
	wg.Wait()

	cache.ResolveAll(ticketTypeID, results)
	p.loading.Add(-1)
}

// probeDay は一日分の状態を解決する
// 共有スナップショットを先に参照し、ヒットすればゲートウェイ呼び出しを省く
func (p *Prefetcher) probeDay(ctx context.Context, ticketTypeID, date string) Status {
	if p.store != nil {
		if status, err := p.store.GetStatus(ctx, ticketTypeID, date); err == nil && status.IsResolved() {
			p.countProbe("snapshot_hit")
			return status
		}
	}

	slots, err := p.prober.GetTimeSlots(ctx, ticketTypeID, date)
	status := Classify(slots, err)
	p.countProbe(string(status))

	if p.store != nil {
		if serr := p.store.SetStatus(ctx, ticketTypeID, date, status, p.snapshotTTL); serr != nil {
			logger.Debug("スナップショット書き込み失敗",
				zap.String("ticket_type_id", ticketTypeID),
				zap.String("date", date),
				zap.Error(serr),
			)
		}
	}
	return status
}

func (p *Prefetcher) countProbe(result string) {
	if p.metrics != nil {
		p.metrics.AvailabilityProbesTotal.WithLabelValues(result).Inc()
	}
}
