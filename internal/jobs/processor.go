package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/availability"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/gateway"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/pkg/logger"
)

// Enqueuer はタスクをキューへ投入するインターフェース
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Processor は空き状況ウォームアップタスクを処理する
//
// セッション起点の先読みと違い、ウォームアップは共有スナップショットにだけ
// 書き込む。各セッションはプローブ前にスナップショットを参照するため、
// ウォームアップ済みの日はゲートウェイ呼び出しなしで解決される
type Processor struct {
	gw          gateway.Gateway
	store       availability.SnapshotStore
	enqueuer    Enqueuer
	snapshotTTL time.Duration
	concurrency int
}

// NewProcessor は新しいProcessorを作成する
func NewProcessor(gw gateway.Gateway, store availability.SnapshotStore, enqueuer Enqueuer, snapshotTTL time.Duration, concurrency int) *Processor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Processor{
		gw:          gw,
		store:       store,
		enqueuer:    enqueuer,
		snapshotTTL: snapshotTTL,
		concurrency: concurrency,
	}
}

// HandleAvailabilityWarmup は一券種・一月分の空き状況を調査して書き込む
func (p *Processor) HandleAvailabilityWarmup(ctx context.Context, t *asynq.Task) error {
	var payload AvailabilityWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("ペイロードのデシリアライズに失敗: %w", err)
	}

	dates := availability.MonthDates(payload.Year, time.Month(payload.Month))
	logger.Info("空き状況ウォームアップ開始",
		zap.String("ticket_type_id", payload.TicketTypeID),
		zap.Int("year", payload.Year),
		zap.Int("month", payload.Month),
		zap.Int("days", len(dates)),
	)

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.concurrency)
	for _, date := range dates {
		wg.Add(1)
		sem <- struct{}{}
		go func(date string) {
			defer wg.Done()
			defer func() { <-sem }()
			p.warmDay(ctx, payload.TicketTypeID, date)
		}(date)
	}
	wg.Wait()

	logger.Info("空き状況ウォームアップ完了",
		zap.String("ticket_type_id", payload.TicketTypeID),
		zap.Int("year", payload.Year),
		zap.Int("month", payload.Month),
	)
	return nil
}

// HandleAvailabilityWarmupAll は販売中の全券種について当月と翌月の
// ウォームアップタスクを展開する
func (p *Processor) HandleAvailabilityWarmupAll(ctx context.Context, _ *asynq.Task) error {
	types, err := p.gw.GetTicketTypes(ctx)
	if err != nil {
		return fmt.Errorf("券種一覧の取得に失敗: %w", err)
	}

	now := time.Now().UTC()
	months := []time.Time{now, now.AddDate(0, 1, 0)}

	for _, tt := range types {
		for _, m := range months {
			task, err := NewAvailabilityWarmupTask(tt.ID, m.Year(), m.Month())
			if err != nil {
				return err
			}
			if _, err := p.enqueuer.EnqueueContext(ctx, task); err != nil {
				return fmt.Errorf("ウォームアップタスクの投入に失敗: %w", err)
			}
		}
	}

	logger.Info("ウォームアップタスクを展開",
		zap.Int("ticket_types", len(types)),
		zap.Int("months", len(months)),
	)
	return nil
}

// warmDay は一日分を調査してスナップショットへ書き込む
// 個々の失敗はunavailableとして記録し、タスク全体は失敗させない
func (p *Processor) warmDay(ctx context.Context, ticketTypeID, date string) {
	slots, err := p.gw.GetTimeSlots(ctx, ticketTypeID, date)
	status := availability.Classify(slots, err)

	if serr := p.store.SetStatus(ctx, ticketTypeID, date, status, p.snapshotTTL); serr != nil {
		logger.Warn("スナップショット書き込み失敗",
			zap.String("ticket_type_id", ticketTypeID),
			zap.String("date", date),
			zap.Error(serr),
		)
	}
}
