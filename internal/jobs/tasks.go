package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TypeAvailabilityWarmup は単一券種・単一月の空き状況ウォームアップ
	TypeAvailabilityWarmup = "availability:warmup"
	// TypeAvailabilityWarmupAll は全券種のウォームアップを展開するタスク
	TypeAvailabilityWarmupAll = "availability:warmup_all"
)

// AvailabilityWarmupPayload はウォームアップ対象の券種と月
type AvailabilityWarmupPayload struct {
	TicketTypeID string `json:"ticket_type_id"`
	Year         int    `json:"year"`
	Month        int    `json:"month"`
}

// NewAvailabilityWarmupTask は単一券種のウォームアップタスクを作成する
func NewAvailabilityWarmupTask(ticketTypeID string, year int, month time.Month) (*asynq.Task, error) {
	payload, err := json.Marshal(AvailabilityWarmupPayload{
		TicketTypeID: ticketTypeID,
		Year:         year,
		Month:        int(month),
	})
	if err != nil {
		return nil, fmt.Errorf("ペイロードのシリアライズに失敗: %w", err)
	}
	return asynq.NewTask(TypeAvailabilityWarmup, payload), nil
}

// NewAvailabilityWarmupAllTask は全券種展開タスクを作成する
func NewAvailabilityWarmupAllTask() *asynq.Task {
	return asynq.NewTask(TypeAvailabilityWarmupAll, nil)
}
