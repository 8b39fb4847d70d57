package jobs

import (
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/config"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/pkg/logger"
)

// Runner はウォームアップ用のasynqサーバーとスケジューラをまとめて管理する
type Runner struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
}

// NewRunner は新しいRunnerを作成する
// cronSpecに従ってwarmup_allタスクを定期投入し、展開されたタスクを処理する
func NewRunner(redisCfg *config.RedisConfig, warmupCfg *config.WarmupConfig, processor *Processor) (*Runner, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisCfg.Addr(),
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: warmupCfg.Concurrency,
		Queues: map[string]int{
			"default": 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAvailabilityWarmup, processor.HandleAvailabilityWarmup)
	mux.HandleFunc(TypeAvailabilityWarmupAll, processor.HandleAvailabilityWarmupAll)

	scheduler := asynq.NewScheduler(redisOpt, nil)
	if _, err := scheduler.Register(warmupCfg.CronSpec, NewAvailabilityWarmupAllTask()); err != nil {
		return nil, fmt.Errorf("ウォームアップスケジュールの登録に失敗: %w", err)
	}

	return &Runner{server: server, scheduler: scheduler, mux: mux}, nil
}

// Start はサーバーとスケジューラを開始する
func (r *Runner) Start() error {
	if err := r.server.Start(r.mux); err != nil {
		return fmt.Errorf("ウォームアップサーバーの起動に失敗: %w", err)
	}
	if err := r.scheduler.Start(); err != nil {
		r.server.Shutdown()
		return fmt.Errorf("ウォームアップスケジューラの起動に失敗: %w", err)
	}
	logger.Info("ウォームアップワーカー開始")
	return nil
}

// Shutdown は処理中のタスクを待ってから停止する
func (r *Runner) Shutdown() {
	r.scheduler.Shutdown()
	r.server.Shutdown()
	logger.Info("ウォームアップワーカー停止", zap.String("reason", "shutdown"))
}
