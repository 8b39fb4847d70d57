package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/pkg/logger"
)

// SessionCleaner は期限切れセッションを破棄するインターフェース
type SessionCleaner interface {
	CleanupExpired(olderThan time.Duration) int
}

// ExpiredSessionCleaner は放置された予約セッションを破棄するワーカー
type ExpiredSessionCleaner struct {
	sessionManager SessionCleaner
	interval       time.Duration
	expireAfter    time.Duration
	stopCh         chan struct{}
	doneCh         chan struct{}
}

// NewExpiredSessionCleaner は新しいクリーナーを作成
func NewExpiredSessionCleaner(
	sm SessionCleaner,
	interval time.Duration,
	expireAfter time.Duration,
) *ExpiredSessionCleaner {
	return &ExpiredSessionCleaner{
		sessionManager: sm,
		interval:       interval,
		expireAfter:    expireAfter,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start はクリーナーを開始
func (c *ExpiredSessionCleaner) Start(ctx context.Context) {
	logger.Info("期限切れセッションクリーナー開始",
		zap.Duration("interval", c.interval),
		zap.Duration("expire_after", c.expireAfter),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れセッションクリーナー停止（コンテキストキャンセル）")
			return
		case <-c.stopCh:
			logger.Info("期限切れセッションクリーナー停止（シグナル受信）")
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// Stop はクリーナーを停止
func (c *ExpiredSessionCleaner) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

// cleanup は期限切れセッションを破棄
func (c *ExpiredSessionCleaner) cleanup() {
	log := logger.Get()
	log.Debug("期限切れセッションのクリーンアップ開始")

	count := c.sessionManager.CleanupExpired(c.expireAfter)
	if count > 0 {
		log.Info("期限切れセッションを破棄", zap.Int("count", count))
	} else {
		log.Debug("期限切れセッションなし")
	}
}
