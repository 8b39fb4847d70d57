package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSessionCleaner はSessionCleanerのモック
type MockSessionCleaner struct {
	mock.Mock
}

func (m *MockSessionCleaner) CleanupExpired(olderThan time.Duration) int {
	args := m.Called(olderThan)
	return args.Int(0)
}

func TestNewExpiredSessionCleaner(t *testing.T) {
	mockManager := new(MockSessionCleaner)
	interval := 1 * time.Minute
	expireAfter := 30 * time.Minute

	cleaner := NewExpiredSessionCleaner(mockManager, interval, expireAfter)

	assert.NotNil(t, cleaner)
	assert.Equal(t, interval, cleaner.interval)
	assert.Equal(t, expireAfter, cleaner.expireAfter)
	assert.NotNil(t, cleaner.stopCh)
	assert.NotNil(t, cleaner.doneCh)
}

func TestExpiredSessionCleaner_Cleanup(t *testing.T) {
	t.Run("正常にクリーンアップが実行される", func(t *testing.T) {
		mockManager := new(MockSessionCleaner)
		mockManager.On("CleanupExpired", 30*time.Minute).Return(3)

		cleaner := NewExpiredSessionCleaner(mockManager, 1*time.Minute, 30*time.Minute)
		cleaner.cleanup()

		mockManager.AssertExpectations(t)
	})

	t.Run("破棄対象がない場合も正常に動作する", func(t *testing.T) {
		mockManager := new(MockSessionCleaner)
		mockManager.On("CleanupExpired", 30*time.Minute).Return(0)

		cleaner := NewExpiredSessionCleaner(mockManager, 1*time.Minute, 30*time.Minute)
		cleaner.cleanup()

		mockManager.AssertExpectations(t)
	})
}

func TestExpiredSessionCleaner_StartStop(t *testing.T) {
	t.Run("開始と停止が正常に動作する", func(t *testing.T) {
		mockManager := new(MockSessionCleaner)
		mockManager.On("CleanupExpired", 100*time.Millisecond).Return(0).Maybe()

		cleaner := NewExpiredSessionCleaner(mockManager, 50*time.Millisecond, 100*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go cleaner.Start(ctx)

		time.Sleep(120 * time.Millisecond)

		cleaner.Stop()

		select {
		case <-cleaner.doneCh:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("cleaner did not stop in time")
		}
	})

	t.Run("コンテキストキャンセルで停止する", func(t *testing.T) {
		mockManager := new(MockSessionCleaner)
		mockManager.On("CleanupExpired", 100*time.Millisecond).Return(0).Maybe()

		cleaner := NewExpiredSessionCleaner(mockManager, 50*time.Millisecond, 100*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			cleaner.Start(ctx)
			close(done)
		}()

		time.Sleep(80 * time.Millisecond)
		cancel()

		select {
		case <-done:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("cleaner did not stop after context cancel")
		}
	})
}
