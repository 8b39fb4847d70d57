package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/availability"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// AvailabilityStore は解決済みの日単位空き状況をインスタンス間で共有する
// スナップショット。エントリはTTL付きで、期限切れ後は再プローブされる
type AvailabilityStore struct {
	client *redis.Client
}

var _ availability.SnapshotStore = (*AvailabilityStore)(nil)

// NewAvailabilityStore は新しいAvailabilityStoreインスタンスを作成する
func NewAvailabilityStore(client *redis.Client) *AvailabilityStore {
	return &AvailabilityStore{client: client}
}

// GetStatus は指定券種・日付の状態をスナップショットから取得する
func (s *AvailabilityStore) GetStatus(ctx context.Context, ticketTypeID, date string) (availability.Status, error) {
	key := s.statusKey(ticketTypeID, date)
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return availability.StatusUnknown, ErrCacheMiss
		}
		return availability.StatusUnknown, fmt.Errorf("スナップショット取得に失敗: %w", err)
	}

	status := availability.Status(val)
	if !status.IsResolved() {
		return availability.StatusUnknown, ErrCacheMiss
	}
	return status, nil
}

// SetStatus は解決済みの状態をTTL付きで保存する
// 未解決の状態（loading/unknown）は共有する意味がないため保存しない
func (s *AvailabilityStore) SetStatus(ctx context.Context, ticketTypeID, date string, status availability.Status, ttl time.Duration) error {
	if !status.IsResolved() {
		return nil
	}
	key := s.statusKey(ticketTypeID, date)
	if err := s.client.Set(ctx, key, string(status), ttl).Err(); err != nil {
		return fmt.Errorf("スナップショット保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は指定券種・日付のスナップショットを無効化する
func (s *AvailabilityStore) Invalidate(ctx context.Context, ticketTypeID, date string) error {
	key := s.statusKey(ticketTypeID, date)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("スナップショット無効化に失敗: %w", err)
	}
	return nil
}

func (s *AvailabilityStore) statusKey(ticketTypeID, date string) string {
	return fmt.Sprintf("availability:%s:%s", ticketTypeID, date)
}
