package session

import "errors"

var (
	// ErrSessionNotFound はセッションが存在しない場合のエラー
	ErrSessionNotFound = errors.New("セッションが見つかりません")
)
