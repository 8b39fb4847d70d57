package ticket

import "errors"

// Ticket ドメインのエラー定義
var (
	ErrTicketTypeNotFound   = errors.New("券種が見つかりません")
	ErrTicketTypeIDRequired = errors.New("券種IDは必須です")
	ErrInvalidPrice         = errors.New("価格は0以上である必要があります")
	ErrInvalidGroupSize     = errors.New("団体人数は1以上である必要があります")
)
