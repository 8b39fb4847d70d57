package ticket

// TicketType は入場券種別エンティティを表す
// ゲートウェイから取得した後は不変で、再取得時に全体が置き換わる
type TicketType struct {
	ID        string
	Price     int // 最小通貨単位（セント）
	Name      map[string]string
	GroupSize *int // 団体券の場合の人数
}

// DisplayName は指定ロケールの名称を返す
// 該当ロケールがない場合は英語、それもなければ任意の値にフォールバックする
func (t *TicketType) DisplayName(locale string) string {
	if name, ok := t.Name[locale]; ok {
		return name
	}
	if name, ok := t.Name["en"]; ok {
		return name
	}
	for _, name := range t.Name {
		return name
	}
	return t.ID
}

// IsGroup は団体券かを返す
func (t *TicketType) IsGroup() bool {
	return t.GroupSize != nil && *t.GroupSize > 1
}

// Validate は券種の検証を行う
func (t *TicketType) Validate() error {
	if t.ID == "" {
		return ErrTicketTypeIDRequired
	}
	if t.Price < 0 {
		return ErrInvalidPrice
	}
	if t.GroupSize != nil && *t.GroupSize < 1 {
		return ErrInvalidGroupSize
	}
	return nil
}

// FindByID は券種一覧からIDで検索する（見つからない場合はnil）
func FindByID(types []*TicketType, id string) *TicketType {
	for _, t := range types {
		if t.ID == id {
			return t
		}
	}
	return nil
}
