package booking

import (
	"strings"
	"unicode/utf8"
)

// Field はバリデーション対象のフィールドを表す
type Field string

const (
	FieldDate     Field = "date"
	FieldTimeSlot Field = "timeSlot"
	FieldTickets  Field = "tickets"
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldCapacity Field = "capacity"
)

// ValidationErrors はフィールドごとのエラーメッセージを保持する
// キーが存在する = そのフィールドにエラーがあることを表す疎なマップ
type ValidationErrors map[Field]string

// NewValidationErrors は空のエラーマップを作成する
func NewValidationErrors() ValidationErrors {
	return make(ValidationErrors)
}

// Set はフィールドのエラーを設定する
func (v ValidationErrors) Set(field Field, message string) {
	v[field] = message
}

// Clear は指定フィールドのエラーを消去する
func (v ValidationErrors) Clear(fields ...Field) {
	for _, f := range fields {
		delete(v, f)
	}
}

// Has はフィールドにエラーがあるかを返す
func (v ValidationErrors) Has(field Field) bool {
	_, ok := v[field]
	return ok
}

// IsValid はエラーが一つもないかを返す
func (v ValidationErrors) IsValid() bool {
	return len(v) == 0
}

// Copy はマップの複製を返す
func (v ValidationErrors) Copy() ValidationErrors {
	c := make(ValidationErrors, len(v))
	for k, val := range v {
		c[k] = val
	}
	return c
}

// ValidName は氏名がトリム後2文字以上かを返す
func ValidName(name string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(name)) >= 2
}

// ValidEmail はメールアドレスとして最低限の形式かを返す
// 厳密なRFC検証は行わない（確定判断はゲートウェイ側）
func ValidEmail(email string) bool {
	return strings.Contains(email, "@")
}
