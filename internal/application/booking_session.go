package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/availability"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/domain/timeslot"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/gateway"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/pkg/metrics"
)

// BookingSession は一人の来場者の予約フロー全体の状態を保持する
//
// 選択状態（券種・日付・時間枠・予約者情報）はこのセッションを通じてのみ
// 変更される。段階は 券種 → 日付 → 時間枠 → 予約者情報 の順だが、利用者は
// 完了済みの任意の段階へ戻れる。上位の選択が変わると下位の選択は無効化され、
// 逆方向（日付画面へ戻るだけ等）では上位の状態を壊さない
type BookingSession struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	gw         gateway.Gateway
	prefetcher *availability.Prefetcher
	cache      *availability.Cache
	metrics    *metrics.Metrics // nil可

	ticketTypes    []*ticket.TicketType
	selectedTicket *booking.SelectedTicket
	selectedDate   *time.Time
	selectedSlot   *timeslot.TimeSlot
	slots          []*timeslot.TimeSlot
	customer       booking.CustomerInfo
	errs           booking.ValidationErrors
}

// NewBookingSession は新しい予約セッションを作成する
func NewBookingSession(id string, gw gateway.Gateway, pf *availability.Prefetcher, m *metrics.Metrics) *BookingSession {
	return &BookingSession{
		ID:         id,
		CreatedAt:  time.Now(),
		gw:         gw,
		prefetcher: pf,
		cache:      availability.NewCache(),
		metrics:    m,
		errs:       booking.NewValidationErrors(),
	}
}

// LoadTicketTypes は券種一覧を取得する（セッション内で一度だけ、以降はキャッシュ）
func (s *BookingSession) LoadTicketTypes(ctx context.Context) ([]*ticket.TicketType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.ticketTypes) > 0 {
		return s.copyTicketTypesLocked(), nil
	}

	types, err := s.gw.GetTicketTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("券種一覧の読み込みに失敗: %w", err)
	}
	s.ticketTypes = types
	return s.copyTicketTypesLocked(), nil
}

// RefreshTicketTypes は券種一覧を丸ごと再取得する
// 一覧から消えた券種の空き状況バケットは無効化する。選択中の券種が消えた
// 場合も選択は保持され、合計金額の計算で0として扱われる（一時的な不整合を許容）
func (s *BookingSession) RefreshTicketTypes(ctx context.Context) ([]*ticket.TicketType, error) {
	types, err := s.gw.GetTicketTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("券種一覧の再取得に失敗: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]struct{}, len(types))
	for _, t := range types {
		known[t.ID] = struct{}{}
	}
	for _, old := range s.ticketTypes {
		if _, ok := known[old.ID]; !ok {
			s.cache.InvalidateTicketType(old.ID)
		}
	}

	s.ticketTypes = types
	return s.copyTicketTypesLocked(), nil
}

// SetTicket はチケット選択を設定する
// 数量>0は既存の選択を丸ごと置き換え、数量≤0は選択を解除する。券種IDが
// 変わった場合は日付・時間枠・時間枠一覧を無効化する（空き状況キャッシュの
// 他券種バケットはそのまま残る）
func (s *BookingSession) SetTicket(ticketTypeID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previousID := ""
	if s.selectedTicket != nil {
		previousID = s.selectedTicket.TicketTypeID
	}

	if quantity <= 0 {
		s.selectedTicket = nil
	} else {
		s.selectedTicket = &booking.SelectedTicket{TicketTypeID: ticketTypeID, Quantity: quantity}
	}

	changed := s.selectedTicket == nil && previousID != "" ||
		s.selectedTicket != nil && previousID != ticketTypeID
	if changed {
		s.selectedDate = nil
		s.selectedSlot = nil
		s.slots = nil
	}

	s.errs.Clear(booking.FieldTickets, booking.FieldCapacity)
}

// SetDate は来場日を設定する
// 時間枠は日付に紐付くため、日付変更は常に時間枠の選択と一覧を無効化する
func (s *BookingSession) SetDate(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	s.selectedDate = &d
	s.selectedSlot = nil
	s.slots = nil

	s.errs.Clear(booking.FieldDate)
}

// SetTimeSlot は時間枠を設定する
// 券種と日付が未選択の状態では設定できない
func (s *BookingSession) SetTimeSlot(slot *timeslot.TimeSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectedTicket == nil {
		return booking.ErrTicketNotSelected
	}
	if s.selectedDate == nil {
		return booking.ErrDateNotSelected
	}

	s.selectedSlot = slot
	s.errs.Clear(booking.FieldTimeSlot, booking.FieldCapacity)
	return nil
}

// SelectTimeSlotByID は読み込み済みの時間枠一覧からIDで選択する
func (s *BookingSession) SelectTimeSlotByID(slotID string) error {
	s.mu.Lock()
	slot := timeslot.FindByID(s.slots, slotID)
	s.mu.Unlock()

	if slot == nil {
		return timeslot.ErrTimeSlotNotFound
	}
	return s.SetTimeSlot(slot)
}

// SetCustomerInfo は予約者情報へパッチをマージする
// バリデーションは送信時にまとめて行う（入力のたびには行わない）
func (s *BookingSession) SetCustomerInfo(patch booking.CustomerInfoPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.customer = s.customer.Apply(patch)
	s.errs.Clear(booking.FieldName, booking.FieldEmail)
}

// LoadTimeSlots は現在の券種・日付の組に対する時間枠一覧を取得する
// どちらかが未選択の場合は一覧を空にするだけで何もしない。取得結果に
// 選択中の時間枠が含まれなくなっていた場合は黙って選択を解除する
// （エラーではなくUI側で再選択を促す）
func (s *BookingSession) LoadTimeSlots(ctx context.Context) ([]*timeslot.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectedTicket == nil || s.selectedDate == nil {
		s.slots = nil
		return nil, nil
	}

	ticketTypeID := s.selectedTicket.TicketTypeID
	date := availability.FormatDate(*s.selectedDate)

	slots, err := s.gw.GetTimeSlots(ctx, ticketTypeID, date)
	if err != nil {
		if gateway.IsNotFound(err) || isNoTimeSlots(err) {
			slots = nil
		} else {
			return nil, fmt.Errorf("時間枠の読み込みに失敗: %w", err)
		}
	}

	s.slots = slots
	if s.selectedSlot != nil && timeslot.FindByID(slots, s.selectedSlot.ID) == nil {
		logger.Debug("選択中の時間枠が一覧から消えたため選択を解除",
			zap.String("session_id", s.ID),
			zap.String("slot_id", s.selectedSlot.ID),
		)
		s.selectedSlot = nil
	}
	return s.copyTimeSlotsLocked(), nil
}

// LoadMonthAvailability は指定券種・月の空き状況を先読みして月ビューを返す
//
// loadingマーカーの設定は同期的に行われ、プローブの結果書き込みより必ず先行
// する。プローブ中のセッションロックは保持しないため、月ロードの飛行中でも
// 券種変更などの操作は妨げられない。飛行中に券種が切り替わった場合、古い
// プローブの結果は旧券種のバケットに書き込まれるだけで無害（選択されて
// いないIDの下に残る）。これは意図して受け入れている競合で、世代カウンター
// による厳密化は行っていない
func (s *BookingSession) LoadMonthAvailability(ctx context.Context, ticketTypeID string, year int, month time.Month) map[string]availability.Status {
	s.prefetcher.LoadMonth(ctx, s.cache, ticketTypeID, year, month)
	return s.cache.Month(ticketTypeID, year, month)
}

// IsAvailabilityLoading は月ロードが飛行中かを返す
func (s *BookingSession) IsAvailabilityLoading() bool {
	return s.prefetcher.IsLoading()
}

// AvailabilityStatus は単日の状態を返す
func (s *BookingSession) AvailabilityStatus(ticketTypeID, date string) availability.Status {
	return s.cache.Get(ticketTypeID, date)
}

// Validate は予約の全フィールドを横断検証する
//
// 各setterは自分の担当するエラーキーを消すだけで、全ルールがまとめて
// 評価されるのはここだけ。エラーマップは毎回丸ごと置き換えられる
func (s *BookingSession) Validate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateLocked()
}

func (s *BookingSession) validateLocked() bool {
	errs := booking.NewValidationErrors()

	if s.selectedDate == nil {
		errs.Set(booking.FieldDate, "来場日を選択してください")
	}
	if s.selectedTicket == nil || s.selectedTicket.Quantity < 1 {
		errs.Set(booking.FieldTickets, "チケットを1枚以上選択してください")
	}
	if s.selectedSlot == nil {
		errs.Set(booking.FieldTimeSlot, "時間枠を選択してください")
	}
	if !booking.ValidName(s.customer.Name) {
		errs.Set(booking.FieldName, "氏名は2文字以上で入力してください")
	}
	if !booking.ValidEmail(s.customer.Email) {
		errs.Set(booking.FieldEmail, "有効なメールアドレスを入力してください")
	}
	if s.selectedSlot != nil && s.selectedTicket != nil && !s.selectedSlot.HasCapacityFor(s.selectedTicket.Quantity) {
		errs.Set(booking.FieldCapacity,
			fmt.Sprintf("選択した時間枠の残り枠は%d枠です", s.selectedSlot.AvailableSlots))
	}

	s.errs = errs
	return errs.IsValid()
}

// CreateBooking は検証を通過した選択内容でゲートウェイに予約を作成する
//
// 検証失敗時は即座にErrValidationFailedを返す。ゲートウェイ失敗時は状態を
// 一切変更せずエラーを返すため、利用者は入力し直さずに再試行できる。
// 成功時はセッションを完全に初期化してから作成済み予約を返す
func (s *BookingSession) CreateBooking(ctx context.Context) (*booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.validateLocked() {
		s.countBooking("validation_failed")
		return nil, booking.ErrValidationFailed
	}

	req := &booking.Request{
		TimeSlotID:    s.selectedSlot.ID,
		TicketTypeID:  s.selectedTicket.TicketTypeID,
		Quantity:      s.selectedTicket.Quantity,
		TotalPrice:    booking.TotalPrice(s.selectedTicket, s.ticketTypes),
		CustomerName:  s.customer.Name,
		CustomerEmail: s.customer.Email,
	}

	b, err := s.gw.CreateBooking(ctx, req)
	if err != nil {
		s.countBooking("gateway_error")
		logger.Error("予約作成に失敗",
			zap.String("session_id", s.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("予約の作成に失敗しました: %w", err)
	}

	s.countBooking("success")
	logger.Info("予約を作成",
		zap.String("session_id", s.ID),
		zap.String("booking_id", b.ID),
		zap.Int("quantity", req.Quantity),
		zap.Int("total_price", req.TotalPrice),
	)

	s.resetLocked()
	return b, nil
}

// Reset は選択状態・時間枠一覧・空き状況キャッシュ・検証エラーを全て消去する
// 空き状況キャッシュ全体が消えるのはこの操作だけ
func (s *BookingSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *BookingSession) resetLocked() {
	s.selectedTicket = nil
	s.selectedDate = nil
	s.selectedSlot = nil
	s.slots = nil
	s.customer = booking.CustomerInfo{}
	s.errs = booking.NewValidationErrors()
	s.cache.Clear()
}

// Summary は現在の選択から予約サマリーを導出する
func (s *BookingSession) Summary() booking.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return booking.BuildSummary(s.selectedTicket, s.ticketTypes, s.selectedDate, s.selectedSlot, s.customer)
}

// SelectedTicket は選択中のチケットの複製を返す（未選択はnil）
func (s *BookingSession) SelectedTicket() *booking.SelectedTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedTicket == nil {
		return nil
	}
	t := *s.selectedTicket
	return &t
}

// SelectedDate は選択中の来場日の複製を返す（未選択はnil）
func (s *BookingSession) SelectedDate() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedDate == nil {
		return nil
	}
	d := *s.selectedDate
	return &d
}

// SelectedTimeSlot は選択中の時間枠の複製を返す（未選択はnil）
func (s *BookingSession) SelectedTimeSlot() *timeslot.TimeSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedSlot == nil {
		return nil
	}
	slot := *s.selectedSlot
	return &slot
}

// CustomerInfo は予約者情報の複製を返す
func (s *BookingSession) CustomerInfo() booking.CustomerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// ValidationErrors は検証エラーマップの複製を返す
func (s *BookingSession) ValidationErrors() booking.ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs.Copy()
}

// TimeSlots は読み込み済みの時間枠一覧の複製を返す
func (s *BookingSession) TimeSlots() []*timeslot.TimeSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyTimeSlotsLocked()
}

// TicketTypes は読み込み済みの券種一覧の複製を返す
func (s *BookingSession) TicketTypes() []*ticket.TicketType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyTicketTypesLocked()
}

func (s *BookingSession) copyTicketTypesLocked() []*ticket.TicketType {
	out := make([]*ticket.TicketType, len(s.ticketTypes))
	copy(out, s.ticketTypes)
	return out
}

func (s *BookingSession) copyTimeSlotsLocked() []*timeslot.TimeSlot {
	out := make([]*timeslot.TimeSlot, len(s.slots))
	copy(out, s.slots)
	return out
}

func (s *BookingSession) countBooking(status string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func isNoTimeSlots(err error) bool {
	return errors.Is(err, gateway.ErrNoTimeSlots)
}
