package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/apperror"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/metrics"
)

const (
	DefaultLockTimeout   = 10 * time.Second
	DefaultSurchargeRate = 0.03
	DefaultCurrency      = "USD"
	// DefaultStaleProcessingAfter は決済処理中のまま放置された決済を失敗とみなすまでの時間
	DefaultStaleProcessingAfter = time.Hour
)

// roomLockKey は客室ごとの予約ロックのキー
func roomLockKey(roomID string) string {
	return "reservation-lock:" + roomID
}

// ReservationService は予約のライフサイクルを管理する
type ReservationService struct {
	roomRepo        room.Repository
	reservationRepo reservation.Repository
	paymentRepo     payment.Repository
	availability    *AvailabilityService
	lockManager     LockManager
	settler         payment.Settler
	notifications   ReservationNotifier
	metrics         *metrics.Metrics
	clock           Clock
	lockTimeout     time.Duration
	staleProcessing time.Duration
	surchargeBP     int64
	currency        string
}

type ReservationOption func(*ReservationService)

func WithLockTimeout(d time.Duration) ReservationOption {
	return func(s *ReservationService) { s.lockTimeout = d }
}

// WithStaleProcessingAfter は決済処理中のまま残った決済を巻き戻すまでの時間を設定する
func WithStaleProcessingAfter(d time.Duration) ReservationOption {
	return func(s *ReservationService) { s.staleProcessing = d }
}

func WithSurchargeRate(rate float64) ReservationOption {
	return func(s *ReservationService) { s.surchargeBP = money.RateToBasisPoints(rate) }
}

func WithCurrency(currency string) ReservationOption {
	return func(s *ReservationService) { s.currency = currency }
}

func WithClock(clock Clock) ReservationOption {
	return func(s *ReservationService) { s.clock = clock }
}

// WithNotifications は確定・キャンセル時の通知先を設定する
func WithNotifications(n ReservationNotifier) ReservationOption {
	return func(s *ReservationService) { s.notifications = n }
}

func WithMetrics(m *metrics.Metrics) ReservationOption {
	return func(s *ReservationService) { s.metrics = m }
}

func NewReservationService(
	roomRepo room.Repository,
	reservationRepo reservation.Repository,
	paymentRepo payment.Repository,
	lockManager LockManager,
	settler payment.Settler,
	opts ...ReservationOption,
) *ReservationService {
	s := &ReservationService{
		roomRepo:        roomRepo,
		reservationRepo: reservationRepo,
		paymentRepo:     paymentRepo,
		availability:    NewAvailabilityService(roomRepo, reservationRepo),
		lockManager:     lockManager,
		settler:         settler,
		clock:           systemClock,
		lockTimeout:     DefaultLockTimeout,
		staleProcessing: DefaultStaleProcessingAfter,
		surchargeBP:     money.RateToBasisPoints(DefaultSurchargeRate),
		currency:        DefaultCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateReservationInput struct {
	UserID   string
	RoomID   string
	CheckIn  string
	CheckOut string
	Guests   int
	Note     string
}

func (in CreateReservationInput) parse() (checkIn, checkOut time.Time, err error) {
	if in.UserID == "" {
		return checkIn, checkOut, reservation.ErrUserIDRequired
	}
	if in.RoomID == "" {
		return checkIn, checkOut, reservation.ErrRoomIDRequired
	}
	if checkIn, err = reservation.ParseDate(in.CheckIn); err != nil {
		return checkIn, checkOut, err
	}
	if checkOut, err = reservation.ParseDate(in.CheckOut); err != nil {
		return checkIn, checkOut, err
	}
	if !checkOut.After(checkIn) {
		return checkIn, checkOut, reservation.ErrInvalidStayRange
	}
	if in.Guests < 1 {
		return checkIn, checkOut, reservation.ErrInvalidGuests
	}
	return checkIn, checkOut, nil
}

// CreateReservationResult は予約作成の結果
// Unavailable が true の場合は予約も決済も作成されていない
type CreateReservationResult struct {
	Reservation       *reservation.Reservation
	Payment           *payment.Payment
	Unavailable       bool
	NextAvailableFrom *time.Time
}

// CreateReservation は客室ロックの下で空室を再確認し、予約と決済を作成する
func (s *ReservationService) CreateReservation(ctx context.Context, input CreateReservationInput) (*CreateReservationResult, error) {
	checkIn, checkOut, err := input.parse()
	if err != nil {
		s.metrics.RecordReservation("invalid")
		return nil, err
	}

	rm, err := s.roomRepo.GetByID(ctx, input.RoomID)
	if err != nil {
		s.metrics.RecordReservation("invalid")
		return nil, err
	}
	if !rm.CanAccommodate(input.Guests) {
		s.metrics.RecordReservation("invalid")
		return nil, room.ErrCapacityExceeded
	}

	key := roomLockKey(rm.ID)
	waitStart := time.Now()
	ok, err := s.lockManager.Acquire(ctx, key, s.lockTimeout)
	if err != nil {
		s.metrics.RecordReservation("error")
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	if !ok {
		s.metrics.RecordLockWait("timeout", time.Since(waitStart))
		s.metrics.RecordReservation("lock_timeout")
		return nil, ErrLockTimeout
	}
	s.metrics.RecordLockWait("acquired", time.Since(waitStart))
	defer func() {
		if err := s.lockManager.Release(context.WithoutCancel(ctx), key); err != nil {
			logger.Error("ロック解放に失敗しました", zap.String("key", key), zap.Error(err))
		}
	}()

	available, err := s.availability.IsAvailable(ctx, rm.ID, checkIn, checkOut)
	if err != nil {
		s.metrics.RecordReservation("error")
		return nil, err
	}
	nights := reservation.CountNights(checkIn, checkOut)
	if !available {
		next, err := s.availability.nextAvailable(ctx, rm.ID, checkIn, nights)
		if err != nil {
			s.metrics.RecordReservation("error")
			return nil, err
		}
		s.metrics.RecordReservation("unavailable")
		return &CreateReservationResult{Unavailable: true, NextAvailableFrom: next}, nil
	}

	quote := payment.NewQuote(nights, rm.PricePerNight, s.surchargeBP)
	res := reservation.NewReservation(rm.ID, input.UserID, checkIn, checkOut, input.Guests, quote.BaseAmount, input.Note)
	if err := res.Validate(); err != nil {
		s.metrics.RecordReservation("invalid")
		return nil, err
	}
	if err := s.reservationRepo.Create(ctx, res); err != nil {
		s.metrics.RecordReservation("error")
		return nil, fmt.Errorf("予約作成に失敗: %w", err)
	}

	p := payment.NewPayment(res.ID, quote, s.currency)
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		s.compensate(ctx, res)
		s.metrics.RecordReservation("error")
		return nil, fmt.Errorf("決済作成に失敗: %w", err)
	}

	s.metrics.RecordReservation("success")
	s.metrics.RecordTransition(string(reservation.StatusPending))
	logger.Info("予約を作成しました",
		zap.String("reservation_id", res.ID),
		zap.String("room_id", rm.ID),
		zap.String("user_id", res.UserID),
		zap.Int("nights", nights),
		zap.String("amount", p.Amount.String()),
	)
	return &CreateReservationResult{Reservation: res, Payment: p}, nil
}

// compensate は決済の書き込みに失敗した予約をキャンセル済みに戻す
func (s *ReservationService) compensate(ctx context.Context, res *reservation.Reservation) {
	if err := res.Cancel(); err != nil {
		logger.Error("予約の補償に失敗しました", zap.String("reservation_id", res.ID), zap.Error(err))
		return
	}
	if err := s.reservationRepo.Update(context.WithoutCancel(ctx), res); err != nil {
		logger.Error("予約の補償に失敗しました", zap.String("reservation_id", res.ID), zap.Error(err))
		return
	}
	s.metrics.RecordTransition(string(reservation.StatusCancelled))
}

// abandonPayment は完了を保存できなかった決済を失敗にする。失敗してもログのみ
func (s *ReservationService) abandonPayment(ctx context.Context, paymentID string) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err == nil {
		if err = p.Fail(); err == nil {
			err = s.paymentRepo.Update(ctx, p)
		}
	}
	if err != nil {
		logger.Error("決済を失敗にできませんでした", zap.String("payment_id", paymentID), zap.Error(err))
	}
}

// SettlementResult は決済処理の結果
type SettlementResult struct {
	Succeeded   bool
	Reason      string
	Payment     *payment.Payment
	Reservation *reservation.Reservation
}

// Err は決済が失敗した場合に ErrSettlementFailed を返す
func (r *SettlementResult) Err() error {
	if r.Succeeded {
		return nil
	}
	return payment.ErrSettlementFailed
}

// SettlePayment は決済を確定する。決済処理中はロックを保持しない
// 成功すれば予約は確定し、失敗すれば予約はキャンセルされる
func (s *ReservationService) SettlePayment(ctx context.Context, paymentID string) (*SettlementResult, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	res, err := s.reservationRepo.GetByID(ctx, p.ReservationID)
	if err != nil {
		return nil, err
	}
	if !p.IsPending() {
		return nil, payment.ErrPaymentNotPending
	}
	if !res.IsPending() {
		return nil, reservation.ErrReservationNotPending
	}

	if err := p.StartProcessing(); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	outcome, err := s.settler.Settle(ctx, p)
	if err != nil {
		logger.Warn("決済処理でエラーが発生しました", zap.String("payment_id", p.ID), zap.Error(err))
		outcome = payment.Outcome{Succeeded: false, Reason: err.Error()}
	}

	// 決済中に予約が変更されている可能性があるため再取得する
	ctx = context.WithoutCancel(ctx)
	res, err = s.reservationRepo.GetByID(ctx, p.ReservationID)
	if err != nil {
		return nil, err
	}
	if outcome.Succeeded && !res.IsPending() {
		outcome = payment.Outcome{Succeeded: false, Reason: "決済中に予約が変更されました"}
	}

	if outcome.Succeeded {
		return s.completeSettlement(ctx, p, res, outcome)
	}
	return s.failSettlement(ctx, p, res, outcome.Reason)
}

// completeSettlement は予約の確定を先に保存し、その後で決済を完了にする
// 確定前にキャンセルされていれば決済失敗として扱い、完了後にキャンセルされていれば返金する
func (s *ReservationService) completeSettlement(ctx context.Context, p *payment.Payment, res *reservation.Reservation, outcome payment.Outcome) (*SettlementResult, error) {
	if err := res.Confirm(); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.Update(ctx, res); err != nil {
		if !errors.Is(err, reservation.ErrOptimisticLockConflict) {
			return nil, err
		}
		latest, err := s.reservationRepo.GetByID(ctx, res.ID)
		if err != nil {
			return nil, err
		}
		return s.failSettlement(ctx, p, latest, "決済中に予約が変更されました")
	}

	ref := outcome.TransactionRef
	if ref == "" {
		ref = "TXN-" + uuid.New().String()
	}
	if err := p.Complete(ref, s.clock()); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Update(ctx, p); err != nil {
		s.compensate(ctx, res)
		s.abandonPayment(ctx, p.ID)
		return nil, fmt.Errorf("決済の完了に失敗: %w", err)
	}

	latest, err := s.reservationRepo.GetByID(ctx, res.ID)
	if err != nil {
		return nil, err
	}
	if latest.Status == reservation.StatusCancelled {
		refunded, err := s.refund(ctx, p)
		if err != nil {
			return nil, err
		}
		s.metrics.RecordSettlement("failed")
		logger.Info("決済中に予約がキャンセルされたため返金しました",
			zap.String("payment_id", p.ID),
			zap.String("reservation_id", res.ID),
		)
		return &SettlementResult{Succeeded: false, Reason: "決済中に予約がキャンセルされました", Payment: refunded, Reservation: latest}, nil
	}

	s.metrics.RecordSettlement("succeeded")
	s.metrics.RecordTransition(string(reservation.StatusConfirmed))
	logger.Info("決済が完了しました",
		zap.String("payment_id", p.ID),
		zap.String("reservation_id", res.ID),
		zap.String("transaction_ref", ref),
	)
	if s.notifications != nil {
		s.notifications.ReservationConfirmed(ctx, latest, p)
	}
	return &SettlementResult{Succeeded: true, Payment: p, Reservation: latest}, nil
}

func (s *ReservationService) failSettlement(ctx context.Context, p *payment.Payment, res *reservation.Reservation, reason string) (*SettlementResult, error) {
	if err := p.Fail(); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Update(ctx, p); err != nil {
		if !errors.Is(err, payment.ErrOptimisticLockConflict) {
			return nil, err
		}
		// 巻き戻し処理が先に失敗にしていればそれを結果とする
		latest, getErr := s.paymentRepo.GetByID(ctx, p.ID)
		if getErr != nil {
			return nil, getErr
		}
		if latest.Status != payment.StatusFailed {
			return nil, err
		}
		p = latest
	}
	if res.IsPending() {
		if err := res.Cancel(); err != nil {
			return nil, err
		}
		if err := s.reservationRepo.Update(ctx, res); err != nil {
			if !errors.Is(err, reservation.ErrOptimisticLockConflict) {
				return nil, err
			}
			if res, err = s.reservationRepo.GetByID(ctx, res.ID); err != nil {
				return nil, err
			}
		} else {
			s.metrics.RecordTransition(string(reservation.StatusCancelled))
		}
	}

	s.metrics.RecordSettlement("failed")
	logger.Info("決済が失敗したため予約をキャンセルしました",
		zap.String("payment_id", p.ID),
		zap.String("reservation_id", res.ID),
		zap.String("reason", reason),
	)
	return &SettlementResult{Succeeded: false, Reason: reason, Payment: p, Reservation: res}, nil
}

// CancelReservation は予約をキャンセルし、完了済みの決済は返金済みにする
func (s *ReservationService) CancelReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := res.Cancel(); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.Update(ctx, res); err != nil {
		return nil, err
	}
	s.metrics.RecordTransition(string(reservation.StatusCancelled))

	if err := s.refundIfCompleted(ctx, res.ID); err != nil {
		return nil, err
	}
	if s.notifications != nil {
		s.notifications.ReservationCancelled(ctx, res)
	}
	return res, nil
}

func (s *ReservationService) refundIfCompleted(ctx context.Context, reservationID string) error {
	p, err := s.paymentRepo.GetByReservationID(ctx, reservationID)
	if errors.Is(err, payment.ErrPaymentNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("決済取得に失敗: %w", err)
	}
	if p.Status != payment.StatusCompleted {
		return nil
	}
	_, err = s.refund(ctx, p)
	return err
}

// refund は完了済みの決済を返金済みにする
// 同時に返金された場合は再取得した決済をそのまま返す
func (s *ReservationService) refund(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	if err := p.Refund(); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Update(ctx, p); err != nil {
		if !errors.Is(err, payment.ErrOptimisticLockConflict) {
			return nil, err
		}
		latest, getErr := s.paymentRepo.GetByID(ctx, p.ID)
		if getErr != nil {
			return nil, getErr
		}
		if latest.Status != payment.StatusRefunded {
			return nil, err
		}
		return latest, nil
	}
	logger.Info("決済を返金済みにしました", zap.String("payment_id", p.ID))
	return p, nil
}

// CheckIn はチェックインする。当日（UTC）がチェックイン日以降である必要がある
func (s *ReservationService) CheckIn(ctx context.Context, id string) (*reservation.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := res.CheckIn(s.clock()); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.Update(ctx, res); err != nil {
		return nil, err
	}
	s.metrics.RecordTransition(string(reservation.StatusCheckedIn))
	return res, nil
}

func (s *ReservationService) CheckOut(ctx context.Context, id string) (*reservation.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := res.CheckOut(); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.Update(ctx, res); err != nil {
		return nil, err
	}
	s.metrics.RecordTransition(string(reservation.StatusCheckedOut))
	return res, nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, id)
}

func (s *ReservationService) GetUserReservations(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.reservationRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *ReservationService) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *ReservationService) GetPaymentByReservation(ctx context.Context, reservationID string) (*payment.Payment, error) {
	if _, err := s.reservationRepo.GetByID(ctx, reservationID); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByReservationID(ctx, reservationID)
}

// RollbackStalePending は決済されないまま olderThan 以上経過した予約を決済失敗と同様に戻す
// 決済処理中の決済は最終更新から staleProcessing（olderThan より短い場合は olderThan）経過したものだけを対象にする
func (s *ReservationService) RollbackStalePending(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.reservationRepo.ListStalePending(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("未決済予約の取得に失敗: %w", err)
	}

	processingAfter := max(s.staleProcessing, olderThan)
	rolledBack := 0
	for _, res := range stale {
		if err := s.rollbackOne(ctx, res, processingAfter); err != nil {
			if apperror.Retryable(err) || apperror.Is(err, apperror.KindInvalidState) {
				logger.Debug("未決済予約の巻き戻しをスキップしました", zap.String("reservation_id", res.ID), zap.Error(err))
				continue
			}
			logger.Error("未決済予約の巻き戻しに失敗しました", zap.String("reservation_id", res.ID), zap.Error(err))
			continue
		}
		rolledBack++
	}
	return rolledBack, nil
}

// rollbackOne は予約のキャンセルを先に保存し、その後で決済を失敗にする
// 決済処理の確定と競合した場合は予約の更新が楽観的ロックで失敗し、決済には触れない
func (s *ReservationService) rollbackOne(ctx context.Context, res *reservation.Reservation, processingAfter time.Duration) error {
	p, err := s.paymentRepo.GetByReservationID(ctx, res.ID)
	switch {
	case errors.Is(err, payment.ErrPaymentNotFound):
		p = nil
	case err != nil:
		return err
	case p.Status == payment.StatusProcessing:
		if time.Since(p.UpdatedAt) < processingAfter {
			return payment.ErrPaymentNotPending
		}
		logger.Warn("決済処理中のまま放置された決済を失敗にします",
			zap.String("payment_id", p.ID),
			zap.Time("updated_at", p.UpdatedAt),
		)
	case !p.IsPending():
		return payment.ErrPaymentNotPending
	}

	if err := res.Cancel(); err != nil {
		return err
	}
	if err := s.reservationRepo.Update(ctx, res); err != nil {
		return err
	}
	s.metrics.RecordTransition(string(reservation.StatusCancelled))

	if p != nil {
		if err := p.Fail(); err != nil {
			return err
		}
		if err := s.paymentRepo.Update(ctx, p); err != nil {
			if !errors.Is(err, payment.ErrOptimisticLockConflict) {
				return err
			}
			// 決済処理側が先に失敗にしている
			logger.Debug("決済は既に更新されています", zap.String("payment_id", p.ID))
		}
	}
	logger.Info("未決済の予約をキャンセルしました", zap.String("reservation_id", res.ID))
	return nil
}
