package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/notification"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/metrics"
)

// NotificationService は予約の確定・キャンセルを通知先へ配信する
// 通知の失敗はログに記録し、呼び出し元には返さない
type NotificationService struct {
	notifiers   []notification.Notifier
	roomRepo    room.Repository
	paymentRepo payment.Repository
	metrics     *metrics.Metrics
}

func NewNotificationService(roomRepo room.Repository, paymentRepo payment.Repository, m *metrics.Metrics, notifiers ...notification.Notifier) *NotificationService {
	return &NotificationService{notifiers: notifiers, roomRepo: roomRepo, paymentRepo: paymentRepo, metrics: m}
}

// ReservationConfirmed は決済完了後の確定通知を送る
func (s *NotificationService) ReservationConfirmed(ctx context.Context, res *reservation.Reservation, p *payment.Payment) {
	snap := s.snapshot(ctx, res, p)
	for _, n := range s.notifiers {
		s.record(notification.EventConfirmed, res.ID, n.NotifyConfirmed(ctx, snap))
	}
}

// ReservationCancelled はキャンセル通知を送る
func (s *NotificationService) ReservationCancelled(ctx context.Context, res *reservation.Reservation) {
	snap := s.snapshot(ctx, res, nil)
	for _, n := range s.notifiers {
		s.record(notification.EventCancelled, res.ID, n.NotifyCancelled(ctx, snap))
	}
}

func (s *NotificationService) snapshot(ctx context.Context, res *reservation.Reservation, p *payment.Payment) notification.Snapshot {
	snap := notification.Snapshot{
		Reservation: *res,
		RequesterID: res.UserID,
		OccurredAt:  time.Now().UTC(),
	}
	if rm, err := s.roomRepo.GetByID(ctx, res.RoomID); err == nil {
		snap.Room = rm
	}
	if p == nil {
		if found, err := s.paymentRepo.GetByReservationID(ctx, res.ID); err == nil {
			p = found
		}
	}
	if p != nil {
		c := *p
		snap.Payment = &c
	}
	return snap
}

func (s *NotificationService) record(event notification.EventType, reservationID string, err error) {
	if err != nil {
		s.metrics.RecordNotification(string(event), "failed")
		logger.Warn("予約通知の送信に失敗しました",
			zap.String("event", string(event)),
			zap.String("reservation_id", reservationID),
			zap.Error(err),
		)
		return
	}
	s.metrics.RecordNotification(string(event), "sent")
}
