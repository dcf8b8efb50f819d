package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/notification"
)

// LogNotifier は予約イベントを構造化ログとして出力する
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier は新しいLogNotifierを作成する
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyConfirmed(ctx context.Context, s notification.Snapshot) error {
	n.write(notification.EventConfirmed, s)
	return nil
}

func (n *LogNotifier) NotifyCancelled(ctx context.Context, s notification.Snapshot) error {
	n.write(notification.EventCancelled, s)
	return nil
}

func (n *LogNotifier) write(event notification.EventType, s notification.Snapshot) {
	m := notification.NewMessage(event, s)
	n.log.Info("予約通知",
		zap.String("event", string(m.Event)),
		zap.String("reservation_id", m.ReservationID),
		zap.String("requester_id", m.RequesterID),
		zap.String("room_id", m.RoomID),
		zap.String("check_in_date", m.CheckInDate),
		zap.String("check_out_date", m.CheckOutDate),
		zap.String("status", m.Status),
		zap.String("payment_status", m.PaymentStatus),
		zap.String("amount", m.Amount),
	)
}

var _ notification.Notifier = (*LogNotifier)(nil)
