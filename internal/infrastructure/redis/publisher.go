package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/notification"
)

// DefaultEventChannel は予約イベントを流すチャンネル名
const DefaultEventChannel = "reservation-events"

// Publisher は予約イベントをRedis Pub/Subへ配信する
type Publisher struct {
	client  *redis.Client
	channel string
}

// NewPublisher は新しいPublisherを作成する。channel が空の場合は既定のチャンネルを使う
func NewPublisher(client *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultEventChannel
	}
	return &Publisher{client: client, channel: channel}
}

func (p *Publisher) NotifyConfirmed(ctx context.Context, s notification.Snapshot) error {
	return p.publish(ctx, notification.EventConfirmed, s)
}

func (p *Publisher) NotifyCancelled(ctx context.Context, s notification.Snapshot) error {
	return p.publish(ctx, notification.EventCancelled, s)
}

func (p *Publisher) publish(ctx context.Context, event notification.EventType, s notification.Snapshot) error {
	payload, err := json.Marshal(notification.NewMessage(event, s))
	if err != nil {
		return fmt.Errorf("通知の直列化に失敗: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("通知の配信に失敗: %w", err)
	}
	return nil
}

var _ notification.Notifier = (*Publisher)(nil)
