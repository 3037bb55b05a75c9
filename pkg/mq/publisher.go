package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/jae1jeong/meeting-resv-sub000/config"
)

// 预订事件 routing key
const (
	EventBookingCreated = "booking.created"
	EventBookingUpdated = "booking.updated"
	EventBookingDeleted = "booking.deleted"
)

// BookingEvent 预订变更事件载荷
// 下游（通知推送、日历缓存失效）按 routing key 订阅
type BookingEvent struct {
	BookingID string `json:"booking_id"`
	RoomID    string `json:"room_id"`
	CreatorID string `json:"creator_id"`
	Date      string `json:"date"` // YYYY-MM-DD（民用日期，KST）
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	OccurAt   string `json:"occur_at"` // RFC3339
}

// Publisher RabbitMQ 事件发布器封装
// 连接失败时由调用方降级为 nil，业务不受影响
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewPublisher 建立 RabbitMQ 连接并声明 topic exchange
func NewPublisher(cfg *config.MQConfig, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ 连接失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("打开 RabbitMQ channel 失败: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("声明 exchange 失败: %w", err)
	}

	logger.Info("RabbitMQ 连接成功", zap.String("exchange", cfg.Exchange))

	return &Publisher{conn: conn, ch: ch, exchange: cfg.Exchange, logger: logger}, nil
}

// PublishBookingEvent 发布预订变更事件（尽力而为，失败仅记录日志）
func (p *Publisher) PublishBookingEvent(ctx context.Context, routingKey string, event *BookingEvent) {
	if p == nil {
		return
	}

	event.OccurAt = time.Now().Format(time.RFC3339)

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("序列化预订事件失败", zap.Error(err))
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(pubCtx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		p.logger.Warn("发布预订事件失败",
			zap.String("routing_key", routingKey),
			zap.String("booking_id", event.BookingID),
			zap.Error(err),
		)
	}
}

// Close 关闭 channel 与连接
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
