package hand_publisher

import (
	"context"
	"encoding/json"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"
	"time"

	"github.com/segmentio/kafka-go"
)

// HandSettled событие о рассчитанной раздаче
type HandSettled struct {
	HandID            string             `json:"hand_id"`
	UserID            string             `json:"user_id"`
	PaytableID        string             `json:"paytable_id"`
	Stopper           string             `json:"stopper"`
	TotalCards        int                `json:"total_cards"`
	Wagered           int                `json:"wagered"`
	Paid              int                `json:"paid"`
	Net               int                `json:"net"`
	CarterCashAwarded int                `json:"carter_cash_awarded"`
	Bets              []model.BetOutcome `json:"bets"`
	TsUnixMs          int64              `json:"ts_unix_ms"`
}

func NewHandSettled(res model.HandResult) HandSettled {
	return HandSettled{
		HandID:            res.ID.String(),
		UserID:            res.UserID,
		PaytableID:        res.PaytableID,
		Stopper:           res.Stopper.Label(),
		TotalCards:        res.TotalCards,
		Wagered:           res.Wagered,
		Paid:              res.Paid,
		Net:               res.Net,
		CarterCashAwarded: res.CarterCashAwarded,
		Bets:              res.Bets,
		TsUnixMs:          res.SettledAt.UnixMilli(),
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type publisher struct {
	writer messageWriter
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

func NewKafkaPublisher(w messageWriter) repository.HandPublisher {
	return &publisher{writer: w}
}

// PublishHandSettled сообщения одного игрока попадают в одну партицию
func (p *publisher) PublishHandSettled(ctx context.Context, res model.HandResult) error {
	b, err := json.Marshal(NewHandSettled(res))
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(res.UserID),
		Value: b,
		Time:  res.SettledAt,
	})
}

func (p *publisher) Close() error {
	return p.writer.Close()
}

type noop struct{}

// NewNoopPublisher используется, когда KAFKA_BROKERS не задан
func NewNoopPublisher() repository.HandPublisher { return noop{} }

func (noop) PublishHandSettled(context.Context, model.HandResult) error { return nil }

func (noop) Close() error { return nil }
