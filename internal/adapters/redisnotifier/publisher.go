package redisnotifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/ports"
)

const (
	// DefaultChannel is the pub/sub channel signal events are published on.
	DefaultChannel   = "signals"
	latestKeyPrefix  = "signalwatch:latest:"
	defaultLatestTTL = 24 * time.Hour
)

// Config configures the Redis publisher.
type Config struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
	Channel  string
	Logger   ports.Logger
}

// Publisher implements ports.Notifier by publishing signal events to a Redis
// channel and keeping the latest event per symbol under a key.
type Publisher struct {
	client  *goredis.Client
	channel string
	logger  ports.Logger
}

// eventPayload is the JSON form of a signal event. Undefined statistics are null.
type eventPayload struct {
	ID         string   `json:"id"`
	CycleID    string   `json:"cycle_id"`
	Symbol     string   `json:"symbol"`
	Timeframe  string   `json:"timeframe"`
	Exchange   string   `json:"exchange"`
	Action     string   `json:"action"`
	Buy        bool     `json:"buy"`
	Sell       bool     `json:"sell"`
	PrevBuy    bool     `json:"prev_buy"`
	PrevSell   bool     `json:"prev_sell"`
	Close      *float64 `json:"close"`
	RSI        *float64 `json:"rsi"`
	MACD       *float64 `json:"macd"`
	SignalLine *float64 `json:"signal_line"`
	BarTime    string   `json:"bar_time"`
	DetectedAt string   `json:"detected_at"`
}

// New creates a new Redis publisher and pings the server.
func New(cfg Config) (*Publisher, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Redis publisher")
	}
	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w: %w", cfg.Addr, ports.ErrConnectionFailed, err)
	}

	cfg.Logger.Info(ctx, "Connected to Redis", map[string]interface{}{"addr": cfg.Addr, "channel": channel})
	return &Publisher{client: client, channel: channel, logger: cfg.Logger}, nil
}

// Notify publishes evt and stores it as the latest event of its symbol.
func (p *Publisher) Notify(ctx context.Context, evt *domain.SignalEvent) error {
	body, err := EncodeEvent(evt)
	if err != nil {
		return fmt.Errorf("encode event %s failed: %w: %w", evt.ID, ports.ErrPublishFailed, err)
	}

	pipe := p.client.TxPipeline()
	pipe.Publish(ctx, p.channel, body)
	pipe.Set(ctx, LatestKey(evt.Symbol), body, defaultLatestTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish event %s failed: %w: %w", evt.ID, ports.ErrPublishFailed, err)
	}

	p.logger.Debug(ctx, "Signal event published", map[string]interface{}{"eventID": evt.ID, "channel": p.channel})
	return nil
}

// Close closes the underlying client.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// LatestKey returns the key holding the latest event of symbol.
func LatestKey(symbol string) string {
	return latestKeyPrefix + strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}

// EncodeEvent returns the JSON payload published for evt.
func EncodeEvent(evt *domain.SignalEvent) ([]byte, error) {
	return json.Marshal(eventPayload{
		ID:         evt.ID,
		CycleID:    evt.CycleID,
		Symbol:     evt.Symbol,
		Timeframe:  evt.Timeframe,
		Exchange:   evt.Exchange,
		Action:     string(evt.Action),
		Buy:        evt.Current.Buy,
		Sell:       evt.Current.Sell,
		PrevBuy:    evt.Previous.Buy,
		PrevSell:   evt.Previous.Sell,
		Close:      optional(evt.Close),
		RSI:        optional(evt.RSI),
		MACD:       optional(evt.MACD),
		SignalLine: optional(evt.SignalLine),
		BarTime:    evt.BarTime.UTC().Format(time.RFC3339),
		DetectedAt: evt.DetectedAt.UTC().Format(time.RFC3339Nano),
	})
}

func optional(v float64) *float64 {
	if !domain.IsDefined(v) {
		return nil
	}
	return &v
}
