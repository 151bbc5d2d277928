// Package publisher relays game events to NATS JetStream so that services
// outside the process can follow a game.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/setrush/go/internal/game/events"
)

// Config holds the JetStream connection and stream settings.
type Config struct {
	URL            string
	StreamName     string
	SubjectPrefix  string // events go to <prefix>.<type>
	MaxAge         time.Duration
	MaxReconnects  int
	ReconnectWait  time.Duration
	PublishTimeout time.Duration
	Buffer         int
}

func DefaultConfig() Config {
	return Config{
		URL:            nats.DefaultURL,
		StreamName:     "SETRUSH_EVENTS",
		SubjectPrefix:  "setrush.events",
		MaxAge:         24 * time.Hour,
		MaxReconnects:  -1,
		ReconnectWait:  2 * time.Second,
		PublishTimeout: 5 * time.Second,
		Buffer:         1000,
	}
}

// StreamPublisher is the part of jetstream.JetStream the publisher needs.
type StreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher is an events.Sink that queues events and publishes them from Run.
type Publisher struct {
	js     StreamPublisher
	nc     *nats.Conn
	config Config
	queue  chan events.Event
}

var _ events.Sink = (*Publisher)(nil)

// New returns a publisher over an existing JetStream handle.
func New(js StreamPublisher, config Config) *Publisher {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = DefaultConfig().PublishTimeout
	}
	return &Publisher{
		js:     js,
		config: config,
		queue:  make(chan events.Event, config.Buffer),
	}
}

// Connect dials NATS, makes sure the event stream exists and returns a
// publisher that owns the connection.
func Connect(ctx context.Context, config Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("setrush"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	if err := ensureStream(ctx, js, config); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	p := New(js, config)
	p.nc = nc
	return p, nil
}

func ensureStream(ctx context.Context, js jetstream.JetStream, config Config) error {
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      config.StreamName,
		Subjects:  []string{config.SubjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    config.MaxAge,
	})
	if err != nil {
		return err
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("stream info: %w", err)
	}
	log.Info().
		Str("stream", info.Config.Name).
		Strs("subjects", info.Config.Subjects).
		Uint64("messages", info.State.Msgs).
		Msg("JetStream stream ready")
	return nil
}

// Subject returns the subject ev is published on.
func (p *Publisher) Subject(ev events.Event) string {
	return p.config.SubjectPrefix + "." + string(ev.Type)
}

// Publish implements events.Sink. It never blocks; events are dropped while
// the queue is full.
func (p *Publisher) Publish(ev events.Event) {
	select {
	case p.queue <- ev:
	default:
		log.Warn().Str("event_type", string(ev.Type)).Msg("publish queue full, dropping event")
	}
}

// Run publishes queued events until ctx is cancelled, then flushes whatever
// is still queued.
func (p *Publisher) Run(ctx context.Context) {
	log.Info().Str("subject_prefix", p.config.SubjectPrefix).Msg("event publisher started")

	// Publishes are bounded by PublishTimeout rather than ctx.
	sendCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			p.flush(sendCtx)
			log.Info().Msg("event publisher stopped")
			return
		case ev := <-p.queue:
			p.send(sendCtx, ev)
		}
	}
}

func (p *Publisher) flush(ctx context.Context) {
	for {
		select {
		case ev := <-p.queue:
			p.send(ctx, ev)
		default:
			return
		}
	}
}

func (p *Publisher) send(ctx context.Context, ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(ev.Type)).Msg("failed to marshal event")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	subject := p.Subject(ev)
	ack, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(ev.ID))
	if err != nil {
		log.Error().
			Err(err).
			Str("subject", subject).
			Str("event_id", ev.ID).
			Msg("failed to publish event")
		return
	}

	log.Debug().
		Str("subject", subject).
		Str("event_id", ev.ID).
		Uint64("sequence", ack.Sequence).
		Msg("event published")
}

// Close drains the NATS connection if the publisher owns one.
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	return nil
}
