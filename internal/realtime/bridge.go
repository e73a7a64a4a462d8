package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const bridgeChannel = "expediter:events"

// Publisher is what the services publish through; the plain Hub satisfies
// it for single-instance deployments and the Bridge for fleets.
type Publisher interface {
	Publish(event Event, roomNames ...string)
}

type envelope struct {
	Instance string   `json:"instance"`
	Rooms    []string `json:"rooms"`
	Event    Event    `json:"event"`
}

// Bridge mirrors hub traffic over a redis channel so sessions connected to
// other instances still receive events. Local delivery never waits on
// redis; a publish failure is logged and dropped like any other missed
// delivery.
type Bridge struct {
	hub      *Hub
	client   *redis.Client
	instance string
	log      *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewBridge(hub *Hub, addr, password string, log *zap.Logger) *Bridge {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(password),
	})
	return &Bridge{
		hub:      hub,
		client:   client,
		instance: uuid.NewString(),
		log:      log.Named("realtime.bridge"),
		done:     make(chan struct{}),
	}
}

func (b *Bridge) Publish(event Event, roomNames ...string) {
	b.hub.Publish(event, roomNames...)

	payload, err := json.Marshal(envelope{
		Instance: b.instance,
		Rooms:    roomNames,
		Event:    event,
	})
	if err != nil {
		b.log.Warn("encode event", zap.Error(err))
		return
	}
	if err := b.client.Publish(context.Background(), bridgeChannel, payload).Err(); err != nil {
		b.log.Warn("relay event", zap.String("event", event.Name), zap.Error(err))
	}
}

// Start begins relaying remote events into the local hub.
func (b *Bridge) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	sub := b.client.Subscribe(ctx, bridgeChannel)

	go func() {
		defer close(b.done)
		for msg := range sub.Channel() {
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn("decode event", zap.Error(err))
				continue
			}
			if env.Instance == b.instance {
				continue
			}
			b.hub.Publish(env.Event, env.Rooms...)
		}
	}()

	go func() {
		<-ctx.Done()
		_ = sub.Close()
	}()
}

func (b *Bridge) Stop() error {
	if b.cancel != nil {
		b.cancel()
		<-b.done
	}
	return b.client.Close()
}
