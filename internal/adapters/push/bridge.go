package push

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rideshare-app/rideshare-client/internal/platform/logger"
	"github.com/rideshare-app/rideshare-client/internal/ports/out/gateway"
)

// ErrUnavailable means push cannot be used on this device (not a capable device
// or permission denied). Callers proceed on polling alone.
var ErrUnavailable = errors.New("push notifications unavailable")

// Bridge registers a device token with the backend and forwards incoming
// notification events to the lifecycle controller as opaque refresh signals.
// Notification payloads are never interpreted here.
type Bridge struct {
	gw    gateway.Client
	log   logger.Logger
	wsURL string

	// Capable mirrors the physical-device check; PermissionGranted the platform
	// notification permission. Both default from config.
	Capable           bool
	PermissionGranted bool

	// ReconnectInterval paces reconnects after a dropped subscription.
	ReconnectInterval time.Duration

	token   string
	refresh chan struct{}
}

func NewBridge(gw gateway.Client, wsURL string, capable bool, log logger.Logger) *Bridge {
	return &Bridge{
		gw:                gw,
		log:               log,
		wsURL:             wsURL,
		Capable:           capable,
		PermissionGranted: true,
		ReconnectInterval: 15 * time.Second,
		token:             uuid.NewString(),
		refresh:           make(chan struct{}, 1),
	}
}

// Token is the opaque device identifier sent to the backend.
func (b *Bridge) Token() string { return b.token }

// Refresh delivers one conflated signal per burst of incoming notifications.
func (b *Bridge) Refresh() <-chan struct{} { return b.refresh }

// Register sends the device token to the backend, associated with the current
// credential. Called idempotently on every bootstrap. Unavailability is not an
// error condition for the rest of the system: the caller logs and proceeds
// without push-driven refresh.
func (b *Bridge) Register(ctx context.Context) error {
	if !b.Capable {
		b.log.Info("push unavailable: not a push-capable device")
		return ErrUnavailable
	}
	if !b.PermissionGranted {
		b.log.Info("push unavailable: notification permission denied")
		return ErrUnavailable
	}
	if err := b.gw.UpdatePushToken(ctx, b.token); err != nil {
		b.log.Warn("push token registration failed", logger.Error(err))
		return err
	}
	b.log.Info("push token registered")
	return nil
}

// Run maintains the notify subscription until ctx is done, reconnecting on a
// fixed interval. Connection errors are logged, never surfaced.
func (b *Bridge) Run(ctx context.Context) {
	if !b.Capable || !b.PermissionGranted || b.wsURL == "" {
		return
	}
	for {
		if err := b.listen(ctx); err != nil && ctx.Err() == nil {
			b.log.Warn("notify subscription lost", logger.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(b.ReconnectInterval):
		}
	}
}

func (b *Bridge) listen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.wsURL, nil)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
		select {
		case b.refresh <- struct{}{}:
		default:
		}
	}
}
