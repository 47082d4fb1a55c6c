package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"MarketPulse/internal/model"
)

// DefaultSendTimeout bounds a single send to one subscriber.
const DefaultSendTimeout = 5 * time.Second

// MessageType tags every broadcast envelope.
const MessageType = "market_update"

var ErrStopped = errors.New("broadcaster stopped")

// Conn is a subscriber connection. Send must honour ctx cancellation.
type Conn interface {
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// Provider produces the overview pushed on every tick.
type Provider interface {
	Collect(ctx context.Context) (*model.MarketOverview, error)
}

// SnapshotStore keeps the last payload for late joiners and other processes.
type SnapshotStore interface {
	Store(ctx context.Context, payload []byte) error
	Latest(ctx context.Context) ([]byte, error)
}

type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Envelope is the wire format of a broadcast message.
type Envelope struct {
	Type string                `json:"type"`
	Data *model.MarketOverview `json:"data"`
}

// Options configures a Broadcaster. Zero values select defaults.
type Options struct {
	SendTimeout time.Duration
	Snapshots   SnapshotStore
}

// Broadcaster fans market overviews out to every connected subscriber.
type Broadcaster struct {
	provider    Provider
	snapshots   SnapshotStore
	sendTimeout time.Duration
	log         *zap.Logger

	mu       sync.RWMutex
	state    State
	handles  []*Handle
	last     []byte
	inflight sync.WaitGroup
	tickMu   sync.Mutex
}

func NewBroadcaster(provider Provider, opts Options, log *zap.Logger) *Broadcaster {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Broadcaster{
		provider:    provider,
		snapshots:   opts.Snapshots,
		sendTimeout: opts.SendTimeout,
		log:         log,
	}
}

// Start moves an idle broadcaster to running.
func (b *Broadcaster) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateIdle {
		b.state = StateRunning
	}
}

func (b *Broadcaster) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Count returns the number of live handles.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handles)
}

// Connect registers conn and returns its handle. The last payload, if any, is
// replayed to the new subscriber in the background.
func (b *Broadcaster) Connect(conn Conn) (*Handle, error) {
	h := newHandle(conn)

	b.mu.Lock()
	if b.state == StateStopped {
		b.mu.Unlock()
		return nil, ErrStopped
	}
	b.state = StateRunning
	b.handles = append(b.handles, h)
	last := b.last
	total := len(b.handles)
	b.mu.Unlock()

	b.log.Info("subscriber connected", zap.String("handle", h.id), zap.Int("subscribers", total))
	go b.replay(h, last)
	return h, nil
}

// replay sends the newest known payload to h unless a delivery got there first.
// Holding tickMu orders the replay against Tick and Relay.
func (b *Broadcaster) replay(h *Handle, last []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), b.sendTimeout)
	defer cancel()

	if last == nil && b.snapshots != nil {
		var err error
		if last, err = b.snapshots.Latest(ctx); err != nil {
			b.log.Warn("snapshot lookup failed", zap.Error(err))
			return
		}
	}

	b.tickMu.Lock()
	defer b.tickMu.Unlock()
	if h.delivered.Load() || h.closed.Load() {
		return
	}
	b.mu.RLock()
	if b.last != nil {
		last = b.last
	}
	b.mu.RUnlock()
	if last == nil {
		return
	}
	if err := h.conn.Send(ctx, last); err != nil {
		b.log.Warn("replay failed", zap.String("handle", h.id), zap.Error(err))
		b.Disconnect(h)
	}
}

// Disconnect removes h and closes its connection. Repeated calls are no-ops.
func (b *Broadcaster) Disconnect(h *Handle) {
	if h == nil {
		return
	}
	b.mu.Lock()
	removed := false
	for i, cur := range b.handles {
		if cur == h {
			b.handles = append(b.handles[:i:i], b.handles[i+1:]...)
			removed = true
			break
		}
	}
	total := len(b.handles)
	b.mu.Unlock()

	h.close()
	if removed {
		b.log.Info("subscriber disconnected", zap.String("handle", h.id), zap.Int("subscribers", total))
	}
}

// Tick collects one overview and sends it to every handle connected when the
// send starts. Send failures drop the failing handle only; a provider failure
// aborts the tick before anything is sent.
func (b *Broadcaster) Tick(ctx context.Context) error {
	if !b.begin() {
		return ErrStopped
	}
	defer b.inflight.Done()
	b.tickMu.Lock()
	defer b.tickMu.Unlock()

	ov, err := b.provider.Collect(ctx)
	if err != nil {
		return fmt.Errorf("broadcast tick: %w", err)
	}
	payload, err := json.Marshal(Envelope{Type: MessageType, Data: ov})
	if err != nil {
		return fmt.Errorf("broadcast tick: marshal: %w", err)
	}
	if err := b.deliver(ctx, payload); err != nil {
		return err
	}
	if b.snapshots != nil {
		if err := b.snapshots.Store(ctx, payload); err != nil {
			b.log.Warn("snapshot store failed", zap.Error(err))
		}
	}
	return nil
}

// Relay delivers a payload produced elsewhere, such as by another process.
func (b *Broadcaster) Relay(ctx context.Context, payload []byte) error {
	if !b.begin() {
		return ErrStopped
	}
	defer b.inflight.Done()
	b.tickMu.Lock()
	defer b.tickMu.Unlock()
	return b.deliver(ctx, payload)
}

// begin registers an in-flight delivery unless the broadcaster is stopped.
func (b *Broadcaster) begin() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateStopped {
		return false
	}
	b.state = StateRunning
	b.inflight.Add(1)
	return true
}

func (b *Broadcaster) deliver(ctx context.Context, payload []byte) error {
	b.mu.Lock()
	b.last = payload
	targets := make([]*Handle, len(b.handles))
	copy(targets, b.handles)
	b.mu.Unlock()

	dropped := 0
	for _, h := range targets {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("broadcast interrupted: %w", err)
		}
		sendCtx, cancel := context.WithTimeout(ctx, b.sendTimeout)
		err := h.conn.Send(sendCtx, payload)
		cancel()
		if err != nil {
			b.log.Warn("dropping subscriber", zap.String("handle", h.id), zap.Error(err))
			b.Disconnect(h)
			dropped++
			continue
		}
		h.delivered.Store(true)
	}
	b.log.Debug("broadcast delivered",
		zap.Int("targets", len(targets)),
		zap.Int("dropped", dropped),
		zap.Int("bytes", len(payload)))
	return nil
}

// Stop refuses new subscribers, waits for an in-flight tick until ctx is done,
// then closes every handle. It returns ctx's error if the wait was cut short.
func (b *Broadcaster) Stop(ctx context.Context) error {
	b.mu.Lock()
	if b.state == StateStopped {
		b.mu.Unlock()
		return nil
	}
	b.state = StateStopped
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	var waitErr error
	select {
	case <-done:
	case <-ctx.Done():
		waitErr = fmt.Errorf("drain broadcaster: %w", ctx.Err())
	}

	b.mu.Lock()
	handles := b.handles
	b.handles = nil
	b.mu.Unlock()
	for _, h := range handles {
		h.close()
	}
	b.log.Info("broadcaster stopped", zap.Int("closed", len(handles)))
	return waitErr
}
