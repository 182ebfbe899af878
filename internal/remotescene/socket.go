package remotescene

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/vk/riglab/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Default timeouts of a socket connection.
const (
	DefaultConnectTimeout = 15 * time.Second
	DefaultCallTimeout    = 10 * time.Second
)

var (
	// ErrTimeout is returned when the bridge does not answer in time.
	ErrTimeout = errors.New("remotescene: timed out waiting for bridge")
	// ErrNotConnected is returned for calls on a disconnected socket.
	ErrNotConnected = errors.New("remotescene: socket is not connected")
)

type dialOptions struct {
	namespace      string
	insecure       bool
	connectTimeout time.Duration
	callTimeout    time.Duration
}

// DialOption customises Dial.
type DialOption func(*dialOptions)

// WithNamespace selects the socket.io namespace of the bridge.
func WithNamespace(ns string) DialOption {
	return func(o *dialOptions) { o.namespace = ns }
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify() DialOption {
	return func(o *dialOptions) { o.insecure = true }
}

// WithConnectTimeout bounds the initial connection.
func WithConnectTimeout(d time.Duration) DialOption {
	return func(o *dialOptions) { o.connectTimeout = d }
}

// WithCallTimeout bounds every request/reply exchange.
func WithCallTimeout(d time.Duration) DialOption {
	return func(o *dialOptions) { o.callTimeout = d }
}

// bridgeSocket is the part of a socket.io socket used to exchange calls.
type bridgeSocket interface {
	Connected() bool
	Id() string
	Emit(ev string, args ...any) error
	Once(ev types.EventName, listeners ...types.Listener) error
	RemoveAllListeners(ev types.EventName) bool
}

// SocketCaller is a Caller speaking to a bridge over socket.io.
type SocketCaller struct {
	io         bridgeSocket
	disconnect func()
	timeout    time.Duration
	logger     *slog.Logger
}

var (
	_ Caller       = (*SocketCaller)(nil)
	_ bridgeSocket = (*socket.Socket)(nil)
)

// Dial connects to the bridge at rawURL and waits for the connection to be
// established.
func Dial(ctx context.Context, rawURL string, opts ...DialOption) (*SocketCaller, error) {
	o := dialOptions{connectTimeout: DefaultConnectTimeout, callTimeout: DefaultCallTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	logger := ctxlog.FromContext(ctx).With("host", "remotescene", "url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	sio := socket.DefaultOptions()
	sio.SetPath(parsedURL.Path)
	if o.insecure {
		logger.Warn("Skipping TLS certificate verification")
		sio.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sio.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sio)
	io := manager.Socket(o.namespace, sio)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to scene bridge", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("Connection attempt failed", "error", err)
		connectChan <- err
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketCaller{io: io, disconnect: func() { io.Disconnect() }, timeout: o.callTimeout, logger: logger}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(o.connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("%w: no connection after %v", ErrTimeout, o.connectTimeout)
	}
}

// Call emits the request and waits for its reply event.
func (c *SocketCaller) Call(ctx context.Context, req Request) (Reply, error) {
	if !c.io.Connected() {
		return Reply{}, ErrNotConnected
	}
	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		reply Reply
		err   error
	}
	done := make(chan result, 1)
	event := types.EventName(ReplyEvent(req.ID))
	if err := c.io.Once(event, func(data ...any) {
		if len(data) == 0 {
			done <- result{err: fmt.Errorf("empty reply on %s", event)}
			return
		}
		reply, err := decodeReply(data[0])
		done <- result{reply: reply, err: err}
	}); err != nil {
		return Reply{}, fmt.Errorf("listening on %s: %w", event, err)
	}

	c.logger.Debug("Emitting scene call", "op", req.Op, "id", req.ID)
	if err := c.io.Emit(EventCall, req); err != nil {
		c.io.RemoveAllListeners(event)
		return Reply{}, fmt.Errorf("emitting %s: %w", EventCall, err)
	}

	select {
	case res := <-done:
		return res.reply, res.err
	case <-opCtx.Done():
		// A reply arriving later has nobody waiting for it.
		c.io.RemoveAllListeners(event)
		if ctx.Err() != nil {
			return Reply{}, ctx.Err()
		}
		return Reply{}, fmt.Errorf("%w: no reply to %s after %v", ErrTimeout, req.Op, c.timeout)
	}
}

// Close disconnects from the bridge.
func (c *SocketCaller) Close() error {
	c.logger.Info("Disconnecting from scene bridge", "sid", c.io.Id())
	c.disconnect()
	return nil
}

// decodeReply converts a decoded event payload into a Reply.
func decodeReply(data any) (Reply, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Reply{}, fmt.Errorf("re-encoding reply: %w", err)
	}
	var reply Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return Reply{}, fmt.Errorf("decoding reply: %w", err)
	}
	return reply, nil
}
