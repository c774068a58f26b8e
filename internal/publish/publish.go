// Package publish sends generated scripts to a socket.io endpoint, one event
// per script.
package publish

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/bnkrebuild/internal/ctxlog"
)

// DefaultTimeout bounds the initial connection.
const DefaultTimeout = 15 * time.Second

// ErrNotConnected is returned when publishing on a closed or dropped client.
var ErrNotConnected = errors.New("socket.io client is not connected")

// Options configures the connection.
type Options struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
	// Timeout bounds the initial connection. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Script is one generated playback script.
type Script struct {
	Bank  uint32
	ID    uint32
	Class string
	Text  string
}

// Sink receives generated scripts.
type Sink interface {
	Publish(ctx context.Context, s Script) error
	Close() error
}

// Publisher is a Sink backed by a connected socket.io client.
type Publisher struct {
	io     *socket.Socket
	event  string
	logger *slog.Logger
}

// Connect dials the endpoint and waits until the namespace is joined, the
// connection fails, ctx ends or the timeout expires.
func Connect(ctx context.Context, o Options) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("url", o.URL, "namespace", o.Namespace)
	if o.Event == "" {
		return nil, errors.New("publish event name is required")
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}

	parsedURL, err := url.Parse(o.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("publish URL %q needs a scheme and a host", o.URL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if o.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(o.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Publisher connected.", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("Publisher connect error.", "error", err)
		select {
		case connectChan <- err:
		default:
		}
	})

	logger.Debug("Publisher connecting.")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &Publisher{io: io, event: o.Event, logger: logger}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(o.Timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", o.Timeout)
	}
}

// Publish emits s as one event.
func (p *Publisher) Publish(ctx context.Context, s Script) error {
	if p == nil || p.io == nil || !p.io.Connected() {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p.logger.Debug("Publishing script.", "event", p.event, "bank_id", s.Bank, "object_id", s.ID)
	return p.io.Emit(p.event, Payload(s))
}

// Close disconnects the client.
func (p *Publisher) Close() error {
	if p == nil || p.io == nil {
		return nil
	}
	p.logger.Info("Publisher disconnecting.", "sid", p.io.Id())
	p.io.Disconnect()
	return nil
}

// Payload is the event body sent for s.
func Payload(s Script) map[string]any {
	return map[string]any{
		"root":  fmt.Sprintf("%d/%d", s.Bank, s.ID),
		"bank":  s.Bank,
		"id":    s.ID,
		"class": s.Class,
		"text":  s.Text,
	}
}
