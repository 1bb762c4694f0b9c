package server

import (
	"errors"
	"io"
	"reflect"
	"syscall"
	"testing"
	"time"

	"BodyMetrics/pkg/config"
	xhttp "BodyMetrics/pkg/http"
	applogger "BodyMetrics/pkg/logger"
)

type closer struct {
	name   string
	closed bool
	err    error
	order  *[]string
}

func (c *closer) Close() error {
	c.closed = true
	if c.order != nil {
		*c.order = append(*c.order, c.name)
	}
	return c.err
}

func newTestApp(cache *closer) *App {
	return newTestAppWith(nil, nil, cache)
}

func newTestAppWith(publisher, store, cache *closer) *App {
	cfg := &config.Config{}
	cfg.Server.ShutdownTimeout = 2 * time.Second
	srv := xhttp.NewServer(nil,
		xhttp.WithHost("127.0.0.1"),
		xhttp.WithPort(0),
		xhttp.WithMetrics("", nil, nil),
	)
	var pub, st, c io.Closer
	if publisher != nil {
		pub = publisher
	}
	if store != nil {
		st = store
	}
	if cache != nil {
		c = cache
	}
	return New(cfg, applogger.Nop(), srv, nil, nil, pub, st, c)
}

func TestRunStopsOnSignal(t *testing.T) {
	c := &closer{}
	app := newTestApp(c)

	done := make(chan error, 1)
	go func() { done <- app.Run() }()
	app.signals <- syscall.SIGTERM

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after signal")
	}
	if !c.closed {
		t.Fatalf("cache was not closed on shutdown")
	}
}

func TestShutdownReportsCloseErrors(t *testing.T) {
	boom := errors.New("redis gone")
	app := newTestApp(&closer{err: boom})
	app.signals <- syscall.SIGTERM
	if err := app.Run(); !errors.Is(err, boom) {
		t.Fatalf("expected close error, got %v", err)
	}
}

func TestShutdownTimeoutDefault(t *testing.T) {
	app := New(nil, nil, nil, nil, nil, nil, nil, nil)
	if app.shutdownTimeout() != 15*time.Second {
		t.Fatalf("unexpected default %v", app.shutdownTimeout())
	}
}

func TestShutdownClosesBackendsInOrder(t *testing.T) {
	var order []string
	pub := &closer{name: "publisher", order: &order}
	store := &closer{name: "store", order: &order}
	cache := &closer{name: "cache", order: &order}
	app := newTestAppWith(pub, store, cache)

	app.signals <- syscall.SIGTERM
	if err := app.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []string{"publisher", "store", "cache"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("close order %v, want %v", order, want)
	}
}
