// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/launchpad/internal/config"
	"github.com/ManuGH/launchpad/internal/demo"
	"github.com/ManuGH/launchpad/internal/log"
	"github.com/rs/zerolog"
	"go.uber.org/goleak"
)

func reserveListenAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve listen addr: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func waitForListen(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return errors.New("listen timeout")
}

func testServerConfig(addr string) config.ServerConfig {
	return config.ServerConfig{
		ListenAddr:      addr,
		ReadTimeout:     1 * time.Second,
		WriteTimeout:    1 * time.Second,
		IdleTimeout:     10 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 2 * time.Second,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestNewManager_Validation(t *testing.T) {
	tests := []struct {
		name    string
		deps    Deps
		wantErr error
	}{
		{
			name: "valid",
			deps: Deps{Logger: log.WithComponent("test"), APIHandler: http.NotFoundHandler()},
		},
		{
			name:    "disabled logger",
			deps:    Deps{Logger: zerolog.Nop(), APIHandler: http.NotFoundHandler()},
			wantErr: ErrMissingLogger,
		},
		{
			name:    "missing handler",
			deps:    Deps{Logger: log.WithComponent("test")},
			wantErr: ErrMissingAPIHandler,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, err := NewManager(testServerConfig("127.0.0.1:0"), tt.deps)
			if tt.wantErr == nil {
				if err != nil || mgr == nil {
					t.Fatalf("NewManager() = %v, %v", mgr, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewManager() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestManager_StartStop_OK(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	addr := reserveListenAddr(t)
	metricsAddr := reserveListenAddr(t)
	deps := Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: okHandler(),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# HELP launchpad_test_metric\n"))
		}),
		MetricsAddr: metricsAddr,
	}

	mgr, err := NewManager(testServerConfig(addr), deps)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- mgr.Start(ctx)
	}()

	if err := waitForListen(addr, 2*time.Second); err != nil {
		t.Fatalf("API server did not start listening: %v", err)
	}
	if code, body := get(t, "http://"+addr); code != http.StatusOK || body != "OK" {
		t.Errorf("API GET = %d %q", code, body)
	}
	if code, body := get(t, "http://"+metricsAddr); code != http.StatusOK || !strings.Contains(body, "launchpad_test_metric") {
		t.Errorf("metrics GET = %d %q", code, body)
	}

	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

func TestManager_StartTwice(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	addr := reserveListenAddr(t)
	mgr, err := NewManager(testServerConfig(addr), Deps{Logger: log.WithComponent("test"), APIHandler: okHandler()})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() { errChan <- mgr.Start(ctx) }()
	if err := waitForListen(addr, 2*time.Second); err != nil {
		t.Fatalf("server did not start listening: %v", err)
	}

	if err := mgr.Start(ctx); !errors.Is(err, ErrManagerStarted) {
		t.Errorf("second Start() error = %v, want %v", err, ErrManagerStarted)
	}

	cancel()
	if err := <-errChan; err != nil {
		t.Errorf("Start() error = %v", err)
	}
}

func TestManager_Shutdown_TimesOut(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	requestStarted := make(chan struct{})
	releaseHandler := make(chan struct{})
	var once sync.Once
	handler := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(requestStarted) })
		select {
		case <-r.Context().Done():
		case <-releaseHandler:
		}
	})

	serverCfg := testServerConfig(reserveListenAddr(t))
	serverCfg.ShutdownTimeout = 100 * time.Millisecond

	mgr, err := NewManager(serverCfg, Deps{Logger: log.WithComponent("test"), APIHandler: handler})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- mgr.Start(ctx)
	}()

	if err := waitForListen(serverCfg.ListenAddr, 2*time.Second); err != nil {
		t.Fatalf("server did not start listening: %v", err)
	}

	requestDone := make(chan struct{})
	go func() {
		defer close(requestDone)
		client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://"+serverCfg.ListenAddr, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil {
			_ = resp.Body.Close()
		}
	}()

	select {
	case <-requestStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("expected in-flight request before shutdown")
	}

	cancel()

	select {
	case err := <-errChan:
		if err == nil {
			t.Fatal("expected shutdown timeout error, got nil")
		}
		if !strings.Contains(err.Error(), "shutdown errors") {
			t.Fatalf("unexpected shutdown error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}

	close(releaseHandler)

	select {
	case <-requestDone:
	case <-time.After(2 * time.Second):
		t.Fatal("blocked request did not terminate after shutdown")
	}
}

func TestManager_ShutdownEndsEventStreams(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	streams := demo.NewHandler(nil, func() demo.Options { return demo.Options{RefreshInterval: time.Hour} })
	serverCfg := testServerConfig(reserveListenAddr(t))
	serverCfg.ShutdownTimeout = 2 * time.Second

	mgr, err := NewManager(serverCfg, Deps{Logger: log.WithComponent("test"), APIHandler: streams.Routes()})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errChan := make(chan error, 1)
	go func() { errChan <- mgr.Start(ctx) }()

	if err := waitForListen(serverCfg.ListenAddr, 2*time.Second); err != nil {
		t.Fatalf("server did not start listening: %v", err)
	}

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + serverCfg.ListenAddr + "/stream?seed=1")
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if strings.HasPrefix(line, "event: timeline") {
			break
		}
	}

	start := time.Now()
	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Fatalf("shutdown with an open stream failed: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
	if elapsed := time.Since(start); elapsed >= serverCfg.ShutdownTimeout {
		t.Errorf("shutdown took %v, the stream held it to the deadline", elapsed)
	}

	if _, err := io.Copy(io.Discard, reader); err != nil {
		t.Errorf("stream did not end cleanly: %v", err)
	}
}

func TestManager_Shutdown_NotStarted(t *testing.T) {
	mgr, err := NewManager(testServerConfig("127.0.0.1:0"), Deps{Logger: log.WithComponent("test"), APIHandler: http.NotFoundHandler()})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	if err := mgr.Shutdown(context.Background()); !errors.Is(err, ErrManagerNotStarted) {
		t.Errorf("Shutdown() error = %v, want %v", err, ErrManagerNotStarted)
	}
}

func TestManager_HooksRunInReverseOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	addr := reserveListenAddr(t)
	mgr, err := NewManager(testServerConfig(addr), Deps{Logger: log.WithComponent("test"), APIHandler: okHandler()})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	var order []string
	hookErr := errors.New("close failed")
	mgr.RegisterShutdownHook("usage", func(context.Context) error {
		order = append(order, "usage")
		return nil
	})
	mgr.RegisterShutdownHook("cache", func(context.Context) error {
		order = append(order, "cache")
		return hookErr
	})
	mgr.RegisterShutdownHook("tracing", func(context.Context) error {
		order = append(order, "tracing")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() { errChan <- mgr.Start(ctx) }()
	if err := waitForListen(addr, 2*time.Second); err != nil {
		t.Fatalf("server did not start listening: %v", err)
	}
	cancel()

	err = <-errChan
	if !errors.Is(err, hookErr) {
		t.Errorf("Start() error = %v, want wrapped %v", err, hookErr)
	}
	if got := strings.Join(order, ","); got != "tracing,cache,usage" {
		t.Errorf("hook order = %s", got)
	}
}

func TestManager_PropagatesListenErrors(t *testing.T) {
	testServer := httptest.NewServer(http.NotFoundHandler())
	defer testServer.Close()

	mgr, err := NewManager(testServerConfig(testServer.Listener.Addr().String()), Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: http.NotFoundHandler(),
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := mgr.Start(ctx); err == nil {
		t.Error("Start() expected error for port conflict, got nil")
	}
}
