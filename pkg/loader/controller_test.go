package loader

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/adaptik3d/adaptik/pkg/catalog"
	"github.com/adaptik3d/adaptik/pkg/quality"
	"github.com/adaptik3d/adaptik/pkg/whttp"
)

func testDescriptor(url string, size int64) catalog.Descriptor {
	return catalog.Descriptor{
		ID:            "robot-medium",
		Name:          "Robot",
		URL:           url,
		FileSizeBytes: size,
		Quality:       quality.Medium,
	}
}

func noRetryController(t *testing.T, cfg Config) *Controller {
	t.Helper()
	client, err := whttp.NewClient(whttp.ClientConfig{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	cfg.Client = client
	ctrl, err := NewController(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return ctrl
}

func TestLoadSuccess(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 100*1024)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer ts.Close()

	var mu sync.Mutex
	var events []string
	var got []byte
	processed := false

	ctrl := noRetryController(t, Config{
		GracePeriod: 50 * time.Millisecond,
		Processor: func(ctx context.Context, d catalog.Descriptor, data []byte) error {
			processed = true
			return nil
		},
		Callbacks: Callbacks{
			OnLoadStart: func(d catalog.Descriptor) {
				mu.Lock()
				events = append(events, "start")
				mu.Unlock()
			},
			OnProgress: func(p Progress) {
				mu.Lock()
				if len(events) == 0 || events[len(events)-1] != "progress" {
					events = append(events, "progress")
				}
				mu.Unlock()
			},
			OnLoadComplete: func(d catalog.Descriptor, data []byte) {
				mu.Lock()
				events = append(events, "complete")
				got = data
				mu.Unlock()
			},
		},
	})

	if err := ctrl.Load(context.Background(), testDescriptor(ts.URL, int64(len(payload)))); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, payload) {
		t.Errorf("payload mismatch: got %d bytes, want %d", len(got), len(payload))
	}
	if !processed {
		t.Errorf("processor never ran")
	}
	if len(events) != 3 || events[0] != "start" || events[1] != "progress" || events[2] != "complete" {
		t.Errorf("callback order = %v", events)
	}
	if ctrl.State() != StateReady {
		t.Errorf("state right after Load = %s, want ready", ctrl.State())
	}

	// The indicator resets to pending after the grace period.
	deadline := time.Now().Add(time.Second)
	for ctrl.State() != StatePending {
		if time.Now().After(deadline) {
			t.Fatalf("state never settled, stuck in %s", ctrl.State())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLoadFailureAndRetry(t *testing.T) {
	var mu sync.Mutex
	failures := 1
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if failures > 0 {
			failures--
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("model data"))
	}))
	defer ts.Close()

	errs := 0
	ctrl := noRetryController(t, Config{
		GracePeriod: time.Hour, // keep ready observable
		Callbacks: Callbacks{
			OnError: func(err error) { errs++ },
		},
	})

	d := testDescriptor(ts.URL, 10)
	if err := ctrl.Load(context.Background(), d); err == nil {
		t.Fatalf("expected the first attempt to fail")
	}
	if ctrl.State() != StateError || ctrl.Err() == "" {
		t.Fatalf("after failure: %s %q", ctrl.State(), ctrl.Err())
	}
	if errs != 1 {
		t.Errorf("OnError calls = %d, want 1", errs)
	}

	if err := ctrl.Retry(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ctrl.State() != StateReady || ctrl.Err() != "" {
		t.Errorf("after retry: %s %q, want ready", ctrl.State(), ctrl.Err())
	}
}

func TestRetryWithoutLoad(t *testing.T) {
	ctrl := noRetryController(t, Config{})
	if err := ctrl.Retry(context.Background()); err == nil {
		t.Errorf("Retry with nothing loaded should fail")
	}
}

func TestProcessorFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("model data"))
	}))
	defer ts.Close()

	ctrl := noRetryController(t, Config{
		Processor: func(ctx context.Context, d catalog.Descriptor, data []byte) error {
			return context.DeadlineExceeded
		},
	})

	if err := ctrl.Load(context.Background(), testDescriptor(ts.URL, 10)); err == nil {
		t.Fatalf("expected a processing failure")
	}
	if ctrl.State() != StateError {
		t.Errorf("state = %s, want error", ctrl.State())
	}
}

func TestCancelMidFlight(t *testing.T) {
	gate := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 1024))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-gate
	}))
	defer ts.Close()
	defer close(gate)

	started := make(chan struct{})
	var once sync.Once
	ctrl := noRetryController(t, Config{
		Callbacks: Callbacks{
			OnProgress: func(p Progress) {
				once.Do(func() { close(started) })
			},
		},
	})

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Load(context.Background(), testDescriptor(ts.URL, 64*1024))
	}()

	<-started
	ctrl.Cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Errorf("cancelled load should return an error")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Load never returned after Cancel")
	}

	if ctrl.State() != StatePending {
		t.Errorf("state = %s, want pending after cancel", ctrl.State())
	}
	if ctrl.Err() != "" {
		t.Errorf("cancel must not leave an error behind, got %q", ctrl.Err())
	}
}

func TestLoadSupersedesReady(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("model data"))
	}))
	defer ts.Close()

	ctrl := noRetryController(t, Config{GracePeriod: time.Hour})
	d := testDescriptor(ts.URL, 10)

	if err := ctrl.Load(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	if ctrl.State() != StateReady {
		t.Fatalf("state = %s", ctrl.State())
	}

	// A second Load while ready settles the old result and runs again.
	if err := ctrl.Load(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	if ctrl.State() != StateReady {
		t.Errorf("state = %s after second load", ctrl.State())
	}
}
