package loader

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/adaptik3d/adaptik/pkg/catalog"
	"github.com/adaptik3d/adaptik/pkg/whttp"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Callbacks are the lifecycle notifications delivered to the rendering
// collaborator. Any field may be nil. The controller never renders anything
// itself.
type Callbacks struct {
	OnLoadStart    func(d catalog.Descriptor)
	OnProgress     func(p Progress)
	OnError        func(err error)
	OnLoadComplete func(d catalog.Descriptor, data []byte)
}

// Processor is the opaque post-download decode step (parsing the binary
// model belongs to the rendering collaborator). Nil means no processing.
type Processor func(ctx context.Context, d catalog.Descriptor, data []byte) error

// Config configures a Controller.
type Config struct {
	// Client is the download client. Nil builds a default retrying client.
	Client *retryablehttp.Client

	Proxy     string
	Timeout   time.Duration
	RetryMax  int
	UserAgent string

	Processor Processor
	Callbacks Callbacks

	// GracePeriod is how long the ready state is displayed before the
	// indicator resets to pending. Zero uses the 2 second default.
	GracePeriod time.Duration

	Log Logger
}

const defaultGracePeriod = 2 * time.Second

// Controller orchestrates retrieval of one asset at a time. A new Load
// supersedes any in-flight one; overlapping loads for the same slot are
// serialized here, not supported concurrently.
type Controller struct {
	mu      sync.Mutex
	machine *Machine
	current *catalog.Descriptor
	cancel  context.CancelFunc
	gen     int

	client    *retryablehttp.Client
	userAgent string
	process   Processor
	cb        Callbacks
	grace     time.Duration
	log       Logger
}

// NewController builds a Controller from cfg.
func NewController(cfg Config) (*Controller, error) {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Minute
		}
		retryMax := cfg.RetryMax
		if retryMax <= 0 {
			retryMax = 3
		}
		var err error
		client, err = whttp.NewClient(whttp.ClientConfig{
			Proxy:    cfg.Proxy,
			Timeout:  timeout,
			RetryMax: retryMax,
		})
		if err != nil {
			return nil, err
		}
	}

	grace := cfg.GracePeriod
	if grace <= 0 {
		grace = defaultGracePeriod
	}

	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}

	return &Controller{
		machine:   NewMachine(),
		client:    client,
		userAgent: cfg.UserAgent,
		process:   cfg.Processor,
		cb:        cfg.Callbacks,
		grace:     grace,
		log:       log,
	}, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// Progress returns the latest download progress.
func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Progress()
}

// Err returns the current error message, empty unless in the error state.
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Err()
}

// Load retrieves d, blocking until ready or failed. Any in-flight load is
// cancelled first.
func (c *Controller) Load(ctx context.Context, d catalog.Descriptor) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	// Supersede whatever the machine was doing.
	if err := c.machine.Cancel(); err != nil {
		// Only ready blocks cancel; settle it instead.
		_ = c.machine.Settle()
	}
	if err := c.machine.Start(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.gen++
	gen := c.gen
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.current = &d
	c.mu.Unlock()

	return c.run(loadCtx, d, gen)
}

// Retry re-attempts the failed load: error -> loading.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return fmt.Errorf("nothing to retry")
	}
	if err := c.machine.Retry(); err != nil {
		c.mu.Unlock()
		return err
	}
	d := *c.current
	c.gen++
	gen := c.gen
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	return c.run(loadCtx, d, gen)
}

// Cancel abandons the active load and clears progress and error state.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	_ = c.machine.Cancel()
}

// run performs the download, processing and grace reset for one load
// attempt. The machine is already in loading.
func (c *Controller) run(ctx context.Context, d catalog.Descriptor, gen int) error {
	if c.cb.OnLoadStart != nil {
		c.cb.OnLoadStart(d)
	}
	c.log.Debugf("loading %s from %s", d.ID, d.URL)

	data, err := c.download(ctx, d, gen)
	if err != nil {
		return c.fail(gen, err)
	}

	// Force the 100% transition when the server never declared a length.
	c.mu.Lock()
	if c.gen == gen && c.machine.State() == StateLoading {
		_ = c.machine.Advance(int64(len(data)), int64(len(data)))
	}
	superseded := c.gen != gen
	c.mu.Unlock()
	if superseded {
		return context.Canceled
	}

	if c.process != nil {
		if err := c.process(ctx, d, data); err != nil {
			return c.fail(gen, fmt.Errorf("processing %s: %w", d.ID, err))
		}
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return context.Canceled
	}
	if err := c.machine.Complete(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	if c.cb.OnLoadComplete != nil {
		c.cb.OnLoadComplete(d, data)
	}
	c.log.Debugf("loaded %s (%d bytes)", d.ID, len(data))

	// After the display grace period the indicator returns to pending,
	// ready for the next switch.
	time.AfterFunc(c.grace, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen == gen && c.machine.State() == StateReady {
			_ = c.machine.Settle()
		}
	})

	return nil
}

// fail moves the machine to error unless this attempt was superseded or
// cancelled (in which case the machine is already back in pending).
func (c *Controller) fail(gen int, err error) error {
	c.mu.Lock()
	if c.gen != gen || c.machine.State() == StatePending {
		c.mu.Unlock()
		return err
	}
	_ = c.machine.Fail(err.Error())
	c.mu.Unlock()

	if c.cb.OnError != nil {
		c.cb.OnError(err)
	}
	c.log.Debugf("load failed: %v", err)
	return err
}

const chunkSize = 32 * 1024

// download streams the payload, feeding progress into the machine and out
// through OnProgress.
func (c *Controller) download(ctx context.Context, d catalog.Descriptor, gen int) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", d.URL, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", d.ID, resp.StatusCode)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = d.FileSizeBytes
	}

	var data []byte
	buf := make([]byte, chunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)

			c.mu.Lock()
			if c.gen != gen {
				c.mu.Unlock()
				return nil, context.Canceled
			}
			if c.machine.State() == StateLoading {
				_ = c.machine.Advance(int64(len(data)), total)
			}
			p := c.machine.Progress()
			c.mu.Unlock()

			if c.cb.OnProgress != nil {
				c.cb.OnProgress(p)
			}
		}
		if readErr == io.EOF {
			return data, nil
		}
		if readErr != nil {
			return nil, readErr
		}
	}
}
