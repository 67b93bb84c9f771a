package model

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"whisper-web/internal/app/errors"
)

// State is the lifecycle of the cached model.
type State int32

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// LoadRecorder observes model load attempts.
type LoadRecorder interface {
	ObserveModelLoad(backend string, duration time.Duration, err error)
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLoadRecorder reports every load attempt to r.
func WithLoadRecorder(r LoadRecorder) CacheOption {
	return func(c *Cache) {
		c.recorder = r
	}
}

// Cache holds the single model handle of the process.
//
// The first Get loads the model; concurrent first callers wait for that one
// load and all callers receive the same handle. A failed load is sticky: the
// error is returned to every later caller without another attempt, because a
// missing binary or corrupt weights fail the same way every time. Restart the
// process to retry.
type Cache struct {
	backend  Backend
	logger   *zap.Logger
	recorder LoadRecorder

	once   sync.Once
	state  atomic.Int32
	loads  atomic.Int64
	handle Handle
	err    error
}

// NewCache creates a cache over backend. Nothing is loaded until the first Get.
func NewCache(backend Backend, logger *zap.Logger, opts ...CacheOption) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		backend: backend,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the loaded model, loading it on first use. Errors are
// *errors.JobError of kind KindModelUnavailable.
//
// The load is detached from ctx: a first caller that goes away must not leave
// a cancelled load behind as the sticky result for everyone else.
func (c *Cache) Get(ctx context.Context) (Handle, error) {
	c.once.Do(func() {
		c.load(context.WithoutCancel(ctx))
	})
	if c.err != nil {
		return nil, c.err
	}
	return c.handle, nil
}

// Warm loads the model ahead of the first job and reports the outcome.
func (c *Cache) Warm(ctx context.Context) error {
	_, err := c.Get(ctx)
	return err
}

// State reports where the cache is in its lifecycle.
func (c *Cache) State() State {
	return State(c.state.Load())
}

// Loads returns how many load attempts have run. It never exceeds one.
func (c *Cache) Loads() int64 {
	return c.loads.Load()
}

// BackendName returns the configured backend's name.
func (c *Cache) BackendName() string {
	return c.backend.Name()
}

// Status is a point-in-time view of the cache for health endpoints.
type Status struct {
	Backend string
	State   State
	Loads   int64
	Info    *Info
	Err     error
}

// Status returns a snapshot of the cache. Handle and error are only read once
// the load has finished.
func (c *Cache) Status() Status {
	s := Status{
		Backend: c.backend.Name(),
		State:   c.State(),
		Loads:   c.Loads(),
	}
	switch s.State {
	case StateReady:
		info := c.handle.Info()
		s.Info = &info
	case StateFailed:
		s.Err = c.err
	}
	return s
}

func (c *Cache) load(ctx context.Context) {
	c.state.Store(int32(StateLoading))
	c.loads.Add(1)

	name := c.backend.Name()
	start := time.Now()
	c.logger.Info("Loading model", zap.String("backend", name))

	handle, err := c.loadHandle(ctx)
	elapsed := time.Since(start)
	if c.recorder != nil {
		c.recorder.ObserveModelLoad(name, elapsed, err)
	}

	if err != nil {
		c.err = errors.ModelUnavailable(err)
		c.state.Store(int32(StateFailed))
		c.logger.Error("Model load failed, will not retry until restart",
			zap.String("backend", name),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}

	c.handle = handle
	c.state.Store(int32(StateReady))
	info := handle.Info()
	c.logger.Info("Model loaded",
		zap.String("backend", name),
		zap.String("variant", info.Variant),
		zap.Duration("elapsed", elapsed),
	)
}

// loadHandle converts a panicking or nil-returning backend into an error so the
// once guard never completes without either a handle or an error.
func (c *Cache) loadHandle(ctx context.Context) (handle Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			handle = nil
			err = errors.Newf("model backend panicked: %v", r)
		}
	}()

	handle, err = c.backend.Load(ctx)
	if err == nil && handle == nil {
		err = errors.ErrNoModel
	}
	return handle, err
}
