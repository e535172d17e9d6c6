// Package monitor starts and stops the page watchers as one unit and runs
// the background services they depend on.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hammamikhairi/livespeaker/internal/domain"
	"github.com/hammamikhairi/livespeaker/internal/logger"
)

// Watcher is one independently started page observer.
type Watcher interface {
	Name() string
	RootID() string
	Start(ctx context.Context) error
	Stop()
	State() domain.WatcherState
}

// Service is a long-running background task, such as the mutation
// delivery loop or a snapshot file watcher. It must return once ctx is
// cancelled.
type Service func(ctx context.Context) error

type service struct {
	name string
	run  Service
}

// Option configures the controller.
type Option func(*Controller)

// WithService runs fn in the background between Start and Stop.
func WithService(name string, fn Service) Option {
	return func(c *Controller) {
		c.services = append(c.services, service{name: name, run: fn})
	}
}

// WithMissingRootMessage overrides the warning logged when the named
// watcher's root is absent. format receives the root id.
func WithMissingRootMessage(watcher, format string) Option {
	return func(c *Controller) {
		c.missing[watcher] = format
	}
}

// Controller owns the watchers' lifecycle. Each watcher is started on its
// own; one with a missing root does not prevent the others from running.
type Controller struct {
	watchers []Watcher
	services []service
	missing  map[string]string
	log      *logger.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a controller for the given watchers, started in order.
func New(log *logger.Logger, watchers []Watcher, opts ...Option) *Controller {
	c := &Controller{
		watchers: watchers,
		log:      log,
		missing: map[string]string{
			"feed":   "未找到聊天列表元素（%s）",
			"banner": "未找到提示控件（%s）",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the background services, then starts every watcher.
// Missing roots are logged and otherwise ignored. It returns the number
// of watchers now observing, or domain.ErrAlreadyStarted on a second call.
func (c *Controller) Start(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return 0, domain.ErrAlreadyStarted
	}
	c.started = true

	childCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	for _, s := range c.services {
		c.wg.Add(1)
		go func(s service) {
			defer c.wg.Done()
			if err := s.run(childCtx); err != nil && !errors.Is(err, context.Canceled) {
				c.log.Error("service %s exited: %v", s.name, err)
			}
		}(s)
	}

	// Watchers announce on the parent ctx; Stop must not abort speech
	// already in flight.
	observing := 0
	for _, w := range c.watchers {
		err := w.Start(ctx)
		switch {
		case err == nil:
			observing++
		case errors.Is(err, domain.ErrRootNotFound):
			c.log.Warn("%s", c.missingMessage(w))
		default:
			c.log.Error("%s watcher: %v", w.Name(), err)
		}
	}

	c.log.Info("monitor started (%d/%d watchers observing, %d services)", observing, len(c.watchers), len(c.services))
	return observing, nil
}

// Stop stops every watcher and waits for the background services to
// return. Safe to call more than once, and before Start.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true
	c.started = true

	for _, w := range c.watchers {
		w.Stop()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.log.Info("monitor stopped")
}

// States reports each watcher's lifecycle state by name.
func (c *Controller) States() map[string]domain.WatcherState {
	out := make(map[string]domain.WatcherState, len(c.watchers))
	for _, w := range c.watchers {
		out[w.Name()] = w.State()
	}
	return out
}

// Run starts the controller, blocks until ctx is done, then stops it.
func (c *Controller) Run(ctx context.Context) error {
	if _, err := c.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	c.Stop()
	return nil
}

func (c *Controller) missingMessage(w Watcher) string {
	if format, ok := c.missing[w.Name()]; ok {
		return fmt.Sprintf(format, w.RootID())
	}
	return fmt.Sprintf("%s root #%s not found", w.Name(), w.RootID())
}
