package tosser

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/stlalpha/fdbridge/internal/ftn"
)

// WatchOptions configure the daemon loop.
type WatchOptions struct {
	// Schedule is a six-field cron spec (seconds first) or a descriptor
	// such as "@every 5m". Empty disables scheduled runs.
	Schedule string
	// Debounce delays a run after the last *.MSG event. Zero means 500ms.
	Debounce time.Duration
	// NoWatch disables directory watching.
	NoWatch bool
	// OnRun, if set, is called after every run.
	OnRun func(TossResult, error)
}

// Watch runs the tosser once, then again whenever a *.MSG file appears in
// an area directory and on the configured schedule, until ctx is done.
// Runs never overlap.
func (t *Tosser) Watch(ctx context.Context, wo WatchOptions) error {
	if wo.NoWatch && wo.Schedule == "" {
		return fmt.Errorf("tosser: nothing to watch: no directories and no schedule")
	}
	if wo.Debounce <= 0 {
		wo.Debounce = 500 * time.Millisecond
	}

	var mu sync.Mutex
	trigger := func(reason string) {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		t.logger.WithField("trigger", reason).Debug("starting toss run")
		res, err := t.RunOnce()
		if err != nil {
			t.logger.WithError(err).Error("toss run failed")
		}
		if wo.OnRun != nil {
			wo.OnRun(res, err)
		}
	}

	trigger("startup")

	g, ctx := errgroup.WithContext(ctx)

	if !wo.NoWatch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("tosser: failed to create file watcher: %w", err)
		}
		for _, a := range t.areas.Areas() {
			if err := w.Add(a.Dir); err != nil {
				t.logger.WithError(err).WithField("dir", a.Dir).Warn("area directory not watched")
				continue
			}
			t.logger.WithField("dir", a.Dir).Info("watching for *.MSG files")
		}
		g.Go(func() error {
			defer w.Close()
			return t.watchLoop(ctx, w, wo.Debounce, trigger)
		})
	}

	if wo.Schedule != "" {
		c := cron.New(cron.WithSeconds())
		if _, err := c.AddFunc(wo.Schedule, func() { trigger("schedule") }); err != nil {
			return fmt.Errorf("tosser: bad schedule %q: %w", wo.Schedule, err)
		}
		c.Start()
		t.logger.WithField("schedule", wo.Schedule).Info("scheduled toss runs enabled")
		g.Go(func() error {
			<-ctx.Done()
			<-c.Stop().Done()
			return nil
		})
	}

	err := g.Wait()
	// no run may outlive Watch
	mu.Lock()
	mu.Unlock()
	t.logger.Info("tosser stopping")
	return err
}

// watchLoop runs debounced tosses on its own goroutine, so returning means no
// watch-triggered run is in flight.
func (t *Tosser) watchLoop(ctx context.Context, w *fsnotify.Watcher, debounce time.Duration, trigger func(string)) error {
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-fire:
			fire = nil
			trigger("watch")
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ftn.IsMessageName(event.Name) {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if a, ok := t.areas.ByDir(filepath.Dir(event.Name)); ok {
					t.logger.WithFields(logrus.Fields{"file": event.Name, "tag": a.Tag}).Debug("message file changed")
				}
				timer.Reset(debounce)
				fire = timer.C
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			t.logger.WithError(err).Error("file watcher error")
		}
	}
}
