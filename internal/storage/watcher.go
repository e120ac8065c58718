package storage

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/saftree/storagebridge/internal/logging"
	"go.uber.org/zap"
)

// MountEventKind tags a watcher event.
type MountEventKind string

const (
	MountAdded   MountEventKind = "mounted"
	MountRemoved MountEventKind = "unmounted"
)

// MountEvent signals a volume appearing or disappearing under one of the
// watched mount bases.
type MountEvent struct {
	Kind MountEventKind `json:"kind"`
	Path string         `json:"path"`
}

// Watcher observes the configured mount bases and fans out mount events
// to subscribers. Every event also invalidates the resolver cache: a
// volume change can silently remap tree roots.
type Watcher struct {
	fw    *fsnotify.Watcher
	cache *ResolverCache
	log   *logging.Logger

	mu      sync.Mutex
	subs    map[uint64]chan MountEvent
	nextSub uint64
	done    chan struct{}
}

// NewWatcher starts watching the given bases. Bases that do not exist are
// skipped; watching none at all is not an error — the watcher just stays
// silent.
func NewWatcher(bases []string, cache *ResolverCache, log *logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.Nop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, base := range bases {
		if err := fw.Add(base); err != nil {
			log.Debug("base not watched", zap.String("base", base), zap.Error(err))
		}
	}

	w := &Watcher{
		fw:    fw,
		cache: cache,
		log:   log,
		subs:  make(map[uint64]chan MountEvent),
		done:  make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Subscribe returns a channel receiving future mount events, plus a
// cancel func that closes the channel and releases the subscription.
// Callers must cancel when done; an abandoned subscription would
// accumulate in the watcher for its whole lifetime. Slow subscribers
// drop events rather than stalling the watcher.
func (w *Watcher) Subscribe() (<-chan MountEvent, func()) {
	ch := make(chan MountEvent, 8)
	w.mu.Lock()
	id := w.nextSub
	w.nextSub++
	w.subs[id] = ch
	w.mu.Unlock()

	cancel := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if _, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Close stops the watcher and closes all remaining subscriber channels.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	w.mu.Lock()
	for id, ch := range w.subs {
		delete(w.subs, id)
		close(ch)
	}
	w.mu.Unlock()
	return err
}

// subscriberCount reports how many subscriptions are live.
func (w *Watcher) subscriberCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if me, ok := translate(ev); ok {
				w.publish(me)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func translate(ev fsnotify.Event) (MountEvent, bool) {
	switch {
	case ev.Has(fsnotify.Create):
		return MountEvent{Kind: MountAdded, Path: filepath.Clean(ev.Name)}, true
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return MountEvent{Kind: MountRemoved, Path: filepath.Clean(ev.Name)}, true
	}
	return MountEvent{}, false
}

func (w *Watcher) publish(ev MountEvent) {
	if w.cache != nil {
		w.cache.Invalidate()
	}
	w.log.Info("mount event", zap.String("kind", string(ev.Kind)), zap.String("path", ev.Path))

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- ev:
		default: // drop for slow subscribers
		}
	}
}
