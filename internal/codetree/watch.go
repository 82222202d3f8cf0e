package codetree

import (
	"context"
	"fmt"

	"codetree/internal/logging"
	"codetree/internal/types"

	"github.com/fsnotify/fsnotify"
)

// Watcher refreshes a Project when files change on disk. Run owns the
// project while it executes; callers must not use the project concurrently.
type Watcher struct {
	project *Project
	fs      *fsnotify.Watcher
}

// NewWatcher subscribes to every descended directory of the project.
func NewWatcher(p *Project) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	w := &Watcher{project: p, fs: fw}
	if err := w.addDirs(p.tree.root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addDirs(id NodeID) error {
	var firstErr error
	w.project.tree.walk(id, func(n *Node) {
		if n.kind != types.KindDirectory || n.opaque || firstErr != nil {
			return
		}
		if err := w.fs.Add(n.path); err != nil {
			firstErr = fmt.Errorf("%w: watch %s: %v", ErrIO, n.path, err)
		}
	})
	return firstErr
}

// Run processes filesystem events until ctx is cancelled, calling onChange
// with the path of every event that changed the tree. It closes the
// underlying watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.fs.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			n, changed, err := w.project.Refresh(ctx, ev.Name)
			if err != nil {
				logging.WatchWarn("Watcher: %s: %v", ev.Name, err)
				continue
			}
			if !changed {
				continue
			}
			if n != nil && n.kind == types.KindDirectory {
				if err := w.addDirs(n.id); err != nil {
					logging.WatchWarn("Watcher: %v", err)
				}
			}
			logging.Watch("Watcher: %s %s", ev.Op, ev.Name)
			if onChange != nil {
				onChange(ev.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logging.WatchWarn("Watcher: %v", err)
		}
	}
}
