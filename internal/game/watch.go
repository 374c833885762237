// internal/game/watch.go
//
// Snapshot broadcasting for presentation layers.
// Each watcher owns a single-slot channel that always holds the most recent
// State it has not read yet; a newer snapshot replaces an unread older one.

package game

import "context"

// Watch subscribes to state changes. The returned channel immediately holds
// the current snapshot and is closed once ctx is done.
func (e *Engine) Watch(ctx context.Context) <-chan State {
	ch := make(chan State, 1)

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.watchers[id] = ch
	ch <- e.state.clone()
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.watchers[id]; ok {
			delete(e.watchers, id)
			close(c)
		}
	}()
	return ch
}

// publish installs next and offers it to every watcher. Callers hold e.mu.
func (e *Engine) publish(next State) {
	e.state = next
	for _, ch := range e.watchers {
		// Drop the stale value, if any, then send. Only publish writes to ch
		// and it runs under e.mu, so the send can't block.
		select {
		case <-ch:
		default:
		}
		ch <- next.clone()
	}
}
