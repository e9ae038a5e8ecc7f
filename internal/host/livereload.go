package host

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"

	"github.com/jcorbin/pohlang/internal/value"
)

// liveReload restores original_source's stdlib/livereload.rs, dropped by
// spec.md's distillation (SPEC_FULL.md §4): a generation counter bumped
// by an fsnotify watch on the program's source tree, exposed to the
// browser over a `/__reload_check` poll route and, when the client asks
// to upgrade, a gorilla/websocket push channel instead.
type liveReload struct {
	generation uint64
	watcher    *fsnotify.Watcher
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// EnableHotReload watches watchDir for filesystem changes and mounts
// `/__reload_check` on server's router: a GET returns the current
// generation as JSON, or a websocket upgrade pushes each new generation
// as it's observed.
func (s *Services) EnableHotReload(watchDir string, server *value.HandleRef) error {
	srv, err := s.lookupServer(server)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(watchDir); err != nil {
		w.Close()
		return err
	}
	lr := &liveReload{watcher: w}
	srv.hotDir = watchDir

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					atomic.AddUint64(&lr.generation, 1)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	srv.router.Get("/__reload_check", func(rw http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			conn, err := upgrader.Upgrade(rw, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()
			last := atomic.LoadUint64(&lr.generation)
			if conn.WriteJSON(map[string]uint64{"generation": last}) != nil {
				return
			}
			ticker := time.NewTicker(250 * time.Millisecond)
			defer ticker.Stop()
			for range ticker.C {
				cur := atomic.LoadUint64(&lr.generation)
				if cur == last {
					continue
				}
				last = cur
				if conn.WriteJSON(map[string]uint64{"generation": last}) != nil {
					return
				}
			}
		}
		rw.Header().Set("Content-Type", "application/json")
		json.NewEncoder(rw).Encode(map[string]uint64{"generation": atomic.LoadUint64(&lr.generation)})
	})
	return nil
}
