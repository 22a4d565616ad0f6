package inspect

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quanta-dev/quanta/pkg/quanta"
)

// CellInfo is one cell's summary in the /api/cells listing.
type CellInfo struct {
	Name      string `json:"name"`
	ID        uint64 `json:"id"`
	Value     any    `json:"value"`
	Seq       uint64 `json:"seq"`
	Observers int    `json:"observers"`
}

// Server exposes registered cells over HTTP.
//
// Routes:
//   - GET /healthz: liveness check
//   - GET /api/cells: JSON array of CellInfo
//   - GET /ws: WebSocket stream of Event per cell change
type Server struct {
	mu      sync.RWMutex
	cells   map[uint64]quanta.Inspectable
	detach  map[uint64]quanta.Cleanup
	hub     *Hub
	router  chi.Router
	httpSrv *http.Server
}

// NewServer creates an inspector with no cells registered.
func NewServer() *Server {
	s := &Server{
		cells:  make(map[uint64]quanta.Inspectable),
		detach: make(map[uint64]quanta.Cleanup),
		hub:    NewHub(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/cells", s.handleCells)
	r.Get("/ws", s.hub.HandleWebSocket)
	s.router = r

	return s
}

// Register adds a cell to the inspector and streams its changes to
// WebSocket clients. The returned cleanup detaches the stream and
// removes the cell; registering the same cell twice is a no-op.
func (s *Server) Register(cell quanta.Inspectable) quanta.Cleanup {
	s.mu.Lock()
	if _, ok := s.cells[cell.ID()]; ok {
		s.mu.Unlock()
		return func() {}
	}
	s.cells[cell.ID()] = cell
	s.mu.Unlock()

	name := cell.Name()
	stop := cell.WatchAny(func(v any) {
		s.hub.Broadcast(Event{
			Cell:  name,
			Seq:   cell.ChangeSeq(),
			Value: v,
		})
	})

	s.mu.Lock()
	s.detach[cell.ID()] = stop
	s.mu.Unlock()

	id := cell.ID()
	return func() { s.unregister(id) }
}

func (s *Server) unregister(id uint64) {
	s.mu.Lock()
	stop := s.detach[id]
	delete(s.detach, id)
	delete(s.cells, id)
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// CellCount returns the number of registered cells.
func (s *Server) CellCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cells)
}

// Hub returns the WebSocket hub, mainly for tests.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the inspector's HTTP handler for mounting on an
// existing server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleCells(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	infos := make([]CellInfo, 0, len(s.cells))
	for _, cell := range s.cells {
		infos = append(infos, CellInfo{
			Name:      cell.Name(),
			ID:        cell.ID(),
			Value:     cell.ValueAny(),
			Seq:       cell.ChangeSeq(),
			Observers: cell.Observers(),
		})
	}
	s.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListenAndServe starts the inspector on addr and blocks until ctx is
// cancelled or the server fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.Close()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
