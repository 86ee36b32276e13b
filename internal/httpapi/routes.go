package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mkessler-dev/cardtable-backend/internal/hub"
	"github.com/mkessler-dev/cardtable-backend/internal/ws"
)

// SetupRoutes builds the router with the hub injected: liveness, the
// websocket entry point, and the static client bundle.
func SetupRoutes(h *hub.Hub, staticDir string, log *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", Health)
	r.Get("/ws", ws.Handler(h, log))
	r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	return r
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
