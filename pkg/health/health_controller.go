package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookline/console/pkg/httpapi"
)

// HealthController exposes a liveness probe that also pings the database.
type HealthController struct {
	pool *pgxpool.Pool
	path string
}

func NewHealthController(pool *pgxpool.Pool) *HealthController {
	return &HealthController{pool: pool, path: "/health"}
}

func (c *HealthController) Key() string {
	return c.path
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc(c.path, c.Get).Methods(http.MethodGet)
}

func (c *HealthController) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if c.pool != nil {
		if err := c.pool.Ping(ctx); err != nil {
			_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "HEALTH_DB_UNREACHABLE", "database unreachable", nil)
			return
		}
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
