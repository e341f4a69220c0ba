// Handler for miscellaneous endpoints such as health check

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/yumyai/panva/pkg/handler/types"
)

func (app *AppContext) HealthCheck(w http.ResponseWriter, r *http.Request) {

	view := app.Store.View()
	response := types.HealthResponse{
		Health:      "ok",
		Initialized: view.IsInitialized,
		HomologyID:  view.HomologyID,
		Timestamp:   time.Now(),
	}

	if app.Repo != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		response.Database = "ok"
		if err := app.Repo.Ping(ctx); err != nil {
			response.Health = "degraded"
			response.Database = err.Error()
		}
	}

	writeJSON(w, http.StatusOK, response)
}
