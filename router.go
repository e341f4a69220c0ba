package main

import (
	"mime"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yumyai/panva/internal/util"
	"github.com/yumyai/panva/logger"
	"github.com/yumyai/panva/pkg/handler"
	"github.com/yumyai/panva/pkg/middle"
)

const staticDir = "./static/"

func NewRouter(app *handler.AppContext, metrics *middle.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		if metrics == nil {
			mux.Handle(pattern, h)
			return
		}
		mux.Handle(pattern, metrics.Instrument(pattern, h))
	}

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Main routes
	handle("GET /{$}", app.OverviewPage)
	mux.Handle("GET /metrics", promhttp.Handler())

	// API routes
	handle("GET /api/v1/health", app.HealthCheck)
	handle("GET /api/v1/homologies", app.ListHomologies)
	handle("PUT /api/v1/filters/homologies", app.SetHomologyFilters)
	handle("POST /api/v1/homologies/{homology_id}/load", app.LoadHomologyGroup)
	handle("GET /api/v1/loads/{job_id}", app.GetLoadJob)

	// Derived views
	handle("GET /api/v1/state", app.GetState)
	handle("GET /api/v1/alignment.fasta", app.AlignmentFASTA)
	handle("GET /api/v1/alignment", app.AlignmentCells)
	handle("GET /api/v1/annotations", app.Annotations)
	handle("GET /api/v1/variable-positions", app.VariablePositions)

	// Session changes
	handle("PUT /api/v1/sorting", app.ChangeSorting)
	handle("POST /api/v1/drag/start", app.DragStart)
	handle("POST /api/v1/drag/update", app.DragUpdate)
	handle("POST /api/v1/drag/end", app.DragEnd)
	handle("DELETE /api/v1/selection", app.ClearSelection)

	handle("POST /api/v1/groups", app.CreateGroup)
	handle("PATCH /api/v1/groups/{group_id}", app.UpdateGroup)
	handle("DELETE /api/v1/groups/{group_id}", app.DeleteGroup)
	handle("POST /api/v1/groups/{group_id}/expand", app.ExpandGroup)

	handle("POST /api/v1/filters/sequences", app.AddSequenceFilter)
	handle("PUT /api/v1/filters/sequences", app.SetSequenceFilters)
	handle("PUT /api/v1/filters/positions", app.SetPositionFilters)
	handle("PUT /api/v1/positions/range", app.SetPositionRange)

	handle("PUT /api/v1/reference", app.SetReference)
	handle("DELETE /api/v1/reference", app.ClearReference)

	handle("POST /api/v1/dendrogram/custom", app.CustomDendrogram)

	// Static files
	setupStaticFiles(mux)

	return mux
}

// Static assets are optional; the overview page renders without them.
func setupStaticFiles(mux *http.ServeMux) {
	if !util.DirExists(staticDir) {
		return
	}
	_ = mime.AddExtensionType(".js", "text/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
	logger.Info("Serving static files", zap.String("dir", staticDir))
	fs := http.FileServer(http.Dir(staticDir))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
}
