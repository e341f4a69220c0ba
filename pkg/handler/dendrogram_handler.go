package handler

import (
	"context"
	"net/http"
	"slices"
	"strconv"

	"github.com/yumyai/panva/pkg/handler/request"
	"github.com/yumyai/panva/pkg/model"
)

// CustomDendrogram starts building a dendrogram over a position subset and sorts by
// it once ready.
func (app *AppContext) CustomDendrogram(w http.ResponseWriter, r *http.Request) {
	var req request.CustomDendrogramRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	view := app.Store.View()
	if !view.IsInitialized {
		writeError(w, model.ErrNotInitialized)
		return
	}
	for _, p := range req.Positions {
		if p < 1 || p > view.GeneLength {
			badRequest(w, "position "+strconv.Itoa(p)+" out of range")
			return
		}
	}

	positions := slices.Clone(req.Positions)
	job := app.LoadJobs.Start(JobCustomDendrogram, view.HomologyID, func(ctx context.Context) (model.LoadStatus, error) {
		return app.Store.LoadCustomDendrogram(ctx, positions)
	})
	app.respondJob(w, r, job)
}
