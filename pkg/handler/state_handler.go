package handler

import (
	"net/http"

	"github.com/yumyai/panva/logger"
	"github.com/yumyai/panva/pkg/handler/params"
	"github.com/yumyai/panva/pkg/model"
	"github.com/yumyai/panva/pkg/render"
	"go.uber.org/zap"
)

const defaultOverviewPositions = 120

// GetState returns the full view of the session.
func (app *AppContext) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, app.Store.View())
}

// AlignmentFASTA exports the filtered sequences in draw order over the filtered positions.
func (app *AppContext) AlignmentFASTA(w http.ResponseWriter, r *http.Request) {
	view := app.Store.View()
	if !view.IsInitialized {
		writeError(w, model.ErrNotInitialized)
		return
	}

	w.Header().Set("Content-Type", "text/x-fasta; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+view.HomologyID+`.fasta"`)
	if err := render.WriteFASTA(w, view, render.FASTALineWidth); err != nil {
		logger.Error("Write FASTA failed", zap.Error(err))
	}
}

// OverviewPage renders the collapsed draw order as an HTML table.
func (app *AppContext) OverviewPage(w http.ResponseWriter, r *http.Request) {
	maxPositions, err := params.QueryInt(r, "max_positions", defaultOverviewPositions)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = render.RenderOverviewPage(w, render.OverviewData{
		View:         app.Store.View(),
		Config:       app.Config,
		MaxPositions: maxPositions,
	})
	if err != nil {
		logger.Error("Render overview failed", zap.Error(err))
	}
}
