package handler

import (
	"context"
	"net/http"

	"github.com/yumyai/panva/logger"
	"github.com/yumyai/panva/pkg/handler/params"
	"github.com/yumyai/panva/pkg/handler/request"
	"github.com/yumyai/panva/pkg/handler/types"
	"github.com/yumyai/panva/pkg/model"
	"github.com/yumyai/panva/pkg/render"
	"go.uber.org/zap"
)

func (app *AppContext) writeHomologies(w http.ResponseWriter) {
	homologies := app.Store.HomologiesFiltered()
	writeJSON(w, http.StatusOK, types.HomologyListResponse{Total: len(homologies), Homologies: homologies})
}

// ListHomologies returns the homology catalog after the homology filters.
func (app *AppContext) ListHomologies(w http.ResponseWriter, r *http.Request) {
	app.writeHomologies(w)
}

func (app *AppContext) SetHomologyFilters(w http.ResponseWriter, r *http.Request) {
	var req request.FiltersRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if err := app.Store.Do(func(s *model.Session) error { return s.SetHomologyFilters(req.Filters) }); err != nil {
		writeError(w, err)
		return
	}
	app.writeHomologies(w)
}

// respondJob acknowledges a job, waiting for it first when ?wait=true.
func (app *AppContext) respondJob(w http.ResponseWriter, r *http.Request, job LoadJob) {
	wait, err := params.QueryBool(r, "wait", false)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if wait {
		job, _ = app.LoadJobs.Wait(r.Context(), job.ID)
	}

	status := http.StatusAccepted
	if job.Finished() {
		status = http.StatusOK
	}
	writeJSON(w, status, types.JobResponse{
		JobID:    job.ID,
		Status:   string(job.Status),
		Location: "/api/v1/loads/" + job.ID,
	})
}

// LoadHomologyGroup starts loading a homology group in the background.
func (app *AppContext) LoadHomologyGroup(w http.ResponseWriter, r *http.Request) {
	homologyID := r.PathValue("homology_id")
	if homologyID == "" {
		badRequest(w, "Missing homology_id")
		return
	}

	logger.Debug("Queue homology group load", zap.String("homology_id", homologyID))
	job := app.LoadJobs.Start(JobHomologyGroup, homologyID, func(ctx context.Context) (model.LoadStatus, error) {
		return app.Store.LoadHomologyGroup(ctx, homologyID)
	})
	app.respondJob(w, r, job)
}

// GetLoadJob reports a job as JSON, or as an auto refreshing page with ?format=html.
func (app *AppContext) GetLoadJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	job, ok := app.LoadJobs.GetJob(jobID)
	if !ok {
		writeJSON(w, http.StatusNotFound, types.ErrorResponse{Error: "Job not found"})
		return
	}

	if r.URL.Query().Get("format") != "html" {
		writeJSON(w, http.StatusOK, job)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := render.RenderLoadJobPage(w, render.LoadJobPageData{
		JobID:                  job.ID,
		Kind:                   job.Kind,
		Target:                 job.Target,
		Status:                 string(job.Status),
		ErrorMessage:           job.Error,
		ShouldRefresh:          !job.Finished(),
		RefreshIntervalSeconds: 2,
	})
	if err != nil {
		logger.Error("Render load job page failed", zap.Error(err))
	}
}
