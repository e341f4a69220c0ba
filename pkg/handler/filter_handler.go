package handler

import (
	"net/http"

	"github.com/yumyai/panva/pkg/handler/request"
	"github.com/yumyai/panva/pkg/model"
)

// AddSequenceFilter appends one filter to the sequence filters.
func (app *AppContext) AddSequenceFilter(w http.ResponseWriter, r *http.Request) {
	var f model.MetadataFilter
	if !decodeBody(w, r, &f, false) {
		return
	}
	app.mutate(w, func(s *model.Session) error { return s.AddSequenceFilter(f) })
}

// SetSequenceFilters replaces the sequence filters; an empty list clears them.
func (app *AppContext) SetSequenceFilters(w http.ResponseWriter, r *http.Request) {
	var req request.FiltersRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	app.mutate(w, func(s *model.Session) error { return s.SetSequenceFilters(req.Filters) })
}

func (app *AppContext) SetPositionFilters(w http.ResponseWriter, r *http.Request) {
	var req request.FiltersRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	app.mutate(w, func(s *model.Session) error { return s.SetPositionFilters(req.Filters) })
}

func (app *AppContext) SetPositionRange(w http.ResponseWriter, r *http.Request) {
	var req request.PositionRangeRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	app.mutate(w, func(s *model.Session) error {
		return s.SetPositionRange(model.PositionRange{Start: req.Start, End: req.End})
	})
}
