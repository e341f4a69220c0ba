package handler

import (
	"net/http"

	"github.com/yumyai/panva/pkg/handler/request"
	"github.com/yumyai/panva/pkg/model"
)

func (app *AppContext) DragStart(w http.ResponseWriter, r *http.Request) {
	var req request.DragStartRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	app.mutate(w, func(s *model.Session) error { return s.DragStart(req.Position, req.Cumulative) })
}

func (app *AppContext) DragUpdate(w http.ResponseWriter, r *http.Request) {
	var req request.DragUpdateRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	app.mutate(w, func(s *model.Session) error {
		s.DragUpdate(req.Position)
		return nil
	})
}

func (app *AppContext) DragEnd(w http.ResponseWriter, r *http.Request) {
	var req request.DragEndRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	app.mutate(w, func(s *model.Session) error {
		s.DragEnd(req.Position)
		return nil
	})
}

func (app *AppContext) ClearSelection(w http.ResponseWriter, r *http.Request) {
	app.mutate(w, func(s *model.Session) error {
		s.ClearSelection()
		return nil
	})
}
