package handler

import (
	"net/http"

	"github.com/yumyai/panva/pkg/model"
)

func (app *AppContext) SetReference(w http.ResponseWriter, r *http.Request) {
	var req model.ReferenceJSON
	if !decodeBody(w, r, &req, false) {
		return
	}
	ref, err := req.Decode()
	if err != nil {
		writeError(w, err)
		return
	}
	app.mutate(w, func(s *model.Session) error { return s.SetReference(ref) })
}

func (app *AppContext) ClearReference(w http.ResponseWriter, r *http.Request) {
	app.mutate(w, func(s *model.Session) error { return s.SetReference(nil) })
}
