package handler

import (
	"net/http"

	"github.com/yumyai/panva/pkg/model"
)

// ChangeSorting applies a sort strategy; repeating the current one reverses it.
func (app *AppContext) ChangeSorting(w http.ResponseWriter, r *http.Request) {
	var req model.SortingJSON
	if !decodeBody(w, r, &req, false) {
		return
	}
	sorting, err := req.Decode()
	if err != nil {
		writeError(w, err)
		return
	}
	app.mutate(w, func(s *model.Session) error { return s.ChangeSorting(sorting) })
}
