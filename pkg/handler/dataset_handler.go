package handler

import (
	"net/http"

	"github.com/yumyai/panva/pkg/handler/params"
	"github.com/yumyai/panva/pkg/handler/types"
	"github.com/yumyai/panva/pkg/model"
)

// VariablePositions lists the variable positions inside the position filter.
func (app *AppContext) VariablePositions(w http.ResponseWriter, r *http.Request) {
	var vps []*model.VariablePosition
	err := app.Store.Do(func(s *model.Session) error {
		if s.Data() == nil {
			return model.ErrNotInitialized
		}
		vps = s.VariablePositionsFiltered()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.VariablePositionsResponse{Total: len(vps), VariablePositions: vps})
}

// Annotations returns the annotation flags of the filtered sequences at
// ?positions=, defaulting to the filtered positions.
func (app *AppContext) Annotations(w http.ResponseWriter, r *http.Request) {
	positions, err := params.QueryInts(r, "positions")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var table *model.AnnotationTable
	err = app.Store.Do(func(s *model.Session) (err error) {
		table, err = s.AnnotationTable(positions)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// AlignmentCells returns the aligned symbols and cell metadata of the filtered
// sequences at ?positions=, defaulting to the filtered positions.
func (app *AppContext) AlignmentCells(w http.ResponseWriter, r *http.Request) {
	positions, err := params.QueryInts(r, "positions")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var table *model.AlignmentTable
	err = app.Store.Do(func(s *model.Session) (err error) {
		table, err = s.AlignmentTable(positions)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}
