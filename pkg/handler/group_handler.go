package handler

import (
	"net/http"

	"github.com/yumyai/panva/logger"
	"github.com/yumyai/panva/pkg/handler/params"
	"github.com/yumyai/panva/pkg/handler/request"
	"github.com/yumyai/panva/pkg/model"
	"go.uber.org/zap"
)

// CreateGroup turns the current selection into a group.
func (app *AppContext) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req request.GroupCreateRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	var group *model.Group
	err := app.Store.Do(func(s *model.Session) (err error) {
		group, err = s.CreateGroup(req.Attributes())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	logger.Debug("Group created", zap.Int("group_id", group.ID), zap.Int("size", group.Size))
	writeJSON(w, http.StatusCreated, group)
}

func (app *AppContext) groupAction(w http.ResponseWriter, r *http.Request, action func(s *model.Session, id int) (*model.Group, error)) {
	id, err := params.PathInt(r, "group_id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var group *model.Group
	err = app.Store.Do(func(s *model.Session) (err error) {
		group, err = action(s, id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// UpdateGroup renames, recolours or toggles a group.
func (app *AppContext) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req request.GroupPatchRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	app.groupAction(w, r, func(s *model.Session, id int) (*model.Group, error) {
		return s.UpdateGroup(id, req.Patch())
	})
}

// ExpandGroup adds the current selection to a group.
func (app *AppContext) ExpandGroup(w http.ResponseWriter, r *http.Request) {
	app.groupAction(w, r, func(s *model.Session, id int) (*model.Group, error) {
		return s.ExpandGroup(id)
	})
}

func (app *AppContext) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := params.PathInt(r, "group_id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	app.mutate(w, func(s *model.Session) error { return s.DeleteGroup(id) })
}
