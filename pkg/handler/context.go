package handler

// DI for all handlers alike.

import (
	"github.com/yumyai/panva/pkg/config"
	"github.com/yumyai/panva/pkg/db"
	"github.com/yumyai/panva/pkg/model"
)

type AppContext struct {
	Store    *model.Store
	Repo     *db.Repository
	Config   *config.Config
	LoadJobs *LoadJobManager
}

func NewAppContext(store *model.Store, repo *db.Repository, cfg *config.Config) *AppContext {
	if cfg == nil {
		cfg = config.Default()
	}
	return &AppContext{
		Store:    store,
		Repo:     repo,
		Config:   cfg,
		LoadJobs: NewLoadJobManager(),
	}
}
