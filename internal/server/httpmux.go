package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nasware/dpagent/internal/api"
	"github.com/nasware/dpagent/internal/audit"
	"github.com/nasware/dpagent/internal/auth"
	"github.com/nasware/dpagent/internal/config"
	"github.com/nasware/dpagent/internal/diskpart"
)

// NewHTTPMux builds the HTTP handlers for the API server.
func NewHTTPMux(cfg *config.Config, auditLogger *audit.Logger) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	executor := diskpart.NewExecutor(diskpart.ExecutorConfig{
		ToolPath:           cfg.Diskpart.ToolPath,
		DefaultTimeout:     time.Duration(cfg.Diskpart.DefaultTimeoutSec) * time.Second,
		DestructiveTimeout: time.Duration(cfg.Diskpart.DestructiveTimeoutSec) * time.Second,
		OutputCodepage:     cfg.Diskpart.OutputCodepage,
	})
	manager := diskpart.NewManager(executor)

	api.RegisterHTTPHandlers(mux, manager)

	var authMgr *auth.Manager
	if cfg.Security.TokenAuth {
		var err error
		authMgr, err = auth.New(cfg.Security.AuthDB)
		if err != nil {
			return nil, fmt.Errorf("create auth manager: %w", err)
		}
		authAPI := api.NewAuthHandlers(authMgr, auditLogger)
		authAPI.Register(mux)
	}

	diskAPI := api.NewDiskHandlers(manager, auditLogger, authMgr)
	diskAPI.Register(mux)

	return mux, nil
}
