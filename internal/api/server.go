package api

import (
	"io"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hbpm-labs/hbpm/internal/config"
	"github.com/hbpm-labs/hbpm/internal/installed"
	"github.com/hbpm-labs/hbpm/internal/installer"
	"github.com/hbpm-labs/hbpm/internal/logging"
	"github.com/hbpm-labs/hbpm/internal/pkgdb"
	"github.com/hbpm-labs/hbpm/internal/shell"
)

// autoConfirm answers yes to every prompt. HTTP clients cannot answer an
// interactive confirmation, so API-triggered operations always proceed.
type autoConfirm struct{}

func (autoConfirm) Confirm(string) (bool, error) { return true, nil }

// Server wires the HTTP router to the core components.
type Server struct {
	router    *gin.Engine
	rt        config.Runtime
	store     *pkgdb.Store
	scanner   *installed.Scanner
	installer *installer.Installer
	log       *logging.Logger
	version   string
}

// NewServer constructs the API server and registers its routes.
func NewServer(rt config.Runtime, store *pkgdb.Store, runner shell.Runner, log *logging.Logger, version string) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Accept", "Origin"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		router:    router,
		rt:        rt,
		store:     store,
		scanner:   installed.NewScanner(rt, runner, log),
		installer: installer.New(rt, runner, autoConfirm{}, log, io.Discard),
		log:       log,
		version:   version,
	}

	router.GET("/", s.Root)

	packages := router.Group("/api/packages")
	{
		packages.GET("", s.ListPackages)
		packages.GET("/search", s.SearchPackages)
		packages.POST("/install", s.InstallPackages)
		packages.POST("/remove", s.RemovePackages)
		packages.POST("/upgrade", s.UpgradePackages)
	}

	database := router.Group("/api/database")
	{
		database.GET("/info", s.DatabaseInfo)
		database.POST("/refresh", s.RefreshDatabase)
	}

	external := router.Group("/api/external-packages")
	{
		external.GET("", s.ListExternalPackages)
		external.POST("", s.AddExternalPackage)
		external.DELETE("", s.RemoveExternalPackages)
	}

	router.GET("/api/env", s.Env)

	return s
}

// Router exposes the gin engine, used directly by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Infow("api server listening", "addr", addr)
	return s.router.Run(addr)
}
