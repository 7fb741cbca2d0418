package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hbpm-labs/hbpm/internal/branding"
	"github.com/hbpm-labs/hbpm/internal/config"
	"github.com/hbpm-labs/hbpm/internal/installed"
	"github.com/hbpm-labs/hbpm/internal/pkgdb"
	"github.com/hbpm-labs/hbpm/internal/query"
)

// Root handles the health check.
func (s *Server) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": branding.CLIName(),
		"version": s.version,
	})
}

// catalog loads the merged catalog and annotates installed packages.
// Upstream fetch failures degrade to whatever could be loaded.
func (s *Server) catalog(c *gin.Context, forceRefresh bool) (pkgdb.Catalog, bool) {
	catalog, err := s.store.Load(c.Request.Context(), forceRefresh)
	if err != nil {
		if errors.Is(err, pkgdb.ErrUpstreamUnavailable) {
			s.log.Warnw("serving degraded catalog", "error", err)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return nil, false
		}
	}

	correlated, err := s.scanner.Correlate(c.Request.Context(), catalog)
	if err != nil {
		if errors.Is(err, installed.ErrPluginsRootNotFound) {
			// No dashboard checkout yet: serve the catalog unannotated.
			return catalog, true
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return correlated, true
}

// ListPackages returns the full merged catalog.
func (s *Server) ListPackages(c *gin.Context) {
	catalog, ok := s.catalog(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"packages": catalog,
		"count":    catalog.Count(),
	})
}

// SearchPackages filters the catalog by the q query parameter.
func (s *Server) SearchPackages(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}

	catalog, ok := s.catalog(c, false)
	if !ok {
		return
	}

	results := query.Search(catalog, q, query.SearchOptions{
		CaseSensitive: c.Query("case_sensitive") == "true",
		TitleOnly:     c.Query("title_only") == "true",
	})
	c.JSON(http.StatusOK, gin.H{
		"query":    q,
		"packages": results,
		"count":    results.Count(),
	})
}

type titlesRequest struct {
	Titles []string `json:"titles" binding:"required"`
}

// InstallPackages installs the requested titles without prompting.
func (s *Server) InstallPackages(c *gin.Context) {
	var req titlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	catalog, ok := s.catalog(c, false)
	if !ok {
		return
	}

	candidates, dropped := query.ResolveCandidates(catalog, req.Titles, s.rt.SelfName)
	report, err := s.installer.Install(c.Request.Context(), candidates)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pkgdb.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error(), "dropped": dropped})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   report.Success(),
		"installed": report.Installed,
		"conflicts": report.Conflicts,
		"failed":    report.Failed,
		"dropped":   dropped,
	})
}

// RemovePackages removes the requested installed titles without prompting.
func (s *Server) RemovePackages(c *gin.Context) {
	var req titlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	catalog, ok := s.catalog(c, false)
	if !ok {
		return
	}

	report, err := s.installer.Remove(c.Request.Context(), catalog, req.Titles)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pkgdb.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   report.Success(),
		"removed":   report.Removed,
		"not_found": report.NotFound,
		"failed":    report.Failed,
	})
}

// UpgradePackages upgrades the requested titles, or every installed
// package when the list is empty.
func (s *Server) UpgradePackages(c *gin.Context) {
	var req titlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	catalog, ok := s.catalog(c, false)
	if !ok {
		return
	}

	report, err := s.installer.Upgrade(c.Request.Context(), catalog, req.Titles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   report.Success(),
		"upgraded":  report.Upgraded,
		"not_found": report.NotFound,
		"failed":    report.Failed,
	})
}

// DatabaseInfo reports snapshot freshness and size.
func (s *Server) DatabaseInfo(c *gin.Context) {
	catalog, ok := s.catalog(c, false)
	if !ok {
		return
	}

	last, next := s.store.SnapshotAge()
	c.JSON(http.StatusOK, gin.H{
		"categories":   len(catalog),
		"packages":     catalog.Count(),
		"last_refresh": last,
		"next_refresh": next,
	})
}

// RefreshDatabase forces a catalog refetch.
func (s *Server) RefreshDatabase(c *gin.Context) {
	catalog, err := s.store.Load(c.Request.Context(), true)
	if err != nil {
		if errors.Is(err, pkgdb.ErrUpstreamUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"packages": catalog.Count(),
	})
}

// ListExternalPackages returns the user-maintained package list.
func (s *Server) ListExternalPackages(c *gin.Context) {
	packages, err := s.store.External().Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if packages == nil {
		packages = []pkgdb.Package{}
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

// AddExternalPackage appends an entry to the external-sources file.
func (s *Server) AddExternalPackage(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Author      string `json:"author" binding:"required"`
		Repository  string `json:"repository" binding:"required"`
		Description string `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pkg := pkgdb.Package{
		Title:       req.Title,
		Author:      req.Author,
		Repository:  req.Repository,
		Description: req.Description,
	}
	if err := s.store.External().Add(pkg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "title": pkg.Title})
}

// RemoveExternalPackages deletes matching entries without prompting.
func (s *Server) RemoveExternalPackages(c *gin.Context) {
	var req titlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.External().Remove(req.Titles, autoConfirm{}); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pkgdb.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Env reports the effective environment configuration.
func (s *Server) Env(c *gin.Context) {
	c.JSON(http.StatusOK, config.EnvVars(s.rt))
}
