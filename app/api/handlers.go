package api

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"bundletrack/app/snapshot"
)

type Handler struct {
	store   *snapshot.Store
	version string
}

func NewHandler(store *snapshot.Store, version string) *Handler {
	return &Handler{
		store:   store,
		version: version,
	}
}

// GetSnapshot serves the published snapshot document verbatim. Reading the
// file per request is deliberate: the pipeline replaces it atomically, so a
// plain read always observes a complete document.
func (h *Handler) GetSnapshot(c *gin.Context) {
	data, err := os.ReadFile(h.store.Path())
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot published yet"})
			return
		}
		slog.Error("Failed to read snapshot", "path", h.store.Path(), "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	snap, err := h.store.Load()
	if err != nil {
		health["status"] = "degraded"
		health["snapshot_error"] = err.Error()
		c.JSON(http.StatusOK, health)
		return
	}

	if snap.Meta.GeneratedAt != "" {
		health["generated_at"] = snap.Meta.GeneratedAt
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	snap, err := h.store.Load()
	if err != nil {
		slog.Error("Failed to load snapshot", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	perBundle := make(map[string]int)
	for _, item := range snap.Items {
		perBundle[item.Bundle]++
	}

	c.JSON(http.StatusOK, gin.H{
		"generated_at":     snap.Meta.GeneratedAt,
		"bundles_count":    snap.Meta.BundlesCount,
		"queries_count":    snap.Meta.QueriesCount,
		"items_count":      len(snap.Items),
		"items_per_bundle": perBundle,
	})
}
