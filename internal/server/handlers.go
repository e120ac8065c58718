package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saftree/storagebridge/internal/logging"
	"github.com/saftree/storagebridge/internal/service"
	"github.com/saftree/storagebridge/internal/types"
	"go.uber.org/zap"
)

type handlers struct {
	registry *service.Registry
	log      *logging.Logger
}

func newHandlers(registry *service.Registry, log *logging.Logger) *handlers {
	return &handlers{registry: registry, log: log}
}

// Root identifies the service.
func (h *handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "storagebridge",
		"status":  "running",
	})
}

// Health reports liveness.
func (h *handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Roots is a convenience wrapper over storage.roots.
func (h *handlers) Roots(c *gin.Context) {
	includeSaf := c.Query("include_saf") == "true"
	result, err := h.registry.Execute(c.Request.Context(), "storage.roots",
		map[string]interface{}{"include_saf": includeSaf}, nil)
	if err != nil {
		h.log.Warn("roots failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListServices returns all registered service definitions.
func (h *handlers) ListServices(c *gin.Context) {
	services := h.registry.List(nil)
	c.JSON(http.StatusOK, gin.H{"services": services, "count": len(services)})
}

// ExecuteService runs one tool by ID.
func (h *handlers) ExecuteService(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var appCtx *types.Context
	if req.AppID != nil {
		appCtx = &types.Context{AppID: req.AppID}
	}

	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, appCtx)
	if err != nil {
		h.log.Warn("execute failed", zap.String("tool", req.ToolID), zap.Error(err))
	}
	if result == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "execution produced no result"})
		return
	}
	c.JSON(http.StatusOK, result)
}
