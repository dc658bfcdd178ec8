package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	app "device-inspector/internal/application"
	"device-inspector/internal/domain/entity"
	"device-inspector/internal/logger"
)

const maxErrorDetail = 200

// Inspector то, что HTTP-слою нужно от оркестратора.
type Inspector interface {
	Inspect(ctx context.Context, req app.InspectionRequest) (*entity.InspectionResult, error)
	History(ctx context.Context, limit int) ([]*entity.InspectionResult, error)
	Find(ctx context.Context, id string) (*entity.InspectionResult, error)
	ModelLoaded() bool
}

type InspectionHandler struct {
	inspector    Inspector
	historyLimit int
	logger       *logger.Logger
}

func NewInspectionHandler(inspector Inspector, historyLimit int, log *logger.Logger) *InspectionHandler {
	if log == nil {
		log = logger.Discard()
	}
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &InspectionHandler{inspector: inspector, historyLimit: historyLimit, logger: log}
}

// GET /health
func (h *InspectionHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"model_loaded": h.inspector.ModelLoaded(),
	})
}

// POST /api/inspect
func (h *InspectionHandler) Inspect(c *gin.Context) {
	var req InspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request: " + err.Error()})
		return
	}

	images := make(map[string][]byte, len(req.Images))
	for view, encoded := range req.Images {
		// Неизвестные ракурсы не декодируем: оркестратор их отбросит.
		if _, ok := entity.ParseView(view); !ok {
			images[view] = nil
			continue
		}
		data, err := decodeImage(encoded)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("invalid base64 for %s image", view)})
			return
		}
		images[view] = data
	}

	result, err := h.inspector.Inspect(c.Request.Context(), app.InspectionRequest{
		Images:        images,
		BatteryHealth: req.BatteryHealth,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(result))
}

// GET /api/inspections?limit=N
func (h *InspectionHandler) List(c *gin.Context) {
	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be a positive integer"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	results, err := h.inspector.History(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to load history"})
		return
	}

	out := make([]InspectResponse, 0, len(results))
	for _, r := range results {
		out = append(out, toResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/inspections/:id
func (h *InspectionHandler) Get(c *gin.Context) {
	result, err := h.inspector.Find(c.Request.Context(), c.Param("id"))
	if errors.Is(err, entity.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "inspection not found"})
		return
	}
	if err != nil {
		h.logger.Error("find inspection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to load inspection"})
		return
	}

	c.JSON(http.StatusOK, toResponse(result))
}

func (h *InspectionHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidInput), errors.Is(err, entity.ErrDecode):
		h.logger.Warning("inspection rejected: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": truncate(err.Error(), maxErrorDetail)})
	default:
		h.logger.Error("inspection failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": "inspection failed: " + truncate(err.Error(), maxErrorDetail),
		})
	}
}
