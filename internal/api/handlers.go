package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/five82/jotter/internal/item"
)

// ItemService is the operation set the HTTP surface exposes.
type ItemService interface {
	List(ctx context.Context) ([]item.Item, error)
	Get(ctx context.Context, id string) (item.Item, error)
	Create(ctx context.Context, in item.Input) (item.Item, error)
	Update(ctx context.Context, id string, patch item.Patch) (item.Item, error)
	Delete(ctx context.Context, id string) error
}

// Handler holds the dependencies of the item routes.
type Handler struct {
	Items  ItemService
	Logger *slog.Logger
}

// NewHandler creates a handler. A nil logger discards output.
func NewHandler(items ItemService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{Items: items, Logger: logger}
}

// ListItems returns all items, newest first.
func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.Items.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetItem returns one item.
func (h *Handler) GetItem(c *gin.Context) {
	it, err := h.Items.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// CreateItem creates an item from {title, description}.
func (h *Handler) CreateItem(c *gin.Context) {
	var body item.Input
	if err := c.ShouldBindJSON(&body); err != nil {
		h.jsonError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	it, err := h.Items.Create(c.Request.Context(), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

// UpdateItem applies a partial {title?, description?} update.
func (h *Handler) UpdateItem(c *gin.Context) {
	// Pointer fields tell an absent field apart from an empty one.
	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.jsonError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	patch := item.Patch{Title: body.Title, Description: body.Description}
	it, err := h.Items.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// DeleteItem removes an item and answers with no body.
func (h *Handler) DeleteItem(c *gin.Context) {
	if err := h.Items.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps the item error taxonomy onto status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, item.ErrValidation):
		h.jsonError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, item.ErrNotFound):
		h.jsonError(c, http.StatusNotFound, err.Error())
	default:
		h.Logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		h.jsonError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) jsonError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}
