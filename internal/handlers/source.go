package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/content-discovery/internal/events"
	"github.com/jonesrussell/content-discovery/internal/importer"
	"github.com/jonesrussell/content-discovery/internal/logger"
	"github.com/jonesrussell/content-discovery/internal/models"
	"github.com/jonesrussell/content-discovery/internal/repository"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// SourceStore is the registry surface the source handlers need.
type SourceStore interface {
	Create(ctx context.Context, source *models.Source) error
	GetByID(ctx context.Context, id string) (*models.Source, error)
	ListPaginated(ctx context.Context, filter repository.ListFilter) ([]models.Source, error)
	Count(ctx context.Context, filter repository.ListFilter) (int, error)
	Update(ctx context.Context, source *models.Source) error
	Delete(ctx context.Context, id string) error
	UpsertSourcesTx(ctx context.Context, sources []*models.Source) (created, updated int, err error)
}

type SourceHandler struct {
	store     SourceStore
	publisher *events.Publisher
	logger    logger.Logger
}

func NewSourceHandler(store SourceStore, publisher *events.Publisher, log logger.Logger) *SourceHandler {
	return &SourceHandler{
		store:     store,
		publisher: publisher,
		logger:    log,
	}
}

func (h *SourceHandler) Create(c *gin.Context) {
	var source models.Source
	if err := c.ShouldBindJSON(&source); err != nil {
		h.logger.Debug("Invalid request body",
			logger.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := source.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Create(c.Request.Context(), &source); err != nil {
		h.logger.Error("Failed to create source",
			logger.String("source_name", source.Name),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create source"})
		return
	}

	h.logger.Info("Source created",
		logger.String("source_id", source.ID),
		logger.String("source_name", source.Name),
	)

	h.publisher.PublishAsync(events.SourceEvent{
		EventType:  events.SourceCreated,
		SourceID:   source.ID,
		SourceName: source.Name,
	})

	c.JSON(http.StatusCreated, source)
}

func (h *SourceHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	source, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
			return
		}
		h.logger.Error("Failed to get source",
			logger.String("source_id", id),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get source"})
		return
	}

	c.JSON(http.StatusOK, source)
}

func (h *SourceHandler) List(c *gin.Context) {
	filter := listFilterFromQuery(c)

	sources, err := h.store.ListPaginated(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list sources",
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sources"})
		return
	}

	total, err := h.store.Count(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to count sources",
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sources"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": sources,
		"count":   len(sources),
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

func (h *SourceHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var source models.Source
	if err := c.ShouldBindJSON(&source); err != nil {
		h.logger.Debug("Invalid request body",
			logger.String("source_id", id),
			logger.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	source.ID = id

	if err := h.store.Update(c.Request.Context(), &source); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
			return
		}
		h.logger.Error("Failed to update source",
			logger.String("source_id", id),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update source"})
		return
	}

	h.logger.Info("Source updated",
		logger.String("source_id", id),
		logger.String("source_name", source.Name),
	)

	h.publisher.PublishAsync(events.SourceEvent{
		EventType:  events.SourceUpdated,
		SourceID:   id,
		SourceName: source.Name,
	})

	// Fetch updated source
	updated, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusOK, source)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *SourceHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
			return
		}
		h.logger.Error("Failed to delete source",
			logger.String("source_id", id),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete source"})
		return
	}

	h.logger.Info("Source deleted",
		logger.String("source_id", id),
	)

	h.publisher.PublishAsync(events.SourceEvent{
		EventType: events.SourceDeleted,
		SourceID:  id,
	})

	c.JSON(http.StatusNoContent, nil)
}

// Import bulk-loads sources from an uploaded xlsx spreadsheet.
func (h *SourceHandler) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload", "details": err.Error()})
		return
	}
	defer file.Close()

	result, err := importer.Parse(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse spreadsheet", "details": err.Error()})
		return
	}

	created, updated, err := h.store.UpsertSourcesTx(c.Request.Context(), result.Sources)
	if err != nil {
		h.logger.Error("Failed to import sources",
			logger.Int("rows", len(result.Sources)),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import sources"})
		return
	}

	h.logger.Info("Sources imported",
		logger.Int("created", created),
		logger.Int("updated", updated),
		logger.Int("skipped", len(result.Errors)),
	)

	c.JSON(http.StatusOK, gin.H{
		"created": created,
		"updated": updated,
		"errors":  result.Errors,
	})
}

func listFilterFromQuery(c *gin.Context) repository.ListFilter {
	filter := repository.ListFilter{
		Limit:     defaultPageLimit,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Search:    c.Query("search"),
	}

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = min(limit, maxPageLimit)
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	if active, err := strconv.ParseBool(c.Query("active")); err == nil {
		filter.Active = &active
	}

	return filter
}
