package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database/models"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/engine"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/types"
)

func (s *Server) addMappingEndPoint(g *echo.Group) {
	mp := g.Group("/mappings")
	mp.POST("", s.createMapping)
	mp.GET("", s.listMappings)
	mp.GET("/:id", s.getMapping)
	mp.PUT("/:id", s.updateMapping)
	mp.DELETE("/:id", s.deleteMapping)
	mp.POST("/:id/sync", s.runMappingSync)
	mp.GET("/:id/logs", s.listMappingLogs)

	g.GET("/sync-logs", s.listRecentSyncLogs)
}

func validDirection(d models.SyncDirection) bool {
	switch d {
	case models.FromPlatform, models.ToPlatform, models.Bidirectional:
		return true
	}
	return false
}

func (s *Server) createMapping(c echo.Context) error {
	ctx := c.Request().Context()

	var req types.FieldMappingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request", "details": err.Error()})
	}

	direction := models.SyncDirection(req.SyncDirection)
	if !validDirection(direction) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sync_direction"})
	}
	if req.SyncIntervalMinutes <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sync_interval_minutes must be positive"})
	}
	if req.DBTable == "" || req.PlatformResource == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "db_table and platform_resource are required"})
	}

	if _, err := s.DB.GetPlatformConnectionByID(ctx, req.PlatformConnectionID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "platform connection not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	if _, err := s.DB.GetDatabaseConnectionByID(ctx, req.DatabaseConnectionID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "database connection not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}

	m := models.FieldMapping{
		PlatformConnectionID: req.PlatformConnectionID,
		DatabaseConnectionID: req.DatabaseConnectionID,
		Name:                 req.Name,
		DBTable:              req.DBTable,
		DBFields:             datatypes.JSONMap(req.DBFields),
		PlatformResource:     req.PlatformResource,
		PlatformFields:       datatypes.JSONMap(req.PlatformFields),
		SyncDirection:        direction,
		SyncIntervalMinutes:  req.SyncIntervalMinutes,
		TransformationRules:  datatypes.JSONMap(req.TransformationRules),
		IsActive:             true,
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := s.DB.CreateFieldMapping(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save", "details": err.Error()})
	}

	s.Scheduler.AddJob(&m)
	return c.JSON(http.StatusCreated, m)
}

func (s *Server) listMappings(c echo.Context) error {
	ctx := c.Request().Context()

	platformConnID, err := queryUint(c, "platform_connection_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid platform_connection_id"})
	}
	dbConnID, err := queryUint(c, "database_connection_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid database_connection_id"})
	}

	mappings, err := s.DB.GetFieldMappings(ctx, platformConnID, dbConnID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, mappings)
}

func (s *Server) getMapping(c echo.Context) error {
	ctx := c.Request().Context()

	m, ok := s.lookupMapping(c, ctx)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, m)
}

func (s *Server) updateMapping(c echo.Context) error {
	ctx := c.Request().Context()

	m, ok := s.lookupMapping(c, ctx)
	if !ok {
		return nil
	}

	var req types.FieldMappingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request", "details": err.Error()})
	}

	if req.Name != "" {
		m.Name = req.Name
	}
	if req.DBTable != "" {
		m.DBTable = req.DBTable
	}
	if req.DBFields != nil {
		m.DBFields = datatypes.JSONMap(req.DBFields)
	}
	if req.PlatformResource != "" {
		m.PlatformResource = req.PlatformResource
	}
	if req.PlatformFields != nil {
		m.PlatformFields = datatypes.JSONMap(req.PlatformFields)
	}
	if req.SyncDirection != "" {
		direction := models.SyncDirection(req.SyncDirection)
		if !validDirection(direction) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sync_direction"})
		}
		m.SyncDirection = direction
	}
	if req.SyncIntervalMinutes != 0 {
		if req.SyncIntervalMinutes < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "sync_interval_minutes must be positive"})
		}
		m.SyncIntervalMinutes = req.SyncIntervalMinutes
	}
	if req.TransformationRules != nil {
		m.TransformationRules = datatypes.JSONMap(req.TransformationRules)
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := s.DB.UpdateFieldMapping(ctx, m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save", "details": err.Error()})
	}

	// Keep the timer in step with the stored interval and active flag.
	s.Scheduler.UpdateJob(m)
	return c.JSON(http.StatusOK, m)
}

func (s *Server) deleteMapping(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	s.Scheduler.RemoveJob(id)
	if err := s.DB.DeleteFieldMapping(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "mapping removed"})
}

func (s *Server) runMappingSync(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	log, err := s.Engine.ExecuteSync(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrMappingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mapping not found"})
		case errors.Is(err, engine.ErrMappingInactive):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "mapping is not active"})
		case errors.Is(err, engine.ErrSyncInProgress):
			return c.JSON(http.StatusConflict, echo.Map{"error": "a sync for this mapping is already running"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sync failed", "details": err.Error()})
	}

	return c.JSON(http.StatusOK, types.ManualSyncResponse{
		SyncLogID:         log.ID.String(),
		Status:            string(log.Status),
		RecordsProcessed:  log.RecordsProcessed,
		RecordsSuccessful: log.RecordsSuccessful,
		RecordsFailed:     log.RecordsFailed,
		Summary:           fmt.Sprintf("%d successful, %d failed", log.RecordsSuccessful, log.RecordsFailed),
	})
}

func (s *Server) listMappingLogs(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	logs, err := s.DB.GetSyncLogsForMapping(ctx, id, queryLimit(c, 50))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, logs)
}

func (s *Server) listRecentSyncLogs(c echo.Context) error {
	ctx := c.Request().Context()

	logs, err := s.DB.GetRecentSyncLogs(ctx, queryLimit(c, 50))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, logs)
}

func (s *Server) lookupMapping(c echo.Context, ctx context.Context) (*models.FieldMapping, bool) {
	id, err := pathID(c)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return nil, false
	}
	m, err := s.DB.GetFieldMappingByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "mapping not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
		}
		return nil, false
	}
	return m, true
}
