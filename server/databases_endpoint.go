package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database/models"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/databases"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/types"
)

func (s *Server) addDBConnectionEndPoint(g *echo.Group) {
	conn := g.Group("/databases")
	conn.POST("/connect", s.connectDatabase)
	conn.GET("", s.listDatabaseConnections)
	conn.GET("/:id", s.getDatabaseConnection)
	conn.PUT("/:id", s.updateDatabaseConnection)
	conn.DELETE("/:id", s.deleteDatabaseConnection)
	conn.POST("/:id/test", s.testDatabaseConnection)
	conn.GET("/:id/tables", s.listDatabaseTables)
	conn.GET("/:id/tables/:table/schema", s.getTableSchema)
}

func (s *Server) connectDatabase(c echo.Context) error {
	ctx := c.Request().Context()

	var req types.DBConnectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request", "details": err.Error()})
	}

	if _, err := databases.DriverName(req.Engine); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported database"})
	}

	if _, err := s.DB.GetProfileByID(ctx, req.BusinessProfileID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "business profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}

	dsn, err := databases.BuildDSN(req.Engine, req.Host, req.Port, req.Database, req.Username, req.Password, req.Params)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid configuration", "details": err.Error()})
	}
	if err := databases.TestConnection(ctx, req.Engine, dsn); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to connect to database", "details": err.Error()})
	}

	conn := models.DatabaseConnection{
		BusinessProfileID: req.BusinessProfileID,
		Name:              req.Name,
		Engine:            req.Engine,
		Host:              req.Host,
		Port:              req.Port,
		DatabaseName:      req.Database,
		Params:            datatypes.JSONMap(req.Params),
		Status:            models.ConnActive,
		IsActive:          true,
	}
	if conn.Username, err = s.Secrets.Encrypt(req.Username); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to encrypt credentials", "details": err.Error()})
	}
	if conn.Password, err = s.Secrets.Encrypt(req.Password); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to encrypt credentials", "details": err.Error()})
	}

	if err := s.DB.CreateDatabaseConnection(ctx, &conn); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save", "details": err.Error()})
	}
	return c.JSON(http.StatusCreated, dbConnView(&conn))
}

func (s *Server) listDatabaseConnections(c echo.Context) error {
	ctx := c.Request().Context()

	profileID, err := queryUint(c, "profile_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile_id"})
	}

	conns, err := s.DB.GetDatabaseConnections(ctx, profileID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	out := make([]echo.Map, 0, len(conns))
	for i := range conns {
		out = append(out, dbConnView(&conns[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getDatabaseConnection(c echo.Context) error {
	ctx := c.Request().Context()

	conn, ok := s.lookupDatabaseConnection(c, ctx)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, dbConnView(conn))
}

func (s *Server) updateDatabaseConnection(c echo.Context) error {
	ctx := c.Request().Context()

	conn, ok := s.lookupDatabaseConnection(c, ctx)
	if !ok {
		return nil
	}

	var err error
	var req types.DBConnectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request", "details": err.Error()})
	}

	if req.Name != "" {
		conn.Name = req.Name
	}
	if req.Host != "" {
		conn.Host = req.Host
	}
	if req.Port != 0 {
		conn.Port = req.Port
	}
	if req.Database != "" {
		conn.DatabaseName = req.Database
	}
	if req.Params != nil {
		conn.Params = datatypes.JSONMap(req.Params)
	}
	// Re-encrypt only the credentials the caller replaced.
	if req.Username != "" {
		if conn.Username, err = s.Secrets.Encrypt(req.Username); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to encrypt credentials", "details": err.Error()})
		}
	}
	if req.Password != "" {
		if conn.Password, err = s.Secrets.Encrypt(req.Password); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to encrypt credentials", "details": err.Error()})
		}
	}

	if err := s.DB.UpdateDatabaseConnection(ctx, conn); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save", "details": err.Error()})
	}

	// Drop any cached client built with the old settings.
	s.Pools.CloseConn(conn.ID)
	return c.JSON(http.StatusOK, dbConnView(conn))
}

func (s *Server) deleteDatabaseConnection(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	n, err := s.DB.CountMappingsForConnection(ctx, 0, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	if n > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":    "connection has field mappings, delete them first",
			"mappings": n,
		})
	}

	if err := s.DB.DeleteDatabaseConnection(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	s.Pools.CloseConn(id)
	return c.JSON(http.StatusOK, echo.Map{"message": "connection removed"})
}

func (s *Server) testDatabaseConnection(c echo.Context) error {
	ctx := c.Request().Context()

	conn, ok := s.lookupDatabaseConnection(c, ctx)
	if !ok {
		return nil
	}

	client, err := s.Pools.Get(ctx, conn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to connect to database", "details": err.Error()})
	}
	if err := client.TestConnection(ctx); err != nil {
		s.Pools.CloseConn(conn.ID)
		conn.Status = models.ConnError
		_ = s.DB.UpdateDatabaseConnection(ctx, conn)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to connect to database", "details": err.Error()})
	}

	conn.Status = models.ConnActive
	if err := s.DB.UpdateDatabaseConnection(ctx, conn); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "connection ok"})
}

func (s *Server) listDatabaseTables(c echo.Context) error {
	ctx := c.Request().Context()

	conn, ok := s.lookupDatabaseConnection(c, ctx)
	if !ok {
		return nil
	}

	client, err := s.Pools.Get(ctx, conn)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to connect to database", "details": err.Error()})
	}
	tables, err := client.Tables(ctx)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to list tables", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": tables})
}

func (s *Server) getTableSchema(c echo.Context) error {
	ctx := c.Request().Context()

	conn, ok := s.lookupDatabaseConnection(c, ctx)
	if !ok {
		return nil
	}

	client, err := s.Pools.Get(ctx, conn)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to connect to database", "details": err.Error()})
	}
	schema, err := client.TableSchema(ctx, c.Param("table"))
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to read table schema", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, schema)
}

func (s *Server) lookupDatabaseConnection(c echo.Context, ctx context.Context) (*models.DatabaseConnection, bool) {
	id, err := pathID(c)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return nil, false
	}
	conn, err := s.DB.GetDatabaseConnectionByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "connection not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
		}
		return nil, false
	}
	return conn, true
}

// dbConnView hides the encrypted credential columns.
func dbConnView(conn *models.DatabaseConnection) echo.Map {
	return echo.Map{
		"id":                  conn.ID,
		"business_profile_id": conn.BusinessProfileID,
		"name":                conn.Name,
		"engine":              conn.Engine,
		"host":                conn.Host,
		"port":                conn.Port,
		"database":            conn.DatabaseName,
		"params":              conn.Params,
		"status":              conn.Status,
		"is_active":           conn.IsActive,
		"created_at":          conn.CreatedAt,
		"updated_at":          conn.UpdatedAt,
	}
}
