package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database/models"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/platform"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/types"
)

func (s *Server) addPlatformEndPoint(g *echo.Group) {
	conn := g.Group("/platforms")
	conn.POST("/connect", s.connectPlatform)
	conn.GET("", s.listPlatformConnections)
	conn.GET("/:id", s.getPlatformConnection)
	conn.PUT("/:id", s.updatePlatformConnection)
	conn.DELETE("/:id", s.deletePlatformConnection)
	conn.POST("/:id/test", s.testPlatformConnection)
	conn.GET("/:id/resources", s.listPlatformResources)
	conn.GET("/:id/resources/:resource/fields", s.listPlatformResourceFields)
}

func (s *Server) connectPlatform(c echo.Context) error {
	ctx := c.Request().Context()

	var req types.PlatformConnectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request", "details": err.Error()})
	}

	pt := models.PlatformType(req.PlatformType)
	switch pt {
	case models.Shopify:
		if req.AccessToken == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "access_token is required for shopify"})
		}
	case models.WooCommerce:
		if req.APIKey == "" || req.APISecret == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "api_key and api_secret are required for woocommerce"})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported platform"})
	}
	if req.ShopURL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shop_url is required"})
	}

	if _, err := s.DB.GetProfileByID(ctx, req.BusinessProfileID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "business profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}

	conn := models.PlatformConnection{
		BusinessProfileID: req.BusinessProfileID,
		Name:              req.Name,
		PlatformType:      pt,
		ShopURL:           req.ShopURL,
		Status:            models.ConnActive,
		IsActive:          true,
	}

	var err error
	if conn.APIKey, err = s.Secrets.Encrypt(req.APIKey); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to encrypt credentials", "details": err.Error()})
	}
	if conn.APISecret, err = s.Secrets.Encrypt(req.APISecret); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to encrypt credentials", "details": err.Error()})
	}
	if conn.AccessToken, err = s.Secrets.Encrypt(req.AccessToken); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to encrypt credentials", "details": err.Error()})
	}

	client, err := platform.New(&conn, s.Secrets)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid configuration", "details": err.Error()})
	}
	defer client.Close()
	if err := client.TestConnection(ctx); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to connect to platform", "details": err.Error()})
	}

	if err := s.DB.CreatePlatformConnection(ctx, &conn); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save", "details": err.Error()})
	}
	return c.JSON(http.StatusCreated, connView(&conn))
}

func (s *Server) listPlatformConnections(c echo.Context) error {
	ctx := c.Request().Context()

	profileID, err := queryUint(c, "profile_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile_id"})
	}

	conns, err := s.DB.GetPlatformConnections(ctx, profileID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	out := make([]echo.Map, 0, len(conns))
	for i := range conns {
		out = append(out, connView(&conns[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getPlatformConnection(c echo.Context) error {
	ctx := c.Request().Context()

	conn, ok := s.lookupPlatformConnection(c, ctx)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, connView(conn))
}

func (s *Server) updatePlatformConnection(c echo.Context) error {
	ctx := c.Request().Context()

	conn, ok := s.lookupPlatformConnection(c, ctx)
	if !ok {
		return nil
	}

	var err error
	var req types.PlatformConnectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request", "details": err.Error()})
	}
	if req.Name != "" {
		conn.Name = req.Name
	}
	if req.ShopURL != "" {
		conn.ShopURL = req.ShopURL
	}
	// Re-encrypt only the credentials the caller replaced.
	if req.APIKey != "" {
		if conn.APIKey, err = s.Secrets.Encrypt(req.APIKey); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to encrypt credentials", "details": err.Error()})
		}
	}
	if req.APISecret != "" {
		if conn.APISecret, err = s.Secrets.Encrypt(req.APISecret); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to encrypt credentials", "details": err.Error()})
		}
	}
	if req.AccessToken != "" {
		if conn.AccessToken, err = s.Secrets.Encrypt(req.AccessToken); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to encrypt credentials", "details": err.Error()})
		}
	}

	if err := s.DB.UpdatePlatformConnection(ctx, conn); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, connView(conn))
}

func (s *Server) deletePlatformConnection(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	n, err := s.DB.CountMappingsForConnection(ctx, id, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	if n > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":    "connection has field mappings, delete them first",
			"mappings": n,
		})
	}

	if err := s.DB.DeletePlatformConnection(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "connection removed"})
}

func (s *Server) testPlatformConnection(c echo.Context) error {
	ctx := c.Request().Context()

	conn, ok := s.lookupPlatformConnection(c, ctx)
	if !ok {
		return nil
	}

	client, err := platform.New(conn, s.Secrets)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid configuration", "details": err.Error()})
	}
	defer client.Close()

	if err := client.TestConnection(ctx); err != nil {
		conn.Status = models.ConnError
		_ = s.DB.UpdatePlatformConnection(ctx, conn)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to connect to platform", "details": err.Error()})
	}

	conn.Status = models.ConnActive
	if err := s.DB.UpdatePlatformConnection(ctx, conn); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "connection ok"})
}

func (s *Server) listPlatformResources(c echo.Context) error {
	ctx := c.Request().Context()

	conn, ok := s.lookupPlatformConnection(c, ctx)
	if !ok {
		return nil
	}

	resources, err := platform.Resources(conn.PlatformType)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"resources": resources})
}

func (s *Server) listPlatformResourceFields(c echo.Context) error {
	ctx := c.Request().Context()

	conn, ok := s.lookupPlatformConnection(c, ctx)
	if !ok {
		return nil
	}

	fields, err := platform.ResourceFields(conn.PlatformType, c.Param("resource"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"fields": fields})
}

// lookupPlatformConnection resolves :id, writing the error response itself
// when the lookup fails.
func (s *Server) lookupPlatformConnection(c echo.Context, ctx context.Context) (*models.PlatformConnection, bool) {
	id, err := pathID(c)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return nil, false
	}
	conn, err := s.DB.GetPlatformConnectionByID(ctx, id)
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

// connView hides the encrypted credential columns.
func connView(conn *models.PlatformConnection) echo.Map {
	return echo.Map{
		"id":                  conn.ID,
		"business_profile_id": conn.BusinessProfileID,
		"name":                conn.Name,
		"platform_type":       conn.PlatformType,
		"shop_url":            conn.ShopURL,
		"status":              conn.Status,
		"last_sync":           conn.LastSync,
		"is_active":           conn.IsActive,
		"created_at":          conn.CreatedAt,
		"updated_at":          conn.UpdatedAt,
	}
}
