package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database/models"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/types"
)

func (s *Server) addProfileEndPoint(g *echo.Group) {
	prof := g.Group("/profiles")
	prof.POST("", s.createProfile)
	prof.GET("", s.listProfiles)
	prof.GET("/:id", s.getProfile)
	prof.PUT("/:id", s.updateProfile)
	prof.DELETE("/:id", s.deleteProfile)
}

func (s *Server) createProfile(c echo.Context) error {
	ctx := c.Request().Context()

	var req types.ProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request", "details": err.Error()})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	prof := models.BusinessProfile{
		Name:         req.Name,
		Description:  req.Description,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		IsActive:     true,
	}
	if req.IsActive != nil {
		prof.IsActive = *req.IsActive
	}

	if err := s.DB.CreateProfile(ctx, &prof); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save", "details": err.Error()})
	}
	return c.JSON(http.StatusCreated, prof)
}

func (s *Server) listProfiles(c echo.Context) error {
	ctx := c.Request().Context()

	profiles, err := s.DB.GetProfiles(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, profiles)
}

func (s *Server) getProfile(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	prof, err := s.DB.GetProfileByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, prof)
}

func (s *Server) updateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	prof, err := s.DB.GetProfileByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}

	var req types.ProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request", "details": err.Error()})
	}
	if req.Name != "" {
		prof.Name = req.Name
	}
	if req.Description != "" {
		prof.Description = req.Description
	}
	if req.ContactEmail != "" {
		prof.ContactEmail = req.ContactEmail
	}
	if req.ContactPhone != "" {
		prof.ContactPhone = req.ContactPhone
	}
	if req.IsActive != nil {
		prof.IsActive = *req.IsActive
	}

	if err := s.DB.UpdateProfile(ctx, prof); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, prof)
}

func (s *Server) deleteProfile(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	if err := s.DB.DeleteProfile(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile removed"})
}
