package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) addDashboardEndPoint(g *echo.Group) {
	g.GET("/dashboard", s.getDashboard)
}

func (s *Server) getDashboard(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := s.DB.GetDashboardStats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}
