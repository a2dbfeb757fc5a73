package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) addSchedulerEndPoint(g *echo.Group) {
	g.GET("/scheduler/jobs", s.listSchedulerJobs)
}

func (s *Server) listSchedulerJobs(c echo.Context) error {
	jobs := s.Scheduler.Jobs()
	return c.JSON(http.StatusOK, echo.Map{
		"jobs":  jobs,
		"total": len(jobs),
	})
}
