package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

func (s *Server) jwtMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Parse JWT automatically from Authorization: Bearer <token>
		token, err := jwt.ParseRequest(
			c.Request(),
			jwt.WithKey(jwa.HS256(), s.JWTSecret),
		)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
		}

		sub, ok := token.Subject()
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing subject claim"})
		}

		// Save in Echo context
		c.Set("user_id", sub)

		return next(c)
	}
}
