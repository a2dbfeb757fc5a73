package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/types"
)

const tokenTTL = 8 * time.Hour

func (s *Server) loginHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var req types.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request", "details": err.Error()})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	user, err := s.DB.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect username or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db_error", "details": err.Error()})
	}
	if !user.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "inactive user"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect username or password"})
	}

	now := time.Now()
	tok, err := jwt.NewBuilder().
		Subject(user.Username).
		IssuedAt(now).
		Expiration(now.Add(tokenTTL)).
		Build()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build token", "details": err.Error()})
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), s.JWTSecret))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to sign token", "details": err.Error()})
	}

	return c.JSON(http.StatusOK, types.TokenResponse{
		AccessToken: string(signed),
		TokenType:   "bearer",
	})
}
