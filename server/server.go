package server

import (
	"fmt"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/databases"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/engine"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/scheduler"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/secrets"
)

type Server struct {
	Port      int
	DB        database.DB
	Secrets   *secrets.Manager
	Engine    *engine.Engine
	Scheduler *scheduler.Scheduler
	Pools     *databases.PoolManager
	JWTSecret []byte
}

func NewServer(serv *Server) *http.Server {

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", serv.Port),
		Handler:      serv.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
