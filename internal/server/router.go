package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bijuli74/devops-capstone-project/internal/handler"
	"github.com/bijuli74/devops-capstone-project/internal/middleware"
)

// Handlers groups everything the route table dispatches to.
type Handlers struct {
	Accounts *handler.AccountHandler
	System   *handler.SystemHandler
}

// NewRouter builds the gin engine with the full route table.
func NewRouter(h Handlers, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.LoggingMiddleware(logger), middleware.Recovery(logger))

	router.NoRoute(func(c *gin.Context) {
		middleware.RespondWithError(c, http.StatusNotFound, "The requested URL was not found on the server")
	})
	router.NoMethod(func(c *gin.Context) {
		middleware.RespondWithError(c, http.StatusMethodNotAllowed, "The method is not allowed for the requested URL")
	})

	router.GET("/health", h.System.Health)
	router.GET("/", h.System.Index)

	accounts := router.Group("/accounts")
	{
		accounts.POST("", h.Accounts.CreateAccount)
		accounts.GET("", h.Accounts.ListAccounts)
		accounts.GET("/:id", h.Accounts.GetAccount)
		accounts.PUT("/:id", h.Accounts.UpdateAccount)
		accounts.DELETE("/:id", h.Accounts.DeleteAccount)
	}

	return router
}
