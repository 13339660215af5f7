// Package app wires the keep-alive HTTP surface next to the bot loop.
package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the keep-alive HTTP router. Hosting platforms ping "/" to
// keep the process alive; the rest is a small read-only status surface.
func NewRouter() *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/", Home)
	router.GET("/health", Health)
	router.GET("/games/recent", GetRecentGames)

	return router
}
