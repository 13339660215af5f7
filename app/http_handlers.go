package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func Home(c *gin.Context) {
	c.String(http.StatusOK, "Underfish bot is alive!")
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetRecentGames returns the newest stored game records. Empty when no DB is
// configured.
func GetRecentGames(c *gin.Context) {
	limit := 20
	if q := c.Query("limit"); q != "" {
		if v, err := parsePositiveInt(q); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	games, err := LoadRecentGames(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(games),
		"games": games,
	})
}
