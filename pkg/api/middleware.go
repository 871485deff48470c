package api

import (
	"time"

	"github.com/chenBenjamin97/lunge-classifier/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//Logger logs every request with zap
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		utils.Logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("cost", time.Since(start)),
		)
	}
}
