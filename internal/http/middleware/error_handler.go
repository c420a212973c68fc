package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/workmatch/marketplace-backend/internal/interface/http/response"
	"github.com/workmatch/marketplace-backend/internal/logger"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// Recovery перехватывает панику в обработчике и отвечает 500 в общем конверте.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Log.WithFields(logrus.Fields{
			"panic":  recovered,
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("паника при обработке запроса")
		response.Error(c, apperror.New(apperror.ErrCodeInternal, "внутренняя ошибка сервера"))
	})
}

// RequestLogger пишет метод, путь, статус и длительность каждого запроса.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logger.Log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		if userID, ok := c.Get(ContextUserIDKey); ok {
			entry = entry.WithField("user_id", userID)
		}

		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
