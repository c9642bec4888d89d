package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AstralMortem/go-microservice-template/pkg/apperror"
	"github.com/AstralMortem/go-microservice-template/pkg/logger"
)

// ErrorHandler is the single boundary where service errors become HTTP
// responses. Handlers and middleware attach errors with c.Error; the first
// one is rendered with its status, payload and extra headers. Anything that
// is not a ServiceError becomes a 500 with detail withheld unless debug mode
// is active.
func ErrorHandler(debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors[0].Err
		var serviceErr *apperror.ServiceError
		if !errors.As(err, &serviceErr) {
			logger.Get().Error("unhandled error",
				zap.String("path", c.FullPath()),
				zap.Error(err))
			serviceErr = apperror.Internal(err)
		}

		for key, value := range serviceErr.Headers {
			c.Header(key, value)
		}
		c.JSON(serviceErr.Code, serviceErr.Response(debug))
	}
}
