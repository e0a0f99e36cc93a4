package middleware

import (
	"errors"

	"airdrop-ledger/pkg/errutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error renders the last error attached to the context. BaseError values
// keep their status; anything else becomes a 500 without leaking details.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var be errutil.BaseError
		if errors.As(last.Err, &be) {
			c.JSON(be.Code.HTTPStatus(), be.JSON())
			return
		}

		zap.L().Error("unhandled request error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(last.Err),
		)
		internal := errutil.Internal("internal server error", nil).(errutil.BaseError)
		c.JSON(internal.Code.HTTPStatus(), internal.JSON())
	}
}
