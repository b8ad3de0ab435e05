package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-order/utils"
)

type SessionValidator interface {
	Validate(ctx context.Context, table int, token string) bool
}

// TableSession is the customer's table credentials, taken from the query
// string or from the X-Table-* headers.
type TableSession struct {
	Table int    `form:"table" header:"X-Table-Number" binding:"required,min=1"`
	Token string `form:"token" header:"X-Table-Token" binding:"required"`
}

// TableSessionMiddleware rejects requests without a valid table session and
// stores the table number under "table_num".
func TableSessionMiddleware(validator SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var session TableSession
		if c.Query("table") != "" || c.Query("token") != "" {
			if err := c.ShouldBindQuery(&session); err != nil {
				utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid table session"))
				c.Abort()
				return
			}
		} else if err := c.ShouldBindHeader(&session); err != nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("table session missing"))
			c.Abort()
			return
		}

		if !validator.Validate(c.Request.Context(), session.Table, session.Token) {
			utils.InfoLogger.WithFields(logrus.Fields{
				"table": session.Table,
				"ip":    c.ClientIP(),
			}).Warn("Rejected table session")
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid table session"))
			c.Abort()
			return
		}

		c.Set("table_num", session.Table)
		c.Next()
	}
}
