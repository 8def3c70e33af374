package middleware

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/errors"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/model/rest"
)

// HandleErrors turns errors attached to the gin context into the wire
// envelope. Handlers call c.Error(err) and return; the status code and
// label come from the error's internal code.
func HandleErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		for i := range c.Errors[1:] {
			log.Errorf("request %s carried a subsequent error %d: %v", c.Request.URL.Path, i+1, c.Errors[i+1])
		}

		err := c.Errors[0].Err
		var coded *errors.Error
		if stderrors.As(err, &coded) {
			status, label := rest.StatusOf(coded.Code)
			if status >= http.StatusInternalServerError {
				log.Errorf("request %s %s failed: code=%d message=%q err=%v",
					c.Request.Method, c.Request.URL.Path, coded.Code, coded.Message, coded.InnerError)
			} else {
				log.Warnf("request %s %s rejected: code=%d message=%q",
					c.Request.Method, c.Request.URL.Path, coded.Code, coded.Message)
			}
			c.AbortWithStatusJSON(status, rest.ErrorResp(label, coded.Message))
			return
		}

		log.Errorf("request %s %s failed with unclassified error: %+v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, rest.ErrorResp(rest.ErrInternal, "unexpected error"))
	}
}
