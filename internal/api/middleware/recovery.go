package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
)

// Recovery converts panics into a 500 JSON response so no failure mode
// escapes as an unhandled crash.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				gin.DefaultErrorWriter.Write([]byte(
					"[PANIC] " + time.Now().Format("2006/01/02 - 15:04:05") +
						" | " + c.Request.Method +
						" | " + c.Request.URL.Path +
						" | " + c.ClientIP() +
						" | " + c.GetString("RequestID") +
						" | " + fmt.Sprintf("%v", err) + "\n" +
						string(debug.Stack()) + "\n",
				))

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()

		c.Next()
	}
}
