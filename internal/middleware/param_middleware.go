package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractUintParam создает middleware для извлечения числового параметра URL.
// paramName — имя параметра маршрута (например, "id"),
// contextKey — ключ, под которым значение кладётся в контекст Gin
// ("testID", "sessionID", "clipID" и т.д.).
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		value, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || value == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", paramName)})
			c.Abort()
			return
		}
		c.Set(contextKey, uint(value))
		c.Next()
	}
}
