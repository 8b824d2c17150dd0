// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/izzatfirdaus/motac-rms/internal/i18n"
)

// Locale resolves the response language from the lang query parameter or the
// Accept-Language header, falling back to the default locale.
func Locale(defaultLocale string) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.Query("lang")
		if lang == "" {
			header := c.GetHeader("Accept-Language")
			if header != "" {
				lang = strings.ToLower(strings.SplitN(strings.SplitN(header, ",", 2)[0], "-", 2)[0])
			}
		}
		if !i18n.IsSupported(lang) {
			lang = defaultLocale
		}
		c.Set("lang", lang)
		c.Next()
	}
}
