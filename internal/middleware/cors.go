package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"chatbot-devserver/internal/config"
)

// CORS returns an Echo middleware that stamps Access-Control-Allow-Origin on
// every response and answers OPTIONS preflights on any path with 200 and an
// empty body. POST and OPTIONS responses also carry the allowed methods and
// headers.
//
// Headers are set from a Response.Before hook so they land on whatever the
// chain writes, including router 404/405 and error-handler output.
func CORS(cfg config.CORSConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			res := c.Response()

			res.Before(func() {
				h := res.Header()
				h.Set(echo.HeaderAccessControlAllowOrigin, cfg.AllowOrigin)
				if method == http.MethodPost || method == http.MethodOptions {
					h.Set(echo.HeaderAccessControlAllowMethods, cfg.AllowMethods)
					h.Set(echo.HeaderAccessControlAllowHeaders, cfg.AllowHeaders)
				}
			})

			if method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}

			return next(c)
		}
	}
}
