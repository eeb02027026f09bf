package api

import (
	"net"
	"net/http"
	"net/netip"

	echo "github.com/labstack/echo/v5"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/model"
)

// securityHeaders returns middleware that sets standard security response
// headers, unchanged from the teacher's securityHeaders.
func securityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			return next(c)
		}
	}
}

// contextAccountKey is the echo.Context key authAccount stores the caller's
// cache entry under, for handlers to retrieve via accountFromContext.
const contextAccountKey = "account"

// authAccount returns middleware enforcing spec.md §4.B's per-request
// authentication: the `x-access-token` header must name a token bound to
// an entry whose recorded remote IP matches this request's. No token, an
// unbound token, or an IP mismatch all fail identically with 401 — the
// cache can't and shouldn't distinguish "never connected" from "connected
// elsewhere" to an unauthenticated caller.
func authAccount(c *cache.Cache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c2 *echo.Context) error {
			token := model.AccessToken(c2.Request().Header.Get("x-access-token"))
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing x-access-token header")
			}

			remote, err := remoteAddr(c2)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "cannot determine remote address")
			}

			entry, ok := c.TokenAndConnectionCheck(token, remote)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or unbound access token")
			}

			c2.Set(contextAccountKey, entry)
			return next(c2)
		}
	}
}

// accountFromContext retrieves the cache entry authAccount installed.
// Panics if called on a route not guarded by authAccount — a programmer
// error, not a request-time condition.
func accountFromContext(c *echo.Context) *cache.Entry {
	return c.Get(contextAccountKey).(*cache.Entry)
}

// requirePermission returns middleware enforcing spec.md §7's "permission
// not granted" authorization kind (403) on top of authAccount: the
// authenticated caller's cache entry must carry at least one of the given
// permission bits. Must run after authAccount in the chain.
func requirePermission(perms ...cache.Permissions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			entry := accountFromContext(c)
			granted := entry.Shared().Permissions
			for _, p := range perms {
				if granted&p != 0 {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "permission not granted")
		}
	}
}

// remoteAddr parses the request's RemoteAddr into the bare IP cache.Cache
// binds/checks connections against (the port is deliberately ignored, same
// as the WebSocket bind path).
func remoteAddr(c *echo.Context) (netip.Addr, error) {
	host, _, err := net.SplitHostPort(c.Request().RemoteAddr)
	if err != nil {
		host = c.Request().RemoteAddr
	}
	return netip.ParseAddr(host)
}
