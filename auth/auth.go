// server/auth/auth.go
package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ViniZap4/nohtz-server/domain"
	"github.com/ViniZap4/nohtz-server/session"
)

const identityKey = "identity"

// Middleware resolves the session cookie into an identity stored in the
// request locals. Requests without a live session get an auth error.
func Middleware(sessions *session.Manager, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := sessions.Lookup(c.UserContext(), c.Cookies(cookieName))
		if err != nil {
			return domain.Internal(err)
		}
		if s == nil {
			return domain.Auth("Not authenticated")
		}
		c.Locals(identityKey, s.Identity())
		return c.Next()
	}
}

func IdentityFrom(c *fiber.Ctx) (domain.Identity, bool) {
	id, ok := c.Locals(identityKey).(domain.Identity)
	return id, ok
}
