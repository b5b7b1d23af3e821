package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/gema-assignment-hub/internal/utils"
)

// Roles understood by the API. AuthRoleAny only requires an authenticated caller.
const (
	AuthRoleAny     = "any"
	AuthRoleAdmin   = "admin"
	AuthRoleTeacher = "teacher"
	AuthRoleParent  = "parent"
	AuthRoleStudent = "student"
)

const (
	localUserID   = "user_id"
	localUserRole = "user_role"
)

// JWTConfig configures bearer token validation.
type JWTConfig struct {
	Secret string
	// Issuer, when set, must match the iss claim.
	Issuer string
	Leeway time.Duration
}

// AccessClaims is the token payload issued by the account service. The caller id travels in sub;
// user_id is honoured for tokens without a subject.
type AccessClaims struct {
	Role   string `json:"role"`
	UserID uint   `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

func (c AccessClaims) callerID() (uint, bool) {
	subject := strings.TrimSpace(c.Subject)
	if subject == "" {
		return c.UserID, c.UserID != 0
	}
	parsed, err := strconv.ParseUint(subject, 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

// JWTProtected validates HMAC bearer tokens and stores the caller's id and role in locals.
func JWTProtected(cfg JWTConfig) fiber.Handler {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(options...)
	key := []byte(cfg.Secret)

	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if header == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "bearer "
		if len(header) <= len(bearer) || !strings.EqualFold(header[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		var claims AccessClaims
		_, err := parser.ParseWithClaims(strings.TrimSpace(header[len(bearer):]), &claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return utils.SendError(c, fiber.StatusUnauthorized, "token expired")
			}
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		id, ok := claims.callerID()
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "token has no caller")
		}
		role := normalizeRole(claims.Role)
		if !knownRole(role) {
			return utils.SendError(c, fiber.StatusForbidden, "unsupported role")
		}

		c.Locals(localUserID, id)
		c.Locals(localUserRole, role)
		return c.Next()
	}
}

// RequireRole admits only callers holding one of roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := normalizeRole(role); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := allowed[callerRole(c)]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// AuthOptions configures WithAuth.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// WithAuth guards a single handler. Any role other than AuthRoleAny implies an authenticated
// caller; admins and teachers pass every role check.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := normalizeRole(opts.Role)
	if role == "" {
		role = AuthRoleAny
	}
	requireUser := opts.RequireUser || role != AuthRoleAny

	return func(c *fiber.Ctx) error {
		if requireUser && c.Locals(localUserID) == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		if role == AuthRoleAny {
			return handler(c)
		}

		current := callerRole(c)
		switch {
		case isAdminRole(current):
			return handler(c)
		case role == AuthRoleAdmin || current != role:
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}
		return handler(c)
	}
}

func callerRole(c *fiber.Ctx) string {
	role, _ := c.Locals(localUserRole).(string)
	return normalizeRole(role)
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

func knownRole(role string) bool {
	switch role {
	case AuthRoleParent, AuthRoleStudent, AuthRoleAdmin, AuthRoleTeacher:
		return true
	}
	return false
}

func isAdminRole(role string) bool {
	return role == AuthRoleAdmin || role == AuthRoleTeacher
}
