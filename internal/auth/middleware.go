package auth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// identityKey is the echo context key the resolved identity is stored under.
const identityKey = "auth.identity"

// Identity is the request-scoped result of token verification. The zero
// value means the request is anonymous. Token validity is necessary and
// sufficient: no database lookup re-validates that the user still exists.
type Identity struct {
	UserID uint
}

// Anonymous reports whether no user is bound to this identity.
func (i Identity) Anonymous() bool { return i.UserID == 0 }

// CurrentUser returns the identity resolved by Required or Optional.
// Anonymous requests, and routes without identity middleware, get the
// zero value.
func CurrentUser(c echo.Context) Identity {
	if id, ok := c.Get(identityKey).(Identity); ok {
		return id
	}
	return Identity{}
}

// Required authenticates every request. A missing Authorization header is
// rejected before any handler or data-store access runs; a present but
// invalid bearer token is rejected the same way with a distinct message.
func Required(jwtService *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:     identityKey,
		ParseTokenFunc: parseTokenFunc(jwtService),
		ErrorHandler: func(c echo.Context, err error) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error())
		},
	})
}

// Optional resolves an identity when a valid bearer token is present and
// lets the request proceed anonymously otherwise. Used for routes with
// mixed public/private visibility.
func Optional(jwtService *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:             identityKey,
		ParseTokenFunc:         parseTokenFunc(jwtService),
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
	})
}

func parseTokenFunc(jwtService *JWTService) func(c echo.Context, token string) (interface{}, error) {
	return func(c echo.Context, token string) (interface{}, error) {
		userID, err := jwtService.Verify(token)
		if err != nil {
			return nil, err
		}
		return Identity{UserID: userID}, nil
	}
}
