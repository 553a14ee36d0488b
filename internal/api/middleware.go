package api

import (
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wys-platform/prices/internal/pkg/clients"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
)

// RequestContext tags the request context with a request id for logging and
// keeps the caller's Authorization header for calls to sibling services.
func (svc *APIService) RequestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()

		id := req.Header.Get(echo.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Response().Header().Set(echo.HeaderXRequestID, id)

		rctx := logger.With(req.Context(), constants.CtxKeyRequestID, id)
		if token := req.Header.Get(constants.HeaderAuthorization); token != "" {
			rctx = clients.WithToken(rctx, token)
		}
		ctx.SetRequest(req.WithContext(rctx))

		return next(ctx)
	}
}

// AuthMiddleware only checks that a bearer token is present; the token is
// verified by the services it is forwarded to. The user_id claim, when the
// token carries one, is added to the request logger.
func (svc *APIService) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()

		scheme, token, ok := strings.Cut(req.Header.Get(constants.HeaderAuthorization), " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return constants.ErrUnauthorized
		}

		if userID, ok := userIDClaim(token); ok {
			ctx.SetRequest(req.WithContext(logger.With(req.Context(), constants.CtxKeyUserID, userID)))
		}

		return next(ctx)
	}
}

func userIDClaim(token string) (int64, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return 0, false
	}

	switch id := claims[constants.CtxKeyUserID].(type) {
	case float64:
		return int64(id), true
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		return n, err == nil
	}
	return 0, false
}
