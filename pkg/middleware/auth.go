package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AstralMortem/go-microservice-template/pkg/apperror"
	"github.com/AstralMortem/go-microservice-template/pkg/credential"
	"github.com/AstralMortem/go-microservice-template/pkg/logger"
	"github.com/AstralMortem/go-microservice-template/pkg/token"
)

const (
	authorizationHeader = "Authorization"
	bearerScheme        = "bearer"

	accessClaimsKey  = "auth_access_claims"
	refreshClaimsKey = "auth_refresh_claims"
)

// AuthRequired gates a route behind a credential expression. It extracts the
// bearer token, decodes it as an access token and evaluates the expression
// against the claims. When enforcement is disabled the decoded claims are
// passed through unchecked with a warning.
func AuthRequired(codec *token.Codec, enforce bool, cred credential.Credential) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c)
		if err != nil {
			abort(c, err)
			return
		}
		claims, decodeErr := codec.DecodeAccess(raw)
		if decodeErr != nil {
			abort(c, decodeErr)
			return
		}
		if !enforce {
			logger.Get().Warn("authorization enforcement is disabled, skipping credential checks",
				zap.String("path", c.FullPath()))
			c.Set(accessClaimsKey, claims)
			c.Next()
			return
		}
		if !cred.Validate(claims) {
			abort(c, cred.Error())
			return
		}
		c.Set(accessClaimsKey, claims)
		c.Next()
	}
}

// RefreshRequired gates a route behind a valid refresh token.
func RefreshRequired(codec *token.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c)
		if err != nil {
			abort(c, err)
			return
		}
		claims, decodeErr := codec.DecodeRefresh(raw)
		if decodeErr != nil {
			abort(c, decodeErr)
			return
		}
		c.Set(refreshClaimsKey, claims)
		c.Next()
	}
}

// Claims returns the access claims stored by AuthRequired, or nil.
func Claims(c *gin.Context) *token.AccessClaims {
	v, ok := c.Get(accessClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*token.AccessClaims)
	return claims
}

// RefreshClaims returns the refresh claims stored by RefreshRequired, or nil.
func RefreshClaims(c *gin.Context) *token.RefreshClaims {
	v, ok := c.Get(refreshClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*token.RefreshClaims)
	return claims
}

func bearerToken(c *gin.Context) (string, *apperror.ServiceError) {
	header := strings.TrimSpace(c.GetHeader(authorizationHeader))
	if header == "" {
		return "", apperror.Unauthorized("Authorization header is expected")
	}
	scheme, value, found := strings.Cut(header, " ")
	if !found || strings.ToLower(scheme) != bearerScheme || strings.TrimSpace(value) == "" {
		return "", apperror.Unauthorized("Provided token is invalid or expired")
	}
	return strings.TrimSpace(value), nil
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
