package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Kind discriminates access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the decoded identity assertion shared by both token kinds.
// It exists only for the duration of one request and is never persisted.
type Claims struct {
	jwt.RegisteredClaims
	Kind Kind `json:"type,omitempty"`
}

// AccessClaims carries the authorization data evaluated by credential
// expressions.
type AccessClaims struct {
	Claims
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// RefreshClaims carries no authorization data, only identity.
type RefreshClaims struct {
	Claims
}
