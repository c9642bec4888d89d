package credential

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AstralMortem/go-microservice-template/pkg/token"
)

func claimsWith(roles, permissions []string) *token.AccessClaims {
	return &token.AccessClaims{
		Roles:       roles,
		Permissions: permissions,
	}
}

func TestRole_Validate(t *testing.T) {
	tests := []struct {
		name   string
		cred   Credential
		claims *token.AccessClaims
		want   bool
	}{
		{
			name:   "exact match",
			cred:   Role("admin"),
			claims: claimsWith([]string{"admin"}, nil),
			want:   true,
		},
		{
			name:   "case-insensitive match",
			cred:   Role("Admin"),
			claims: claimsWith([]string{"ADMIN"}, nil),
			want:   true,
		},
		{
			name:   "missing role",
			cred:   Role("admin"),
			claims: claimsWith([]string{"editor"}, nil),
			want:   false,
		},
		{
			name:   "nil claims",
			cred:   Role("admin"),
			claims: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cred.Validate(tt.claims))
		})
	}
}

func TestPermission_Validate(t *testing.T) {
	tests := []struct {
		name   string
		cred   Credential
		claims *token.AccessClaims
		want   bool
	}{
		{
			name:   "single-string form",
			cred:   Permission("doc:read"),
			claims: claimsWith(nil, []string{"doc:read"}),
			want:   true,
		},
		{
			name:   "two-string form matches the same claim",
			cred:   Permission("doc", "read"),
			claims: claimsWith(nil, []string{"doc:read"}),
			want:   true,
		},
		{
			name:   "case-insensitive match",
			cred:   Permission("Doc:Read"),
			claims: claimsWith(nil, []string{"DOC:READ"}),
			want:   true,
		},
		{
			name:   "different action",
			cred:   Permission("doc:write"),
			claims: claimsWith(nil, []string{"doc:read"}),
			want:   false,
		},
		{
			name:   "nil claims",
			cred:   Permission("doc:read"),
			claims: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cred.Validate(tt.claims))
		})
	}
}

func TestPermission_ConstructionPanics(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{name: "single string without delimiter", parts: []string{"docread"}},
		{name: "single string with two delimiters", parts: []string{"doc:read:extra"}},
		{name: "two strings with delimiter inside", parts: []string{"doc:read", "write"}},
		{name: "empty resource", parts: []string{":read"}},
		{name: "empty action", parts: []string{"doc", ""}},
		{name: "no parts", parts: nil},
		{name: "three parts", parts: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { Permission(tt.parts...) })
		})
	}
}

func TestAndOr_Composition(t *testing.T) {
	admin := Role("admin")
	read := Permission("doc:read")
	write := Permission("doc:write")

	tests := []struct {
		name   string
		cred   Credential
		claims *token.AccessClaims
		want   bool
	}{
		{
			name:   "and requires both",
			cred:   admin.And(read),
			claims: claimsWith([]string{"admin"}, []string{"doc:read"}),
			want:   true,
		},
		{
			name:   "and fails on one side",
			cred:   admin.And(read),
			claims: claimsWith([]string{"admin"}, nil),
			want:   false,
		},
		{
			name:   "or passes on either side",
			cred:   read.Or(write),
			claims: claimsWith(nil, []string{"doc:write"}),
			want:   true,
		},
		{
			name:   "or fails on both sides",
			cred:   read.Or(write),
			claims: claimsWith(nil, []string{"doc:delete"}),
			want:   false,
		},
		{
			name:   "nested expression",
			cred:   admin.Or(read.And(write)),
			claims: claimsWith(nil, []string{"doc:read", "doc:write"}),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cred.Validate(tt.claims))
		})
	}
}

func TestComposite_ErrorComesFromLeftmostLeaf(t *testing.T) {
	expr := Role("admin").Or(Permission("doc:read"))

	err := expr.Error()
	assert.Equal(t, http.StatusForbidden, err.Code)
	assert.Equal(t, "Invalid role", err.Title)

	expr = Permission("doc:read").And(Role("admin"))
	err = expr.Error()
	assert.Equal(t, "Invalid permission", err.Title)
}
