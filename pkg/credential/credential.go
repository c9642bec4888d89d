// Package credential implements composable boolean predicates over decoded
// access-token claims. Expressions are built once at route-definition time
// and shared across requests, so every node is immutable and side-effect
// free.
package credential

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/AstralMortem/go-microservice-template/pkg/apperror"
	"github.com/AstralMortem/go-microservice-template/pkg/token"
)

// Delimiter separates the resource and action parts of a permission string.
const Delimiter = ":"

// Credential is a node of a credential expression tree.
type Credential interface {
	// Validate reports whether the claims satisfy this node.
	Validate(claims *token.AccessClaims) bool
	// Error returns the structured error raised when the enclosing
	// expression evaluates false.
	Error() *apperror.ServiceError
	// And combines this node with another; the result is true iff both are.
	And(other Credential) Credential
	// Or combines this node with another; the result is true iff either is.
	Or(other Credential) Credential
}

// RoleCredential matches a single role name, case-insensitively.
type RoleCredential struct {
	name string
	err  *apperror.ServiceError
}

// Role builds a role-membership leaf.
func Role(name string) *RoleCredential {
	return &RoleCredential{
		name: strings.ToLower(name),
		err:  apperror.New(http.StatusForbidden, "Invalid role", "User does not have the required role"),
	}
}

func (r *RoleCredential) Validate(claims *token.AccessClaims) bool {
	if claims == nil {
		return false
	}
	for _, role := range claims.Roles {
		if strings.ToLower(role) == r.name {
			return true
		}
	}
	return false
}

func (r *RoleCredential) Error() *apperror.ServiceError { return r.err }
func (r *RoleCredential) And(o Credential) Credential   { return And(r, o) }
func (r *RoleCredential) Or(o Credential) Credential    { return Or(r, o) }

// PermissionCredential matches a "resource:action" permission string,
// case-insensitively.
type PermissionCredential struct {
	resource string
	action   string
	err      *apperror.ServiceError
}

// Permission builds a permission-membership leaf. It accepts either a single
// "resource:action" string containing exactly one delimiter, or separate
// resource and action strings containing none. Any other combination is a
// route-definition bug and panics so that startup fails instead of a request.
func Permission(parts ...string) *PermissionCredential {
	var resource, action string
	switch len(parts) {
	case 1:
		if strings.Count(parts[0], Delimiter) != 1 {
			panic(fmt.Sprintf("credential: permission %q must contain exactly one %q", parts[0], Delimiter))
		}
		split := strings.SplitN(parts[0], Delimiter, 2)
		resource, action = split[0], split[1]
	case 2:
		if strings.Contains(parts[0], Delimiter) || strings.Contains(parts[1], Delimiter) {
			panic(fmt.Sprintf("credential: permission parts %q must not contain %q", parts, Delimiter))
		}
		resource, action = parts[0], parts[1]
	default:
		panic(fmt.Sprintf("credential: permission expects 1 or 2 parts, got %d", len(parts)))
	}
	if resource == "" || action == "" {
		panic(fmt.Sprintf("credential: permission %q has an empty resource or action", parts))
	}
	return &PermissionCredential{
		resource: strings.ToLower(resource),
		action:   strings.ToLower(action),
		err:      apperror.New(http.StatusForbidden, "Invalid permission", "User does not have the required permission"),
	}
}

func (p *PermissionCredential) Validate(claims *token.AccessClaims) bool {
	if claims == nil {
		return false
	}
	want := p.resource + Delimiter + p.action
	for _, perm := range claims.Permissions {
		if strings.ToLower(perm) == want {
			return true
		}
	}
	return false
}

func (p *PermissionCredential) Error() *apperror.ServiceError { return p.err }
func (p *PermissionCredential) And(o Credential) Credential   { return And(p, o) }
func (p *PermissionCredential) Or(o Credential) Credential    { return Or(p, o) }

// AndCredential is true iff both children are.
type AndCredential struct {
	left, right Credential
}

// And combines two expressions with logical AND.
func And(left, right Credential) *AndCredential {
	return &AndCredential{left: left, right: right}
}

func (a *AndCredential) Validate(claims *token.AccessClaims) bool {
	return a.left.Validate(claims) && a.right.Validate(claims)
}

// Error attributes the failure to the left-most leaf.
func (a *AndCredential) Error() *apperror.ServiceError { return a.left.Error() }
func (a *AndCredential) And(o Credential) Credential   { return And(a, o) }
func (a *AndCredential) Or(o Credential) Credential    { return Or(a, o) }

// OrCredential is true iff either child is.
type OrCredential struct {
	left, right Credential
}

// Or combines two expressions with logical OR.
func Or(left, right Credential) *OrCredential {
	return &OrCredential{left: left, right: right}
}

func (o *OrCredential) Validate(claims *token.AccessClaims) bool {
	return o.left.Validate(claims) || o.right.Validate(claims)
}

// Error attributes the failure to the left-most leaf.
func (o *OrCredential) Error() *apperror.ServiceError { return o.left.Error() }
func (o *OrCredential) And(c Credential) Credential   { return And(o, c) }
func (o *OrCredential) Or(c Credential) Credential    { return Or(o, c) }
