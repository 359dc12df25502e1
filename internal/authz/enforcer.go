// Package authz decides what each role may do, using Casbin with an embedded
// model and policy.
//
// Two kinds of objects are covered: page path prefixes, checked by the route
// guard with ActionView, and named API capabilities checked by the services.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"

	"eventease/internal/logging"
	"eventease/internal/model"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Objects and actions used in the policy.
const (
	ObjectEvents     = "events"
	ObjectModeration = "moderation"
	ObjectRSVPs      = "rsvps"
	ObjectUsers      = "users"

	ActionView   = "view"
	ActionWrite  = "write"
	ActionManage = "manage"
	ActionRead   = "read"
)

// restrictedPrefixes are the page prefixes that need a policy grant on top of a session.
var restrictedPrefixes = []string{"/admin", "/staff"}

// Authorizer answers role capability questions.
type Authorizer interface {
	Allowed(role model.Role, object, action string) bool
	CanViewPath(role model.Role, path string) bool
}

// Enforcer wraps the Casbin enforcer.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

var _ Authorizer = (*Enforcer)(nil)

// NewEnforcer builds an enforcer from the embedded model and policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := casbinmodel.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := loadEmbeddedPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}
	return &Enforcer{enforcer: enforcer}, nil
}

// loadEmbeddedPolicy parses the CSV policy and adds each p line.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] != "p" || len(parts) < 4 {
			continue
		}
		if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
			return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
		}
	}
	return nil
}

// Allowed reports whether role may perform action on object. Enforcement
// errors deny.
func (e *Enforcer) Allowed(role model.Role, object, action string) bool {
	ok, err := e.enforcer.Enforce(string(role), object, action)
	if err != nil {
		logging.Error().Err(err).
			Str("role", string(role)).
			Str("object", object).
			Str("action", action).
			Msg("casbin enforcement failed")
		return false
	}
	return ok
}

// CanViewPath reports whether role may open a page. Paths outside the
// restricted prefixes only need a session, which the caller has already checked.
func (e *Enforcer) CanViewPath(role model.Role, path string) bool {
	for _, prefix := range restrictedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return e.Allowed(role, path, ActionView)
		}
	}
	return true
}
