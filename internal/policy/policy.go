// Package policy centralizes role-based authorization decisions.
// Handlers and middleware ask CanPerform instead of re-implementing
// role checks per endpoint, so the privilege table lives in one
// place.
package policy

import "github.com/brightline/agency-server/internal/model"

// Actions understood by CanPerform. An action names a verb; the
// resource argument names what it applies to.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Resources understood by CanPerform.
const (
	ResourceSubmission = "submission"
	ResourceAddon      = "addon"
	ResourceOrder      = "order"
	ResourceRevision   = "revision"
	ResourceBlogPost   = "blog_post"
	ResourceUser       = "user"
	ResourceAudit      = "audit"
	ResourceCart       = "cart"
)

// staffResources are fully managed by both admin and manager.
var staffResources = map[string]bool{
	ResourceSubmission: true,
	ResourceAddon:      true,
	ResourceOrder:      true,
	ResourceRevision:   true,
	ResourceBlogPost:   true,
	ResourceAudit:      true,
}

// CanPerform reports whether the role may perform action on resource.
// Customers (and plain users) act only on their own carts, orders and
// revision requests; ownership itself is checked by the handler,
// which knows whose record is being touched.
func CanPerform(role, action, resource string) bool {
	switch {
	case role == model.RoleAdmin:
		// Admin additionally manages user accounts.
		return staffResources[resource] || resource == ResourceUser
	case role == model.RoleManager:
		if resource == ResourceAudit && action != ActionRead {
			return false
		}
		return staffResources[resource]
	case role == model.RoleCustomer || role == model.RoleUser:
		switch resource {
		case ResourceCart:
			return true
		case ResourceOrder:
			// Customers create orders and read their own; status
			// changes are limited to cancelling a pending order,
			// enforced by the order service.
			return action == ActionCreate || action == ActionRead || action == ActionUpdate
		case ResourceRevision:
			return action == ActionCreate || action == ActionRead
		}
		return false
	}
	return false
}
