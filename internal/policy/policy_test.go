package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/policy"
)

func TestCanPerform(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		action   string
		resource string
		want     bool
	}{
		{"admin manages submissions", model.RoleAdmin, policy.ActionDelete, policy.ResourceSubmission, true},
		{"admin manages users", model.RoleAdmin, policy.ActionCreate, policy.ResourceUser, true},
		{"admin reads audit", model.RoleAdmin, policy.ActionRead, policy.ResourceAudit, true},

		{"manager manages submissions", model.RoleManager, policy.ActionUpdate, policy.ResourceSubmission, true},
		{"manager cannot manage users", model.RoleManager, policy.ActionCreate, policy.ResourceUser, false},
		{"manager reads audit", model.RoleManager, policy.ActionRead, policy.ResourceAudit, true},
		{"manager cannot write audit", model.RoleManager, policy.ActionDelete, policy.ResourceAudit, false},

		{"customer uses cart", model.RoleCustomer, policy.ActionUpdate, policy.ResourceCart, true},
		{"customer creates orders", model.RoleCustomer, policy.ActionCreate, policy.ResourceOrder, true},
		{"customer requests revisions", model.RoleCustomer, policy.ActionCreate, policy.ResourceRevision, true},
		{"customer cannot delete revisions", model.RoleCustomer, policy.ActionDelete, policy.ResourceRevision, false},
		{"customer cannot read submissions", model.RoleCustomer, policy.ActionRead, policy.ResourceSubmission, false},
		{"customer cannot read audit", model.RoleCustomer, policy.ActionRead, policy.ResourceAudit, false},
		{"customer cannot manage users", model.RoleCustomer, policy.ActionRead, policy.ResourceUser, false},

		{"user acts like customer", model.RoleUser, policy.ActionCreate, policy.ResourceOrder, true},

		{"unknown role gets nothing", "superuser", policy.ActionRead, policy.ResourceCart, false},
		{"empty role gets nothing", "", policy.ActionRead, policy.ResourceSubmission, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.CanPerform(tt.role, tt.action, tt.resource))
		})
	}
}
