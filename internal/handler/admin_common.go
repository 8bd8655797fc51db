package handler

import (
	"github.com/brightline/agency-server/internal/mailer"
	"github.com/brightline/agency-server/internal/service"
	"github.com/brightline/agency-server/internal/store"
)

// StaffHandler bundles everything the back office needs: lead
// management, the catalog, order management, the blog CMS, user
// administration and the audit trail.
type StaffHandler struct {
	Store  store.Store
	Orders *service.OrderService
	Audit  *service.AuditService
	Auth   *service.AuthService
	Mail   mailer.Mailer
}

func NewStaffHandler(s store.Store, orders *service.OrderService, audit *service.AuditService, auth *service.AuthService, mail mailer.Mailer) *StaffHandler {
	if s == nil || orders == nil || audit == nil || auth == nil || mail == nil {
		panic("nil dependency passed to NewStaffHandler")
	}
	return &StaffHandler{Store: s, Orders: orders, Audit: audit, Auth: auth, Mail: mail}
}
