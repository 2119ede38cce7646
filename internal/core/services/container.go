package services

import (
	"github.com/opentally/bookkeeping_app/internal/core/ports/messaging"
	portsrepo "github.com/opentally/bookkeeping_app/internal/core/ports/repositories"
	portssvc "github.com/opentally/bookkeeping_app/internal/core/ports/services"
	"github.com/opentally/bookkeeping_app/pkg/config"
)

// NewServiceContainer wires the repositories and the optional audit publisher
// into the full service surface. publisher may be nil when no broker is
// configured; the entry service treats event publication as best effort.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, publisher messaging.AuditPublisher) *portssvc.ServiceContainer {
	userSvc := NewUserService(repos.UserRepo)
	accountSvc := NewAccountService(repos.AccountRepo, userSvc)
	entrySvc := NewEntryService(repos.EntryRepo, repos.AuditRepo, accountSvc, userSvc, publisher)
	tokenSvc := NewTokenService(userSvc, cfg)

	return &portssvc.ServiceContainer{
		Entry:   entrySvc,
		Account: accountSvc,
		User:    userSvc,
		Token:   tokenSvc,
	}
}
