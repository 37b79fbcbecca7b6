package handlers

import (
	"glowclinic/middleware"
	"glowclinic/services/authz"
)

// HandlerBundle groups the endpoint handlers and the middleware dependencies routes
// need to protect them.
type HandlerBundle struct {
	Verifier middleware.SessionVerifier
	Users    middleware.UserLookup
	Policy   authz.AuthorizationPolicy

	Catalog        *CatalogHandler
	User           *UserHandler
	Reservation    *ReservationHandler
	AffiliateCodes *AffiliateCodeHandler
	Withdrawal     *WithdrawalHandler
	Health         *HealthHandler
}
