package routes

import (
	"time"

	"glowclinic/handlers"
	"glowclinic/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health.HealthHandler)
}

// RegisterCatalogRoutes registers the public treatment catalog.
func RegisterCatalogRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	treatments := api.Group("/treatments")
	{
		treatments.GET("", hb.Catalog.ListTreatmentsHandler)
		treatments.GET("/categories", hb.Catalog.ListCategoriesHandler)
		treatments.GET("/:slug", hb.Catalog.GetTreatmentHandler)
	}
}

// RegisterUserRoutes registers the signed-in user's endpoints. Sync only needs a
// verified session; everything else needs the synced user.
func RegisterUserRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	users := api.Group("/user")
	users.Use(middleware.SessionAuth(hb.Verifier))
	{
		users.POST("/sync", hb.User.SyncUserHandler)

		synced := users.Group("")
		synced.Use(middleware.RequireUser(hb.Users))
		synced.GET("/me", hb.User.MeHandler)
		synced.GET("/transactions", hb.User.TransactionsHandler)
		synced.GET("/referrals", hb.User.ReferralsHandler)
		synced.GET("/affiliate-code", hb.User.GetAffiliateCodeHandler)
		synced.PUT("/affiliate-code", hb.User.UpdateAffiliateCodeHandler)
	}
}

// RegisterReservationRoutes registers customer bookings.
func RegisterReservationRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	reservations := api.Group("/reservations")
	reservations.Use(middleware.SessionAuth(hb.Verifier), middleware.RequireUser(hb.Users))
	{
		reservations.POST("", hb.Reservation.CreateReservationHandler)
		reservations.GET("", hb.Reservation.ListReservationsHandler)
	}
}

// RegisterWithdrawalRoutes registers affiliate payouts.
func RegisterWithdrawalRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	withdrawals := api.Group("/withdrawals")
	withdrawals.Use(middleware.SessionAuth(hb.Verifier), middleware.RequireUser(hb.Users))
	{
		withdrawals.POST("", hb.Withdrawal.RequestWithdrawalHandler)
		withdrawals.GET("", hb.Withdrawal.ListWithdrawalsHandler)
	}
}

// RegisterAdminRoutes registers the front-office console and the pre-claim code
// console.
func RegisterAdminRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	admin := api.Group("")
	admin.Use(middleware.SessionAuth(hb.Verifier), middleware.RequireAdmin(hb.Policy))

	frontOffice := admin.Group("/front-office")
	{
		frontOffice.GET("/reservations", hb.Reservation.AdminListHandler)
		frontOffice.PATCH("/reservations", hb.Reservation.AdminUpdateStatusHandler)
		frontOffice.PUT("/reservations", hb.Reservation.AdminAddReferrerHandler)
		frontOffice.POST("/reservations", hb.Reservation.AdminEditHandler)

		frontOffice.GET("/withdrawals", hb.Withdrawal.AdminListHandler)
		frontOffice.PATCH("/withdrawals", hb.Withdrawal.AdminUpdateStatusHandler)
	}

	codes := admin.Group("/affiliate-codes")
	{
		codes.GET("", hb.AffiliateCodes.ListCodesHandler)
		codes.POST("", hb.AffiliateCodes.GenerateCodesHandler)
		codes.DELETE("", hb.AffiliateCodes.DeleteCodeHandler)
		codes.POST("/assign", hb.AffiliateCodes.AssignCodeHandler)
		codes.POST("/claim", hb.AffiliateCodes.ClaimCodeHandler)
		codes.POST("/transfer", hb.AffiliateCodes.TransferCodeHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowedOrigins []string, maxRequestsPerMin int) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger(), middleware.RateLimitMiddleware(maxRequestsPerMin))

	RegisterHealthRoute(r, hb)

	api := r.Group("/api")
	RegisterCatalogRoutes(api, hb)
	RegisterUserRoutes(api, hb)
	RegisterReservationRoutes(api, hb)
	RegisterWithdrawalRoutes(api, hb)
	RegisterAdminRoutes(api, hb)
}
