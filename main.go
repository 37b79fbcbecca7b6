package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"glowclinic/config"
	"glowclinic/database"
	affiliateRepo "glowclinic/database/repository/affiliate"
	"glowclinic/database/repository/memory"
	reservationRepo "glowclinic/database/repository/reservation"
	transactionRepo "glowclinic/database/repository/transaction"
	treatmentRepo "glowclinic/database/repository/treatment"
	userRepoPkg "glowclinic/database/repository/user"
	withdrawalRepo "glowclinic/database/repository/withdrawal"
	"glowclinic/handlers"
	"glowclinic/middleware"
	"glowclinic/routes"
	"glowclinic/services/affiliate"
	"glowclinic/services/authz"
	"glowclinic/services/catalog"
	"glowclinic/services/reservation"
	"glowclinic/services/user"
	"glowclinic/services/withdrawal"
	"glowclinic/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// repositories is the storage backend chosen by DATABASE_DRIVER.
type repositories struct {
	Users        userRepoPkg.UserRepository
	Treatments   treatmentRepo.TreatmentRepository
	Reservations reservationRepo.ReservationRepository
	Transactions transactionRepo.TransactionRepository
	Codes        affiliateRepo.PreClaimCodeRepository
	BankAccounts withdrawalRepo.BankAccountRepository
	Withdrawals  withdrawalRepo.WithdrawalRepository
}

func newRepositories(logger *zap.Logger) repositories {
	if config.UsesMemoryStore() {
		logger.Warn("Using the in-memory store; data is lost on restart")
		store := memory.New()
		return repositories{
			Users:        store.Users(),
			Treatments:   store.Treatments(),
			Reservations: store.Reservations(),
			Transactions: store.Transactions(),
			Codes:        store.PreClaimCodes(),
			BankAccounts: store.BankAccounts(),
			Withdrawals:  store.Withdrawals(),
		}
	}
	database.InitDB()
	db := database.DB()
	return repositories{
		Users:        userRepoPkg.NewMongoUserRepo(db),
		Treatments:   treatmentRepo.NewMongoTreatmentRepo(db),
		Reservations: reservationRepo.NewMongoReservationRepo(db),
		Transactions: transactionRepo.NewMongoTransactionRepo(db),
		Codes:        affiliateRepo.NewMongoPreClaimCodeRepo(db),
		BankAccounts: withdrawalRepo.NewMongoBankAccountRepo(db),
		Withdrawals:  withdrawalRepo.NewMongoWithdrawalRepo(db),
	}
}

func main() {
	config.LoadConfig()
	cfg := &config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	repos := newRepositories(logger)
	utils.InitCache()

	appCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	utils.StartHealthMonitor(appCtx, utils.GetCacheClient(), database.MongoClient)

	if cfg.SeedCatalog || config.UsesMemoryStore() {
		if err := database.SeedCatalog(appCtx, repos.Treatments); err != nil {
			logger.Fatal("main: failed to seed catalog", zap.Error(err))
		}
	}

	verifier, err := middleware.NewClerkVerifier(cfg)
	if err != nil {
		logger.Fatal("main: failed to set up session verification", zap.Error(err))
	}
	defer verifier.Close()

	// services.
	codeService := &affiliate.DefaultCodeService{
		Codes:        repos.Codes,
		Users:        repos.Users,
		Reservations: repos.Reservations,
		Logger:       logger,
	}
	userService := &user.DefaultUserService{
		Repo:               repos.Users,
		Transactions:       repos.Transactions,
		Reservations:       repos.Reservations,
		Codes:              codeService,
		Loyalty:            affiliate.NewLoyaltyPolicy(cfg.LoyaltySilverMin, cfg.LoyaltyGoldMin, cfg.LoyaltyPlatinumMin),
		CodeUpdateInterval: time.Duration(cfg.AffiliateCodeUpdateIntervalDays) * 24 * time.Hour,
		Logger:             logger,
	}
	reservationService := &reservation.DefaultReservationService{
		Reservations:   repos.Reservations,
		Treatments:     repos.Treatments,
		Users:          repos.Users,
		Transactions:   repos.Transactions,
		Codes:          repos.Codes,
		CommissionRate: cfg.CommissionRate,
		Logger:         logger,
	}
	withdrawalService := &withdrawal.DefaultWithdrawalService{
		Withdrawals:  repos.Withdrawals,
		BankAccounts: repos.BankAccounts,
		Users:        repos.Users,
		Logger:       logger,
	}
	catalogService := &catalog.DefaultCatalogService{
		Repo:   repos.Treatments,
		TTL:    cfg.CatalogCacheTTL,
		Logger: logger,
	}
	if client := utils.GetCacheClient(); client != nil {
		catalogService.Cache = catalog.NewRedisCache(client)
		if err := catalogService.InvalidateCache(appCtx); err != nil {
			logger.Warn("main: failed to clear catalog cache", zap.Error(err))
		}
	}

	handlerBundle := &handlers.HandlerBundle{
		Verifier:       verifier,
		Users:          userService,
		Policy:         authz.NewPolicy(cfg.AdminUserIDs, repos.Users),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		User:           handlers.NewUserHandler(userService),
		Reservation:    handlers.NewReservationHandler(reservationService),
		AffiliateCodes: handlers.NewAffiliateCodeHandler(codeService),
		Withdrawal:     handlers.NewWithdrawalHandler(withdrawalService),
		Health:         &handlers.HealthHandler{},
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	routes.RegisterRoutes(router, handlerBundle, cfg.CORSAllowedOrigins, cfg.MaxRequestsPerMin)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Errorf("main: failed to disconnect from MongoDB: %v", err)
	}
	if client := utils.GetCacheClient(); client != nil {
		_ = client.Close()
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
