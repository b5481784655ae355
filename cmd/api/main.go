package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"mutitpay-storefront/config"
	"mutitpay-storefront/internal/delivery/http/middleware"
	v1 "mutitpay-storefront/internal/delivery/http/v1"
	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/infrastructure/backend"
	"mutitpay-storefront/internal/infrastructure/cache"
	"mutitpay-storefront/internal/infrastructure/identity"
	"mutitpay-storefront/internal/repository/memory"
	"mutitpay-storefront/internal/repository/postgres"
	"mutitpay-storefront/internal/repository/redisrepo"
	"mutitpay-storefront/internal/usecase"
	"mutitpay-storefront/pkg/logger"
	"mutitpay-storefront/pkg/storage"
	"mutitpay-storefront/pkg/utils"

	"github.com/NYTimes/gziphandler"
)

const (
	serviceName    = "mutitpay-storefront"
	serviceVersion = "1.0.0"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Cancelled on SIGINT/SIGTERM; live search sockets hang off it
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Cache (In-Memory)
	// Default expiration 30m, cleanup every 60m
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	// Remote commerce API
	api := backend.NewClient(cfg.BackendBaseURL, cfg.MediaBaseURL, cfg.BackendTimeout)

	// --- Cart storage ---
	var cartStore domain.CartStore
	var closers []func()
	switch cfg.CartStore {
	case config.CartStoreRedis:
		rdb, err := redisrepo.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		closers = append(closers, func() { _ = rdb.Close() })
		cartStore = redisrepo.NewCartRepository(rdb, cfg.CartTTL)
		log.Info().Msg("Cart store: redis")
	case config.CartStorePostgres:
		pool, err := postgres.NewPgxPool(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		closers = append(closers, pool.Close)
		repo := postgres.NewCartRepository(pool, cfg.CartTTL)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare cart schema")
		}
		go purgeExpiredCarts(ctx, repo, time.Hour)
		cartStore = repo
		log.Info().Msg("Cart store: postgres")
	default:
		cartStore = memory.NewCartRepository(memCache, cfg.CartTTL)
		log.Info().Msg("Cart store: memory")
	}

	// --- Storage Module (R2) ---
	var media usecase.MediaStore
	if cfg.MediaStore == config.MediaStoreR2 {
		r2Storage, err := storage.NewR2Storage(
			ctx,
			cfg.R2AccountID,
			cfg.R2AccessKeyID,
			cfg.R2AccessKeySecret,
			cfg.R2BucketName,
			cfg.R2PublicURL,
			cfg.R2UploadTimeout,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
		}
		media = r2Storage
	}

	// --- Identity ---
	firebase := identity.NewFirebase(
		cfg.FirebaseAPIKey,
		cfg.IdentityBaseURL,
		cfg.SecureTokenBaseURL,
		cfg.FrontendURL,
		&http.Client{Timeout: cfg.BackendTimeout},
	)
	var google usecase.GoogleVerifier
	g, err := identity.NewGoogle(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	switch {
	case errors.Is(err, identity.ErrGoogleDisabled):
		log.Info().Msg("Google sign-in disabled")
	case err != nil:
		log.Error().Err(err).Msg("Google sign-in unavailable")
	default:
		google = g
	}

	secureCookie := cfg.Env != "development"

	// --- Modules Initialization ---
	searchUC := usecase.NewSearchUsecase(api, memCache, cfg)
	catalogUC := usecase.NewCatalogUsecase(api, memCache, cfg)
	cartUC := usecase.NewCartUsecase(cartStore, api, cfg.MaxCartQuantity)
	checkoutUC := usecase.NewCheckoutUsecase(cartUC)
	authUC := usecase.NewAuthUsecase(firebase, google, cfg.IsAdminEmail, cfg.SessionExpiry)
	adminUC := usecase.NewAdminUsecase(api, media, memCache, cfg)

	searchHandler := v1.NewSearchHandler(searchUC)
	liveSearchHandler := v1.NewLiveSearchHandler(searchUC, cfg.SearchDebounce, cfg.AllowedOrigin)
	catalogHandler := v1.NewCatalogHandler(catalogUC)
	cartHandler := v1.NewCartHandler(cartUC, cfg.CartTTL, secureCookie)
	checkoutHandler := v1.NewCheckoutHandler(checkoutUC)
	authHandler := v1.NewAuthHandler(authUC, secureCookie)
	adminCatalogHandler := v1.NewAdminCatalogHandler(adminUC)
	adminOrderHandler := v1.NewAdminOrderHandler(adminUC)
	adminStatsHandler := v1.NewAdminStatsHandler(adminUC)
	uploadHandler := v1.NewUploadHandler(adminUC, cfg.MaxUploadSizeMB)

	// Set up Router
	mux := http.NewServeMux()

	// Catalog (Public)
	mux.HandleFunc("GET /api/v1/products", catalogHandler.ListProducts)
	mux.HandleFunc("GET /api/v1/products/{slug}", catalogHandler.GetProductBySlug)
	mux.HandleFunc("GET /api/v1/products/highlights/{kind}", catalogHandler.Highlights)
	mux.HandleFunc("GET /api/v1/product/{id}", catalogHandler.GetProductByID)
	mux.HandleFunc("GET /api/v1/categories", catalogHandler.GetCategories)
	mux.HandleFunc("GET /api/v1/subcategories", catalogHandler.GetSubcategories)
	mux.HandleFunc("GET /api/v1/colors", catalogHandler.GetColors)
	mux.HandleFunc("GET /api/v1/sizes", catalogHandler.GetSizes)

	// Search
	mux.HandleFunc("GET /api/v1/search/suggest", searchHandler.Suggest)
	mux.HandleFunc("GET /api/v1/search/recommendations", searchHandler.Recommendations)
	mux.HandleFunc("GET /api/v1/search/submit", searchHandler.Submit)
	mux.HandleFunc("POST /api/v1/search/submit", searchHandler.Submit)

	// Cart (cookie scoped, no sign-in needed)
	mux.HandleFunc("GET /api/v1/cart", cartHandler.GetCart)
	mux.HandleFunc("DELETE /api/v1/cart", cartHandler.Clear)
	mux.HandleFunc("POST /api/v1/cart/items", cartHandler.AddItem)
	mux.HandleFunc("PUT /api/v1/cart/items/{id}", cartHandler.UpdateItem)
	mux.HandleFunc("DELETE /api/v1/cart/items/{id}", cartHandler.RemoveItem)
	mux.HandleFunc("POST /api/v1/cart/coupon", cartHandler.ApplyCoupon)
	mux.HandleFunc("DELETE /api/v1/cart/coupon", cartHandler.RemoveCoupon)
	mux.HandleFunc("POST /api/v1/checkout", checkoutHandler.Checkout)

	// Auth
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/reset-password", authHandler.ResetPassword)
	mux.HandleFunc("POST /api/v1/auth/google", authHandler.GoogleLogin)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/v1/auth/me", middleware.AuthMiddleware(http.HandlerFunc(authHandler.Me)))

	// Admin (Protected)
	adminMiddleware := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	// Admin Product Management
	mux.Handle("GET /api/v1/admin/products", adminMiddleware(adminCatalogHandler.ListProducts))
	mux.Handle("GET /api/v1/admin/products/{id}", adminMiddleware(adminCatalogHandler.GetProduct))
	mux.Handle("POST /api/v1/admin/products", adminMiddleware(adminCatalogHandler.CreateProduct))
	mux.Handle("PUT /api/v1/admin/products/{id}", adminMiddleware(adminCatalogHandler.UpdateProduct))
	mux.Handle("DELETE /api/v1/admin/products/{id}", adminMiddleware(adminCatalogHandler.DeleteProduct))
	mux.Handle("POST /api/v1/admin/products/images", adminMiddleware(uploadHandler.UploadImage))
	mux.Handle("GET /api/v1/admin/products/{id}/images", adminMiddleware(adminCatalogHandler.ListImages))
	mux.Handle("DELETE /api/v1/admin/products/{id}/images/{imageID}", adminMiddleware(adminCatalogHandler.DeleteImage))

	mux.Handle("POST /api/v1/admin/categories", adminMiddleware(adminCatalogHandler.CreateCategory))
	mux.Handle("PUT /api/v1/admin/categories/{id}", adminMiddleware(adminCatalogHandler.UpdateCategory))
	mux.Handle("DELETE /api/v1/admin/categories/{id}", adminMiddleware(adminCatalogHandler.DeleteCategory))
	mux.Handle("POST /api/v1/admin/subcategories", adminMiddleware(adminCatalogHandler.CreateSubcategory))
	mux.Handle("PUT /api/v1/admin/subcategories/{id}", adminMiddleware(adminCatalogHandler.UpdateSubcategory))
	mux.Handle("DELETE /api/v1/admin/subcategories/{id}", adminMiddleware(adminCatalogHandler.DeleteSubcategory))

	mux.Handle("GET /api/v1/admin/orders", adminMiddleware(adminOrderHandler.ListOrders))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/status", adminMiddleware(adminOrderHandler.UpdateStatus))
	mux.Handle("GET /api/v1/admin/customers", adminMiddleware(adminOrderHandler.ListCustomers))

	// Admin Stats Routes
	mux.Handle("GET /api/v1/admin/stats/orders", adminMiddleware(adminStatsHandler.GetOrderStats))
	mux.Handle("GET /api/v1/admin/stats/products", adminMiddleware(adminStatsHandler.GetProductStats))
	mux.Handle("GET /api/v1/admin/stats/dashboard", adminMiddleware(adminStatsHandler.GetDashboard))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "cart_store": cfg.CartStore})
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	// Initialize Rate Limiter with lifecycle management
	// 50 req/s, burst 100, cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		ctx,
		50,            // requests per second
		100,           // burst
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	// Apply CORS (with config injection), Request Logger, Rate Limit, and Gzip.
	// The live search socket skips gzip, which cannot hijack the connection.
	chain := func(h http.Handler) http.Handler {
		h = middleware.NewCORSMiddleware(cfg)(h)
		h = middleware.RequestLogger(h)
		return rateLimiter.Middleware()(h)
	}
	root := http.NewServeMux()
	root.Handle("GET /api/v1/search/live", chain(liveSearchHandler))
	root.Handle("/", gziphandler.GzipHandler(chain(mux)))

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart(serviceName, serviceVersion, cfg.Port)

	<-ctx.Done()
	stop()

	log.Info().Msg("Server shutting down...")

	// Stop rate limiter cleanup goroutine
	rateLimiter.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	for _, closeFn := range closers {
		closeFn()
	}

	logger.ServiceStop(serviceName)
}

// purgeExpiredCarts drops carts past their TTL until ctx is done
func purgeExpiredCarts(ctx context.Context, repo *postgres.CartRepository, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.PurgeExpired(ctx)
			if err != nil {
				logger.Get().Warn().Err(err).Msg("Cart purge failed")
				continue
			}
			if n > 0 {
				logger.Get().Info().Int64("purged", n).Msg("Expired carts purged")
			}
		}
	}
}
