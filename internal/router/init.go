package router

import (
	"github.com/delcom/foodshare/internal/application"
	"github.com/delcom/foodshare/internal/container"
	"github.com/delcom/foodshare/internal/infrastructure/postgres"
	handlers "github.com/delcom/foodshare/internal/interface/http"
	"github.com/delcom/foodshare/internal/interface/middleware"
	"github.com/delcom/foodshare/internal/router/modules"
)

// PublicPrefixes are the request paths the auth gate lets through without a
// token: the public auth endpoints and the error landing page.
var PublicPrefixes = []string{
	"/api/auth/register",
	"/api/auth/login",
	"/api/error",
}

// InitModules builds repositories, services, and handlers from the container
// singletons and registers every feature module. Called once at startup.
func InitModules(r *Registry) {
	pool := container.GetPGPool()
	cfg := container.GetConfig()
	logger := container.GetLogger()

	users := postgres.NewUserRepository(pool)
	tokens := postgres.NewAuthTokenRepository(pool)
	donations := postgres.NewDonationRepository(pool)

	userSvc := application.NewUserService(users, tokens, container.GetJWT(), container.GetRabbitPub(), logger)
	donationSvc := application.NewDonationService(
		donations,
		container.GetFileStore(),
		container.GetRedis(),
		logger,
		container.GetES(),
		cfg.ESDonationsIndex,
		cfg.StatsCacheTTL,
	)

	// Auth gate guards the whole /api group; allow-listed prefixes above
	// bypass it.
	r.Use(middleware.Auth(container.GetJWT(), tokens, users, PublicPrefixes))

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(userSvc, logger)))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger)))
	r.Add(modules.NewDonationModule(handlers.NewDonationHandler(donationSvc, container.GetFileStore(), logger)))
	r.Add(modules.NewDashboardModule(handlers.NewDashboardHandler(donationSvc, logger)))
}
