package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dferrantino/quotehub-backend/api/controllers"
	"github.com/dferrantino/quotehub-backend/api/middleware"
	"github.com/dferrantino/quotehub-backend/internal/auth"
	"github.com/dferrantino/quotehub-backend/internal/catalog"
	"github.com/dferrantino/quotehub-backend/internal/notifications"
	"github.com/dferrantino/quotehub-backend/internal/parties"
	"github.com/dferrantino/quotehub-backend/internal/pricing"
	"github.com/dferrantino/quotehub-backend/internal/rfq"
	"github.com/dferrantino/quotehub-backend/pkg/auth/session"
	"github.com/dferrantino/quotehub-backend/pkg/config"
	"github.com/dferrantino/quotehub-backend/pkg/db"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
	"github.com/dferrantino/quotehub-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager sessionManager,
	authService auth.Service,
	registerService auth.RegisterService,
	switchService auth.SwitchPartyService,
	partyService parties.Service,
	membershipChecker middleware.MembershipChecker,
	catalogService catalog.Service,
	pricingService pricing.Service,
	rfqService rfq.Service,
	notificationsService notifications.Service,
	metricsRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Get("/healthz", controllers.HealthReady(cfg, logg, dbP, redisClient))
	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/ping", controllers.PublicPing())
	r.Post("/validate", controllers.PublicValidate(logg))

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(registerService, authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
		r.Post("/switch-party", controllers.AuthSwitchParty(switchService, cfg.JWT, logg))
	})

	supplierRoles := middleware.RequirePartyRoles(membershipChecker, logg,
		enums.MemberRoleOwner, enums.MemberRoleAdmin, enums.MemberRoleMember)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/v1/parties/mine", controllers.MyParties(partyService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.PartyContext(logg))
			r.Get("/v1/ping", controllers.PrivatePing())

			r.Route("/v1/rfqs", func(r chi.Router) {
				r.Post("/", controllers.SubmitRFQ(rfqService, logg))
				r.Get("/", controllers.ListRFQs(rfqService, logg))
				r.Route("/{rfqId}", func(r chi.Router) {
					r.Get("/", controllers.RFQDetail(rfqService, logg))
					r.Delete("/", controllers.DeleteRFQ(rfqService, logg))
					r.Post("/responses", controllers.SubmitQuoteResponse(rfqService, logg))
					r.Post("/responses/{responseId}/accept", controllers.AcceptQuoteResponse(rfqService, logg))
					r.Post("/responses/{responseId}/reject", controllers.RejectQuoteResponse(rfqService, logg))
					r.Post("/counters", controllers.SubmitCounterOffer(rfqService, logg))
					r.Post("/cancel", controllers.CancelRFQ(rfqService, logg))
				})
			})

			r.Route("/v1/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(catalogService, logg))
				r.With(supplierRoles).Post("/", controllers.CreateProduct(catalogService, logg))
				r.Route("/{productId}", func(r chi.Router) {
					r.Get("/", controllers.ProductDetail(catalogService, logg))
					r.With(supplierRoles).Patch("/", controllers.UpdateProduct(catalogService, logg))
					r.With(supplierRoles).Delete("/", controllers.DeactivateProduct(catalogService, logg))
					r.Get("/effective-price", controllers.EffectivePrice(pricingService, logg))
					r.With(supplierRoles).Put("/private-prices", controllers.UpsertPrivatePrice(pricingService, logg))
					r.With(supplierRoles).Delete("/private-prices", controllers.RemovePrivatePrice(pricingService, logg))
				})
			})

			r.Route("/v1/parties", func(r chi.Router) {
				r.Get("/me", controllers.PartyProfile(partyService, logg))
				r.Put("/me", controllers.PartyUpdate(partyService, logg))
				r.Get("/me/members", controllers.PartyMembers(partyService, logg))
				r.Post("/me/members", controllers.PartyAddMember(partyService, logg))
				r.Delete("/me/members/{userId}", controllers.PartyRemoveMember(partyService, logg))
			})

			r.Route("/v1/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(notificationsService, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
			})
		})
	})

	return r
}
