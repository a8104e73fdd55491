package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PSM90/fuorid20-arena-market/api/controllers"
	"github.com/PSM90/fuorid20-arena-market/api/middleware"
	"github.com/PSM90/fuorid20-arena-market/internal/activity"
	"github.com/PSM90/fuorid20-arena-market/internal/actors"
	"github.com/PSM90/fuorid20-arena-market/internal/catalog"
	"github.com/PSM90/fuorid20-arena-market/internal/players"
	"github.com/PSM90/fuorid20-arena-market/internal/settings"
	"github.com/PSM90/fuorid20-arena-market/internal/shop"
	"github.com/PSM90/fuorid20-arena-market/internal/transactions"
	"github.com/PSM90/fuorid20-arena-market/pkg/auth/session"
	"github.com/PSM90/fuorid20-arena-market/pkg/config"
	"github.com/PSM90/fuorid20-arena-market/pkg/events"
	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
	"github.com/PSM90/fuorid20-arena-market/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer

	Players  players.Service
	Actors   actors.Service
	Catalog  catalog.Service
	Shop     shop.Service
	Settings settings.Service
	Activity activity.Service
	Engine   *transactions.Engine
	Bus      *events.Bus
}

// NewRouter assembles the public, player, and game-master route trees.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(nil),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginNameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.Players, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/shop", func(r chi.Router) {
			r.Get("/", controllers.ShopStorefront(deps.Shop, logg))
			r.Post("/items/{itemRef}/purchase", controllers.ShopPurchase(deps.Engine, deps.Actors, logg))
			r.Post("/items/{itemRef}/reserve", controllers.ShopReserve(deps.Engine, deps.Actors, logg))
			r.Get("/items/{itemRef}/reservations", controllers.ShopItemReservations(deps.Shop, logg))
		})

		r.Get("/catalog/sources", controllers.CatalogSources(deps.Shop, deps.Catalog, logg))

		r.Route("/actors", func(r chi.Router) {
			r.Get("/", controllers.ActorsList(deps.Actors, logg))
			r.Get("/{actorId}", controllers.ActorDetail(deps.Actors, logg))
		})

		r.Get("/activity", controllers.ActivityList(deps.Activity, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireGameMaster(logg))

			r.Route("/shop", func(r chi.Router) {
				r.Get("/config", controllers.AdminShopConfig(deps.Shop, logg))
				r.Put("/config", controllers.AdminShopConfigReplace(deps.Shop, deps.Bus, logg))
				r.Put("/open", controllers.AdminShopSetOpen(deps.Settings, deps.Bus, logg))
				r.Put("/currency", controllers.AdminCurrencySet(deps.Settings, deps.Bus, logg))
				r.Put("/items/{itemRef}/stock", controllers.AdminStockSet(deps.Shop, logg))
				r.Post("/refresh", controllers.AdminRefresh(deps.Bus, logg))
			})

			r.Route("/reservations", func(r chi.Router) {
				r.Get("/", controllers.AdminReservationsList(deps.Shop, logg))
				r.Delete("/{reservationId}", controllers.AdminReservationDelete(deps.Shop, logg))
			})

			r.Route("/activity", func(r chi.Router) {
				r.Delete("/{entryId}", controllers.AdminActivityDelete(deps.Activity, logg))
				r.Delete("/", controllers.AdminActivityClear(deps.Activity, logg))
			})

			r.Route("/catalog", func(r chi.Router) {
				r.Route("/sources", func(r chi.Router) {
					r.Get("/", controllers.AdminSourcesList(deps.Catalog, logg))
					r.Post("/", controllers.AdminSourceCreate(deps.Catalog, logg))
					r.Delete("/{sourceId}", controllers.AdminSourceDelete(deps.Catalog, logg))
					r.Route("/{sourceId}/items", func(r chi.Router) {
						r.Get("/", controllers.AdminItemsList(deps.Catalog, logg))
						r.Post("/", controllers.AdminItemCreate(deps.Catalog, logg))
						r.Put("/{itemId}", controllers.AdminItemUpdate(deps.Catalog, logg))
						r.Delete("/{itemId}", controllers.AdminItemDelete(deps.Catalog, logg))
					})
				})
			})

			r.Route("/players", func(r chi.Router) {
				r.Get("/", controllers.AdminPlayersList(deps.Players, logg))
				r.Post("/", controllers.AdminPlayerCreate(deps.Players, logg))
				r.Put("/{playerId}/active", controllers.AdminPlayerSetActive(deps.Players, logg))
			})

			r.Route("/actors", func(r chi.Router) {
				r.Get("/", controllers.AdminActorsList(deps.Actors, logg))
				r.Post("/", controllers.AdminActorCreate(deps.Actors, logg))
				r.Delete("/{actorId}", controllers.AdminActorDelete(deps.Actors, logg))
				r.Put("/{actorId}/owner", controllers.AdminActorAssignOwner(deps.Actors, logg))
				r.Put("/{actorId}/balance", controllers.AdminActorSetBalance(deps.Actors, logg))
			})
		})
	})

	return r
}
