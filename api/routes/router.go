package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Abhinav0406/dineplus-backend/api/controllers"
	"github.com/Abhinav0406/dineplus-backend/api/middleware"
	"github.com/Abhinav0406/dineplus-backend/internal/feedback"
	"github.com/Abhinav0406/dineplus-backend/internal/menu"
	"github.com/Abhinav0406/dineplus-backend/internal/orders"
	"github.com/Abhinav0406/dineplus-backend/internal/staging"
	"github.com/Abhinav0406/dineplus-backend/internal/tables"
	"github.com/Abhinav0406/dineplus-backend/pkg/config"
	"github.com/Abhinav0406/dineplus-backend/pkg/db"
	"github.com/Abhinav0406/dineplus-backend/pkg/logger"
	"github.com/Abhinav0406/dineplus-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	stagingService staging.Service,
	ordersService orders.Service,
	tablesService tables.Service,
	menuService menu.Service,
	feedbackService feedback.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins...),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/staged-orders", func(r chi.Router) {
			r.Post("/", controllers.StagedSessionCreate(stagingService, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.StagedSessionDetail(stagingService, logg))
				r.Delete("/", controllers.StagedSessionAbandon(stagingService, logg))
				r.Post("/items", controllers.StagedItemAdd(stagingService, logg))
				r.Delete("/items", controllers.StagedItemRemove(stagingService, logg))
				r.Patch("/items", controllers.StagedItemQuantity(stagingService, logg))
				r.Delete("/stages/{stage}", controllers.StagedStageClear(stagingService, logg))
				r.Post("/commit", controllers.StagedStageCommit(stagingService, logg))
				r.Post("/advance", controllers.StagedStageAdvance(stagingService, logg))
				r.Post("/retreat", controllers.StagedStageRetreat(stagingService, logg))
				r.Post("/finalize", controllers.StagedFinalize(stagingService, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(ordersService, logg))
			r.Get("/", controllers.OrderList(ordersService, logg))
			r.Get("/summary", controllers.OrdersSummary(ordersService, logg))
			r.Get("/kitchen/queue", controllers.KitchenQueue(ordersService, logg))
			r.Get("/number/{orderNumber}", controllers.OrderByNumber(ordersService, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.OrderDetail(ordersService, logg))
				r.Patch("/status", controllers.OrderStatusUpdate(ordersService, logg))
				r.Patch("/payment", controllers.OrderPaymentUpdate(ordersService, logg))
			})
		})

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", controllers.TableList(tablesService, logg))
			r.Post("/", controllers.TableCreate(tablesService, logg))
			r.Route("/{tableId}", func(r chi.Router) {
				r.Get("/", controllers.TableDetail(tablesService, logg))
				r.Patch("/status", controllers.TableStatusUpdate(tablesService, logg))
			})
		})

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", controllers.MenuFull(menuService, logg))
			r.Get("/items", controllers.MenuItemList(menuService, logg))
			r.Post("/items", controllers.MenuItemCreate(menuService, logg))
			r.Patch("/items/{itemId}/availability", controllers.MenuItemAvailability(menuService, logg))
			r.Post("/categories", controllers.MenuCategoryCreate(menuService, logg))
		})

		r.Route("/feedback", func(r chi.Router) {
			r.Post("/", controllers.FeedbackSubmit(feedbackService, logg))
			r.Get("/", controllers.FeedbackList(feedbackService, logg))
			r.Get("/summary", controllers.FeedbackSummary(feedbackService, logg))
		})
	})

	return r
}
