package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockroomhq/stockroom-backend/api/controllers"
	"github.com/stockroomhq/stockroom-backend/api/middleware"
	adminsvc "github.com/stockroomhq/stockroom-backend/internal/admins"
	authsvc "github.com/stockroomhq/stockroom-backend/internal/auth"
	catalogsvc "github.com/stockroomhq/stockroom-backend/internal/catalog"
	customersvc "github.com/stockroomhq/stockroom-backend/internal/customers"
	draftsvc "github.com/stockroomhq/stockroom-backend/internal/drafts"
	invoicesvc "github.com/stockroomhq/stockroom-backend/internal/invoices"
	labelsvc "github.com/stockroomhq/stockroom-backend/internal/labels"
	productsvc "github.com/stockroomhq/stockroom-backend/internal/products"
	reportsvc "github.com/stockroomhq/stockroom-backend/internal/reports"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
	pkgredis "github.com/stockroomhq/stockroom-backend/pkg/redis"
)

// Services bundles the domain services the router wires to controllers.
type Services struct {
	Auth      authsvc.Service
	Admins    adminsvc.Service
	Customers customersvc.Service
	Catalog   catalogsvc.Service
	Products  productsvc.Service
	Drafts    draftsvc.Service
	Invoices  invoicesvc.Service
	Reports   reportsvc.Service
	Labels    labelsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/invoice-drafts", func(r chi.Router) {
			r.Post("/", controllers.DraftCreate(svcs.Drafts, logg))
			r.Get("/", controllers.DraftList(svcs.Drafts, logg))
			r.Get("/{id}", controllers.DraftGet(svcs.Drafts, logg))
			r.Put("/{id}", controllers.DraftUpdate(svcs.Drafts, logg))
			r.Delete("/{id}", controllers.DraftDelete(svcs.Drafts, logg))
			r.Put("/items/{itemId}", controllers.DraftItemUpdate(svcs.Drafts, logg))
			r.Delete("/items/{itemId}", controllers.DraftItemDelete(svcs.Drafts, logg))
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Post("/convert-draft", controllers.InvoiceConvertDraft(svcs.Invoices, logg))
			r.Get("/", controllers.InvoiceList(svcs.Invoices, logg))
			r.Get("/{id}", controllers.InvoiceGet(svcs.Invoices, logg))
			r.Put("/{id}/status", controllers.InvoiceUpdateStatus(svcs.Invoices, logg))
			r.Delete("/{id}", controllers.InvoiceDelete(svcs.Invoices, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(svcs.Products, logg))
			r.Get("/", controllers.ProductList(svcs.Products, logg))
			r.Get("/{id}", controllers.ProductGet(svcs.Products, logg))
			r.Patch("/{id}", controllers.ProductUpdate(svcs.Products, logg))
			r.Delete("/{id}", controllers.ProductDelete(svcs.Products, logg))
			r.Post("/{id}/variants", controllers.VariantCreate(svcs.Products, logg))
			r.Get("/variants/{variantId}", controllers.VariantGet(svcs.Products, logg))
			r.Patch("/variants/{variantId}", controllers.VariantUpdate(svcs.Products, logg))
			r.Delete("/variants/{variantId}", controllers.VariantDelete(svcs.Products, logg))
		})

		r.Route("/category", func(r chi.Router) {
			r.Post("/", controllers.CategoryCreate(svcs.Catalog, logg))
			r.Get("/", controllers.CategoryList(svcs.Catalog, logg))
			r.Get("/{id}", controllers.CategoryGet(svcs.Catalog, logg))
			r.Patch("/{id}", controllers.CategoryUpdate(svcs.Catalog, logg))
			r.Delete("/{id}", controllers.CategoryDelete(svcs.Catalog, logg))
		})

		r.Route("/subcategory", func(r chi.Router) {
			r.Post("/", controllers.SubcategoryCreate(svcs.Catalog, logg))
			r.Get("/", controllers.SubcategoryList(svcs.Catalog, logg))
			r.Patch("/{id}", controllers.SubcategoryUpdate(svcs.Catalog, logg))
			r.Delete("/{id}", controllers.SubcategoryDelete(svcs.Catalog, logg))
		})

		r.Route("/brands", func(r chi.Router) {
			r.Post("/", controllers.BrandCreate(svcs.Catalog, logg))
			r.Get("/", controllers.BrandList(svcs.Catalog, logg))
			r.Patch("/{id}", controllers.BrandUpdate(svcs.Catalog, logg))
			r.Delete("/{id}", controllers.BrandDelete(svcs.Catalog, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CustomerCreate(svcs.Customers, logg))
			r.Get("/", controllers.CustomerList(svcs.Customers, logg))
			r.Get("/{id}", controllers.CustomerGet(svcs.Customers, logg))
			r.Patch("/{id}", controllers.CustomerUpdate(svcs.Customers, logg))
			r.Delete("/{id}", controllers.CustomerDelete(svcs.Customers, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/", controllers.AdminCreate(svcs.Admins, logg))
			r.Get("/", controllers.AdminList(svcs.Admins, logg))
			r.Get("/{id}", controllers.AdminGet(svcs.Admins, logg))
			r.Patch("/{id}", controllers.AdminUpdate(svcs.Admins, logg))
			r.Delete("/{id}", controllers.AdminDelete(svcs.Admins, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales", controllers.ReportSales(svcs.Reports, logg))
			r.Get("/inventory", controllers.ReportInventory(svcs.Reports, logg))
		})

		r.Post("/labels/barcodes", controllers.LabelBatch(svcs.Labels, logg))
	})

	return r
}
