// Package router assembles the HTTP engine: the middleware stack, the public
// endpoints and the authenticated /api/v1 domain groups.
package router

import (
	"net/http"

	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"github.com/bizgrid/backend/internal/interfaces/http/dto"
	"github.com/bizgrid/backend/internal/interfaces/http/handler"
	"github.com/bizgrid/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router registers domain groups under a versioned, authenticated prefix
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use adds middleware applied to every versioned route
func (r *Router) Use(mw ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, mw...)
	return r
}

// Register adds a RouteRegistrar to be registered by Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	api.Use(r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes of one domain under a prefix
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, mw...)
	return dg
}

// Handle registers a route for method
func (dg *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, path, handlers...)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, path, handlers...)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, path, handlers...)
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Config carries the engine settings taken from configuration
type Config struct {
	ServiceName    string
	TracingEnabled bool
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	Auth           middleware.AuthConfig
	// Meter records HTTP metrics; nil disables them
	Meter  metric.Meter
	Logger *zap.Logger
}

// Handlers are the domain handlers served under /api/v1
type Handlers struct {
	System         *handler.SystemHandler
	Identity       *handler.IdentityHandler
	Customers      *handler.CustomerHandler
	OrgProducts    *handler.OrgProductHandler
	MasterProducts *handler.MasterProductHandler
	TaxCodes       *handler.TaxCodeHandler
	Inventory      *handler.InventoryHandler
	Invoices       *handler.InvoiceHandler
}

// New builds the engine. Middleware order: panic recovery, request id, request
// logging, tracing, security headers, CORS, body limit and metrics, then
// authentication and span enrichment on the versioned API only.
func New(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	engine.Use(httpMetrics)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(middleware.Authenticate(cfg.Auth), middleware.SpanEnricher())
	for _, group := range domainGroups(h) {
		r.Register(group)
	}
	r.Setup()
	return engine, nil
}

func domainGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.Identity != nil {
		groups = append(groups,
			NewDomainGroup("me", "/me").
				GET("", h.Identity.Me),
			NewDomainGroup("organizations", "/organizations").
				POST("", h.Identity.Signup).
				GET("/current", h.Identity.GetCurrent).
				PUT("/current", h.Identity.UpdateCurrent).
				GET("/members", h.Identity.ListMembers).
				POST("/members", h.Identity.AddMember).
				PUT("/members/:principalId/reports-to", h.Identity.SetReportsTo),
		)
	}
	if h.Customers != nil {
		groups = append(groups, NewDomainGroup("customers", "/customers").
			POST("/upsert", h.Customers.Upsert).
			GET("", h.Customers.List).
			GET("/:id", h.Customers.Get))
	}
	if h.OrgProducts != nil {
		groups = append(groups, NewDomainGroup("org-products", "/org-products").
			POST("", h.OrgProducts.Create).
			GET("", h.OrgProducts.List).
			GET("/:id", h.OrgProducts.Get).
			POST("/:id/auto-link", h.OrgProducts.AutoLink).
			POST("/:id/link", h.OrgProducts.Link))
	}
	if h.MasterProducts != nil {
		groups = append(groups,
			NewDomainGroup("master-products", "/master-products").
				POST("/suggestions", h.MasterProducts.Submit).
				GET("", h.MasterProducts.List).
				GET("/:id", h.MasterProducts.Get).
				GET("/:id/tax-rate", h.MasterProducts.GetTaxRate).
				POST("/:id/review", h.MasterProducts.Review).
				POST("/:id/resubmit", h.MasterProducts.Resubmit).
				GET("/:id/audit", h.MasterProducts.AuditTrail),
			NewDomainGroup("governance", "/governance").
				GET("/pending", h.MasterProducts.ListPending),
		)
	}
	if h.TaxCodes != nil {
		groups = append(groups, NewDomainGroup("tax-codes", "/tax-codes").
			GET("", h.TaxCodes.List).
			PUT("/:code", h.TaxCodes.Save))
	}
	if h.Inventory != nil {
		groups = append(groups, NewDomainGroup("stock", "/stock").
			POST("/movements", h.Inventory.RecordMovement).
			POST("/serials", h.Inventory.RegisterSerials).
			GET("/:productId", h.Inventory.GetStockLevel).
			GET("/:productId/ledger", h.Inventory.ListLedger))
	}
	if h.Invoices != nil {
		groups = append(groups, NewDomainGroup("invoices", "/invoices").
			POST("/validate", h.Invoices.Validate).
			POST("", h.Invoices.Create).
			GET("", h.Invoices.List).
			GET("/:id", h.Invoices.Get).
			PUT("/:id", h.Invoices.SaveDraft).
			POST("/:id/finalize", h.Invoices.Finalize).
			POST("/:id/cancel", h.Invoices.Cancel))
	}
	return groups
}
