package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/expediterhq/expediter/internal/audit"
	auditdomain "github.com/expediterhq/expediter/internal/audit/domain"
	"github.com/expediterhq/expediter/internal/authorization"
	"github.com/expediterhq/expediter/internal/config"
	"github.com/expediterhq/expediter/internal/menu"
	menudomain "github.com/expediterhq/expediter/internal/menu/domain"
	"github.com/expediterhq/expediter/internal/metrics"
	"github.com/expediterhq/expediter/internal/order"
	orderdomain "github.com/expediterhq/expediter/internal/order/domain"
	"github.com/expediterhq/expediter/internal/orderlock"
	"github.com/expediterhq/expediter/internal/payment"
	paymentdomain "github.com/expediterhq/expediter/internal/payment/domain"
	"github.com/expediterhq/expediter/internal/providers/pdf"
	"github.com/expediterhq/expediter/internal/realtime"
	"github.com/expediterhq/expediter/internal/staff"
	staffdomain "github.com/expediterhq/expediter/internal/staff/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	staff.Module,
	menu.Module,
	order.Module,
	payment.Module,
	orderlock.Module,
	realtime.Module,
	metrics.Module,
	pdf.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	return NewEngine(log, m)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	genID      *snowflake.Node
	staffSvc   staffdomain.Service
	menuSvc    menudomain.Service
	orderSvc   orderdomain.Service
	paymentSvc paymentdomain.Service
	auditSvc   auditdomain.Service
	authzSvc   authorization.Service
	hub        *realtime.Hub
	metrics    *metrics.Metrics
	pdf        pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	GenID      *snowflake.Node
	StaffSvc   staffdomain.Service
	MenuSvc    menudomain.Service
	OrderSvc   orderdomain.Service
	PaymentSvc paymentdomain.Service
	AuditSvc   auditdomain.Service
	AuthzSvc   authorization.Service
	Hub        *realtime.Hub
	Metrics    *metrics.Metrics
	PDF        pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("http.server"),
		genID:      p.GenID,
		staffSvc:   p.StaffSvc,
		menuSvc:    p.MenuSvc,
		orderSvc:   p.OrderSvc,
		paymentSvc: p.PaymentSvc,
		auditSvc:   p.AuditSvc,
		authzSvc:   p.AuthzSvc,
		hub:        p.Hub,
		metrics:    p.Metrics,
		pdf:        p.PDF,
	}

	svc.registerOrderRoutes()
	svc.registerPaymentRoutes()
	svc.registerEventRoutes()
	svc.registerCatalogRoutes()
	svc.registerStaffRoutes()
	svc.registerAuditRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) api() *gin.RouterGroup {
	return s.engine.Group("/api", s.StaffRequired())
}

func (s *Server) registerOrderRoutes() {
	orders := s.api().Group("/orders")

	orders.POST("", s.RequirePermission(authorization.ObjectOrder, authorization.ActionOrderCreate), s.CreateOrder)
	orders.GET("", s.RequirePermission(authorization.ObjectOrder, authorization.ActionOrderView), s.ListOrders)
	orders.GET("/kitchen", s.RequirePermission(authorization.ObjectOrder, authorization.ActionKitchenView), s.KitchenOrders)
	orders.GET("/:id", s.RequirePermission(authorization.ObjectOrder, authorization.ActionOrderView), s.GetOrder)
	orders.PUT("/:id/status", s.RequirePermission(authorization.ObjectOrder, authorization.ActionOrderStatus), s.UpdateOrderStatus)
}

func (s *Server) registerPaymentRoutes() {
	payments := s.api().Group("/payments")

	payments.POST("/:id/log", s.RequirePermission(authorization.ObjectPayment, authorization.ActionPaymentLog), s.LogPayment)
	payments.POST("/:id/print", s.RequirePermission(authorization.ObjectReceipt, authorization.ActionReceiptPrint), s.PrintReceipt)
	payments.POST("/:id/refund", s.RequirePermission(authorization.ObjectPayment, authorization.ActionRefund), s.RefundPayment)
	payments.GET("/:id/receipt.pdf", s.RequirePermission(authorization.ObjectReceipt, authorization.ActionReceiptPrint), s.ReceiptPDF)
}

func (s *Server) registerEventRoutes() {
	events := s.api().Group("/events")

	events.GET("", s.RequirePermission(authorization.ObjectEvents, authorization.ActionSubscribe), s.StreamEvents)
}

func (s *Server) registerCatalogRoutes() {
	items := s.api().Group("/menu")

	items.GET("", s.ListMenuItems)
	items.POST("", s.RequirePermission(authorization.ObjectMenu, authorization.ActionMenuManage), s.CreateMenuItem)
	items.PUT("/:id/availability", s.RequirePermission(authorization.ObjectMenu, authorization.ActionMenuManage), s.SetMenuItemAvailability)
}

func (s *Server) registerStaffRoutes() {
	members := s.api().Group("/staff")

	members.GET("", s.RequirePermission(authorization.ObjectStaff, authorization.ActionStaffManage), s.ListStaff)
	members.POST("", s.RequirePermission(authorization.ObjectStaff, authorization.ActionStaffManage), s.CreateStaff)
}

func (s *Server) registerAuditRoutes() {
	logs := s.api().Group("/audit-logs")

	logs.GET("", s.RequirePermission(authorization.ObjectAudit, authorization.ActionAuditView), s.ListAuditLogs)
}
