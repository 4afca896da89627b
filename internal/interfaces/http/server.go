// Package http is the HTTP adapter: a thin gin layer translating
// requests into application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/service"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Services bundles the application services the API exposes
type Services struct {
	Projects         service.ProjectService
	Quotations       service.QuotationService
	Deliveries       service.DeliveryService
	PurchaseRequests service.PurchaseRequestService
	RfqItems         service.RfqItemService
	PurchaseOrders   service.PurchaseOrderService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     *zap.Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		services: services,
		logger:   logger,
	}

	server.router.Use(gin.Recovery())
	server.router.Use(server.loggingMiddleware())
	server.setupRoutes()

	return server
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/projects", handlers.CreateProject)
		api.GET("/projects", handlers.ListProjects)
		api.GET("/projects/:id", handlers.GetProject)
		api.POST("/projects/:id/activate", handlers.ActivateProject)
		api.POST("/projects/:id/complete", handlers.CompleteProject)
		api.POST("/projects/:id/archive", handlers.ArchiveProject)
		api.DELETE("/projects/:id", handlers.DeleteProject)

		api.POST("/projects/:id/quotations", handlers.CreateQuotation)
		api.GET("/projects/:id/quotations", handlers.ListQuotations)
		api.GET("/quotations/:id", handlers.GetQuotation)
		api.POST("/quotations/:id/submit", handlers.SubmitQuotation)
		api.POST("/quotations/:id/approval", handlers.CompleteQuotationApproval)
		api.POST("/quotations/:id/send", handlers.MarkQuotationSending)
		api.POST("/quotations/:id/sent", handlers.MarkQuotationSent)
		api.POST("/quotations/:id/accept", handlers.AcceptQuotation)
		api.GET("/quotations/:id/printable", handlers.CheckQuotationPrintable)

		api.POST("/quotation-items/:id/deliveries", handlers.RecordDelivery)
		api.GET("/quotation-items/:id/deliveries", handlers.ListDeliveries)

		api.POST("/projects/:id/purchase-requests", handlers.CreatePurchaseRequest)
		api.GET("/projects/:id/purchase-requests", handlers.ListPurchaseRequests)
		api.GET("/purchase-requests/:id", handlers.GetPurchaseRequest)
		api.POST("/purchase-requests/:id/rfq", handlers.SendRFQ)
		api.POST("/purchase-requests/:id/select", handlers.SelectVendor)
		api.POST("/purchase-requests/:id/cancel", handlers.CancelPurchaseRequest)
		api.GET("/purchase-requests/:id/rfq-items", handlers.ListRfqItems)
		api.POST("/purchase-requests/:id/orders", handlers.CreatePurchaseOrder)
		api.GET("/purchase-requests/:id/orders", handlers.ListPurchaseOrders)

		api.POST("/rfq-items/:id/reply", handlers.RecordRfqReply)
		api.POST("/rfq-items/:id/no-response", handlers.MarkRfqNoResponse)

		api.GET("/purchase-orders/:id", handlers.GetPurchaseOrder)
		api.POST("/purchase-orders/:id/send", handlers.SendPurchaseOrder)
		api.POST("/purchase-orders/:id/confirm", handlers.ConfirmPurchaseOrder)
		api.POST("/purchase-orders/:id/receive", handlers.ReceivePurchaseOrder)
		api.POST("/purchase-orders/:id/cancel", handlers.CancelPurchaseOrder)
	}
}

// Start starts the HTTP server and blocks until ctx is canceled or the
// listener fails
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
