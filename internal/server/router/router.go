package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aquaexport/seatrace/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(shipmentHandler *handlers.ShipmentHandler, labHandler *handlers.LabHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api/v1")
	{
		api.POST("/session/shipment", shipmentHandler.SelectShipment)
		api.GET("/session/shipment", shipmentHandler.CurrentShipment)

		shipments := api.Group("/shipments/:id")
		{
			shipments.GET("/products/:productID/balance", shipmentHandler.Balance)
			shipments.POST("/entries/validate", shipmentHandler.ValidateEntry)
			shipments.POST("/entries", shipmentHandler.CreateEntry)
			shipments.PUT("/entries/:entryID", shipmentHandler.UpdateEntry)
			shipments.DELETE("/entries/:entryID", shipmentHandler.DeleteEntry)
			shipments.POST("/products", shipmentHandler.CreateProduct)
			shipments.GET("/reconcile", shipmentHandler.Reconcile)
			shipments.GET("/reconcile/history", shipmentHandler.ReconcileHistory)
		}

		api.POST("/lab-records/validate-dates", labHandler.ValidateDates)
		api.POST("/lab-records", labHandler.Create)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
