// server/internal/api/routes/routes.go
package routes

import (
	"hospital-pharmacy-api-server/config"
	"hospital-pharmacy-api-server/internal/api/handlers"
	"hospital-pharmacy-api-server/internal/api/middleware"
	"hospital-pharmacy-api-server/internal/stock"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires the handlers into the route tree.
func SetupRouter(cfg config.Config, db *mongo.Database, stockService *stock.Service) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	stockHandler := &handlers.StockHandler{Stock: stockService}
	adminStockHandler := &handlers.AdminStockHandler{Stock: stockService}
	pharmacyHandler := &handlers.PharmacyHandler{DB: db}
	userHandler := &handlers.UserHandler{DB: db, Cfg: cfg}

	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.RateLimit("300-M"))
	{
		// === UNAUTHENTICATED ROUTES ===

		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// === PROTECTED ROUTES ===

		// Admin group, restricted to hospital administrators
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize("superadmin", "admin"))
		{
			// User management
			admin.POST("/users", userHandler.CreateUser)

			// Pharmacy registry (CRUD)
			pharmacies := admin.Group("/pharmacies")
			{
				pharmacies.POST("/", pharmacyHandler.CreatePharmacy)
				pharmacies.GET("/", pharmacyHandler.GetAllPharmacies)
				pharmacies.GET("/:id", pharmacyHandler.GetPharmacyByID)
				pharmacies.PUT("/:id", pharmacyHandler.UpdatePharmacy)
				pharmacies.DELETE("/:id", pharmacyHandler.DeletePharmacy)
			}

			// Restock request adjudication
			stockRequests := admin.Group("/stockrequests")
			{
				stockRequests.GET("/", adminStockHandler.ListStockRequests)
				stockRequests.GET("/:id", adminStockHandler.GetStockRequest)
				stockRequests.POST("/approve", adminStockHandler.ApproveStockRequest)
				stockRequests.POST("/reject", adminStockHandler.RejectStockRequest)
			}
		}

		// Pharmacy stock operations, for pharmacy staff and admins
		pharmacy := apiV1.Group("/pharmacy")
		pharmacy.Use(middleware.Authenticate())
		pharmacy.Use(middleware.Authorize("superadmin", "admin", "pharmacist"))
		{
			pharmacy.POST("/init/:pharmacyId", stockHandler.InitStock)
			pharmacy.GET("/stock/:pharmacyId", stockHandler.GetStock)
			pharmacy.POST("/updatestock", stockHandler.UpdateStock)
			pharmacy.POST("/reduce", stockHandler.ReduceStock)
			pharmacy.POST("/increase", stockHandler.IncreaseStock)
			pharmacy.GET("/alerts/:pharmacyId", stockHandler.GetAlerts)
		}
	}

	return router
}
