package main

import (
	"log"

	"pems_api_go/config"
	"pems_api_go/db"
	"pems_api_go/handlers"
	"pems_api_go/middleware"
	"pems_api_go/models"
	"pems_api_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Migrate the control schema directory
	controlSession, err := db.SessionFor(db.ControlSchema())
	if err != nil {
		log.Fatalf("Failed to open control schema session: %v", err)
	}
	if err := controlSession.AutoMigrate(&models.Agency{}); err != nil {
		log.Fatalf("Failed to run control schema migrations: %v", err)
	}

	// Initialize object storage
	services.InitializeStorage(cfg)

	// Identity provider
	idp, err := services.NewCognitoProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize identity provider: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.HeaderClient},
	}))

	// All v1 routes carry tenant and auth context
	v1 := e.Group("/v1")
	v1.Use(middleware.ResolveTenant())
	v1.Use(middleware.RequireAuth(idp))

	caseRoutes := v1.Group("/case_management")
	{
		caseRoutes.POST("/case", handlers.CreateCase,
			middleware.RequirePermission("create", "case_management"))
		caseRoutes.PUT("/case/:case_number", handlers.UpdateCase,
			middleware.RequirePermission("update", "case_management"))
		caseRoutes.GET("/case/:case_number", handlers.GetCase,
			middleware.RequirePermission("read", "case_management"))
		caseRoutes.POST("/case/search", handlers.SearchCases,
			middleware.RequirePermission("read", "case_management"))
		caseRoutes.GET("/defendants", handlers.ListDefendants,
			middleware.RequirePermission("read", "case_management"))
		caseRoutes.GET("/charges", handlers.ListCharges,
			middleware.RequirePermission("read", "case_management"))

		caseRoutes.POST("/documents", handlers.UploadDocuments,
			middleware.RequirePermission("create", "case_management"))
		caseRoutes.GET("/documents", handlers.ListDocuments,
			middleware.RequirePermission("read", "case_management"))
		caseRoutes.GET("/documents/citation", handlers.ParseCitation,
			middleware.RequirePermission("read", "case_management"))
	}

	productRoutes := v1.Group("/product_management")
	{
		productRoutes.GET("/products", handlers.ListProducts,
			middleware.RequirePermission("read", "product_management"))
		productRoutes.POST("/products", handlers.CreateProduct,
			middleware.RequirePermission("create", "product_management"))
		productRoutes.PATCH("/products/:product_id", handlers.UpdateProduct,
			middleware.RequirePermission("update", "product_management"))
		productRoutes.GET("/categories", handlers.ListCategories,
			middleware.RequirePermission("read", "product_management"))
		productRoutes.POST("/categories", handlers.CreateCategory,
			middleware.RequirePermission("create", "product_management"))
	}

	adminRoutes := v1.Group("/admin",
		middleware.RequirePermission("manage", "administration"))
	{
		adminRoutes.GET("/agencies", handlers.ListAgencies)
		adminRoutes.POST("/agencies", handlers.CreateAgency)
		adminRoutes.GET("/permissions/:role", handlers.GetRolePermissions)
		adminRoutes.POST("/permissions", handlers.GrantPermission)
		adminRoutes.DELETE("/permissions/:id", handlers.RevokePermission)
		adminRoutes.GET("/config", handlers.GetClientConfig)
		adminRoutes.POST("/config", handlers.SetClientConfig)
	}

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
