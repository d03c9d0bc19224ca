package main

import (
	"log"
	"net/http"

	"github.com/open-ecommerce/helptext-sub001/config"
	"github.com/open-ecommerce/helptext-sub001/database"
	"github.com/open-ecommerce/helptext-sub001/handlers"
	"github.com/open-ecommerce/helptext-sub001/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Connect to database
	db, err := database.Connect(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Initialize tables
	if err := db.InitializeTables(); err != nil {
		log.Fatal("Failed to initialize tables:", err)
	}

	store := database.NewStore(db)
	gateway := selectGateway()

	settings := services.RoutingSettings{
		Anonymize:           config.AppConfig.AnonymizeMessages,
		AutoResponseEnabled: config.AppConfig.AutoResponseEnabled,
		AutoResponseText:    config.AppConfig.AutoResponseText,
	}

	handlers.Store = store
	handlers.Gateway = gateway
	handlers.MessageRouter = services.NewRouter(store, store, store, store, gateway, settings)

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.Default()

	// Add CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure this properly for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "HelpText Server is running",
		})
	})

	// Provider webhooks (shared-secret auth inside the handlers)
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/twilio/sms", handlers.TwilioSMSWebhook)
		webhooks.POST("/twilio/voice", handlers.TwilioVoiceWebhook)
		webhooks.POST("/telerivet/sms", handlers.TelerivetSMSWebhook)
	}

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/register", handlers.RegisterUser)
		}

		contacts := api.Group("/contacts", handlers.AuthRequired())
		{
			contacts.GET("", handlers.GetContacts)
			contacts.GET("/:id", handlers.GetContact)
			contacts.POST("", handlers.CreateContact)
			contacts.PUT("/:id", handlers.UpdateContact)
			contacts.DELETE("/:id", handlers.SupervisorRequired(), handlers.DeleteContact)
		}

		cases := api.Group("/cases", handlers.AuthRequired())
		{
			cases.GET("", handlers.GetCases)
			cases.GET("/:id", handlers.GetCase)
			cases.PUT("/:id", handlers.UpdateCase)
			cases.PUT("/:id/close", handlers.CloseCase)
			cases.PUT("/:id/assign", handlers.AssignCase)
			cases.GET("/:id/messages", handlers.GetCaseMessages)
			cases.POST("/:id/messages", handlers.SendCaseMessage)
		}

		users := api.Group("/users", handlers.AuthRequired())
		{
			users.GET("", handlers.GetUsers)
			users.GET("/:id", handlers.GetUser)
			users.PUT("/:id", handlers.SupervisorRequired(), handlers.UpdateUser)
			users.PUT("/:id/availability", handlers.UpdateAvailability)
		}

		api.GET("/lookups", handlers.AuthRequired(), handlers.GetLookups)
		api.GET("/dashboard", handlers.AuthRequired(), handlers.GetDashboard)
	}

	// Start server
	log.Printf("Starting HelpText server on port %s", config.AppConfig.ServerPort)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+config.AppConfig.ServerPort, c.Handler(router)))
}

// selectGateway picks the outbound SMS provider from configuration.
func selectGateway() services.SMSGateway {
	switch config.AppConfig.SMSProvider {
	case "telerivet":
		return services.NewTelerivetGateway(config.AppConfig.TelerivetAPIKey, config.AppConfig.APIProjectID)
	default:
		return services.NewTwilioGateway(
			config.AppConfig.TwilioAccountSID,
			config.AppConfig.TwilioAuthToken,
			config.AppConfig.APINumber,
		)
	}
}
