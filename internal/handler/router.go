package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"scentwise-server/internal/config"
	"scentwise-server/internal/gate"
)

var devOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"http://localhost:8080",
}

// NewRouter creates a new HTTP router with all routes configured. Method checks
// for /api routes happen in the gate so every refusal shares one JSON shape.
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "scentwise-server"})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	g := container.Gate
	authHandler := NewAuthHandler(container)
	tierHandler := NewTierHandler(container)
	checkoutHandler := NewCheckoutHandler(container)
	recommendHandler := NewRecommendHandler(container)
	webhookHandler := NewWebhookHandler(container)
	debugHandler := NewDebugHandler(container)

	api := router.PathPrefix("/api").Subrouter()
	api.Handle("/login", g.Guard(gate.LoginPolicy, http.HandlerFunc(authHandler.Login)))
	api.Handle("/verify-subscription", g.Guard(gate.VerifyPolicy, http.HandlerFunc(authHandler.VerifySubscription)))
	api.Handle("/owner-auth", g.Guard(gate.OwnerPolicy, http.HandlerFunc(authHandler.Owner)))
	api.Handle("/check-tier", g.Guard(gate.TierPolicy, http.HandlerFunc(tierHandler.CheckTier)))
	api.Handle("/create-checkout", g.Guard(gate.CheckoutPolicy, http.HandlerFunc(checkoutHandler.CreateCheckout)))
	api.Handle("/recommend", g.Guard(gate.RecommendPolicy, http.HandlerFunc(recommendHandler.Recommend)))
	api.Handle("/webhook", g.Guard(gate.WebhookPolicy, http.HandlerFunc(webhookHandler.Receive)))
	api.Handle("/debug-config", g.Guard(gate.DebugPolicy, http.HandlerFunc(debugHandler.Config)))

	router.Use(RequestLogger(container.Logger))

	origins := devOrigins
	if container.Config != nil && len(container.Config.GetCORSAllowedOrigins()) > 0 {
		origins = container.Config.GetCORSAllowedOrigins()
	}

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			requestIDHeader,
		},
		ExposedHeaders: []string{
			requestIDHeader,
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
