package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.MetricsContext)
	r.Use(h.SecurityHeaders)
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})

	// Public storefront API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", h.ListProducts).Methods("GET").Name("api.products")
	api.HandleFunc("/products/{id}", h.GetProduct).Methods("GET").Name("api.products.get")
	api.HandleFunc("/products/{id}/options", h.ProductOptions).Methods("GET").Name("api.products.options")
	api.HandleFunc("/calculate-price", h.CalculatePrice).Methods("POST").Name("api.calculate_price")
	api.HandleFunc("/orders", h.CreateOrder).Methods("POST").Name("api.orders.create")
	api.HandleFunc("/admin/login", h.Login).Methods("POST").Name("api.admin.login")

	// Protected admin API
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(h.SessionMiddleware)
	admin.Use(h.RequireAuth)
	admin.Use(h.RequireSameOrigin)
	admin.HandleFunc("/logout", h.Logout).Methods("POST").Name("api.admin.logout")
	admin.HandleFunc("/orders", h.ListOrders).Methods("GET").Name("api.admin.orders")
	admin.HandleFunc("/orders/{id}", h.GetOrder).Methods("GET").Name("api.admin.orders.get")
	admin.HandleFunc("/orders/{id}/status", h.UpdateOrderStatus).Methods("PATCH").Name("api.admin.orders.status")
	admin.HandleFunc("/products/{id}", h.UpdateProduct).Methods("PATCH").Name("api.admin.products.update")
	admin.HandleFunc("/products/{id}/inventory", h.ListInventory).Methods("GET").Name("api.admin.inventory")
	admin.HandleFunc("/inventory/{id}/adjust", h.AdjustInventory).Methods("POST").Name("api.admin.inventory.adjust")
	admin.HandleFunc("/inventory/{id}/visibility", h.SetInventoryVisibility).Methods("PATCH").Name("api.admin.inventory.visibility")

	return r
}
