// Package api serves the JSON API under /api/.
package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/almacen/internal/inventory"
	"github.com/erazemk/almacen/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, inv *inventory.Service) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	ordersHandler := &OrdersHandler{DB: db, Inventory: inv}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}/role", authMW(requireAdmin(http.HandlerFunc(usersHandler.UpdateRole))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Catalog and ledger (all roles, ledger scoped for non-staff).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("GET /api/items/{id}/txns", authMW(http.HandlerFunc(itemsHandler.ItemTxns)))
	mux.Handle("GET /api/txns", authMW(http.HandlerFunc(itemsHandler.Txns)))

	// Stock movements.
	mux.Handle("POST /api/inventory/adjust", authMW(requireManager(http.HandlerFunc(ordersHandler.Adjust))))
	mux.Handle("POST /api/purchases", authMW(requireManager(http.HandlerFunc(ordersHandler.CreatePurchase))))
	mux.Handle("GET /api/purchases/{id}", authMW(requireManager(http.HandlerFunc(ordersHandler.GetPurchase))))
	mux.Handle("POST /api/requisitions", authMW(http.HandlerFunc(ordersHandler.CreateRequisition)))
	mux.Handle("GET /api/requisitions/{id}", authMW(http.HandlerFunc(ordersHandler.GetRequisition)))

	return mux
}
