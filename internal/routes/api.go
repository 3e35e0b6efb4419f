// Package routes wires handlers onto the router.
package routes

import (
	"inventorypro/internal/domain"
	"inventorypro/internal/handler"
	"inventorypro/internal/middleware"
	"inventorypro/internal/router"
	"inventorypro/internal/service"
)

// Deps carries everything the API routes need.
type Deps struct {
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Orders   *handler.OrderHandler
	Reports  *handler.ReportHandler
	Auth     *handler.AuthHandler

	Users    domain.UserStore
	Sessions *service.SessionManager

	SecureCookies bool
}

// RegisterAPIRoutes mounts the JSON API. Reads are open to the terminal;
// every mutation requires a logged-in operator.
func RegisterAPIRoutes(r *router.Router, deps Deps, loginLimiter router.Middleware) {
	api := r.Group(middleware.WithSession(deps.Sessions, deps.SecureCookies))
	authed := api.Group(middleware.RequireUser)
	admin := api.Group(middleware.RequireAdmin(deps.Users))

	// Catalog
	api.Get("/api/products", deps.Products.List)
	api.Get("/api/products/low-stock", deps.Products.LowStock)
	api.Get("/api/products/sku/{sku}", deps.Products.GetBySKU)
	api.Get("/api/products/{id}", deps.Products.Get)
	authed.Post("/api/products", deps.Products.Create)
	authed.Put("/api/products/{id}", deps.Products.Update)
	authed.Delete("/api/products/{id}", deps.Products.Delete)
	authed.Post("/api/products/decrement-stock", deps.Products.DecrementStock)

	// Cart
	authed.Get("/api/cart", deps.Cart.Get)
	authed.Post("/api/cart/items", deps.Cart.AddItem)
	authed.Put("/api/cart/items/{id}", deps.Cart.UpdateItem)
	authed.Delete("/api/cart/items/{id}", deps.Cart.RemoveItem)
	authed.Put("/api/cart/customer", deps.Cart.SetCustomer)
	authed.Put("/api/cart/settings", deps.Cart.SetSettings)
	authed.Post("/api/cart/clear", deps.Cart.Clear)
	authed.Post("/api/cart/refresh", deps.Cart.Refresh)

	// Checkout
	authed.Post("/api/checkout", deps.Checkout.GenerateBill)

	// Sales history
	api.Get("/api/orders", deps.Orders.List)
	api.Get("/api/orders/{number}", deps.Orders.Get)
	api.Get("/api/orders/{number}/invoice", deps.Orders.Invoice)

	// Analytics
	api.Get("/api/reports/sales", deps.Reports.Sales)
	api.Get("/api/dashboard", deps.Reports.Dashboard)

	// Accounts
	api.Post("/api/auth/login", deps.Auth.Login, loginLimiter)
	api.Post("/api/auth/logout", deps.Auth.Logout)
	api.Get("/api/auth/me", deps.Auth.Me)
	admin.Post("/api/auth/register", deps.Auth.Register)
}
