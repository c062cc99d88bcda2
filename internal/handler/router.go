package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the API surface on a chi router. Read endpoints are public;
// review writes require authentication and catalog, order, and blog
// management require the admin role.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/featured", h.FeaturedProducts)
			r.Get("/new-arrivals", h.NewArrivals)
			r.Get("/best-sellers", h.BestSellers)
			r.Get("/{id}", h.GetProduct)
			r.Get("/{id}/reviews", h.ListReviews)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth)
				r.Put("/{id}/reviews", h.UpsertReview)
				r.Delete("/{id}/reviews", h.DeleteReview)
			})

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth, h.RequireAdmin)
				r.Post("/", h.CreateProduct)
				r.Put("/{id}", h.UpdateProduct)
				r.Delete("/{id}", h.DeleteProduct)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.CreateOrder)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth, h.RequireAdmin)
				r.Get("/", h.ListOrders)
				r.Get("/{id}", h.GetOrder)
				r.Patch("/{id}/status", h.UpdateOrderStatus)
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Route("/blog", func(r chi.Router) {
			r.Get("/", h.ListPosts)
			r.Get("/{slug}", h.GetPost)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth, h.RequireAdmin)
				r.Get("/all", h.ListAllPosts)
				r.Post("/", h.CreatePost)
				r.Put("/{id}", h.UpdatePost)
				r.Delete("/{id}", h.DeletePost)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth, h.RequireAdmin)
			r.Post("/upload", h.UploadMedia)
		})
	})

	return r
}
