// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/corpcms-go/internal/auth"
	"github.com/olegiv/corpcms-go/internal/middleware"
	"github.com/olegiv/corpcms-go/internal/version"
)

// trackTraffic records page traffic for public content requests.
func (h *Handler) trackTraffic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.traffic.Record(r)
		next.ServeHTTP(w, r)
	})
}

// contentRoutes registers the public read surface and the staff-only
// write surface for a content resource under its base path.
type contentRoutes struct {
	List   http.HandlerFunc
	Detail http.HandlerFunc
	Create http.HandlerFunc
	Update http.HandlerFunc
	Delete http.HandlerFunc
	View   http.HandlerFunc // optional, resources without counters skip it
}

func (h *Handler) registerContent(r chi.Router, base string, routes contentRoutes) {
	r.Route(base, func(r chi.Router) {
		// Public reads, with optional identity for staff-only visibility.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalBearerAuth(h.issuer))
			r.Use(h.trackTraffic)
			r.Get("/list", routes.List)
			r.Get("/detail/{id}", routes.Detail)
			if routes.View != nil {
				r.Post("/view/{id}", routes.View)
			}
		})

		// Staff writes. The IP guard runs before auth so a denied
		// address sees the same 404 an anonymous probe would.
		r.Group(func(r chi.Router) {
			r.Use(h.ipGuard.Middleware)
			r.Use(middleware.BearerAuth(h.issuer))
			r.With(middleware.RequireAction(auth.ActionContentCreate)).
				Post("/create", routes.Create)
			r.With(middleware.RequireAction(auth.ActionContentUpdate)).
				Put("/update/{id}", routes.Update)
			r.With(middleware.RequireAction(auth.ActionContentDelete)).
				Delete("/delete/{id}", routes.Delete)
		})
	})
}

// Routes builds the HTTP router.
func (h *Handler) Routes(versionInfo *version.Info) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	apiRateLimiter := middleware.NewGlobalRateLimiter(100, 200)

	r.Get("/health", h.Health(versionInfo))

	r.Route("/api", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware)

		// Auth routes carry account lockout on top of the global limiter.
		r.Route("/auth", func(r chi.Router) {
			r.With(h.shield.Middleware).Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)
		})

		h.registerContent(r, "/posts", contentRoutes{
			List: h.ListPosts, Detail: h.GetPost,
			Create: h.CreatePost, Update: h.UpdatePost, Delete: h.DeletePost,
			View: h.CountPostView,
		})
		h.registerContent(r, "/products", contentRoutes{
			List: h.ListProducts, Detail: h.GetProduct,
			Create: h.CreateProduct, Update: h.UpdateProduct, Delete: h.DeleteProduct,
			View: h.CountProductView,
		})
		h.registerContent(r, "/catalog", contentRoutes{
			List: h.ListCatalogItems, Detail: h.GetCatalogItem,
			Create: h.CreateCatalogItem, Update: h.UpdateCatalogItem, Delete: h.DeleteCatalogItem,
		})
		h.registerContent(r, "/certifications", contentRoutes{
			List: h.ListCertifications, Detail: h.GetCertification,
			Create: h.CreateCertification, Update: h.UpdateCertification, Delete: h.DeleteCertification,
		})
		h.registerContent(r, "/recruit", contentRoutes{
			List: h.ListRecruitPosts, Detail: h.GetRecruitPost,
			Create: h.CreateRecruitPost, Update: h.UpdateRecruitPost, Delete: h.DeleteRecruitPost,
		})
		h.registerContent(r, "/gallery", contentRoutes{
			List: h.ListGalleryItems, Detail: h.GetGalleryItem,
			Create: h.CreateGalleryItem, Update: h.UpdateGalleryItem, Delete: h.DeleteGalleryItem,
			View: h.CountGalleryView,
		})

		// File attachment routes sit outside the CRUD scheme.
		r.Group(func(r chi.Router) {
			r.Use(h.ipGuard.Middleware)
			r.Use(middleware.BearerAuth(h.issuer))
			r.Use(middleware.RequireAction(auth.ActionContentUpdate))
			r.Put("/posts/image/{id}", h.SetPostImage)
			r.Put("/products/files/{id}", h.SetProductFiles)
		})

		// User management.
		r.Route("/users", func(r chi.Router) {
			r.Use(h.ipGuard.Middleware)
			r.Use(middleware.BearerAuth(h.issuer))
			r.With(middleware.RequireAction(auth.ActionUsersList)).
				Get("/", h.ListUsers)
			r.With(middleware.RequireAction(auth.ActionUsersCreate)).
				Post("/", h.CreateUser)
			r.With(middleware.RequireAction(auth.ActionUsersChangeRole)).
				Put("/{id}/role", h.ChangeUserRole)
			r.With(middleware.RequireAction(auth.ActionUsersResetPassword)).
				Put("/{id}/reset-password", h.ResetUserPassword)
			r.With(middleware.RequireAction(auth.ActionUsersSetAvatar)).
				Put("/{id}/avatar", h.SetUserAvatar)
			r.With(middleware.RequireAction(auth.ActionUsersDelete)).
				Delete("/{id}", h.DeleteUser)
		})

		// Audit trail and traffic analytics.
		r.Group(func(r chi.Router) {
			r.Use(h.ipGuard.Middleware)
			r.Use(middleware.BearerAuth(h.issuer))
			r.With(middleware.RequireAction(auth.ActionAuditRead)).
				Get("/audit", h.ListAuditEntries)
			r.With(middleware.RequireAction(auth.ActionAuditRead)).
				Get("/admin/analytics", h.TrafficAnalytics)
		})

		// IP access control administration. The guard exempts these paths
		// so a misconfigured whitelist cannot lock admins out of the fix.
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.ipGuard.Middleware)
			r.Use(middleware.BearerAuth(h.issuer))
			r.Get("/ip-my", h.MyIP)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAction(auth.ActionIPManage))
				r.Get("/ip-settings", h.GetIPSettings)
				r.Patch("/ip-settings", h.UpdateIPSettings)
				r.Get("/ip-whitelist", h.ListIPWhitelist)
				r.Post("/ip-whitelist", h.CreateIPWhitelistEntry)
				r.Put("/ip-whitelist/{id}", h.UpdateIPWhitelistEntry)
				r.Delete("/ip-whitelist/{id}", h.DeleteIPWhitelistEntry)
				r.Get("/ip-audit", h.ListIPAudit)
			})
		})
	})

	// Serve uploaded media files.
	uploadsHandler := http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.media.UploadDir())))
	r.Handle("/uploads/*", uploadsHandler)

	return r
}
