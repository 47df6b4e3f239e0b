package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/BorisDmv/techscribe-api/internal/metrics"
	appmiddleware "github.com/BorisDmv/techscribe-api/internal/middleware"
	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/services"
)

// Deps is everything the router serves.
type Deps struct {
	DB             Pinger
	Tokens         appmiddleware.TokenParser
	Users          *services.UserService
	AuthorRequests *services.AuthorRequestService
	Posts          *services.PostService
	Comments       *services.CommentService
	AI             *services.AIService
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	// UploadDir is served under /uploads/ when set.
	UploadDir string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", Health(d.DB))
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}
	if d.UploadDir != "" {
		r.Handle("/uploads/*", uploadsHandler(d.UploadDir))
	}

	authn := appmiddleware.Authenticate(d.Tokens)
	admin := appmiddleware.RequireRole(models.RoleAdmin)
	writer := appmiddleware.RequireRole(models.RoleAuthor, models.RoleAdmin)

	authH := NewAuthHandler(d.Users)
	requestsH := NewAuthorRequestsHandler(d.AuthorRequests)
	postsH := NewPostsHandler(d.Posts)
	commentsH := NewCommentsHandler(d.Comments)
	aiH := NewAIHandler(d.AI)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.Post("/forgot-password", authH.ForgotPassword)
			r.Post("/verify-otp", authH.VerifyCode)
			r.Put("/reset-password", authH.ResetPassword)
			r.Post("/refresh-token", authH.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Get("/me", authH.Me)
				r.Post("/request-author", requestsH.Submit)
				r.Get("/become-author/status", requestsH.Status)

				r.Group(func(r chi.Router) {
					r.Use(admin)
					r.Get("/users/all", authH.ListUsers)
					r.Patch("/users/status/{id}", authH.ToggleActive)
					r.Get("/author-requests/all", requestsH.List)
					r.Patch("/author-requests/status/{id}", requestsH.Resolve)
				})
			})
		})

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/all", postsH.ListPublic)
			r.Get("/categories/counts", postsH.CategoryCounts)
			r.Get("/category/{category}", postsH.ListByCategory)

			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Post("/like/{id}", postsH.ToggleLike)

				r.Group(func(r chi.Router) {
					r.Use(writer)
					r.Post("/create", postsH.Create)
					r.Put("/update/{id}", postsH.Update)
					r.Delete("/delete/{id}", postsH.Delete)
					r.Get("/published", postsH.ListPublished)
					r.Get("/drafts", postsH.ListDrafts)
				})

				r.Group(func(r chi.Router) {
					r.Use(admin)
					r.Get("/admin/all", postsH.ListAll)
					r.Patch("/admin/status/{id}", postsH.Moderate)
				})
			})

			r.Get("/{slug}", postsH.GetBySlug)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Post("/add", commentsH.Add)

				r.Group(func(r chi.Router) {
					r.Use(admin)
					r.Get("/admin/all", commentsH.ListAll)
					r.Patch("/admin/status/{id}", commentsH.ToggleApproval)
				})
			})

			r.Get("/{blogId}", commentsH.Tree)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Use(authn, writer)
			r.Post("/generate", aiH.Generate)
		})
	})

	return r
}
