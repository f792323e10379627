// Package server CityPulse
//
// The CityPulse is a local-first store of civic issue reports which keeps working when remote storage is unreachable.
//
//     Schemes: https
//     BasePath: /v1
//     Version: 1.0.0
//
//     Produces:
//     - application/json
//     Consumes:
//     - application/json
//
// swagger:meta
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/citypulse/internal/chat"
	mm "github.com/Decentr-net/citypulse/internal/middleware"
	"github.com/Decentr-net/citypulse/internal/service"
)

//go:generate swagger generate spec -t swagger -m -c . -o ../../static/swagger.json

var log = logrus.WithField("layer", "server").WithField("package", "server")

// maxBodySize covers base64 encoded media.
const maxBodySize = 32 << 20

const statsTTL = time.Minute

type server struct {
	s    service.Service
	chat chat.Answerer
	now  func() time.Time
}

// SetupRouter setups handlers to chi router. Nil answerer disables chat.
func SetupRouter(s service.Service, a chat.Answerer, secret []byte, r chi.Router, timeout time.Duration) {
	r.Use(
		middleware.RequestID,
		loggerMiddleware,
		middleware.StripSlashes,
		cors.AllowAll().Handler,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		bodyLimiterMiddleware(maxBodySize),
		authMiddleware(secret),
	)

	srv := server{
		s:    s,
		chat: a,
		now:  time.Now,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/posts", srv.listPosts)
		r.Get("/posts/mine", srv.listMyPosts)
		r.Get("/posts/template", srv.newPost)
		r.Post("/posts", srv.createPost)
		r.Put("/posts/{id}", srv.editPost)
		r.Delete("/posts/{id}", srv.deletePost)
		r.Post("/posts/{id}/like", srv.like)
		r.Post("/posts/{id}/dislike", srv.dislike)
		r.Post("/posts/{id}/share", srv.share)
		r.Post("/posts/{id}/comments", srv.comment)
		r.Get("/comments/mine", srv.listMyComments)

		r.Get("/profile", srv.getProfile)
		r.Put("/profile", srv.saveProfile)
		r.Post("/profile/avatar", srv.uploadAvatar)
		r.Post("/signout", srv.signOut)

		r.Get("/stats", mm.Cached(statsTTL, srv.getStats))
		r.Post("/chat", srv.askChat)
	})
}

// SetupHealth setups health check handler.
func SetupHealth(r chi.Router, h http.HandlerFunc) {
	r.Get("/health", h)
}
