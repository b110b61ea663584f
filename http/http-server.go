package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"

	"github.com/contestlab/backend/auth"
	contesthttp "github.com/contestlab/backend/contest/http"
	"github.com/contestlab/backend/logger"
	reviewhttp "github.com/contestlab/backend/review/http"
	submhttp "github.com/contestlab/backend/subm/http"
)

type HttpServer struct {
	router *chi.Mux
}

func NewHttpServer(
	contestHandler *contesthttp.ContestHttpHandler,
	submHandler *submhttp.SubmHttpHandler,
	reviewHandler *reviewhttp.ReviewHttpHandler,
	jwtKey []byte,
	allowedOrigins []string,
) *HttpServer {
	router := chi.NewRouter()

	httpLogger := httplog.NewLogger("contestlab", httplog.Options{
		LogLevel:         slog.LevelDebug,
		Concise:          true,
		RequestHeaders:   true,
		MessageFieldName: "message",
	})

	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(httpLogger))
	router.Use(requestLoggerContext(httpLogger.Logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           3000,
	}))

	router.Use(auth.GetJwtAuthMiddleware(jwtKey))

	contestHandler.RegisterRoutes(router)
	submHandler.RegisterRoutes(router)
	reviewHandler.RegisterRoutes(router)

	return &HttpServer{router: router}
}

// requestLoggerContext seeds each request context with a request-scoped
// slog.Logger carrying the chi request id, so services logging through
// logger.FromContext tag their lines with the request they serve.
func requestLoggerContext(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.WithLogger(r.Context(), base)
			if reqID := middleware.GetReqID(ctx); reqID != "" {
				ctx = logger.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *HttpServer) Start(address string) error {
	return http.ListenAndServe(address, s.router)
}
