// Package httpapi exposes the recipe services over a JSON HTTP API.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/server/cookbook"
	"github.com/dmitrijs2005/recipekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

type UserService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
}

type RecipeService interface {
	Create(ctx context.Context, userID int64, p cookbook.Patch) (*models.Recipe, error)
	Get(ctx context.Context, userID, id int64) (*models.Recipe, error)
	List(ctx context.Context, userID int64, q cookbook.Query) ([]*models.Recipe, error)
	Update(ctx context.Context, userID, id int64, p cookbook.Patch) (*models.Recipe, error)
	Delete(ctx context.Context, userID, id int64) error
	AddNote(ctx context.Context, userID, id int64, text string) (*models.Recipe, error)
	Verify(ctx context.Context, userID, id int64) (*models.Recipe, error)
	Tags(ctx context.Context, userID int64) ([]cookbook.TagCount, error)
	ShoppingList(ctx context.Context, userID int64, ids []int64) ([]models.Ingredient, error)
}

type ArchiveService interface {
	Export(ctx context.Context, userID int64) (*services.Export, error)
}

type Options struct {
	AllowedOrigins        []string
	AuthRequestsPerMinute int
}

type Server struct {
	users   UserService
	recipes RecipeService
	archive ArchiveService
	metrics *metrics.Metrics
	logger  logging.Logger
	limiter *rateLimiter
	origins []string
}

func NewServer(users UserService, recipes RecipeService, archive ArchiveService, m *metrics.Metrics, logger logging.Logger, opts Options) *Server {
	return &Server{
		users:   users,
		recipes: recipes,
		archive: archive,
		metrics: m,
		logger:  logger.With("module", "httpapi"),
		limiter: newRateLimiter(opts.AuthRequestsPerMinute, time.Now),
		origins: opts.AllowedOrigins,
	}
}

// Handler builds the full handler chain: request id, access log, security
// headers, CORS and the router.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s.handle(router, http.MethodGet, "/health", s.health)
	router.Handler(http.MethodGet, "/metrics", s.metrics.Handler())

	s.handle(router, http.MethodPost, "/api/register", s.limiter.Limit(s.register))
	s.handle(router, http.MethodPost, "/api/login", s.limiter.Limit(s.login))
	s.handle(router, http.MethodPost, "/api/refresh", s.refresh)
	s.handle(router, http.MethodPost, "/api/logout", s.authenticated(s.logout))
	s.handle(router, http.MethodGet, "/api/check-auth", s.checkAuth)

	s.handle(router, http.MethodPost, "/api/recipes", s.authenticated(s.createRecipe))
	s.handle(router, http.MethodGet, "/api/recipes", s.authenticated(s.listRecipes))
	s.handle(router, http.MethodGet, "/api/recipes/:id", s.authenticated(s.getRecipe))
	s.handle(router, http.MethodPut, "/api/recipes/:id", s.authenticated(s.updateRecipe))
	s.handle(router, http.MethodDelete, "/api/recipes/:id", s.authenticated(s.deleteRecipe))
	s.handle(router, http.MethodPost, "/api/recipes/:id/notes", s.authenticated(s.addNote))
	s.handle(router, http.MethodPost, "/api/recipes/:id/verify", s.authenticated(s.verifyRecipe))
	s.handle(router, http.MethodGet, "/api/tags", s.authenticated(s.listTags))
	s.handle(router, http.MethodGet, "/api/meals", s.authenticated(s.shoppingList))
	s.handle(router, http.MethodPost, "/api/export", s.authenticated(s.export))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	return requestID(s.accessLog(securityHeaders(corsHandler)))
}

// handle registers h and records per-route metrics under the route pattern.
func (s *Server) handle(router *httprouter.Router, method, path string, h httprouter.Handle) {
	router.Handle(method, path, s.instrument(path, h))
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}
