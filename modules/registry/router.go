package registry

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ibakshay/nest.land/pkg/apikey"
	"github.com/ibakshay/nest.land/pkg/catalog"
	"github.com/ibakshay/nest.land/pkg/content"
	"github.com/ibakshay/nest.land/pkg/publish"
)

// defaultMaxBodyBytes caps publish request bodies at 10 MiB.
const defaultMaxBodyBytes = 10 << 20

// Service is the registry's HTTP surface: the publish pipeline plus
// read-only package and file retrieval.
type Service struct {
	publisher *publish.Service
	catalog   catalog.Store
	content   content.Storage
	auth      apikey.Authenticator

	log          *slog.Logger
	maxBodyBytes int64
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the module logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithMaxBodyBytes caps the accepted request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Service) { s.maxBodyBytes = n }
}

// NewService wires the registry surface together.
func NewService(publisher *publish.Service, cat catalog.Store, storage content.Storage, auth apikey.Authenticator, opts ...Option) *Service {
	s := &Service{
		publisher:    publisher,
		catalog:      cat,
		content:      storage,
		auth:         auth,
		log:          slog.Default(),
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the module router.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/api", registrySvc.Handle())
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/publish", s.initiate)
	r.Post("/publish/{token}", s.addPieces)

	r.Get("/packages", s.listPackages)
	r.Get("/packages/{name}", s.getPackage)
	r.Get("/packages/{name}/{version}", s.getVersion)
	r.Get("/packages/{name}/{version}/files/*", s.getFile)

	return r
}
