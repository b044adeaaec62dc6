package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/ibakshay/nest.land/pkg/apikey"
	"github.com/ibakshay/nest.land/pkg/async"
	"github.com/ibakshay/nest.land/pkg/catalog"
	"github.com/ibakshay/nest.land/pkg/content"
	"github.com/ibakshay/nest.land/pkg/logger"
	"github.com/ibakshay/nest.land/pkg/namepolicy"
	"github.com/ibakshay/nest.land/pkg/token"
)

// DefaultVersion is assumed when an initiation request omits the version.
const DefaultVersion = "0.0.1"

// InitiateRequest is the payload opening a publish session.
type InitiateRequest struct {
	Name        string `json:"name"`
	Update      bool   `json:"update"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// Receipt reports the state of a session after an accumulator call.
type Receipt struct {
	Token   string `json:"token"`
	Package string `json:"package"`
	Version string `json:"version"`
	Pieces  int    `json:"pieces"`
	Done    bool   `json:"done"`

	// Files maps piece names to content references. Set only once Done.
	Files map[string]string `json:"files,omitempty"`
}

// Service runs the publish protocol: it validates initiation requests,
// accumulates pieces and finalizes sessions into the content store and the
// catalog.
type Service struct {
	sessions Store
	catalog  catalog.Store
	content  content.Storage

	names  namepolicy.Filter
	tokens *token.Generator
	log    *slog.Logger

	sessionTTL       time.Duration
	maxPiecesPerCall int
	strictNew        bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNamePolicy sets the package name filter. Without it all names pass.
func WithNamePolicy(filter namepolicy.Filter) ServiceOption {
	return func(s *Service) { s.names = filter }
}

// WithTokenGenerator overrides the session token generator.
func WithTokenGenerator(gen *token.Generator) ServiceOption {
	return func(s *Service) { s.tokens = gen }
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithSessionTTL sets the expiry stamped on new sessions.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.sessionTTL = ttl }
}

// WithMaxPiecesPerCall bounds the piece map accepted in one call. Zero
// disables the bound.
func WithMaxPiecesPerCall(n int) ServiceOption {
	return func(s *Service) { s.maxPiecesPerCall = n }
}

// WithStrictNewPackages rejects initiation against an existing package when
// the request does not claim an update.
func WithStrictNewPackages(strict bool) ServiceOption {
	return func(s *Service) { s.strictNew = strict }
}

// NewService wires the publish pipeline together.
func NewService(sessions Store, cat catalog.Store, storage content.Storage, opts ...ServiceOption) *Service {
	s := &Service{
		sessions:         sessions,
		catalog:          cat,
		content:          storage,
		tokens:           token.NewGenerator(),
		log:              slog.Default(),
		sessionTTL:       15 * time.Minute,
		maxPiecesPerCall: 64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServiceFromConfig applies Config before any explicit options.
func NewServiceFromConfig(cfg Config, sessions Store, cat catalog.Store, storage content.Storage, opts ...ServiceOption) *Service {
	base := []ServiceOption{
		WithSessionTTL(cfg.SessionTTL),
		WithMaxPiecesPerCall(cfg.MaxPiecesPerCall),
		WithStrictNewPackages(cfg.StrictNewPackages),
	}
	if cfg.TokenLength > 0 {
		base = append(base, WithTokenGenerator(token.NewGenerator(token.WithLength(cfg.TokenLength))))
	}
	return NewService(sessions, cat, storage, append(base, opts...)...)
}

// Initiate validates the request and opens a session, returning its token.
// The checks run in a fixed order so each failure mode maps to one error.
func (s *Service) Initiate(ctx context.Context, req InitiateRequest, user *apikey.User, credential string) (string, error) {
	if user == nil || credential == "" {
		return "", ErrMissingCredential
	}

	name := req.Name
	if name == "" || strings.ContainsAny(name, "@ \t\n\r") {
		return "", ErrInvalidName
	}
	if s.names != nil && !s.names.IsAllowed(name) {
		return "", ErrNameBlocked
	}

	version := req.Version
	if version == "" {
		version = DefaultVersion
	}
	// Catalog versions carry no "v" prefix; semver.IsValid expects one.
	if strings.HasPrefix(version, "v") || !semver.IsValid("v"+version) {
		return "", ErrInvalidVersion
	}

	pkg, err := s.catalog.GetPackage(ctx, name)
	switch {
	case errors.Is(err, catalog.ErrPackageNotFound):
		// First publish under this name.
	case err != nil:
		return "", fmt.Errorf("publish: catalog lookup: %w", err)
	case req.Update:
		if pkg.Owner != user.ID {
			return "", ErrNotOwner
		}
		if pkg.HasVersion(version) {
			return "", ErrVersionExists
		}
	case s.strictNew:
		return "", ErrPackageExists
	}

	tok, err := s.tokens.Unique(ctx, s.sessions.Exists)
	if err != nil {
		return "", fmt.Errorf("publish: allocate token: %w", err)
	}

	now := time.Now()
	session := &Session{
		Token:                 tok,
		Package:               name,
		Version:               version,
		Update:                req.Update,
		Description:           req.Description,
		Owner:                 user.ID,
		CredentialFingerprint: apikey.Fingerprint(credential),
		Pieces:                make(map[string][]byte),
		CreatedAt:             now,
		LastActivityAt:        now,
		ExpiresAt:             now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("publish: create session: %w", err)
	}

	s.log.InfoContext(ctx, "publish session opened",
		logger.Package(name),
		logger.Version(version),
		logger.UserID(user.ID),
	)
	return tok, nil
}

// AddPieces merges pieces into the session identified by tok. With final set
// it takes the session out of the store and finalizes it; the session is gone
// afterwards whether finalization succeeds or not.
func (s *Service) AddPieces(ctx context.Context, tok, credential string, pieces map[string][]byte, final bool) (*Receipt, error) {
	if s.maxPiecesPerCall > 0 && len(pieces) > s.maxPiecesPerCall {
		return nil, ErrTooManyPieces
	}

	session, err := s.sessions.Get(ctx, tok)
	if err != nil {
		return nil, err
	}
	if session.CredentialFingerprint != apikey.Fingerprint(credential) {
		return nil, ErrCredentialMismatch
	}

	if !final {
		updated, err := s.sessions.AddPieces(ctx, tok, pieces)
		if err != nil {
			return nil, err
		}
		return &Receipt{
			Token:   tok,
			Package: updated.Package,
			Version: updated.Version,
			Pieces:  len(updated.Pieces),
		}, nil
	}

	// Take wins over any concurrent call for the same token, so a session
	// is finalized at most once.
	taken, err := s.sessions.Take(ctx, tok)
	if err != nil {
		return nil, err
	}
	taken.Merge(pieces, time.Now(), 0)

	files, err := s.finalize(ctx, taken)
	if err != nil {
		s.log.ErrorContext(ctx, "publish finalization failed",
			logger.Package(taken.Package),
			logger.Version(taken.Version),
			logger.Error(err),
		)
		return nil, err
	}

	s.log.InfoContext(ctx, "package published",
		logger.Package(taken.Package),
		logger.Version(taken.Version),
		logger.Pieces(len(files)),
		logger.UserID(taken.Owner),
	)
	return &Receipt{
		Token:   tok,
		Package: taken.Package,
		Version: taken.Version,
		Pieces:  len(files),
		Done:    true,
		Files:   files,
	}, nil
}

// finalize fans every piece out to the content store concurrently and, only
// once every piece has a reference, commits the upload to the catalog.
func (s *Service) finalize(ctx context.Context, session *Session) (map[string]string, error) {
	type stored struct {
		name string
		ref  string
	}

	futures := make([]*async.Future[stored], 0, len(session.Pieces))
	for name, data := range session.Pieces {
		futures = append(futures, async.Async(ctx, stored{name: name}, func(ctx context.Context, p stored) (stored, error) {
			ref, err := s.content.Put(ctx, p.name, data)
			if err != nil {
				return stored{}, fmt.Errorf("store piece %q: %w", p.name, err)
			}
			p.ref = ref
			return p, nil
		}))
	}

	files := make(map[string]string, len(futures))
	var errs []error
	for _, f := range futures {
		res, err := f.Await()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files[res.name] = res.ref
	}
	if len(errs) > 0 {
		return nil, errors.Join(ErrFinalizeFailed, errors.Join(errs...))
	}

	err := s.catalog.CreateUpload(ctx, session.Package, session.Update, session.Owner, catalog.Upload{
		Version:     session.Version,
		Description: session.Description,
		Files:       files,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrVersionExists) {
			return nil, ErrVersionExists
		}
		return nil, errors.Join(ErrFinalizeFailed, err)
	}

	return files, nil
}
