package registry

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/ibakshay/nest.land/core"
	"github.com/ibakshay/nest.land/pkg/catalog"
	"github.com/ibakshay/nest.land/pkg/logger"
	"github.com/ibakshay/nest.land/pkg/publish"
)

// piecesRequest is the accumulator payload. Piece bodies travel as strings,
// matching what the publish CLI sends.
type piecesRequest struct {
	Pieces map[string]string `json:"pieces"`
	End    bool              `json:"end"`
}

// initiate handles POST /publish.
func (s *Service) initiate(w http.ResponseWriter, r *http.Request) {
	user, credential, err := s.auth.ResolveUser(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req publish.InitiateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.publisher.Initiate(r.Context(), req, user, credential)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, r, core.JSONStatus(http.StatusCreated, "session_opened", map[string]string{"token": token}))
}

// addPieces handles POST /publish/{token}.
func (s *Service) addPieces(w http.ResponseWriter, r *http.Request) {
	_, credential, err := s.auth.ResolveUser(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req piecesRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	pieces := make(map[string][]byte, len(req.Pieces))
	for name, body := range req.Pieces {
		pieces[name] = []byte(body)
	}

	receipt, err := s.publisher.AddPieces(r.Context(), chi.URLParam(r, "token"), credential, pieces, req.End)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	code := "pieces_accepted"
	if receipt.Done {
		code = "package_published"
	}
	s.respond(w, r, core.JSON(code, receipt))
}

// listPackages handles GET /packages.
func (s *Service) listPackages(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.catalog.ListPackages(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, core.JSON("packages", summaries))
}

// getPackage handles GET /packages/{name}.
func (s *Service) getPackage(w http.ResponseWriter, r *http.Request) {
	pkg, err := s.catalog.GetPackage(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, core.JSON("package", pkg))
}

// getVersion handles GET /packages/{name}/{version}.
func (s *Service) getVersion(w http.ResponseWriter, r *http.Request) {
	upload, err := s.findUpload(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, core.JSON("version", upload))
}

// getFile handles GET /packages/{name}/{version}/files/*. The wildcard is
// the file name recorded at publish time; the body is served from the
// content store by reference.
func (s *Service) getFile(w http.ResponseWriter, r *http.Request) {
	upload, err := s.findUpload(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name := chi.URLParam(r, "*")
	ref, ok := upload.Files[name]
	if !ok {
		s.respondError(w, r, errFileNotFound)
		return
	}

	data, err := s.content.Get(r.Context(), ref)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("ETag", `"`+ref+`"`)
	if _, err := w.Write(data); err != nil {
		s.log.ErrorContext(r.Context(), "failed to write file body", logger.Error(err))
	}
}

func (s *Service) findUpload(r *http.Request) (*catalog.Upload, error) {
	pkg, err := s.catalog.GetPackage(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		return nil, err
	}

	version := chi.URLParam(r, "version")
	for i := range pkg.Uploads {
		if pkg.Uploads[i].Version == version {
			return &pkg.Uploads[i], nil
		}
	}
	return nil, errVersionNotFound
}

// decode reads a strict JSON body: size-capped, unknown fields rejected,
// trailing garbage rejected.
func (s *Service) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return core.ErrRequestEntityTooLarge
		}
		return core.ErrBadRequest
	}
	if dec.More() {
		return core.ErrBadRequest
	}
	return nil
}

func (s *Service) respond(w http.ResponseWriter, r *http.Request, resp core.Response) {
	if err := resp.Render(w, r); err != nil {
		s.log.ErrorContext(r.Context(), "failed to render response", logger.Error(err))
	}
}

func (s *Service) respondError(w http.ResponseWriter, r *http.Request, err error) {
	mapped := mapError(err)

	var httpErr core.HTTPError
	if !errors.As(mapped, &httpErr) || httpErr.Code >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed", logger.Error(err))
	}

	s.respond(w, r, core.JSONError(mapped))
}
