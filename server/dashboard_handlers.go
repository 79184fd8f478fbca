package server

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/varix-web/auth"
	"github.com/jrsteele09/varix-web/drawings"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/jrsteele09/varix-web/supabase"
	"github.com/rs/zerolog/hlog"
)

const (
	uploadField = "files"
	// maxUploadBody bounds one multipart request. Individual files are
	// checked against drawings.MaxFileSize.
	maxUploadBody   = 10 * drawings.MaxFileSize
	multipartMemory = 32 << 20
)

type DashboardPageData struct {
	PageData
	Files      []drawings.File
	Error      string
	ViewErrors map[string]string
}

type UploadPageData struct {
	PageData
	Error  string
	Errors []string
	Recent []drawings.File
}

// userContext is the request context acting as the signed-in user, and
// that user's ID.
func userContext(r *http.Request) (context.Context, string) {
	a := authFromContext(r.Context())
	state := a.state()
	ctx := supabase.ContextWithAccessToken(r.Context(), state.Session.AccessToken())
	return ctx, state.User().ID
}

func userMessage(err error, fallback string) string {
	var de *drawings.Error
	if apperrors.As(err, &de) {
		return de.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

func (s *Server) dashboardData(r *http.Request) DashboardPageData {
	ctx, userID := userContext(r)
	data := DashboardPageData{PageData: s.pageData(r), ViewErrors: map[string]string{}}

	files, err := s.drawings.List(ctx, userID)
	if err != nil {
		data.Error = userMessage(err, drawings.MsgListFailed)
		return data
	}
	data.Files = files
	return data
}

// DashboardHandler lists the user's newest drawings.
func (s *Server) DashboardHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("dashboard.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, tmpl, http.StatusOK, s.dashboardData(r))
	}
}

// FileViewHandler redirects to a short-lived link to the file. Failures are
// shown next to the file on the dashboard.
func (s *Server) FileViewHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("dashboard.html")
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, userID := userContext(r)
		id := chi.URLParam(r, "id")

		signed, err := s.drawings.ViewURL(ctx, userID, id)
		if err == nil {
			http.Redirect(w, r, signed, http.StatusSeeOther)
			return
		}
		if apperrors.Is(err, apperrors.ErrNotFound) && !isDrawingsError(err) {
			s.NotFoundHandler()(w, r)
			return
		}

		hlog.FromRequest(r).Warn().Err(err).Str("file_id", id).Msg("View failed")
		data := s.dashboardData(r)
		data.ViewErrors[id] = userMessage(err, drawings.MsgNoSignedURL)
		s.render(w, r, tmpl, http.StatusOK, data)
	}
}

func isDrawingsError(err error) bool {
	var de *drawings.Error
	return apperrors.As(err, &de)
}

func (s *Server) FileDeleteHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("dashboard.html")
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, userID := userContext(r)
		id := chi.URLParam(r, "id")

		if err := s.drawings.Delete(ctx, userID, id); err != nil {
			data := s.dashboardData(r)
			data.Error = userMessage(err, drawings.MsgDeleteFailed)
			s.render(w, r, tmpl, http.StatusOK, data)
			return
		}
		redirectSuccess(w, r, auth.AppPath)
	}
}

func (s *Server) UploadGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("upload.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, tmpl, http.StatusOK, UploadPageData{PageData: s.pageData(r)})
	}
}

// UploadPostHandler stores a multipart batch of drawings.
func (s *Server) UploadPostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("upload.html")
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, userID := userContext(r)
		data := UploadPageData{PageData: s.pageData(r)}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("Upload form rejected")
			data.Error = drawings.MsgInvalidType
			s.render(w, r, tmpl, http.StatusBadRequest, data)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		headers := r.MultipartForm.File[uploadField]
		files := make([]drawings.Upload, 0, len(headers))
		for _, fh := range headers {
			files = append(files, drawings.Upload{
				Name:        fh.Filename,
				Size:        fh.Size,
				ContentType: fh.Header.Get("Content-Type"),
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}

		result, err := s.drawings.UploadBatch(ctx, userID, files)
		if err != nil {
			data.Error = userMessage(err, drawings.MsgInvalidType)
			s.render(w, r, tmpl, http.StatusUnprocessableEntity, data)
			return
		}

		data.Recent = result.Uploaded
		data.Errors = result.Errors
		s.render(w, r, tmpl, http.StatusOK, data)
	}
}
