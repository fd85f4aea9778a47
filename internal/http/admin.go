package httpapi

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"newsdesk-service/internal/dbexport"
	"newsdesk-service/internal/models"
	"newsdesk-service/internal/newsroom"
)

const (
	maxUploadBytes = 50 << 20
	maxFormMemory  = 8 << 20
)

func (h *Handler) CreateNews(w http.ResponseWriter, r *http.Request) {
	h.saveNews(w, r, nil)
}

func (h *Handler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	prev, err := h.news.GetArticle(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.saveNews(w, r, prev)
}

func (h *Handler) saveNews(w http.ResponseWriter, r *http.Request, prev *models.Article) {
	if !parseForm(w, r) {
		return
	}
	image, err := formUpload(r, "featured_image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_upload"})
		return
	}
	publishedAt, ok := formTime(r, "published_at", time.RFC3339)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_published_at"})
		return
	}
	authorID, _ := strconv.ParseUint(r.FormValue("author_id"), 10, 64)

	cmd := newsroom.ArticleCommand{
		Previous:        prev,
		Title:           r.FormValue("title"),
		Slug:            r.FormValue("slug"),
		Content:         r.FormValue("content"),
		Summary:         r.FormValue("summary"),
		FeaturedVideo:   r.FormValue("featured_video"),
		AuthorID:        uint(authorID),
		CategorySlug:    r.FormValue("category"),
		SubCategorySlug: r.FormValue("subcategory"),
		TagSlugs:        formList(r, "tags"),
		Image:           image,
		PublishedAt:     publishedAt,
		IsPublished:     formBool(r, "is_published"),
		IsFeatured:      formBool(r, "is_featured"),
		IsActive:        formBool(r, "is_active"),
	}
	a, err := h.news.SaveArticle(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if prev == nil {
		status = http.StatusCreated
	}
	writeJSON(w, status, a)
}

func (h *Handler) PendingComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.news.PendingComments(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

func (h *Handler) ApproveComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_id"})
		return
	}
	if err := h.news.ApproveComment(r.Context(), uint(id)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *Handler) CreateWebStory(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	cover, err := formUpload(r, "cover_image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_upload"})
		return
	}
	story, err := h.news.SaveWebStory(r.Context(), newsroom.WebStoryCommand{
		Title:    r.FormValue("title"),
		Cover:    cover,
		IsActive: formBool(r, "is_active"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, story)
}

func (h *Handler) AddSlide(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	image, err := formUpload(r, "image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_upload"})
		return
	}
	order, _ := strconv.Atoi(r.FormValue("order"))
	slide, err := h.news.SaveSlide(r.Context(), newsroom.SlideCommand{
		StorySlug: r.PathValue("slug"),
		Order:     order,
		Caption:   r.FormValue("caption"),
		Image:     image,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, slide)
}

func (h *Handler) CreateAd(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	image, err := formUpload(r, "image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_upload"})
		return
	}
	ad, err := h.news.SaveAdvertisement(r.Context(), newsroom.AdCommand{
		Title:    r.FormValue("title"),
		Link:     r.FormValue("link"),
		Size:     models.BannerSize(r.FormValue("size")),
		Image:    image,
		IsActive: formBool(r, "is_active"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ad)
}

func (h *Handler) CreateHomeBanner(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	image, err := formUpload(r, "image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_upload"})
		return
	}
	b, err := h.news.SaveHomeBanner(r.Context(), newsroom.HomeBannerCommand{
		Title:       r.FormValue("title"),
		ArticleSlug: r.FormValue("article"),
		Image:       image,
		IsActive:    formBool(r, "is_active"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) CreateEpaper(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	doc, err := formUpload(r, "pdf")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_upload"})
		return
	}
	edition, ok := formTime(r, "edition_date", time.DateOnly)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_edition_date"})
		return
	}
	cmd := newsroom.EpaperCommand{
		Title:    r.FormValue("title"),
		Document: doc,
		IsActive: formBool(r, "is_active"),
	}
	if edition != nil {
		cmd.EditionDate = *edition
	}
	e, err := h.news.PublishEpaper(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, epaperResponse(e))
}

// DownloadDatabase streams a snapshot of the SQLite database.
func (h *Handler) DownloadDatabase(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "export_disabled"})
		return
	}
	snap, err := h.exporter.Snapshot(r.Context())
	switch {
	case errors.Is(err, dbexport.ErrDatabaseMissing):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "database_not_found"})
		return
	case err != nil:
		h.logger.Error("database export failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "export_failed"})
		return
	}
	defer func() {
		if err := snap.Close(); err != nil {
			h.logger.Warn("remove snapshot failed", zap.Error(err))
		}
	}()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+snap.Name+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(snap.Size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, snap.File); err != nil {
		h.logger.Warn("database download interrupted", zap.Error(err))
	}
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "upload_too_large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_form"})
		return false
	}
	return true
}

// formUpload returns nil when no file was sent under field.
func formUpload(r *http.Request, field string) (*newsroom.Upload, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readUpload(f, header)
}

func readUpload(f multipart.File, header *multipart.FileHeader) (*newsroom.Upload, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &newsroom.Upload{Name: header.Filename, Data: data}, nil
}

func formBool(r *http.Request, key string) bool {
	v := strings.ToLower(strings.TrimSpace(r.FormValue(key)))
	if v == "on" || v == "yes" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// formList accepts repeated fields and comma separated values.
func formList(r *http.Request, key string) []string {
	var out []string
	for _, v := range r.Form[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func formTime(r *http.Request, key, layout string) (*time.Time, bool) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(layout, v)
	if err != nil {
		return nil, false
	}
	return &t, true
}
