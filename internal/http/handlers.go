package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"newsdesk-service/internal/dbexport"
	"newsdesk-service/internal/models"
	"newsdesk-service/internal/newsroom"
	"newsdesk-service/internal/ratelimit"
)

const maxJSONBody = 64 << 10

type Handler struct {
	news     *newsroom.Service
	exporter *dbexport.Exporter
	ready    func(context.Context) error
	logger   *zap.Logger
}

// NewHandler wires the HTTP handlers. ready reports whether the database is
// reachable and may be nil.
func NewHandler(news *newsroom.Service, exporter *dbexport.Exporter, ready func(context.Context) error, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{news: news, exporter: exporter, ready: ready, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Site(w http.ResponseWriter, r *http.Request) {
	site, err := h.news.Site(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	h.writeArticles(w, r, opts)
}

func (h *Handler) CategoryNews(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	opts.CategorySlug = r.PathValue("slug")
	h.writeArticles(w, r, opts)
}

func (h *Handler) TagNews(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	opts.TagSlug = r.PathValue("slug")
	h.writeArticles(w, r, opts)
}

func (h *Handler) writeArticles(w http.ResponseWriter, r *http.Request, opts newsroom.ListOptions) {
	articles, err := h.news.ListArticles(r.Context(), opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ArticlesResponse{Articles: articles, Count: len(articles)})
}

func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	detail, err := h.news.ReadArticle(r.Context(), r.PathValue("slug"), ratelimit.ClientIP(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "query_required"})
		return
	}
	articles, err := h.news.Search(r.Context(), q, queryInt(r, "limit", 0))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ArticlesResponse{Articles: articles, Count: len(articles)})
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.news.ListComments(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

func (h *Handler) PostComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_json"})
		return
	}
	c, err := h.news.PostComment(r.Context(), newsroom.CommentCommand{
		ArticleSlug: r.PathValue("slug"),
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Content:     req.Content,
		ParentID:    req.ParentID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, c)
}

func (h *Handler) Banners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.news.Banners(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, banners)
}

func (h *Handler) Ads(w http.ResponseWriter, r *http.Request) {
	ads, err := h.news.Advertisements(r.Context(), models.BannerSize(r.URL.Query().Get("size")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ads": ads})
}

func (h *Handler) LiveUpdates(w http.ResponseWriter, r *http.Request) {
	live, err := h.news.LiveUpdates(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"live": live})
}

func (h *Handler) WebStory(w http.ResponseWriter, r *http.Request) {
	story, err := h.news.GetWebStory(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

func (h *Handler) Epaper(w http.ResponseWriter, r *http.Request) {
	e, err := h.news.GetEpaper(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, epaperResponse(e))
}

func (h *Handler) DownloadEpaper(w http.ResponseWriter, r *http.Request) {
	e, f, err := h.news.OpenEpaper(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer f.Close()

	name := newsroom.Slugify(e.Title, 80)
	if name == "" {
		name = "epaper"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.pdf"`)
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Warn("epaper download interrupted", zap.String("id", e.PublicID), zap.Error(err))
	}
}

func (h *Handler) ShortURL(w http.ResponseWriter, r *http.Request) {
	e, err := h.news.ResolveShortURL(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/epapers/"+e.PublicID, http.StatusFound)
}

func epaperResponse(e *models.Epaper) EpaperResponse {
	return EpaperResponse{
		Epaper:      e,
		DownloadURL: "/pdf/" + e.PublicID + "/download",
		ShortURL:    "/s/" + e.ShortCode,
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *newsroom.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_failed", Fields: verr.Fields})
	case errors.Is(err, newsroom.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found"})
	case errors.Is(err, newsroom.ErrConflict):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "already_exists"})
	case errors.Is(err, context.Canceled):
		// client went away
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
}

func listOptions(r *http.Request) newsroom.ListOptions {
	featured, _ := strconv.ParseBool(r.URL.Query().Get("featured"))
	return newsroom.ListOptions{
		FeaturedOnly: featured,
		Limit:        queryInt(r, "limit", 0),
		Offset:       queryInt(r, "offset", 0),
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func bearerToken(header string) string {
	value := strings.TrimSpace(header)
	if value == "" {
		return ""
	}
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
