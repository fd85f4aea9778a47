package httpapi

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"newsdesk-service/internal/metrics"
	"newsdesk-service/internal/ratelimit"
)

type RouterConfig struct {
	Limiters   ratelimit.Set
	AdminToken string

	// Media, when set, is served read-only under MediaURL. A MediaURL with
	// a scheme points at a CDN and disables local serving.
	Media    afero.Fs
	MediaURL string

	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

func Routes(handler *Handler, cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	api := RateLimit(cfg.Limiters.API, nil)
	search := RateLimit(cfg.Limiters.Search, nil)
	strict := RateLimit(cfg.Limiters.Strict, nil)
	admin := RequireAdmin(cfg.AdminToken)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Health)
	if cfg.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	mux.Handle("GET /api/site", api(http.HandlerFunc(handler.Site)))
	mux.Handle("GET /api/news", api(http.HandlerFunc(handler.ListNews)))
	mux.Handle("GET /api/news/{slug}", api(http.HandlerFunc(handler.GetNews)))
	mux.Handle("GET /api/news/{slug}/comments", api(http.HandlerFunc(handler.ListComments)))
	mux.Handle("POST /api/news/{slug}/comments", strict(http.HandlerFunc(handler.PostComment)))
	mux.Handle("GET /api/search", search(http.HandlerFunc(handler.Search)))
	mux.Handle("GET /api/categories/{slug}/news", api(http.HandlerFunc(handler.CategoryNews)))
	mux.Handle("GET /api/tags/{slug}/news", api(http.HandlerFunc(handler.TagNews)))
	mux.Handle("GET /api/banners", api(http.HandlerFunc(handler.Banners)))
	mux.Handle("GET /api/ads", api(http.HandlerFunc(handler.Ads)))
	mux.Handle("GET /api/live", api(http.HandlerFunc(handler.LiveUpdates)))
	mux.Handle("GET /visualstories/{slug}", api(http.HandlerFunc(handler.WebStory)))
	mux.Handle("GET /epapers/{id}", api(http.HandlerFunc(handler.Epaper)))
	mux.Handle("GET /pdf/{id}/download", strict(http.HandlerFunc(handler.DownloadEpaper)))
	mux.Handle("GET /s/{code}", api(http.HandlerFunc(handler.ShortURL)))

	mux.Handle("POST /admin/news", admin(http.HandlerFunc(handler.CreateNews)))
	mux.Handle("PUT /admin/news/{slug}", admin(http.HandlerFunc(handler.UpdateNews)))
	mux.Handle("GET /admin/comments/pending", admin(http.HandlerFunc(handler.PendingComments)))
	mux.Handle("POST /admin/comments/{id}/approve", admin(http.HandlerFunc(handler.ApproveComment)))
	mux.Handle("POST /admin/webstories", admin(http.HandlerFunc(handler.CreateWebStory)))
	mux.Handle("POST /admin/webstories/{slug}/slides", admin(http.HandlerFunc(handler.AddSlide)))
	mux.Handle("POST /admin/ads", admin(http.HandlerFunc(handler.CreateAd)))
	mux.Handle("POST /admin/banners", admin(http.HandlerFunc(handler.CreateHomeBanner)))
	mux.Handle("POST /admin/epapers", admin(http.HandlerFunc(handler.CreateEpaper)))
	mux.Handle("GET /admin-tools-db-download/", admin(http.HandlerFunc(handler.DownloadDatabase)))

	if cfg.Media != nil && strings.HasPrefix(cfg.MediaURL, "/") {
		prefix := cfg.MediaURL
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		files := http.FileServer(afero.NewHttpFs(cfg.Media).Dir("."))
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, files))
	}

	return RequestLogger(cfg.Logger, cfg.Metrics)(mux)
}
