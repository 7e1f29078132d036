package handler

import (
	"log/slog"
	"net/http"

	"github.com/momager/momager-core/internal/service"
)

type SEOHandler struct {
	sitemapService *service.SitemapService
}

func NewSEOHandler(sitemapService *service.SitemapService) *SEOHandler {
	return &SEOHandler{sitemapService: sitemapService}
}

func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.sitemapService.RobotsTxt()))
}

// Sitemap is generated per request so new content shows up without a restart in development.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	sitemap, err := h.sitemapService.GenerateSitemap()
	if err != nil {
		slog.Error("failed to generate sitemap", "error", err)
		http.Error(w, "Failed to generate sitemap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(sitemap)
}
