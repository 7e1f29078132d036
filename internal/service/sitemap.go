package service

import (
	"encoding/xml"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/momager/momager-core/internal/model"
)

// publicRoutes are the static pages listed in the sitemap. Session-only pages such as /dashboard are left out.
var publicRoutes = []struct {
	Path       string
	Priority   string
	ChangeFreq string
}{
	{"/", "1.0", "daily"},
	{"/sign-in", "0.3", "monthly"},
	{"/sign-up", "0.3", "monthly"},
}

type SitemapService struct {
	contentService *ContentService
	baseURL        string
}

func NewSitemapService(contentService *ContentService, baseURL string) *SitemapService {
	return &SitemapService{
		contentService: contentService,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
	}
}

// GenerateSitemap renders the static routes plus every topic and article.
func (s *SitemapService) GenerateSitemap() ([]byte, error) {
	sitemap := model.Sitemap{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  s.staticURLs(),
	}

	topicURLs, err := s.topicURLs()
	if err != nil {
		slog.Warn("failed to list topics for sitemap", "error", err)
	} else {
		sitemap.URLs = append(sitemap.URLs, topicURLs...)
	}

	output, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}
	return []byte(xml.Header + string(output)), nil
}

// RobotsTxt allows crawling of public pages and points at the sitemap.
func (s *SitemapService) RobotsTxt() string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /dashboard\n")
	b.WriteString("Disallow: /plumbing/\n")
	b.WriteString("\nSitemap: " + s.baseURL + "/sitemap.xml\n")
	return b.String()
}

func (s *SitemapService) staticURLs() []model.SitemapURL {
	today := time.Now().Format(time.DateOnly)
	urls := make([]model.SitemapURL, 0, len(publicRoutes))
	for _, route := range publicRoutes {
		urls = append(urls, model.SitemapURL{
			Loc:        s.baseURL + route.Path,
			LastMod:    today,
			ChangeFreq: route.ChangeFreq,
			Priority:   route.Priority,
		})
	}
	return urls
}

func (s *SitemapService) topicURLs() ([]model.SitemapURL, error) {
	topics, err := s.contentService.Topics()
	if err != nil {
		return nil, err
	}

	today := time.Now().Format(time.DateOnly)
	var urls []model.SitemapURL
	for _, topic := range topics {
		topicPath := "/skill/" + url.PathEscape(topic.Route)
		urls = append(urls, model.SitemapURL{
			Loc:        s.baseURL + topicPath,
			LastMod:    today,
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
		for _, article := range topic.Articles {
			urls = append(urls, model.SitemapURL{
				Loc:        s.baseURL + topicPath + "/" + url.PathEscape(article.Route),
				LastMod:    today,
				ChangeFreq: "weekly",
				Priority:   "0.7",
			})
		}
	}
	return urls, nil
}
