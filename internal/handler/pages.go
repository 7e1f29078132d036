package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/momager/momager-core/internal/component"
	"github.com/momager/momager-core/internal/ctxkeys"
	"github.com/momager/momager-core/internal/repository"
	"github.com/momager/momager-core/internal/service"
	"github.com/momager/momager-core/internal/ui"
	"github.com/momager/momager-core/internal/ui/pages"
)

// PageHandler renders the server-side pages. Each page loads the scripts
// its top-level client component resolves to.
type PageHandler struct {
	authService    *service.AuthService
	sessionService *service.SessionService
	contentService *service.ContentService
	resolver       *component.Resolver
}

func NewPageHandler(
	authService *service.AuthService,
	sessionService *service.SessionService,
	contentService *service.ContentService,
	resolver *component.Resolver,
) *PageHandler {
	return &PageHandler{
		authService:    authService,
		sessionService: sessionService,
		contentService: contentService,
		resolver:       resolver,
	}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Home())
}

func (h *PageHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.SignIn(h.resolver.Scripts(component.Login)))
}

func (h *PageHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.SignUp(h.resolver.Scripts(component.SignUp)))
}

// SignOut ends the current session from the header form.
func (h *PageHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if session := ctxkeys.Session(r.Context()); session != nil {
		err := h.sessionService.Delete(r.Context(), session.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("failed to delete session", "error", err, "session_id", session.ID)
		}
	}
	h.authService.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	topics, err := h.contentService.Topics()
	if err != nil {
		slog.Error("failed to load topics", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, pages.Dashboard(user.Safe(), topics, h.resolver.Scripts(component.Dashboard)))
}

func (h *PageHandler) Skill(w http.ResponseWriter, r *http.Request) {
	topic, err := h.contentService.Topic(r.PathValue("topic"))
	if err != nil {
		h.contentError(w, r, err)
		return
	}

	ui.Render(w, r, pages.Skill(topic, h.resolver.Scripts(component.SkillSet)))
}

func (h *PageHandler) Article(w http.ResponseWriter, r *http.Request) {
	topic, article, err := h.contentService.Article(r.PathValue("topic"), r.PathValue("article"))
	if err != nil {
		h.contentError(w, r, err)
		return
	}

	ui.Render(w, r, pages.Article(topic, article, h.resolver.Scripts(component.Article)))
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
}

func (h *PageHandler) contentError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrTopicNotFound) || errors.Is(err, service.ErrArticleNotFound) {
		h.NotFound(w, r)
		return
	}
	slog.Error("failed to load content", "error", err, "path", r.URL.Path)
	http.Error(w, "Failed to load content", http.StatusInternalServerError)
}
