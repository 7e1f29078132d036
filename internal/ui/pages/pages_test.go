package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momager/momager-core/internal/config"
	"github.com/momager/momager-core/internal/ctxkeys"
	"github.com/momager/momager-core/internal/model"
)

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

func testContext() context.Context {
	ctx := templ.WithNonce(context.Background(), "n0nce")
	ctx = ctxkeys.WithConfig(ctx, &config.Config{AppName: "Momager"})
	return ctxkeys.WithCSRFToken(ctx, "csrf-123")
}

func TestSignIn(t *testing.T) {
	html := render(t, testContext(), SignIn([]string{"inputs/mom-form.js", "forms/mom-login.js"}))

	assert.Contains(t, html, "<title>Momager | Sign in</title>")
	assert.Contains(t, html, `<script type="module" src="/js/base/icon-link.js" nonce="n0nce"></script>`)
	assert.Contains(t, html, `src="/js/inputs/mom-form.js"`)
	assert.Less(t, bytes.Index([]byte(html), []byte("mom-form.js")), bytes.Index([]byte(html), []byte("forms/mom-login.js")))
	assert.Contains(t, html, `<mom-login action="/plumbing/auth/session"`)
	assert.Contains(t, html, `<meta name="csrf-token" content="csrf-123">`)
	assert.Contains(t, html, `href="/sign-up"`)
}

func TestDashboard(t *testing.T) {
	ctx := ctxkeys.WithUser(testContext(), &model.User{ID: "u1"})
	topics := []*model.Topic{
		{Route: "sleep-training", Title: "Sleep <Training>", Special: true},
	}
	user := model.SafeUser{ID: "u1", FName: "Ada"}

	html := render(t, ctx, Dashboard(user, topics, []string{"spec/mom-dashboard.js"}))

	assert.Contains(t, html, `id="topics"`)
	assert.Contains(t, html, `id="user-data"`)
	assert.Contains(t, html, "sleep-training")
	assert.Contains(t, html, "Sleep &lt;Training&gt;")
	assert.Contains(t, html, "Hi, Ada")
	assert.Contains(t, html, `action="/sign-out"`)
	assert.Contains(t, html, "ring-amber-300")
}

func TestSkillAndArticle(t *testing.T) {
	article := &model.Article{Route: "naps", Title: "Naps", HTMLContent: "<p>Short and often.</p>"}
	topic := &model.Topic{Route: "sleep", Title: "Sleep", Articles: []*model.Article{article}}

	html := render(t, testContext(), Skill(topic, nil))
	assert.Contains(t, html, `<mom-skill-set topic="sleep" articles="articles">`)
	assert.Contains(t, html, `href="/skill/sleep/naps"`)

	html = render(t, testContext(), Article(topic, article, nil))
	assert.Contains(t, html, "<title>Momager | Naps</title>")
	assert.Contains(t, html, "<p>Short and often.</p>")
	assert.Contains(t, html, `href="/skill/sleep"`)
}

func TestNotFound_EscapesPath(t *testing.T) {
	ctx := ctxkeys.WithURLPath(testContext(), "/<script>")
	html := render(t, ctx, NotFound())

	assert.Contains(t, html, "/&lt;script&gt;")
	assert.NotContains(t, html, "<code>/<script>")
}

func TestHome(t *testing.T) {
	html := render(t, testContext(), Home())
	assert.Contains(t, html, "<title>Momager</title>")
	assert.Contains(t, html, "Get started")

	html = render(t, ctxkeys.WithUser(testContext(), &model.User{ID: "u1"}), Home())
	assert.Contains(t, html, "Open dashboard")
}
