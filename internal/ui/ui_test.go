package ui

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScript(t *testing.T) {
	var buf bytes.Buffer
	ctx := templ.WithNonce(context.Background(), "abc")
	require.NoError(t, Script("forms/mom-login.js").Render(ctx, &buf))
	assert.Equal(t, `<script type="module" src="/js/forms/mom-login.js" nonce="abc"></script>`, buf.String())

	buf.Reset()
	require.NoError(t, Script(`x"><b>.js`).Render(context.Background(), &buf))
	assert.NotContains(t, buf.String(), "<b>")
}

func TestClass(t *testing.T) {
	assert.Equal(t, "rounded p-4", Class("rounded p-2", "p-4"))
	assert.Equal(t, "rounded", Class("rounded", ""))
}
