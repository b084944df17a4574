// Package page renders the landing page layout with the analytics block
// embedded in its head, using the Liquid template language.
package page

import (
	"fmt"
	"os"

	"github.com/osteele/liquid"

	"github.com/ignite/analytics-tagger/internal/analytics/provider"
	"github.com/ignite/analytics-tagger/internal/config"
)

const defaultLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ title | escape }}</title>
{% if script_tag and analytics != "" %}<script{% if csp_nonce != "" %} nonce="{{ csp_nonce }}"{% endif %}>{{ analytics }}</script>{% else %}{{ analytics }}{% endif %}
</head>
<body>
<h1>{{ title | escape }}</h1>
</body>
</html>
`

// Renderer renders a parsed layout. Safe for concurrent use.
type Renderer struct {
	tpl       *liquid.Template
	title     string
	scriptTag bool
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithScriptTag tells the layout that the analytics output is bare script
// (disable_script_block) and needs a <script> element around it.
func WithScriptTag() Option {
	return func(r *Renderer) { r.scriptTag = true }
}

// New parses the configured layout, or the built-in one when no path is set.
func New(cfg config.PageConfig, opts ...Option) (*Renderer, error) {
	src := defaultLayout
	if cfg.LayoutPath != "" {
		b, err := os.ReadFile(cfg.LayoutPath)
		if err != nil {
			return nil, fmt.Errorf("read page layout: %w", err)
		}
		src = string(b)
	}

	engine := liquid.NewEngine()
	tpl, err := engine.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("parse page layout: %w", err)
	}
	r := &Renderer{tpl: tpl, title: cfg.Title}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render renders the layout for p. The layout sees title, analytics (the
// rendered script block, unescaped), csp_nonce and script_tag. Custom layouts
// must honour script_tag themselves. Rendering drains the provider's tracking
// bag.
func (r *Renderer) Render(p provider.Provider) (string, error) {
	out, err := r.tpl.RenderString(liquid.Bindings{
		"title":      r.title,
		"analytics":  p.Render(),
		"csp_nonce":  p.CSPNonce(),
		"script_tag": r.scriptTag,
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return out, nil
}
