package layouts

import (
	"github.com/a-h/templ"
	"github.com/nfrund/livechat/internal/view"
	"github.com/nfrund/livechat/web/src/templates/partials"
	"maragu.dev/gomponents"
	"maragu.dev/gomponents/components"
	"maragu.dev/gomponents/html"
)

const (
	htmxScript   = "https://unpkg.com/htmx.org@2.0.4"
	htmxWSScript = "https://unpkg.com/htmx-ext-ws@2.0.2/ws.js"
)

// Base wraps page content in the HTML document shared by every page.
func Base(title string, flashes partials.FlashData, content gomponents.Node) templ.Component {
	return view.Templ(components.HTML5(components.HTML5Props{
		Title:    CalculateTitle(title),
		Language: "en",
		Head: []gomponents.Node{
			html.Link(html.Rel("stylesheet"), html.Href("/static/app.css")),
			html.Script(html.Src(htmxScript)),
			html.Script(html.Src(htmxWSScript)),
			html.Script(html.Src("/static/local-time.js"), html.Defer()),
		},
		Body: []gomponents.Node{
			partials.Toasts(flashes),
			html.Main(html.Class("container"), content),
		},
	}))
}
