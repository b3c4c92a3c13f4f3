package pages

import (
	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/web/src/templates/partials"
	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// LivePath is the websocket endpoint the chat page connects to.
const LivePath = "/ws"

// ChatData is the view model of the signed-in page.
type ChatData struct {
	Username string
	Messages []domain.Message
	Loading  bool
}

// Chat renders the signed-in view. The message list is kept current by
// out-of-band swaps pushed over the websocket.
func Chat(data ChatData) gomponents.Node {
	return html.Div(
		html.Class("card"),
		gomponents.Attr("hx-ext", "ws"),
		gomponents.Attr("ws-connect", LivePath),
		html.Div(
			html.Class("header"),
			html.H1(gomponents.Text("Messages")),
			html.Div(
				html.Span(gomponents.Text("Signed in as "+data.Username)),
				html.Form(
					html.Method("post"),
					html.Action("/logout"),
					html.Button(html.Type("submit"), gomponents.Text("Logout")),
				),
			),
		),
		partials.MessageList(data.Messages, data.Loading),
		partials.Composer(partials.ComposerData{Disabled: data.Loading}),
	)
}
