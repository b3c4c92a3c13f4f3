package partials

import (
	"time"

	"github.com/nfrund/livechat/internal/domain"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"
)

const (
	// MessageListID is the element id replaced by live updates.
	MessageListID = "message-list"

	skeletonRows    = 3
	timestampLayout = "Jan 2, 2006 3:04 PM MST"
)

// MessageList renders the message area: a skeleton while loading, an empty
// state, or the messages newest first.
func MessageList(messages []domain.Message, loading bool) gomponents.Node {
	return html.Div(html.ID(MessageListID), messageListBody(messages, loading))
}

// MessageListOOB renders MessageList for an out-of-band swap over the websocket.
func MessageListOOB(messages []domain.Message, loading bool) gomponents.Node {
	return html.Div(
		html.ID(MessageListID),
		hx.SwapOOB("true"),
		messageListBody(messages, loading),
	)
}

func messageListBody(messages []domain.Message, loading bool) gomponents.Node {
	switch {
	case loading:
		rows := make(gomponents.Group, skeletonRows)
		for i := range rows {
			rows[i] = html.Div(html.Class("skeleton"), gomponents.Attr("aria-hidden", "true"))
		}
		return rows
	case len(messages) == 0:
		return html.P(html.Class("empty"), gomponents.Text("No messages yet"))
	default:
		return gomponents.Map(messages, MessageItem)
	}
}

// MessageItem renders one message with its author avatar.
func MessageItem(msg domain.Message) gomponents.Node {
	return html.Div(
		html.Class("message"),
		gomponents.Attr("data-id", msg.ID),
		html.Img(html.Src(msg.AvatarURL), html.Alt(msg.UserName)),
		html.Div(
			html.Div(
				html.Strong(gomponents.Text(msg.UserName)),
				gomponents.Text(" "),
				timestamp(msg.CreatedAt),
			),
			html.P(gomponents.Text(msg.Content)),
		),
	)
}

// timestamp renders t in UTC. /static/local-time.js rewrites the text in the
// reader's time zone from the datetime attribute.
func timestamp(t time.Time) gomponents.Node {
	if t.IsZero() {
		return gomponents.Group{}
	}
	return gomponents.El("time",
		gomponents.Attr("datetime", t.UTC().Format(time.RFC3339)),
		gomponents.Text(t.UTC().Format(timestampLayout)),
	)
}
