package partials

import (
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"
)

// ComposerID is the element id of the message form.
const ComposerID = "composer"

// ComposerData is the view model of the message form.
type ComposerData struct {
	// Disabled is set while the first load is pending.
	Disabled bool
	// Value keeps the typed text after a failed send.
	Value string
}

// Composer renders the message form. With htmx it posts in place and is
// swapped with a fresh copy, which clears the input after a send.
func Composer(data ComposerData) gomponents.Node {
	return composer(data, nil)
}

// ComposerOOB renders Composer for an out-of-band swap over the websocket.
func ComposerOOB(data ComposerData) gomponents.Node {
	return composer(data, hx.SwapOOB("true"))
}

func composer(data ComposerData, oob gomponents.Node) gomponents.Node {
	return html.Form(
		html.ID(ComposerID),
		oob,
		html.Method("post"),
		html.Action("/messages"),
		hx.Post("/messages"),
		hx.Target("this"),
		hx.Swap("outerHTML"),
		html.Input(
			html.Type("text"),
			html.Name("content"),
			html.Placeholder("Type your message..."),
			html.AutoComplete("off"),
			gomponents.If(data.Value != "", html.Value(data.Value)),
			gomponents.If(data.Disabled, html.Disabled()),
		),
		html.Button(
			html.Type("submit"),
			gomponents.If(data.Disabled, html.Disabled()),
			gomponents.Text("Send"),
		),
	)
}
