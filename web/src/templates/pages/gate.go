package pages

import (
	"github.com/nfrund/livechat/internal/auth"
	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// Gate is the unauthenticated view: one form that switches between login
// and signup.
func Gate(mode auth.Mode) gomponents.Node {
	heading, submit := "Welcome Back", "Sign In"
	toggleText, toggleHref, toggleLabel := "Don't have an account?", "/?mode=signup", "Sign Up"
	if mode == auth.ModeSignup {
		heading, submit = "Create Account", "Sign Up"
		toggleText, toggleHref, toggleLabel = "Already have an account?", "/?mode=login", "Sign In"
	}

	return html.Div(
		html.Class("card"),
		html.H1(gomponents.Text(heading)),
		html.Form(
			html.ID("auth-form"),
			html.Method("post"),
			html.Action("/auth"),
			html.Input(html.Type("hidden"), html.Name("mode"), html.Value(string(mode))),
			html.Label(html.For("username"), gomponents.Text("Username")),
			html.Input(html.ID("username"), html.Type("text"), html.Name("username"), html.AutoComplete("username")),
			html.Label(html.For("password"), gomponents.Text("Password")),
			html.Input(html.ID("password"), html.Type("password"), html.Name("password")),
			html.Button(html.Type("submit"), gomponents.Text(submit)),
		),
		html.P(
			gomponents.Text(toggleText+" "),
			html.A(html.Href(toggleHref), gomponents.Text(toggleLabel)),
		),
	)
}
