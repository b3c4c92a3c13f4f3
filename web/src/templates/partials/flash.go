package partials

import (
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"
)

// ToastsID is the element id of the toast container.
const ToastsID = "toasts"

// FlashData holds the transient notifications shown on the next render.
type FlashData struct {
	Success []string
	Error   []string
}

// Empty reports whether there is nothing to show.
func (f FlashData) Empty() bool {
	return len(f.Success) == 0 && len(f.Error) == 0
}

// Toasts renders the toast container.
func Toasts(flashes FlashData) gomponents.Node {
	return html.Div(html.ID(ToastsID), toastItems(flashes))
}

// ToastsOOB renders toasts as an out-of-band swap appended to the container.
func ToastsOOB(flashes FlashData) gomponents.Node {
	return html.Div(
		html.ID(ToastsID),
		hx.SwapOOB("beforeend"),
		toastItems(flashes),
	)
}

func toastItems(flashes FlashData) gomponents.Node {
	return gomponents.Group{
		gomponents.Map(flashes.Success, func(text string) gomponents.Node {
			return toast("toast toast-success", text)
		}),
		gomponents.Map(flashes.Error, func(text string) gomponents.Node {
			return toast("toast toast-error", text)
		}),
	}
}

func toast(class, text string) gomponents.Node {
	return html.Div(
		html.Class(class),
		gomponents.Attr("role", "status"),
		gomponents.Text(text),
	)
}
