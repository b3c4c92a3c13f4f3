package view

import (
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/livechat/internal/notify"
	"github.com/nfrund/livechat/web/src/templates/partials"
)

const (
	flashSessionName = "livechat-flash"
	flashKeySuccess  = "success"
	flashKeyError    = "error"
)

func setFlash(c echo.Context, key, message string) {
	sess, err := session.Get(flashSessionName, c)
	if err != nil && sess == nil {
		c.Logger().Warnf("flash session unavailable: %v", err)
		return
	}
	sess.AddFlash(message, key)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		c.Logger().Warnf("failed to save flash: %v", err)
	}
}

// SetFlashSuccess queues a success toast for the next page render.
func SetFlashSuccess(c echo.Context, message string) {
	setFlash(c, flashKeySuccess, message)
}

// SetFlashError queues an error toast for the next page render.
func SetFlashError(c echo.Context, message string) {
	setFlash(c, flashKeyError, message)
}

// SetFlash queues a toast for a notice.
func SetFlash(c echo.Context, n notify.Notice) {
	if n.Level == notify.LevelError {
		SetFlashError(c, n.Text)
		return
	}
	SetFlashSuccess(c, n.Text)
}

// GetFlashData returns the queued toasts and clears them.
func GetFlashData(c echo.Context) partials.FlashData {
	var data partials.FlashData

	sess, err := session.Get(flashSessionName, c)
	if err != nil && sess == nil {
		return data
	}

	data.Success = flashStrings(sess.Flashes(flashKeySuccess))
	data.Error = flashStrings(sess.Flashes(flashKeyError))

	if !data.Empty() {
		_ = sess.Save(c.Request(), c.Response())
	}
	return data
}

// FlashFromNotices groups notices by level.
func FlashFromNotices(notices []notify.Notice) partials.FlashData {
	var data partials.FlashData
	for _, n := range notices {
		if n.Level == notify.LevelError {
			data.Error = append(data.Error, n.Text)
		} else {
			data.Success = append(data.Success, n.Text)
		}
	}
	return data
}

func flashStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
