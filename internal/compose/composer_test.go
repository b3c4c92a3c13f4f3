package compose

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu      sync.Mutex
	written []domain.Message
	err     error
}

func (w *recordingWriter) Create(_ context.Context, msg *domain.Message) (*domain.Message, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, *msg)
	out := *msg
	out.ID = "messages:new"
	return &out, nil
}

func TestSendWritesMessage(t *testing.T) {
	w := &recordingWriter{}
	c := New(w, "bob", nil, nil)

	created, err := c.Send(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, "messages:new", created.ID)
	require.Len(t, w.written, 1)
	assert.Equal(t, domain.Message{
		Content:   "hi",
		UserName:  "bob",
		AvatarURL: "https://api.dicebear.com/7.x/avatars/svg?seed=bob",
	}, w.written[0])
}

func TestSendKeepsWhitespace(t *testing.T) {
	w := &recordingWriter{}
	_, err := New(w, "bob", nil, nil).Send(context.Background(), "  padded  ")

	require.NoError(t, err)
	assert.Equal(t, "  padded  ", w.written[0].Content)
}

func TestSendBlankNeverWrites(t *testing.T) {
	w := &recordingWriter{}
	c := New(w, "bob", nil, nil)

	for _, content := range []string{"", "   "} {
		_, err := c.Send(context.Background(), content)
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	}
	assert.Empty(t, w.written)
}

func TestSendWithoutSession(t *testing.T) {
	w := &recordingWriter{}
	_, err := New(w, "", nil, nil).Send(context.Background(), "hello")

	assert.ErrorIs(t, err, domain.ErrNoSession)
	assert.Empty(t, w.written)
}

func TestSendFailureNotifies(t *testing.T) {
	boom := errors.New("write rejected")
	notices := &notify.Recorder{}
	c := New(&recordingWriter{err: boom}, "bob", notices, nil)

	_, err := c.Send(context.Background(), "hello")

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []notify.Notice{notify.Error(MsgSendFailed)}, notices.Take())
}

func TestConcurrentSendsAreIndependent(t *testing.T) {
	w := &recordingWriter{}
	c := New(w, "bob", nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Send(context.Background(), "burst")
		}()
	}
	wg.Wait()

	assert.Len(t, w.written, 10)
}
