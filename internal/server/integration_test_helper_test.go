package server_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nfrund/livechat/internal/auth"
	"github.com/nfrund/livechat/internal/config"
	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/messagesync"
	"github.com/nfrund/livechat/internal/module"
	"github.com/nfrund/livechat/internal/pubsub"
	"github.com/nfrund/livechat/internal/relay"
	"github.com/nfrund/livechat/internal/server"
	"github.com/stretchr/testify/require"
)

// memoryUsers is an in-memory domain.UserRepository.
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (m *memoryUsers) FindByCredentials(_ context.Context, username, password string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok || u.PasswordHash != password {
		return nil, nil
	}
	return &u, nil
}

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memoryUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return nil, domain.ErrUsernameTaken
	}
	m.users[user.Username] = *user
	return user, nil
}

// memoryMessages is an in-memory message store that also acts as the
// change source the relay republishes, standing in for the live query.
type memoryMessages struct {
	mu       sync.Mutex
	messages []domain.Message
	next     int
	handlers map[int]func(messagesync.Change)
	nextSub  int
}

func (m *memoryMessages) Latest(_ context.Context, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.messages)
	if n > limit {
		n = limit
	}
	out := make([]domain.Message, n)
	copy(out, m.messages[:n])
	return out, nil
}

func (m *memoryMessages) Create(_ context.Context, msg *domain.Message) (*domain.Message, error) {
	m.mu.Lock()
	m.next++
	created := *msg
	created.ID = fmt.Sprintf("messages:%d", m.next)
	created.CreatedAt = time.Now()
	m.messages = append([]domain.Message{created}, m.messages...)
	handlers := make([]func(messagesync.Change), 0, len(m.handlers))
	for _, h := range m.handlers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(messagesync.Change{Kind: messagesync.ChangeInsert, Message: created})
	}
	return &created, nil
}

func (m *memoryMessages) Subscribe(_ context.Context, handle func(messagesync.Change)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.handlers[id] = handle
	return func() {
		m.mu.Lock()
		delete(m.handlers, id)
		m.mu.Unlock()
	}, nil
}

type testEnv struct {
	server   *server.Server
	http     *httptest.Server
	client   *http.Client
	messages *memoryMessages
	bus      pubsub.Bus
}

// setupIntegrationTest builds the full server over in-memory stores and a
// watermill bus, with the relay module booted.
func setupIntegrationTest(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		AppAddr:       ":0",
		SessionSecret: "integration-test-secret-0123456789",
		SyncInterval:  time.Hour,
		MessageLimit:  50,
		PubSubDriver:  config.DriverMemory,
	}

	users := &memoryUsers{users: map[string]domain.User{
		"alice": {Username: "alice", PasswordHash: "wonderland"},
	}}
	messages := &memoryMessages{handlers: map[int]func(messagesync.Change){}}
	bus := pubsub.NewWatermillBridge()

	s := server.New(server.Dependencies{
		Config:   cfg,
		Gateway:  auth.NewGateway(users, nil),
		Messages: messages,
		Feed:     messagesync.NewBusFeed(bus, ""),
		Modules: []module.Module{
			relay.New(relay.Dependencies{Source: messages, Publisher: bus}),
		},
	})
	s.BootModules(context.Background())

	ts := httptest.NewServer(s.E)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		ts.Close()
		s.ShutdownModules(context.Background())
		_ = bus.Close()
	})

	return &testEnv{
		server:   s,
		http:     ts,
		client:   &http.Client{Jar: jar, Timeout: 5 * time.Second},
		messages: messages,
		bus:      bus,
	}
}
