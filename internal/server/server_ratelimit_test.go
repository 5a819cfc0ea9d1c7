package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"chatter/internal/app"
	"chatter/pkg/domain"
	"chatter/pkg/store"
)

func TestSendMessageRateLimit(t *testing.T) {
	st := store.NewMemoryStore()
	user, err := st.CreateUser(domain.User{Name: "Me", PhoneNumber: "+1234567890"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	conv, err := st.CreateConversation(domain.Conversation{Title: "Limited"})
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	core, err := app.New(app.Config{Store: st})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	redis := miniredis.RunT(t)
	s, err := New(Config{
		App:                    core,
		RedisAddr:              redis.Addr(),
		SendRateLimitPerMinute: 1,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	body := []byte(fmt.Sprintf(`{"senderId":%d,"conversationId":%d,"content":"hi"}`, user.ID, conv.ID))

	resp1, err := http.Post(srv.URL+"/api/messages", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	resp1.Body.Close()
	if resp1.StatusCode != http.StatusCreated {
		t.Fatalf("first send expected 201, got %d", resp1.StatusCode)
	}

	resp2, err := http.Post(srv.URL+"/api/messages", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("second send failed: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second send expected 429, got %d", resp2.StatusCode)
	}
}

func TestServerRequiresRedisForRateLimiting(t *testing.T) {
	core, err := app.New(app.Config{Store: store.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if _, err := New(Config{App: core, SendRateLimitPerMinute: 1}); err == nil {
		t.Fatalf("expected limiter initialization to fail without redis addr")
	}
}
