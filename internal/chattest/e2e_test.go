package chattest_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"go-chat-cli/internal/api"
	"go-chat-cli/internal/chattest"
	"go-chat-cli/internal/realtime"
)

// TestFullSessionFlow walks one user through the whole surface: register
// with an emailed code, log in, create a channel, connect the push feed,
// exchange messages, read history back and edit the profile.
func TestFullSessionFlow(t *testing.T) {
	srv := chattest.New()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	ctx := context.Background()

	client := api.NewClient(ts.URL)

	// Registration needs the code from the "inbox".
	if err := client.SendVerificationCode(ctx, "alice@example.com"); err != nil {
		t.Fatalf("send code: %v", err)
	}
	id, err := client.Register(ctx, "alice", "alice@example.com", srv.LastCode("alice@example.com"), "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := client.Login(ctx, "alice", "secret", true)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != id {
		t.Fatalf("login id = %d, want %d", user.ID, id)
	}

	ch, err := client.CreateChannel(ctx, "general", "the lobby", false)
	if err != nil {
		t.Fatalf("create channel: %v", err)
	}

	// Push feed rides the same session cookie.
	rt := realtime.NewClient()
	t.Cleanup(rt.Close)
	echoes := make(chan api.Message, 4)
	notes := make(chan realtime.Notification, 4)
	rt.OnMessage(func(m api.Message) { echoes <- m })
	rt.OnNotification(func(n realtime.Notification) { notes <- n })
	if err := rt.Dial(ctx, ts.URL, client.HTTPClient().Jar); err != nil {
		t.Fatalf("dial: %v", err)
	}

	if err := rt.JoinChannel(ch.ID); err != nil {
		t.Fatalf("join room: %v", err)
	}
	select {
	case <-notes:
	case <-time.After(3 * time.Second):
		t.Fatal("no join notification")
	}

	if err := rt.SendMessage(ch.ID, "hello, room"); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case echo := <-echoes:
		if echo.Content != "hello, room" || echo.SenderID != user.ID {
			t.Fatalf("echo = %+v", echo)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no message echo")
	}

	// The send is durable: history returns it.
	msgs, err := client.ChannelMessages(ctx, ch.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "hello, room" {
		t.Fatalf("history = %+v", msgs)
	}

	updated, err := client.UpdateProfile(ctx, "Alice", "", "hi there")
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.DisplayName() != "Alice" {
		t.Fatalf("display name = %q", updated.DisplayName())
	}

	if err := client.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if u, err := client.CheckLogin(ctx); err != nil || u != nil {
		t.Fatalf("after logout: user=%+v err=%v", u, err)
	}
}
