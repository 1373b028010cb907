package api_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-chat-cli/internal/api"
	"go-chat-cli/internal/chattest"
)

func newTestClient(t *testing.T) (*chattest.Server, *api.Client) {
	t.Helper()
	srv := chattest.New()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, api.NewClient(ts.URL)
}

func login(t *testing.T, c *api.Client, username, password string) *api.User {
	t.Helper()
	u, err := c.Login(context.Background(), username, password, false)
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return u
}

// pngFile writes a file that sniffs as image/png, padded to size bytes.
func pngFile(t *testing.T, name string, size int) string {
	t.Helper()
	data := make([]byte, size)
	copy(data, []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a})
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv, c := newTestClient(t)
	srv.SeedUser("alice", "secret")

	_, err := c.Login(context.Background(), "alice", "wrong", false)
	var srvErr *api.ErrServer
	if !errors.As(err, &srvErr) {
		t.Fatalf("err = %v, want server error", err)
	}
	// The server's message reaches the caller verbatim.
	if srvErr.Message != "invalid credentials" {
		t.Fatalf("message = %q", srvErr.Message)
	}
}

func TestLoginEstablishesSession(t *testing.T) {
	srv, c := newTestClient(t)
	srv.SeedUser("alice", "secret")

	u := login(t, c, "alice", "secret")
	if u == nil || u.Username != "alice" {
		t.Fatalf("user = %+v", u)
	}

	// The cookie from login authenticates the next call.
	checked, err := c.CheckLogin(context.Background())
	if err != nil {
		t.Fatalf("check login: %v", err)
	}
	if checked == nil || checked.ID != u.ID {
		t.Fatalf("checked = %+v, want id %d", checked, u.ID)
	}
}

func TestCheckLoginWithoutSession(t *testing.T) {
	_, c := newTestClient(t)

	// Logged out is a state, not an error.
	u, err := c.CheckLogin(context.Background())
	if err != nil {
		t.Fatalf("check login: %v", err)
	}
	if u != nil {
		t.Fatalf("user = %+v, want nil", u)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	srv, c := newTestClient(t)
	srv.SeedUser("alice", "secret")
	login(t, c, "alice", "secret")

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	u, err := c.CheckLogin(context.Background())
	if err != nil || u != nil {
		t.Fatalf("after logout: user=%+v err=%v", u, err)
	}
}

func TestRegisterFlow(t *testing.T) {
	srv, c := newTestClient(t)
	ctx := context.Background()

	if err := c.SendVerificationCode(ctx, "bob@example.com"); err != nil {
		t.Fatalf("send code: %v", err)
	}
	code := srv.LastCode("bob@example.com")
	if code == "" {
		t.Fatal("no code issued")
	}

	id, err := c.Register(ctx, "bob", "bob@example.com", code, "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id == 0 {
		t.Fatal("register returned no user id")
	}

	// Registration does not log in; the credentials do.
	if u := login(t, c, "bob", "hunter2"); u.ID != id {
		t.Fatalf("login id = %d, want %d", u.ID, id)
	}
}

func TestRegisterWrongCode(t *testing.T) {
	_, c := newTestClient(t)
	ctx := context.Background()

	if err := c.SendVerificationCode(ctx, "bob@example.com"); err != nil {
		t.Fatalf("send code: %v", err)
	}
	_, err := c.Register(ctx, "bob", "bob@example.com", "000000", "hunter2")
	var srvErr *api.ErrServer
	if !errors.As(err, &srvErr) || srvErr.Message != "invalid verification code" {
		t.Fatalf("err = %v", err)
	}
}

func TestSendVerificationCodeValidation(t *testing.T) {
	// The empty-email check fires before any request goes out.
	c := api.NewClient("http://127.0.0.1:0")
	if err := c.SendVerificationCode(context.Background(), ""); !errors.Is(err, api.ErrEmptyEmail) {
		t.Fatalf("err = %v, want ErrEmptyEmail", err)
	}
}

func TestChannelLifecycle(t *testing.T) {
	srv, c := newTestClient(t)
	srv.SeedUser("alice", "secret")
	login(t, c, "alice", "secret")
	ctx := context.Background()

	ch, err := c.CreateChannel(ctx, "general", "the lobby", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ch.Name != "general" || ch.UserCount != 1 {
		t.Fatalf("channel = %+v", ch)
	}

	// The creator is a member straight away.
	joined, err := c.JoinedChannels(ctx)
	if err != nil || len(joined) != 1 {
		t.Fatalf("joined = %+v err=%v", joined, err)
	}

	public, err := c.PublicChannels(ctx)
	if err != nil || len(public) != 1 {
		t.Fatalf("public = %+v err=%v", public, err)
	}

	if err := c.LeaveChannel(ctx, ch.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	joined, err = c.JoinedChannels(ctx)
	if err != nil || len(joined) != 0 {
		t.Fatalf("joined after leave = %+v err=%v", joined, err)
	}

	if err := c.JoinChannel(ctx, ch.ID); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	detail, err := c.ChannelDetail(ctx, ch.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if !detail.IsJoined || detail.UserCount != 1 {
		t.Fatalf("detail = %+v", detail)
	}
}

func TestCreateChannelEmptyName(t *testing.T) {
	c := api.NewClient("http://127.0.0.1:0")
	_, err := c.CreateChannel(context.Background(), "", "", false)
	if !errors.Is(err, api.ErrEmptyChannelName) {
		t.Fatalf("err = %v, want ErrEmptyChannelName", err)
	}
}

func TestSearchChannels(t *testing.T) {
	srv, c := newTestClient(t)
	u := srv.SeedUser("alice", "secret")
	srv.SeedChannel("golang talk", "", false, u.ID)
	srv.SeedChannel("random", "", false, u.ID)
	login(t, c, "alice", "secret")

	got, err := c.SearchChannels(context.Background(), "golang")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "golang talk" {
		t.Fatalf("results = %+v", got)
	}
}

func TestChannelMessages(t *testing.T) {
	srv, c := newTestClient(t)
	u := srv.SeedUser("alice", "secret")
	ch := srv.SeedChannel("general", "", false, u.ID)
	srv.SeedMessage(ch.ID, u.ID, "first")
	srv.SeedMessage(ch.ID, u.ID, "second")
	login(t, c, "alice", "secret")

	msgs, err := c.ChannelMessages(context.Background(), ch.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "first" || msgs[1].Content != "second" {
		t.Fatalf("messages = %+v", msgs)
	}
	if msgs[0].SenderNickname != "alice" {
		t.Fatalf("sender nickname = %q", msgs[0].SenderNickname)
	}
}

func TestChannelMessagesRequiresMembership(t *testing.T) {
	srv, c := newTestClient(t)
	owner := srv.SeedUser("alice", "secret")
	ch := srv.SeedChannel("general", "", false, owner.ID)
	srv.SeedUser("bob", "secret")
	login(t, c, "bob", "secret")

	_, err := c.ChannelMessages(context.Background(), ch.ID)
	var srvErr *api.ErrServer
	if !errors.As(err, &srvErr) {
		t.Fatalf("err = %v, want server error", err)
	}
}

func TestValidateImageFile(t *testing.T) {
	small := pngFile(t, "ok.png", 512)
	if err := api.ValidateImageFile(small); err != nil {
		t.Fatalf("valid png rejected: %v", err)
	}

	big := pngFile(t, "big.png", 16<<20+1)
	if err := api.ValidateImageFile(big); !errors.Is(err, api.ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}

	text := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(text, []byte("plain text, not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := api.ValidateImageFile(text); !errors.Is(err, api.ErrBadImageType) {
		t.Fatalf("err = %v, want ErrBadImageType", err)
	}

	missing := filepath.Join(t.TempDir(), "nope.png")
	if err := api.ValidateImageFile(missing); !errors.Is(err, api.ErrNoImage) {
		t.Fatalf("err = %v, want ErrNoImage", err)
	}
}

func TestUploadAvatarRejectsOversizeLocally(t *testing.T) {
	// Validation runs before any network I/O: an unreachable server
	// must not matter.
	c := api.NewClient("http://127.0.0.1:0")
	big := pngFile(t, "big.png", 16<<20+1)
	_, err := c.UploadAvatar(context.Background(), big)
	if !errors.Is(err, api.ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestUploadAvatar(t *testing.T) {
	srv, c := newTestClient(t)
	srv.SeedUser("alice", "secret")
	login(t, c, "alice", "secret")

	// Just under the limit must go through.
	path := pngFile(t, "face.png", 15<<20)
	ref, err := c.UploadAvatar(context.Background(), path)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(ref, "uploads/") || !strings.HasSuffix(ref, "face.png") {
		t.Fatalf("ref = %q", ref)
	}

	// The profile picks the new avatar up.
	u, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if u.Avatar != ref {
		t.Fatalf("avatar = %q, want %q", u.Avatar, ref)
	}
}

func TestSendImageMessage(t *testing.T) {
	srv, c := newTestClient(t)
	u := srv.SeedUser("alice", "secret")
	ch := srv.SeedChannel("general", "", false, u.ID)
	login(t, c, "alice", "secret")

	path := pngFile(t, "cat.png", 2048)
	if err := c.SendImageMessage(context.Background(), ch.ID, path, "look"); err != nil {
		t.Fatalf("send image: %v", err)
	}

	msgs, err := c.ChannelMessages(context.Background(), ch.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("messages = %+v", msgs)
	}
	if msgs[0].Image == "" || msgs[0].Content != "look" {
		t.Fatalf("image message = %+v", msgs[0])
	}
}

func TestUpdateProfile(t *testing.T) {
	srv, c := newTestClient(t)
	srv.SeedUser("alice", "secret")
	login(t, c, "alice", "secret")

	u, err := c.UpdateProfile(context.Background(), "Alice in Chains", "", "bio text")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Nickname != "Alice in Chains" || u.Bio != "bio text" {
		t.Fatalf("user = %+v", u)
	}
	if got := u.DisplayName(); got != "Alice in Chains" {
		t.Fatalf("display name = %q", got)
	}
}

func TestUpdateProfileEmptyNickname(t *testing.T) {
	c := api.NewClient("http://127.0.0.1:0")
	_, err := c.UpdateProfile(context.Background(), "   ", "", "")
	if !errors.Is(err, api.ErrEmptyNickname) {
		t.Fatalf("err = %v, want ErrEmptyNickname", err)
	}
}

func TestHealth(t *testing.T) {
	_, c := newTestClient(t)
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestTransportErrorIsWrapped(t *testing.T) {
	c := api.NewClient("http://127.0.0.1:0")
	_, err := c.PublicChannels(context.Background())
	if !errors.Is(err, api.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}
