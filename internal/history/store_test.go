package history

import (
	"testing"

	"go-chat-cli/internal/api"
)

func msg(id, channelID int, content string) api.Message {
	return api.Message{ID: id, ChannelID: channelID, Content: content}
}

func openStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndRecent(t *testing.T) {
	s := openStore(t, t.TempDir())

	for i := 1; i <= 3; i++ {
		if err := s.Append(1, msg(i, 1, "a")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := s.Append(2, msg(9, 2, "other")); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.Recent(1, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("recent len = %d, want 3", len(got))
	}
	for i, m := range got {
		if m.ID != i+1 {
			t.Fatalf("order wrong at %d: id %d", i, m.ID)
		}
	}

	// Channels do not bleed into each other.
	other, err := s.Recent(2, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(other) != 1 || other[0].ID != 9 {
		t.Fatalf("channel 2 scrollback wrong: %+v", other)
	}
}

func TestRecentLimitKeepsNewest(t *testing.T) {
	s := openStore(t, t.TempDir())
	for i := 1; i <= 5; i++ {
		if err := s.Append(1, msg(i, 1, "a")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.Recent(1, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != 4 || got[1].ID != 5 {
		t.Fatalf("limited scrollback wrong: %+v", got)
	}
}

func TestReplaceDropsStaleCache(t *testing.T) {
	s := openStore(t, t.TempDir())
	_ = s.Append(1, msg(1, 1, "old"))
	_ = s.Append(1, msg(2, 1, "old"))

	if err := s.Replace(1, []api.Message{msg(10, 1, "fresh")}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := s.Recent(1, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 || got[0].ID != 10 {
		t.Fatalf("cache after replace: %+v", got)
	}
}

func TestReopenContinuesSequence(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = s.Append(1, msg(1, 1, "first"))
	_ = s.Append(1, msg(2, 1, "second"))
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s = openStore(t, dir)
	if err := s.Append(1, msg(3, 1, "third")); err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	got, err := s.Recent(1, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 || got[2].ID != 3 {
		t.Fatalf("scrollback after reopen: %+v", got)
	}
}

func TestDisabledStoreIsNilSafe(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s != nil {
		t.Fatal("empty dir should disable the store")
	}
	if err := s.Append(1, msg(1, 1, "a")); err != nil {
		t.Fatalf("nil append: %v", err)
	}
	got, err := s.Recent(1, 10)
	if err != nil || len(got) != 0 {
		t.Fatalf("nil recent: %v %v", got, err)
	}
	if err := s.Replace(1, nil); err != nil {
		t.Fatalf("nil replace: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
