package session

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smartgov-sikkim/sewabot/internal/sewabot/lang"
)

func TestGetOrCreate_Defaults(t *testing.T) {
	s := NewStore()

	sess := s.GetOrCreate("user1")
	if sess.State != MainMenu {
		t.Errorf("state: got %q, want %q", sess.State, MainMenu)
	}
	if sess.Language != lang.Unset {
		t.Errorf("language: got %q, want unset", sess.Language)
	}
	if len(sess.Data) != 0 {
		t.Errorf("data not empty: %v", sess.Data)
	}
	if sess.CurrentQuestion != "" {
		t.Errorf("current question: got %q, want empty", sess.CurrentQuestion)
	}
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	s := NewStore()

	a := s.GetOrCreate("user1")
	b := s.GetOrCreate("user1")

	if a.UserID != b.UserID || a.State != b.State || a.Language != b.Language ||
		len(a.Data) != len(b.Data) || a.CurrentQuestion != b.CurrentQuestion {
		t.Errorf("repeated GetOrCreate not equivalent:\n a=%+v\n b=%+v", a, b)
	}
	if s.Len() != 1 {
		t.Errorf("store holds %d sessions, want 1", s.Len())
	}
}

func TestGetOrCreate_ReturnsSnapshot(t *testing.T) {
	s := NewStore()

	snap := s.GetOrCreate("user1")
	snap.Data["injected"] = "value"
	snap.Language = lang.Nepali

	fresh := s.GetOrCreate("user1")
	if len(fresh.Data) != 0 {
		t.Error("mutating a snapshot leaked into the store")
	}
	if fresh.Language != lang.Unset {
		t.Error("snapshot language mutation leaked into the store")
	}
}

func TestUpdate_MutatesAndStamps(t *testing.T) {
	s := NewStore()

	got := s.Update("user1", func(sess *Session) {
		sess.Language = lang.Hindi
		sess.State = CollectingInfo
		sess.CurrentQuestion = "applicant_name"
		sess.Data["applicant_name"] = "Abhishek"
	})

	if got.Language != lang.Hindi || got.State != CollectingInfo {
		t.Errorf("update not applied: %+v", got)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Error("UpdatedAt not stamped")
	}

	reread := s.GetOrCreate("user1")
	if reread.Data["applicant_name"] != "Abhishek" {
		t.Error("update not persisted")
	}
}

func TestClear_ResetsWorkflowPreservesLanguage(t *testing.T) {
	s := NewStore()

	s.Update("user1", func(sess *Session) {
		sess.Language = lang.Nepali
		sess.State = CollectingInfo
		sess.CurrentQuestion = "village"
		sess.Data["applicant_name"] = "Pema"
	})

	s.Clear("user1")

	sess := s.GetOrCreate("user1")
	if sess.State != MainMenu {
		t.Errorf("state: got %q, want %q", sess.State, MainMenu)
	}
	if len(sess.Data) != 0 {
		t.Errorf("data not cleared: %v", sess.Data)
	}
	if sess.CurrentQuestion != "" {
		t.Errorf("current question not cleared: %q", sess.CurrentQuestion)
	}
	if sess.Language != lang.Nepali {
		t.Errorf("language: got %q, want %q (Clear preserves language)", sess.Language, lang.Nepali)
	}
}

func TestUpdate_SameUserSerialized(t *testing.T) {
	s := NewStore()
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Update("user1", func(sess *Session) {
				// Classic read-modify-write; lost updates would show up as
				// a shorter string than workers.
				sess.Data["count"] += "x"
				_ = i
			})
		}(i)
	}
	wg.Wait()

	sess := s.GetOrCreate("user1")
	if len(sess.Data["count"]) != workers {
		t.Errorf("lost updates: got %d, want %d", len(sess.Data["count"]), workers)
	}
}

func TestWithUser_AtomicAcrossWholeCallback(t *testing.T) {
	s := NewStore()
	const workers = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.WithUser("user1", func(sess *Session) {
				// Read, dawdle, write back: if the lock were dropped
				// between the read and the write, counts would be lost.
				n := len(sess.Data["count"])
				time.Sleep(time.Millisecond)
				sess.Data["count"] = strings.Repeat("x", n+1)
			})
		}()
	}
	wg.Wait()

	sess := s.GetOrCreate("user1")
	if len(sess.Data["count"]) != workers {
		t.Errorf("lost updates: got %d, want %d", len(sess.Data["count"]), workers)
	}
}

func TestWithUser_CreatesAndStamps(t *testing.T) {
	s := NewStore()

	s.WithUser("user1", func(sess *Session) {
		if sess.State != MainMenu {
			t.Errorf("fresh session state: got %q, want %q", sess.State, MainMenu)
		}
		sess.Language = lang.Hindi
	})

	sess := s.GetOrCreate("user1")
	if sess.Language != lang.Hindi {
		t.Error("mutation inside WithUser not persisted")
	}
	if sess.UpdatedAt.Before(sess.CreatedAt) {
		t.Error("UpdatedAt not stamped")
	}
}

func TestUpdate_DifferentUsersIndependent(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uid := fmt.Sprintf("user%d", i)
			s.Update(uid, func(sess *Session) {
				sess.Data["self"] = uid
			})
		}(i)
	}
	wg.Wait()

	if s.Len() != 20 {
		t.Errorf("store holds %d sessions, want 20", s.Len())
	}
	for i := 0; i < 20; i++ {
		uid := fmt.Sprintf("user%d", i)
		if got := s.GetOrCreate(uid).Data["self"]; got != uid {
			t.Errorf("session %s holds %q", uid, got)
		}
	}
}
