package session

import (
	"sync"
	"testing"

	"github.com/tripot-labs/companion-engine/core"
	"github.com/tripot-labs/companion-engine/quiz"
)

func testRegistry() *Registry {
	return NewRegistry(func() *quiz.Engine {
		return quiz.NewEngine(nil, nil, quiz.NewExactScorer(nil), nil)
	}, nil)
}

func TestOpenReplacesExistingSession(t *testing.T) {
	r := testRegistry()

	first, replaced := r.Open("alice")
	if replaced != nil {
		t.Fatal("first open must not replace anything")
	}
	first.Append(core.SpeakerUser, "이전 연결의 대화")

	second, replaced := r.Open("alice")
	if replaced != first {
		t.Fatal("second open must return the replaced session")
	}
	if got := r.Get("alice"); got != second {
		t.Fatal("registry must hold the newest session")
	}
	if second.TranscriptLen() != 0 {
		t.Fatal("replacement must not merge the old transcript")
	}
	if r.Len() != 1 {
		t.Fatalf("registry holds %d sessions, want 1", r.Len())
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	r := testRegistry()
	r.Open("alice")

	if s := r.Close("alice"); s == nil {
		t.Fatal("close must return the session for teardown")
	}
	if s := r.Close("alice"); s != nil {
		t.Fatal("second close must be a no-op returning nil")
	}
	if r.Get("alice") != nil {
		t.Fatal("session still reachable after close")
	}
}

func TestReleaseOnlyEvictsOwnSession(t *testing.T) {
	r := testRegistry()

	old, _ := r.Open("alice")
	current, _ := r.Open("alice")

	// The superseded connection tears down; the new session must survive.
	r.Release("alice", old)
	if got := r.Get("alice"); got != current {
		t.Fatal("replaced connection's teardown evicted its successor")
	}

	r.Release("alice", current)
	if r.Get("alice") != nil {
		t.Fatal("owning connection's release must remove the session")
	}
}

func TestConcurrentOpenClose(t *testing.T) {
	r := testRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, _ := r.Open("alice")
			r.Get("alice")
			r.Release("alice", s)
		}()
	}
	wg.Wait()

	// Whatever interleaving happened, the map must not leak entries for
	// sessions that released themselves.
	if r.Len() > 1 {
		t.Fatalf("registry leaked %d sessions", r.Len())
	}
}
