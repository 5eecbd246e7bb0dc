package notify_test

import (
	"sync"
	"testing"

	"github.com/JaimeStill/scrivener/pkg/notify"
)

func TestNotifyWithoutListenersIsNoop(t *testing.T) {
	r := notify.New[string, int]()
	if r.Notify("missing", 1) {
		t.Error("Notify reported delivery with no listeners")
	}
}

func TestNotifyDeliversToSubject(t *testing.T) {
	r := notify.New[string, int]()

	var a, b []int
	r.Register("a", func(v int) { a = append(a, v) })
	r.Register("b", func(v int) { b = append(b, v) })

	if !r.Notify("a", 7) {
		t.Fatal("Notify reported no delivery")
	}

	if len(a) != 1 || a[0] != 7 {
		t.Errorf("a = %v, want [7]", a)
	}
	if len(b) != 0 {
		t.Errorf("b = %v, want empty", b)
	}
}

func TestUnregister(t *testing.T) {
	r := notify.New[string, int]()

	var got int
	unregister := r.Register("a", func(v int) { got += v })
	r.Register("a", func(int) {})

	if n := r.Count("a"); n != 2 {
		t.Fatalf("Count = %d, want 2", n)
	}

	unregister()
	unregister()

	if n := r.Count("a"); n != 1 {
		t.Errorf("Count after unregister = %d, want 1", n)
	}

	r.Notify("a", 5)
	if got != 0 {
		t.Errorf("unregistered listener received %d", got)
	}
}

func TestConcurrentRegisterNotify(t *testing.T) {
	r := notify.New[int, int]()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			unregister := r.Register(i%5, func(int) {})
			r.Notify(i%5, i)
			unregister()
		})
	}
	wg.Wait()

	for k := range 5 {
		if n := r.Count(k); n != 0 {
			t.Errorf("Count(%d) = %d, want 0", k, n)
		}
	}
}
