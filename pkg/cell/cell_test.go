package cell

import "testing"

func TestSetNotifiesSynchronously(t *testing.T) {
	c := New(1)
	var got []int
	c.Listen(func(n int) { got = append(got, n) })

	c.Set(2)
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected [2], got %v", got)
	}
	if c.Get() != 2 {
		t.Errorf("Get() = %d, want 2", c.Get())
	}
}

func TestUpdateTransforms(t *testing.T) {
	c := New(10)
	c.Update(func(n int) int { return n + 5 })
	if c.Get() != 15 {
		t.Errorf("Get() = %d, want 15", c.Get())
	}
}

func TestUnsubscribeStopsNotification(t *testing.T) {
	c := New(0)
	calls := 0
	unsub := c.Listen(func(int) { calls++ })
	c.Set(1)
	unsub()
	unsub() // idempotent
	c.Set(2)
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if c.ListenerCount() != 0 {
		t.Errorf("expected 0 listeners, got %d", c.ListenerCount())
	}
}

func TestUnsubscribeDuringNotification(t *testing.T) {
	c := New(0)
	var unsubB func()
	aCalls, bCalls := 0, 0
	c.Listen(func(int) {
		aCalls++
		unsubB()
	})
	unsubB = c.Listen(func(int) { bCalls++ })

	c.Set(1)
	if aCalls != 1 {
		t.Errorf("expected a to fire once, got %d", aCalls)
	}
	if bCalls != 0 {
		t.Errorf("expected b to be skipped after unsubscribe, got %d calls", bCalls)
	}
}

func TestReentrantSet(t *testing.T) {
	c := New(0)
	var seen []int
	c.Listen(func(n int) {
		seen = append(seen, n)
		if n == 1 {
			// Re-enters before the outer Set returns.
			c.Set(2)
		}
	})
	c.Set(1)
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("expected re-entrant order [1 2], got %v", seen)
	}
	if c.Get() != 2 {
		t.Errorf("Get() = %d, want 2", c.Get())
	}
}

func TestBatchNotifiesOncePerCell(t *testing.T) {
	a := New(0)
	b := New(0)
	var got []int
	a.Listen(func(n int) { got = append(got, n) })
	b.Listen(func(n int) { got = append(got, 100+n) })

	Batch(func() {
		a.Set(1)
		a.Set(2)
		b.Set(3)
		if len(got) != 0 {
			t.Fatalf("expected no notifications inside batch, got %v", got)
		}
	})

	if len(got) != 2 || got[0] != 2 || got[1] != 103 {
		t.Fatalf("expected [2 103], got %v", got)
	}
}

func TestNestedBatchFlushesOnce(t *testing.T) {
	c := New(0)
	calls := 0
	c.Listen(func(int) { calls++ })

	Batch(func() {
		c.Set(1)
		Batch(func() {
			c.Set(2)
		})
		if calls != 0 {
			t.Fatal("inner batch must not flush")
		}
	})
	if calls != 1 {
		t.Errorf("expected a single flush, got %d", calls)
	}
	if c.Get() != 2 {
		t.Errorf("Get() = %d, want 2", c.Get())
	}
}
