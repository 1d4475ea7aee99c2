package realtime

import (
	"reflect"
	"testing"
)

func newTestClient(identity string) *Client {
	return &Client{
		identity: identity,
		send:     make(chan []byte, 8),
	}
}

func TestRegistry_RegisterLookup(t *testing.T) {
	r := NewRegistry()

	c1 := newTestClient("alice")
	c2 := newTestClient("alice")

	r.Register("alice", c1)
	r.Register("alice", c2)

	clients := r.Lookup("alice")
	if len(clients) != 2 {
		t.Fatalf("Lookup returned %d clients, want 2", len(clients))
	}

	if got := r.Lookup("bob"); len(got) != 0 {
		t.Errorf("Lookup for unknown identity returned %d clients, want 0", len(got))
	}
}

func TestRegistry_RegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	c := newTestClient("alice")

	r.Register("alice", c)
	r.Register("alice", c)

	if got := r.Lookup("alice"); len(got) != 1 {
		t.Errorf("duplicate register left %d clients, want 1", len(got))
	}
}

func TestRegistry_Deregister(t *testing.T) {
	t.Run("removes entry when last connection leaves", func(t *testing.T) {
		r := NewRegistry()
		c1 := newTestClient("alice")
		c2 := newTestClient("alice")
		r.Register("alice", c1)
		r.Register("alice", c2)

		r.Deregister("alice", c1)
		if got := r.Lookup("alice"); len(got) != 1 {
			t.Fatalf("Lookup returned %d clients after first deregister, want 1", len(got))
		}

		r.Deregister("alice", c2)
		if got := r.Lookup("alice"); len(got) != 0 {
			t.Fatalf("Lookup returned %d clients after last deregister, want 0", len(got))
		}
		if got := r.OnlineIdentities(); len(got) != 0 {
			t.Errorf("OnlineIdentities returned %v after last deregister, want empty", got)
		}
	})

	t.Run("unknown identity is a no-op", func(t *testing.T) {
		r := NewRegistry()
		r.Deregister("ghost", newTestClient("ghost"))
	})

	t.Run("unknown connection is a no-op", func(t *testing.T) {
		r := NewRegistry()
		c := newTestClient("alice")
		r.Register("alice", c)

		r.Deregister("alice", newTestClient("alice"))
		if got := r.Lookup("alice"); len(got) != 1 {
			t.Errorf("deregister of unknown connection left %d clients, want 1", len(got))
		}
	})

	t.Run("late duplicate deregister is a no-op", func(t *testing.T) {
		r := NewRegistry()
		c := newTestClient("alice")
		r.Register("alice", c)
		r.Deregister("alice", c)
		r.Deregister("alice", c)

		if got := r.OnlineIdentities(); len(got) != 0 {
			t.Errorf("OnlineIdentities returned %v, want empty", got)
		}
	})
}

func TestRegistry_OnlineIdentities(t *testing.T) {
	r := NewRegistry()

	r.Register("carol", newTestClient("carol"))
	r.Register("alice", newTestClient("alice"))
	r.Register("bob", newTestClient("bob"))

	// Two connections must not duplicate the identity
	r.Register("alice", newTestClient("alice"))

	want := []string{"alice", "bob", "carol"}
	if got := r.OnlineIdentities(); !reflect.DeepEqual(got, want) {
		t.Errorf("OnlineIdentities = %v, want %v", got, want)
	}
}
