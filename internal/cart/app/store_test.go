package app

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	catalog "github.com/moksh1tha/nuastore/internal/catalog/domain"
	"github.com/moksh1tha/nuastore/internal/cart/domain"
)

func product(id int, price float64) catalog.Product {
	return catalog.Product{ID: id, Title: "product", Price: price}
}

func TestAddAccumulatesQuantity(t *testing.T) {
	s := NewStore(domain.Cart{})
	p := product(1, 9.99)

	s.Add(p, 2)
	s.Add(p, 3)

	lines := s.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", lines[0].Quantity)
	}
	if s.ItemCount() != 5 {
		t.Fatalf("item count = %d, want 5", s.ItemCount())
	}
}

func TestAddClampsQuantity(t *testing.T) {
	t.Run("single add over max", func(t *testing.T) {
		s := NewStore(domain.Cart{})
		s.Add(product(1, 1), 15)
		if got := s.Lines()[0].Quantity; got != domain.MaxQuantity {
			t.Fatalf("quantity = %d, want %d", got, domain.MaxQuantity)
		}
	})

	t.Run("accumulation over max", func(t *testing.T) {
		s := NewStore(domain.Cart{})
		s.Add(product(1, 1), 7)
		s.Add(product(1, 1), 7)
		if got := s.Lines()[0].Quantity; got != domain.MaxQuantity {
			t.Fatalf("quantity = %d, want %d", got, domain.MaxQuantity)
		}
	})

	t.Run("non-positive add becomes one", func(t *testing.T) {
		s := NewStore(domain.Cart{})
		s.Add(product(1, 1), 0)
		if got := s.Lines()[0].Quantity; got != 1 {
			t.Fatalf("quantity = %d, want 1", got)
		}
	})
}

func TestSetQuantity(t *testing.T) {
	t.Run("zero removes the line", func(t *testing.T) {
		s := NewStore(domain.Cart{})
		p := product(1, 1)
		s.Add(p, 3)

		s.SetQuantity(p.ID, 0)

		if len(s.Lines()) != 0 {
			t.Fatalf("expected empty cart, got %+v", s.Lines())
		}
		if s.ItemCount() != 0 {
			t.Fatalf("item count = %d, want 0", s.ItemCount())
		}
	})

	t.Run("clamped to max", func(t *testing.T) {
		s := NewStore(domain.Cart{})
		p := product(1, 1)
		s.Add(p, 1)

		s.SetQuantity(p.ID, 99)

		if got := s.Lines()[0].Quantity; got != domain.MaxQuantity {
			t.Fatalf("quantity = %d, want %d", got, domain.MaxQuantity)
		}
	})

	t.Run("absent product is a no-op", func(t *testing.T) {
		s := NewStore(domain.Cart{})
		s.Add(product(1, 1), 2)

		s.SetQuantity(42, 5)

		lines := s.Lines()
		if len(lines) != 1 || lines[0].Quantity != 2 {
			t.Fatalf("cart changed unexpectedly: %+v", lines)
		}
	})
}

func TestRemove(t *testing.T) {
	s := NewStore(domain.Cart{})
	a, b := product(1, 1), product(2, 2)
	s.Add(a, 1)
	s.Add(b, 1)

	s.Remove(a.ID)

	lines := s.Lines()
	if len(lines) != 1 || lines[0].Product.ID != b.ID {
		t.Fatalf("got %+v", lines)
	}

	// Removing an absent product is a no-op, not an error.
	s.Remove(42)
	if len(s.Lines()) != 1 {
		t.Fatalf("got %+v", s.Lines())
	}
}

func TestTotalPrice(t *testing.T) {
	s := NewStore(domain.Cart{})
	s.Add(product(1, 10.00), 2)
	s.Add(product(2, 5.50), 1)

	if got := s.TotalPrice(); got != 25.50 {
		t.Fatalf("total = %v, want 25.50", got)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s := NewStore(domain.Cart{})
	s.Add(product(1, 1), 2)

	s.Clear()
	s.Clear()

	if len(s.Lines()) != 0 || s.ItemCount() != 0 {
		t.Fatalf("expected empty cart, got %+v", s.Lines())
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	s := NewStore(domain.Cart{})
	s.Add(product(3, 1), 1)
	s.Add(product(1, 1), 1)
	s.Add(product(2, 1), 1)
	s.Add(product(1, 1), 1) // accumulates, must not reorder

	var ids []int
	for _, l := range s.Lines() {
		ids = append(ids, l.Product.ID)
	}
	want := []int{3, 1, 2}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}
}

func TestSubscribersSeeEveryMutation(t *testing.T) {
	s := NewStore(domain.Cart{})

	var got []domain.Cart
	cancel := s.Subscribe(func(c domain.Cart) { got = append(got, c) })

	p := product(1, 2.50)
	s.Add(p, 2)
	s.SetQuantity(p.ID, 4)
	s.Clear()

	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(got))
	}
	if got[0].ItemCount() != 2 || got[1].ItemCount() != 4 || got[2].ItemCount() != 0 {
		t.Fatalf("snapshots = %d/%d/%d, want 2/4/0",
			got[0].ItemCount(), got[1].ItemCount(), got[2].ItemCount())
	}

	// Snapshots are isolated from later mutation.
	s.Add(p, 1)
	if got[1].ItemCount() != 4 {
		t.Fatal("published snapshot mutated after the fact")
	}

	cancel()
	s.Add(p, 1)
	if len(got) != 4 {
		t.Fatalf("expected no notifications after cancel, got %d", len(got))
	}
}

type fakeRepo struct {
	saved []domain.Cart
	err   error
}

func (f *fakeRepo) Load(ctx context.Context) (domain.Cart, error) { return domain.Cart{}, nil }

func (f *fakeRepo) Save(ctx context.Context, cart domain.Cart) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, cart)
	return nil
}

func TestPersistSavesEverySnapshot(t *testing.T) {
	s := NewStore(domain.Cart{})
	repo := &fakeRepo{}
	cancel := Persist(s, repo, slog.New(slog.DiscardHandler))

	s.Add(product(1, 2.00), 2)
	s.Clear()

	if len(repo.saved) != 2 {
		t.Fatalf("expected 2 saves, got %d", len(repo.saved))
	}
	if repo.saved[0].ItemCount() != 2 || repo.saved[1].ItemCount() != 0 {
		t.Fatalf("saved snapshots = %d/%d, want 2/0",
			repo.saved[0].ItemCount(), repo.saved[1].ItemCount())
	}

	cancel()
	s.Add(product(1, 2.00), 1)
	if len(repo.saved) != 2 {
		t.Fatal("persist ran after cancel")
	}
}

func TestPersistFailureDoesNotPanicMutation(t *testing.T) {
	s := NewStore(domain.Cart{})
	defer Persist(s, &fakeRepo{err: errors.New("disk full")}, slog.New(slog.DiscardHandler))()

	s.Add(product(1, 1), 1)

	if s.ItemCount() != 1 {
		t.Fatalf("mutation lost: count=%d", s.ItemCount())
	}
}

func TestRehydratedCart(t *testing.T) {
	initial := domain.Cart{Lines: []domain.Line{{Product: product(7, 3.00), Quantity: 2}}}
	s := NewStore(initial)

	if s.ItemCount() != 2 {
		t.Fatalf("item count = %d, want 2", s.ItemCount())
	}

	// The store owns its copy of the initial cart.
	initial.Lines[0].Quantity = 9
	if s.Lines()[0].Quantity != 2 {
		t.Fatal("store aliases caller's slice")
	}
}
