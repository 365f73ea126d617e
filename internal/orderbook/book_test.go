package orderbook

import "testing"

func TestUpdateBidInsertReplaceRemove(t *testing.T) {
	b := New()

	b.UpdateBid(100, 1)
	if p, q := b.TopOfBook(Bid); p != 100 || q != 1 {
		t.Fatalf("top bid = (%v,%v), want (100,1)", p, q)
	}

	b.UpdateBid(100, 2)
	if _, q := b.TopOfBook(Bid); q != 2 {
		t.Fatalf("replace: qty = %v, want 2", q)
	}

	b.UpdateBid(100, 0)
	if p, _ := b.TopOfBook(Bid); p != 0 {
		t.Fatalf("remove: expected empty side sentinel, got price %v", p)
	}
}

func TestUpdateThenZeroIsNoOp(t *testing.T) {
	b := New()
	b.UpdateBid(99, 5)

	before := b.TopN(Bid, 10)

	b.UpdateBid(101, 3)
	b.UpdateBid(101, 0)

	after := b.TopN(Bid, 10)

	if len(before) != len(after) {
		t.Fatalf("update-then-zero changed level count: %v -> %v", before, after)
	}
}

func TestTopBidAskOrdering(t *testing.T) {
	b := New()
	b.UpdateBid(100, 1)
	b.UpdateBid(99, 2)
	b.UpdateBid(101, 3)

	b.UpdateAsk(105, 1)
	b.UpdateAsk(104, 2)
	b.UpdateAsk(106, 1)

	if p := b.TopBidPrice(); p != 101 {
		t.Fatalf("top bid = %v, want 101", p)
	}
	if p := b.TopAskPrice(); p != 104 {
		t.Fatalf("top ask = %v, want 104", p)
	}
	if b.TopBidPrice() >= b.TopAskPrice() {
		t.Fatalf("crossed book within a single update application")
	}
}

func TestTopNOrderAndFilter(t *testing.T) {
	b := New()
	b.UpdateBid(100, 1)
	b.UpdateBid(99, 2)
	b.UpdateBid(98, 0) // never stored
	b.UpdateBid(101, 3)

	levels := b.TopN(Bid, 2)
	if len(levels) != 2 {
		t.Fatalf("len(levels) = %d, want 2", len(levels))
	}
	if levels[0].Price != 101 || levels[1].Price != 100 {
		t.Fatalf("levels = %+v, want descending [101,100,...]", levels)
	}
}

func TestClearRemovesBothSides(t *testing.T) {
	b := New()
	b.UpdateBid(100, 1)
	b.UpdateAsk(101, 1)

	b.Clear()

	if p, q := b.TopOfBook(Bid); p != 0 || q != 0 {
		t.Fatalf("bid side not cleared: (%v,%v)", p, q)
	}
	if p, q := b.TopOfBook(Ask); p != 0 || q != 0 {
		t.Fatalf("ask side not cleared: (%v,%v)", p, q)
	}
}

func TestSnapshotApplyIsIdempotent(t *testing.T) {
	apply := func(b *Book) {
		b.Clear()
		b.UpdateBid(100, 1)
		b.UpdateBid(99, 2)
		b.UpdateAsk(101, 1)
	}

	b := New()
	apply(b)
	first := b.TopN(Bid, 10)

	apply(b)
	second := b.TopN(Bid, 10)

	if len(first) != len(second) {
		t.Fatalf("snapshot reapply changed level count: %v -> %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("snapshot reapply not idempotent at %d: %v != %v", i, first[i], second[i])
		}
	}
}

func TestInvariantQuantitiesAlwaysPositive(t *testing.T) {
	b := New()
	b.UpdateBid(100, 1)
	b.UpdateBid(100, -1) // invalid input, not defined behavior, but must not store <= 0
	b.UpdateBid(99, 0)

	for _, lvl := range b.TopN(Bid, 10) {
		if lvl.Qty <= 0 {
			t.Fatalf("found non-positive qty level: %+v", lvl)
		}
	}
}

func TestRegistryGetOrCreateLifecycle(t *testing.T) {
	r := NewRegistry()

	if r.Get("BTCUSDT") != nil {
		t.Fatalf("expected nil book before first subscribe")
	}

	b1 := r.GetOrCreate("BTCUSDT")
	b2 := r.GetOrCreate("BTCUSDT")
	if b1 != b2 {
		t.Fatalf("GetOrCreate returned different books for the same symbol")
	}

	b1.UpdateBid(100, 1)
	if got := r.Get("BTCUSDT").TopBidPrice(); got != 100 {
		t.Fatalf("registry book not shared by reference: top bid = %v", got)
	}
}
