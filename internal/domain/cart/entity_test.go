package cart

import (
	"testing"
)

func TestCartAddItem(t *testing.T) {
	t.Run("appends new line with price snapshot", func(t *testing.T) {
		c := &Cart{Currency: "USD"}
		c.AddItem(1, "Green Tara Thangka", 1500, 2, "")

		if len(c.Items) != 1 {
			t.Fatalf("expected 1 line, got %d", len(c.Items))
		}
		if c.Items[0].Price != 1500 {
			t.Errorf("expected price snapshot 1500, got %d", c.Items[0].Price)
		}
		if c.Subtotal != 3000 {
			t.Errorf("expected subtotal 3000, got %d", c.Subtotal)
		}
	})

	t.Run("merges quantity into existing line", func(t *testing.T) {
		c := &Cart{Currency: "USD"}
		c.AddItem(1, "Green Tara Thangka", 1500, 1, "")
		c.AddItem(1, "Green Tara Thangka", 1500, 2, "")

		if len(c.Items) != 1 {
			t.Fatalf("expected merged line, got %d lines", len(c.Items))
		}
		if c.Items[0].Quantity != 3 {
			t.Errorf("expected quantity 3, got %d", c.Items[0].Quantity)
		}
	})

	t.Run("merge keeps the original price snapshot", func(t *testing.T) {
		c := &Cart{Currency: "USD"}
		c.AddItem(1, "Green Tara Thangka", 1500, 1, "")
		// Catalog price changed between adds
		c.AddItem(1, "Green Tara Thangka", 1800, 1, "")

		if c.Items[0].Price != 1500 {
			t.Errorf("expected original snapshot 1500, got %d", c.Items[0].Price)
		}
		if c.Subtotal != 3000 {
			t.Errorf("expected subtotal 3000, got %d", c.Subtotal)
		}
	})
}

func TestCartUpdateQuantity(t *testing.T) {
	t.Run("sets quantity and recomputes totals", func(t *testing.T) {
		c := &Cart{Currency: "USD"}
		c.AddItem(1, "Mandala", 2000, 1, "")

		if !c.UpdateQuantity(1, 4) {
			t.Fatal("expected update to succeed")
		}
		if c.Subtotal != 8000 {
			t.Errorf("expected subtotal 8000, got %d", c.Subtotal)
		}
	})

	t.Run("zero quantity removes the line", func(t *testing.T) {
		c := &Cart{Currency: "USD"}
		c.AddItem(1, "Mandala", 2000, 2, "")

		if !c.UpdateQuantity(1, 0) {
			t.Fatal("expected update to succeed")
		}
		if len(c.Items) != 0 {
			t.Errorf("expected line removed, got %d lines", len(c.Items))
		}
		if c.Total != 0 {
			t.Errorf("expected total 0, got %d", c.Total)
		}
	})

	t.Run("negative quantity removes the line", func(t *testing.T) {
		c := &Cart{Currency: "USD"}
		c.AddItem(1, "Mandala", 2000, 2, "")

		if !c.UpdateQuantity(1, -3) {
			t.Fatal("expected update to succeed")
		}
		if len(c.Items) != 0 {
			t.Errorf("expected line removed, got %d lines", len(c.Items))
		}
	})

	t.Run("unknown product reports false", func(t *testing.T) {
		c := &Cart{Currency: "USD"}
		if c.UpdateQuantity(99, 1) {
			t.Error("expected update of unknown product to fail")
		}
	})
}

func TestCartRemoveItem(t *testing.T) {
	c := &Cart{Currency: "USD"}
	c.AddItem(1, "Mandala", 2000, 1, "")
	c.AddItem(2, "Buddha", 3000, 1, "")

	if !c.RemoveItem(1) {
		t.Fatal("expected removal to succeed")
	}
	if len(c.Items) != 1 || c.Items[0].ProductID != 2 {
		t.Fatalf("unexpected lines after removal: %+v", c.Items)
	}
	if c.Subtotal != 3000 {
		t.Errorf("expected subtotal 3000, got %d", c.Subtotal)
	}

	if c.RemoveItem(99) {
		t.Error("expected removal of unknown product to fail")
	}
}

func TestCartClear(t *testing.T) {
	c := &Cart{Currency: "USD"}
	c.AddItem(1, "Mandala", 2000, 1, "")
	c.ApplyPricing(500, 0, 10)

	c.Clear()

	if len(c.Items) != 0 {
		t.Errorf("expected no lines, got %d", len(c.Items))
	}
	if c.Subtotal != 0 || c.ShippingCost != 0 || c.Tax != 0 || c.Total != 0 {
		t.Errorf("expected all totals zeroed, got subtotal=%d shipping=%d tax=%d total=%d",
			c.Subtotal, c.ShippingCost, c.Tax, c.Total)
	}
}

func TestCartApplyPricing(t *testing.T) {
	t.Run("flat shipping below threshold", func(t *testing.T) {
		c := &Cart{Currency: "USD"}
		c.AddItem(1, "Mandala", 2950, 1, "")
		c.ApplyPricing(50, 10000, 0)

		if c.ShippingCost != 50 {
			t.Errorf("expected shipping 50, got %d", c.ShippingCost)
		}
		if c.Total != 3000 {
			t.Errorf("expected total 3000, got %d", c.Total)
		}
	})

	t.Run("free shipping at threshold", func(t *testing.T) {
		c := &Cart{Currency: "USD"}
		c.AddItem(1, "Mandala", 12000, 1, "")
		c.ApplyPricing(50, 10000, 0)

		if c.ShippingCost != 0 {
			t.Errorf("expected free shipping, got %d", c.ShippingCost)
		}
	})

	t.Run("tax is rounded from the subtotal", func(t *testing.T) {
		c := &Cart{Currency: "USD"}
		c.AddItem(1, "Mandala", 999, 1, "")
		c.ApplyPricing(0, 0, 7.5)

		// 999 * 7.5% = 74.925 rounds to 75
		if c.Tax != 75 {
			t.Errorf("expected tax 75, got %d", c.Tax)
		}
		if c.Total != 1074 {
			t.Errorf("expected total 1074, got %d", c.Total)
		}
	})
}

func TestCartSummary(t *testing.T) {
	c := &Cart{Currency: "USD"}
	c.AddItem(1, "Mandala", 1000, 2, "")
	c.AddItem(2, "Buddha", 950, 1, "")
	c.ApplyPricing(50, 0, 0)

	summary := c.GetSummary()

	if summary.ItemCount != 2 {
		t.Errorf("expected 2 distinct lines, got %d", summary.ItemCount)
	}
	if summary.TotalItems != 3 {
		t.Errorf("expected 3 total items, got %d", summary.TotalItems)
	}
	if summary.Subtotal != 2950 {
		t.Errorf("expected subtotal 2950, got %d", summary.Subtotal)
	}
	if summary.ShippingCost != 50 {
		t.Errorf("expected shipping 50, got %d", summary.ShippingCost)
	}
	if summary.Total != 3000 {
		t.Errorf("expected total 3000, got %d", summary.Total)
	}
	if summary.Currency != "USD" {
		t.Errorf("expected currency USD, got %s", summary.Currency)
	}
}

func TestCartTotalsInvariant(t *testing.T) {
	// Total must always equal subtotal + shipping + tax after any mutation
	c := &Cart{Currency: "USD"}
	c.AddItem(1, "A", 100, 3, "")
	c.AddItem(2, "B", 250, 2, "")
	c.UpdateQuantity(1, 5)
	c.RemoveItem(2)
	c.ApplyPricing(75, 0, 5)

	if c.Total != c.Subtotal+c.ShippingCost+c.Tax {
		t.Errorf("totals invariant broken: total=%d subtotal=%d shipping=%d tax=%d",
			c.Total, c.Subtotal, c.ShippingCost, c.Tax)
	}
}
