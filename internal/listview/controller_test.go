package listview

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/me/busdesk/pkg/model"
)

func newOwnerController(items []model.User) *Controller[model.User] {
	c := NewController(UserFields, WithClock[model.User](func() time.Time { return testNow }))
	c.Replace(items)
	return c
}

func TestControllerSetCriteriaResetsPage(t *testing.T) {
	c := newOwnerController(manyOwners(12))
	if got := c.Navigate(3); got != 3 {
		t.Fatalf("Navigate(3) = %d", got)
	}

	c.SetCriteria(model.FilterCriteria{SearchText: "Owner 1"})
	if c.Page() != 1 {
		t.Errorf("page after criteria change = %d, want 1", c.Page())
	}
	v := c.View()
	if v.Total != 4 { // Owner 1, 10, 11, 12
		t.Errorf("Total = %d, want 4", v.Total)
	}
}

func TestControllerSameCriteriaKeepsPage(t *testing.T) {
	c := newOwnerController(manyOwners(12))
	c.Navigate(2)
	c.SetCriteria(model.FilterCriteria{})
	if c.Page() != 2 {
		t.Errorf("page = %d, want 2", c.Page())
	}
}

func TestControllerNavigateClamps(t *testing.T) {
	c := newOwnerController(manyOwners(12))
	tests := []struct{ in, want int }{
		{0, 1},
		{-4, 1},
		{2, 2},
		{99, 3},
	}
	for _, tt := range tests {
		if got := c.Navigate(tt.in); got != tt.want {
			t.Errorf("Navigate(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}

	empty := newOwnerController(nil)
	if got := empty.Navigate(5); got != 1 {
		t.Errorf("Navigate on empty = %d, want 1", got)
	}
}

func TestControllerPatchTouchesOneRecord(t *testing.T) {
	before := owners()
	c := newOwnerController(before)

	ok := c.Patch("u3", func(u model.User) model.User {
		u.IsBlocked = true
		return u
	})
	if !ok {
		t.Fatal("Patch reported no match")
	}

	after := c.Items()
	for i := range after {
		if after[i].ID == "u3" {
			if !after[i].IsBlocked {
				t.Error("u3 not patched")
			}
			continue
		}
		if diff := cmp.Diff(before[i], after[i]); diff != "" {
			t.Errorf("record %s changed (-before +after):\n%s", before[i].ID, diff)
		}
	}
	if before[2].IsBlocked {
		t.Error("input slice was modified")
	}
}

func TestControllerPatchMissing(t *testing.T) {
	c := newOwnerController(owners())
	if c.Patch("nope", func(u model.User) model.User { return u }) {
		t.Error("Patch on missing id reported success")
	}
}

func TestControllerRemove(t *testing.T) {
	c := newOwnerController(owners())
	if !c.Remove("u2") {
		t.Fatal("Remove reported no match")
	}
	if diff := cmp.Diff([]string{"u1", "u3", "u4"}, ids(c.Items())); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if _, ok := c.Find("u2"); ok {
		t.Error("u2 still present")
	}
}

func TestLookup(t *testing.T) {
	buses := []model.Bus{{ID: "b1", Name: "Volvo 9600"}, {ID: "b2", Name: "Scania"}}
	b, ok := Lookup(buses, "b2")
	if !ok || b.Name != "Scania" {
		t.Errorf("Lookup(b2) = %+v, %v", b, ok)
	}
	if _, ok := Lookup(buses, "b9"); ok {
		t.Error("Lookup(b9) found a bus")
	}
}
