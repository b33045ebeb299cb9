package model

import "testing"

func TestListOptions_Clamp(t *testing.T) {
	tests := []struct {
		name       string
		input      ListOptions
		wantLimit  int
		wantOffset int
	}{
		{"defaults", ListOptions{Limit: 0, Offset: 0}, 20, 0},
		{"negative limit", ListOptions{Limit: -5, Offset: 0}, 20, 0},
		{"over max", ListOptions{Limit: 200, Offset: 0}, 100, 0},
		{"negative offset", ListOptions{Limit: 10, Offset: -3}, 10, 0},
		{"valid", ListOptions{Limit: 50, Offset: 10}, 50, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.Clamp()
			if tt.input.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.input.Limit, tt.wantLimit)
			}
			if tt.input.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", tt.input.Offset, tt.wantOffset)
			}
		})
	}
}

func TestParseStatusFilter(t *testing.T) {
	tests := []struct {
		input string
		want  StatusFilter
	}{
		{"active", StatusActive},
		{"ACTIVE", StatusActive},
		{"blocked", StatusBlocked},
		{"inactive", StatusBlocked},
		{"", StatusAny},
		{"archived", StatusAny},
	}
	for _, tt := range tests {
		if got := ParseStatusFilter(tt.input); got != tt.want {
			t.Errorf("ParseStatusFilter(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDateFilter_Days(t *testing.T) {
	tests := []struct {
		filter DateFilter
		days   int
		ok     bool
	}{
		{DateLast7Days, 7, true},
		{DateLast30Days, 30, true},
		{DateLast90Days, 90, true},
		{DateAny, 0, false},
		{"last_year", 0, false},
	}
	for _, tt := range tests {
		days, ok := tt.filter.Days()
		if days != tt.days || ok != tt.ok {
			t.Errorf("%q.Days() = (%d, %v), want (%d, %v)", tt.filter, days, ok, tt.days, tt.ok)
		}
	}
}

func TestParseCollection(t *testing.T) {
	c, err := ParseCollection("schedules")
	if err != nil {
		t.Fatalf("ParseCollection: %v", err)
	}
	if c != CollectionSchedules || !c.OwnerScoped() {
		t.Errorf("got %q (owner scoped %v)", c, c.OwnerScoped())
	}
	if _, err := ParseCollection("tickets"); err == nil {
		t.Error("expected error for unknown collection")
	}
	if CollectionOwners.OwnerScoped() {
		t.Error("owners should not be owner scoped")
	}
}

func TestSplitStops(t *testing.T) {
	got := SplitStops(" Kochi, Aluva ,Thrissur")
	want := []string{"Kochi", "Aluva", "Thrissur"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stop %d = %q, want %q", i, got[i], want[i])
		}
	}
	if JoinStops(want) != "Kochi → Aluva → Thrissur" {
		t.Errorf("JoinStops = %q", JoinStops(want))
	}
}
