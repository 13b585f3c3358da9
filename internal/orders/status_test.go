package orders

import "testing"

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in    string
		want  Status
		known bool
	}{
		{"new", StatusNew, true},
		{" Delivered ", StatusDelivered, true},
		{"CANCELED", StatusCancelled, true},
		{"cancelled", StatusCancelled, true},
		{"Completed", StatusCompleted, true},
		{"refunded", Status("refunded"), false},
		{"", Status(""), false},
	}
	for _, tc := range cases {
		got, known := ParseStatus(tc.in)
		if got != tc.want || known != tc.known {
			t.Fatalf("ParseStatus(%q) = %q,%v want %q,%v", tc.in, got, known, tc.want, tc.known)
		}
	}
}

func TestFulfilledAliasesFoldDelivered(t *testing.T) {
	if got := FulfilledAliases.Resolve(StatusDelivered); got != StatusCompleted {
		t.Fatalf("expected delivered to fold into completed, got %q", got)
	}
	if got := FulfilledAliases.Resolve(StatusPending); got != StatusPending {
		t.Fatalf("unexpected alias for pending: %q", got)
	}
	var empty AliasTable
	if got := empty.Resolve(StatusDelivered); got != StatusDelivered {
		t.Fatalf("nil table must be identity, got %q", got)
	}
}

func TestStatusPredicates(t *testing.T) {
	for _, s := range RevenueStatuses {
		if !s.Fulfilled() || !s.Terminal() {
			t.Fatalf("%q should be fulfilled and terminal", s)
		}
	}
	if StatusCancelled.Fulfilled() || !StatusCancelled.Terminal() {
		t.Fatalf("cancelled is terminal but not fulfilled")
	}
	if StatusNew.Terminal() {
		t.Fatalf("new is not terminal")
	}
	for _, s := range DisplayVocabulary {
		if !s.Known() {
			t.Fatalf("display vocabulary entry %q not in vocabulary", s)
		}
	}
}
