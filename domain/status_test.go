package domain

import "testing"

func TestStatusLabels(t *testing.T) {
	cases := map[Status]string{
		StatusNew:        "New",
		StatusInProgress: "In Progress",
		StatusDone:       "Done",
		StatusPending:    "Pending",
		StatusBlocked:    "Blocked",
	}
	for code, want := range cases {
		if got := code.Label(); got != want {
			t.Fatalf("Label(%s) = %q, want %q", code, got, want)
		}
		if !code.Valid() {
			t.Fatalf("expected %s to be valid", code)
		}
	}
}

func TestStatusUnknown(t *testing.T) {
	if Status("X").Valid() {
		t.Fatal("expected unknown status to be invalid")
	}
	if got := Status("X").Label(); got != "X" {
		t.Fatalf("unknown label should pass through, got %q", got)
	}
}
