package domain

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, time.March, 14)

	payload, err := sonic.Marshal(d)
	if err != nil {
		t.Fatalf("marshal date: %v", err)
	}
	if string(payload) != `"2025-03-14"` {
		t.Fatalf("unexpected payload %s", payload)
	}

	var back Date
	if err := sonic.Unmarshal(payload, &back); err != nil {
		t.Fatalf("unmarshal date: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, err := ParseDate("14/03/2025"); err == nil {
		t.Fatal("expected parse failure")
	}
}

func TestDateScanTime(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2025, time.May, 2, 13, 45, 0, 0, time.UTC)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if d.String() != "2025-05-02" {
		t.Fatalf("expected time component dropped, got %s", d)
	}
}

func TestDateScanText(t *testing.T) {
	var d Date
	if err := d.Scan("2025-05-02 00:00:00+00:00"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if d.String() != "2025-05-02" {
		t.Fatalf("unexpected date %s", d)
	}
}
