package domain_test

import (
	"testing"

	"quickstay/internal/domain"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		a1, a2, b1, b2 string
		want           bool
	}{
		{"identical", "2024-03-10", "2024-03-13", "2024-03-10", "2024-03-13", true},
		{"contained", "2024-03-10", "2024-03-13", "2024-03-11", "2024-03-12", true},
		{"partial front", "2024-03-10", "2024-03-13", "2024-03-12", "2024-03-14", true},
		{"partial back", "2024-03-12", "2024-03-14", "2024-03-10", "2024-03-13", true},
		{"checkout equals checkin", "2024-03-10", "2024-03-13", "2024-03-13", "2024-03-15", false},
		{"checkin equals checkout", "2024-03-13", "2024-03-15", "2024-03-10", "2024-03-13", false},
		{"disjoint", "2024-03-10", "2024-03-11", "2024-03-20", "2024-03-22", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.Overlaps(date(tc.a1), date(tc.a2), date(tc.b1), date(tc.b2))
			if got != tc.want {
				t.Fatalf("Overlaps(%s,%s,%s,%s) = %v, want %v", tc.a1, tc.a2, tc.b1, tc.b2, got, tc.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := domain.ParseDate("2024-03-10")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !d.Equal(date("2024-03-10")) {
		t.Fatalf("unexpected date: %v", d)
	}
	if _, err := domain.ParseDate("10/03/2024"); err == nil {
		t.Fatal("expected error for malformed date")
	}
	if _, err := domain.ParseDate("2024-02-30"); err == nil {
		t.Fatal("expected error for impossible calendar date")
	}
}
