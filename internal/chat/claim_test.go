package chat

import "testing"

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "₹0"},
		{999, "₹999"},
		{9800, "₹9,800"},
		{12500, "₹12,500"},
		{43000, "₹43,000"},
		{123456, "₹1,23,456"},
		{12345678, "₹1,23,45,678"},
		{1500.5, "₹1,500.50"},
		{-2500, "-₹2,500"},
		{-0.004, "₹0"},
		{-0.006, "-₹0.01"},
		{-0.999, "-₹1"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.in); got != tc.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClaimStatusKnown(t *testing.T) {
	for _, s := range []ClaimStatus{StatusUnderReview, StatusApproved, StatusRejected} {
		if !s.Known() {
			t.Errorf("%q should be known", s)
		}
	}
	if ClaimStatus("Escalated").Known() {
		t.Errorf("Escalated should be unknown")
	}
}
