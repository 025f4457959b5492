package render

import (
	"strings"
	"testing"

	"insurabot/internal/chat"
)

func TestClassFor(t *testing.T) {
	cases := []struct {
		status chat.ClaimStatus
		want   StatusClass
	}{
		{chat.StatusApproved, ClassApproved},
		{chat.StatusUnderReview, ClassUnderReview},
		{chat.StatusRejected, ClassRejected},
		{"Escalated", ClassUnknown},
		{"approved", ClassUnknown},
		{"", ClassUnknown},
	}
	for _, tc := range cases {
		if got := ClassFor(tc.status); got != tc.want {
			t.Errorf("ClassFor(%q) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestStatusClassStyle_UnknownFallsBack(t *testing.T) {
	// 未注册的分类不能 panic，且使用中性样式。
	got := StatusClass("bogus").Style().Render("x")
	want := ClassUnknown.Style().Render("x")
	if got != want {
		t.Fatalf("bogus style render = %q, want %q", got, want)
	}
}

func TestRenderClaimCard_ShowsFields(t *testing.T) {
	claim := chat.Claim{
		ClaimID:      "CLM1001",
		PolicyHolder: "Amit Kumar",
		Status:       chat.StatusUnderReview,
		SubmittedOn:  "2025-09-10",
		Amount:       12500,
		Notes:        "Documents received",
	}
	text := strings.Join(PlainLines(RenderClaimCard(claim, 80)), "\n")
	for _, want := range []string{
		"CLM1001",
		"Under Review",
		"Policy Holder: Amit Kumar",
		"Amount: ₹12,500",
		"Submitted: 2025-09-10",
		"Notes: Documents received",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("card missing %q:\n%s", want, text)
		}
	}
}

func TestRenderClaimCard_UnknownStatus(t *testing.T) {
	claim := chat.Claim{ClaimID: "CLM9", Status: "Escalated"}
	text := strings.Join(PlainLines(RenderClaimCard(claim, 60)), "\n")
	if !strings.Contains(text, "Escalated") {
		t.Fatalf("card should show raw status:\n%s", text)
	}
}

func TestRenderClaimCard_FitsWidth(t *testing.T) {
	claim := chat.Claim{
		ClaimID: "CLM1003",
		Status:  chat.StatusRejected,
		Notes:   strings.Repeat("missing documents ", 10),
	}
	for _, line := range RenderClaimCard(claim, 40) {
		if w := line.Width(); w > 40 {
			t.Fatalf("line width %d exceeds 40: %q", w, line.Plain())
		}
	}
}
