package chat

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatAmount 按印度数字分组输出金额，例如 123456 -> ₹1,23,456。
func FormatAmount(amount float64) string {
	abs := math.Abs(amount)
	whole := math.Floor(abs)
	frac := math.Round((abs - whole) * 100)
	if frac >= 100 {
		whole++
		frac = 0
	}
	// 四舍五入到分后为零的负数不带符号。
	neg := amount < 0 && (whole > 0 || frac > 0)
	digits := strconv.FormatFloat(whole, 'f', 0, 64)
	grouped := groupIndian(digits)
	if frac > 0 {
		grouped += fmt.Sprintf(".%02d", int(frac))
	}
	if neg {
		return "-₹" + grouped
	}
	return "₹" + grouped
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]
	parts := []string{}
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

// ClaimSummary 返回理赔记录的单段文本描述。
func ClaimSummary(c Claim) string {
	return fmt.Sprintf("%s (%s) — Policy Holder: %s, Amount: %s, Submitted: %s, Notes: %s",
		c.ClaimID, c.Status, c.PolicyHolder, FormatAmount(c.Amount), c.SubmittedOn, c.Notes)
}
