// Package intent 对用户消息做轻量分类，供演示后端选择回复路径。
package intent

import (
	"regexp"
	"strings"
)

// Intent 表示一条消息的意图。
type Intent string

const (
	PolicyLookup   Intent = "policy_lookup"
	CustomerLookup Intent = "customer_lookup"
	ClaimLookup    Intent = "claim_lookup"
	Escalate       Intent = "escalate"
	General        Intent = "general"
)

var (
	claimPattern    = regexp.MustCompile(`(?i)(claim|status|claim id|claimid|clm)\s*[:#]?\s*[a-z0-9]`)
	escalatePattern = regexp.MustCompile(`(?i)(agent|human|representative|talk to|escalate)`)
	claimIDPattern  = regexp.MustCompile(`(?i)(CLM\d{3,}|\b\d{6,}\b)`)

	policyNumberPattern = regexp.MustCompile(`(?i)\bPOL\d{3}[A-Z]\b`)
	customerIDPattern   = regexp.MustCompile(`(?i)\bCUST\d+\b`)
)

// Detect 返回消息的意图。优先级：保单号、客户号、理赔查询、转人工。
func Detect(text string) Intent {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return General
	case policyNumberPattern.MatchString(text):
		return PolicyLookup
	case customerIDPattern.MatchString(text):
		return CustomerLookup
	case claimPattern.MatchString(text):
		return ClaimLookup
	case escalatePattern.MatchString(text):
		return Escalate
	default:
		return General
	}
}

// ExtractClaimID 提取第一个理赔编号并转为大写。
func ExtractClaimID(text string) (string, bool) {
	return extract(claimIDPattern, text)
}

// ExtractPolicyNumber 提取第一个保单号（如 POL123A）并转为大写。
func ExtractPolicyNumber(text string) (string, bool) {
	return extract(policyNumberPattern, text)
}

// ExtractCustomerID 提取第一个客户号（如 CUST42）并转为大写。
func ExtractCustomerID(text string) (string, bool) {
	return extract(customerIDPattern, text)
}

func extract(re *regexp.Regexp, text string) (string, bool) {
	match := re.FindString(text)
	if match == "" {
		return "", false
	}
	return strings.ToUpper(match), true
}
