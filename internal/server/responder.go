package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"insurabot/internal/chat"
	"insurabot/internal/faq"
	"insurabot/internal/intent"
	"insurabot/internal/logger"
	"insurabot/internal/store"
)

const (
	emptyMessageText   = "Please provide a message."
	notReadyText       = "Backend not initialized. Verify data directory and model setup."
	askClaimIDText     = "Please share your claim ID (for example CLM1001) so I can look it up."
	generalFallback    = "I couldn't find a specific ID in your question or a relevant FAQ. Could you please rephrase?"
	escalationTemplate = "I've asked a human agent to join this conversation. Your reference number is ESC-%04d; someone will reach out shortly."
	notFoundFormat     = "I recognized the %s '%s', but couldn't find any corresponding records. Please check the number and try again."
)

// Phraser 基于检索到的问答生成回答，可为空。
type Phraser interface {
	Rephrase(ctx context.Context, query, question, answer string) (string, error)
}

// Responder 根据意图选择回复：理赔卡片、保单或客户摘要、转人工确认、FAQ 回答或兜底文本。
type Responder struct {
	repo    store.Repository
	faqs    *faq.Index
	phraser Phraser
	log     *logger.LogEntry
}

func NewResponder(repo store.Repository, faqs *faq.Index, phraser Phraser, log *logger.LogEntry) *Responder {
	if log == nil {
		log = logger.Named("responder")
	}
	return &Responder{repo: repo, faqs: faqs, phraser: phraser, log: log}
}

// Answer 为一条用户消息生成回复体，从不返回错误。
func (r *Responder) Answer(ctx context.Context, requestID, message string) chat.Payload {
	text := strings.TrimSpace(message)
	if text == "" {
		return chat.TextPayload(emptyMessageText)
	}
	if r.repo == nil {
		return chat.TextPayload(notReadyText)
	}
	log := r.log.WithField("request_id", requestID)

	kind := intent.Detect(text)
	log.WithField("intent", string(kind)).Debug("message classified")
	switch kind {
	case intent.PolicyLookup:
		id, _ := intent.ExtractPolicyNumber(text)
		return r.lookupPolicy(ctx, log, id)
	case intent.CustomerLookup:
		id, _ := intent.ExtractCustomerID(text)
		return r.lookupCustomer(ctx, log, id)
	case intent.ClaimLookup:
		if id, ok := intent.ExtractClaimID(text); ok {
			return r.lookupClaim(ctx, log, id)
		}
		// 没有编号时先查 FAQ（如“为什么被拒赔”），查不到再提示补充编号。
		if payload, ok := r.answerFAQ(ctx, log, text); ok {
			return payload
		}
		return chat.TextPayload(askClaimIDText)
	case intent.Escalate:
		return r.escalate(ctx, log, requestID, text)
	}

	if payload, ok := r.answerFAQ(ctx, log, text); ok {
		return payload
	}
	return chat.TextPayload(generalFallback)
}

func notFound(kind, id string) chat.Payload {
	return chat.TextPayload(fmt.Sprintf(notFoundFormat, kind, id))
}

func (r *Responder) lookupClaim(ctx context.Context, log *logger.LogEntry, id string) chat.Payload {
	claim, err := r.repo.GetClaim(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		log.WithField("claim_id", id).Info("claim not found")
		return notFound("Claim ID", id)
	}
	if err != nil {
		log.Warnf("claim lookup failed: %v", err)
		return chat.TextPayload(notReadyText)
	}
	return chat.ClaimPayload(claim)
}

// lookupPolicy 返回保单摘要与其名下理赔；只有一条理赔且没有保单记录时直接返回理赔卡片。
func (r *Responder) lookupPolicy(ctx context.Context, log *logger.LogEntry, number string) chat.Payload {
	log = log.WithField("policy_number", number)
	policy, err := r.repo.GetPolicy(ctx, number)
	found := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Warnf("policy lookup failed: %v", err)
		return chat.TextPayload(notReadyText)
	}
	claims, err := r.repo.ClaimsByPolicy(ctx, number)
	if err != nil {
		log.Warnf("claims by policy failed: %v", err)
		return chat.TextPayload(notReadyText)
	}
	switch {
	case !found && len(claims) == 0:
		log.Info("policy not found")
		return notFound("Policy Number", number)
	case !found && len(claims) == 1:
		return chat.ClaimPayload(claims[0])
	}

	var b strings.Builder
	if found {
		b.WriteString(policySummary(policy))
	} else {
		fmt.Fprintf(&b, "Policy %s.", number)
	}
	if len(claims) == 0 {
		b.WriteString(" There are no claims on this policy.")
	} else {
		b.WriteString(" Claims on this policy: ")
		b.WriteString(claimList(claims))
		b.WriteString(".")
	}
	return chat.TextPayload(b.String())
}

// lookupCustomer 列出客户名下的保单与理赔；只有一条理赔且没有保单时直接返回理赔卡片。
func (r *Responder) lookupCustomer(ctx context.Context, log *logger.LogEntry, customerID string) chat.Payload {
	log = log.WithField("customer_id", customerID)
	policies, err := r.repo.PoliciesByCustomer(ctx, customerID)
	if err != nil {
		log.Warnf("policies by customer failed: %v", err)
		return chat.TextPayload(notReadyText)
	}
	claims, err := r.repo.ClaimsByCustomer(ctx, customerID)
	if err != nil {
		log.Warnf("claims by customer failed: %v", err)
		return chat.TextPayload(notReadyText)
	}
	switch {
	case len(policies) == 0 && len(claims) == 0:
		log.Info("customer not found")
		return notFound("Customer ID", customerID)
	case len(policies) == 0 && len(claims) == 1:
		return chat.ClaimPayload(claims[0])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Customer %s", customerID)
	if len(policies) > 0 {
		names := make([]string, 0, len(policies))
		for _, p := range policies {
			names = append(names, policyLabel(p))
		}
		fmt.Fprintf(&b, " holds %s: %s.", plural(len(policies), "policy", "policies"), strings.Join(names, "; "))
	} else {
		b.WriteString(" has no policies on record.")
	}
	if len(claims) > 0 {
		fmt.Fprintf(&b, " Claims: %s.", claimList(claims))
	} else {
		b.WriteString(" There are no claims on record.")
	}
	return chat.TextPayload(b.String())
}

func policySummary(p store.Policy) string {
	var b strings.Builder
	b.WriteString("Policy ")
	b.WriteString(p.PolicyNumber)
	if p.PlanType != "" {
		fmt.Fprintf(&b, " (%s)", p.PlanType)
	}
	if p.HolderName != "" {
		fmt.Fprintf(&b, " for %s", p.HolderName)
	}
	var details []string
	if p.Status != "" {
		details = append(details, p.Status)
	}
	if p.StartDate != "" && p.EndDate != "" {
		details = append(details, fmt.Sprintf("valid %s to %s", p.StartDate, p.EndDate))
	}
	if p.SumInsured > 0 {
		details = append(details, "sum insured "+chat.FormatAmount(p.SumInsured))
	}
	if p.Premium > 0 {
		details = append(details, "premium "+chat.FormatAmount(p.Premium))
	}
	if len(details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(details, ", "))
	}
	b.WriteString(".")
	return b.String()
}

func policyLabel(p store.Policy) string {
	var details []string
	for _, s := range []string{p.PlanType, p.Status} {
		if s != "" {
			details = append(details, s)
		}
	}
	if len(details) == 0 {
		return p.PolicyNumber
	}
	return fmt.Sprintf("%s (%s)", p.PolicyNumber, strings.Join(details, ", "))
}

func claimList(claims []chat.Claim) string {
	parts := make([]string, 0, len(claims))
	for _, c := range claims {
		parts = append(parts, fmt.Sprintf("%s (%s, %s)", c.ClaimID, c.Status, chat.FormatAmount(c.Amount)))
	}
	return strings.Join(parts, "; ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

func (r *Responder) escalate(ctx context.Context, log *logger.LogEntry, requestID, text string) chat.Payload {
	id, err := r.repo.RecordEscalation(ctx, requestID, text)
	if err != nil {
		log.Warnf("record escalation failed: %v", err)
		return chat.TextPayload("I've asked a human agent to join this conversation. Someone will reach out shortly.")
	}
	log.WithField("escalation_id", id).Info("escalation recorded")
	return chat.TextPayload(fmt.Sprintf(escalationTemplate, id))
}

func (r *Responder) answerFAQ(ctx context.Context, log *logger.LogEntry, text string) (chat.Payload, bool) {
	if r.faqs == nil {
		return chat.Payload{}, false
	}
	entry, ok := r.faqs.Lookup(text)
	if !ok {
		return chat.Payload{}, false
	}
	if r.phraser == nil {
		return chat.TextPayload(entry.Answer), true
	}
	answer, err := r.phraser.Rephrase(ctx, text, entry.Question, entry.Answer)
	if err != nil {
		log.Warnf("rephrase failed, using stored answer: %v", err)
		return chat.TextPayload(entry.Answer), true
	}
	return chat.TextPayload(answer), true
}
