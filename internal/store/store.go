// Package store 提供演示后端的理赔、保单与转人工记录持久化。
package store

import (
	"context"
	"errors"
	"time"

	"insurabot/internal/chat"
)

// ErrNotFound 表示记录不存在。
var ErrNotFound = errors.New("store: not found")

// ClaimRecord 是一条入库的理赔，比线上的 chat.Claim 多出所属保单与客户。
type ClaimRecord struct {
	chat.Claim
	PolicyNumber string
	CustomerID   string
}

// Policy 是一张保单。
type Policy struct {
	PolicyNumber string
	CustomerID   string
	HolderName   string
	PlanType     string
	Status       string
	StartDate    string
	EndDate      string
	SumInsured   float64
	Premium      float64
}

// Escalation 是一条转人工请求。
type Escalation struct {
	ID        int64
	RequestID string
	Message   string
	CreatedAt time.Time
}

// Repository 定义理赔、保单与转人工数据的访问接口。
type Repository interface {
	// GetClaim 按编号查询理赔，不存在时返回 ErrNotFound。
	GetClaim(ctx context.Context, claimID string) (chat.Claim, error)

	// UpsertClaim 新增或更新一条理赔。
	UpsertClaim(ctx context.Context, claim ClaimRecord) error

	// ClaimsByPolicy 返回某张保单下的理赔，按编号排序。
	ClaimsByPolicy(ctx context.Context, policyNumber string) ([]chat.Claim, error)

	// ClaimsByCustomer 返回某位客户的理赔，按编号排序。
	ClaimsByCustomer(ctx context.Context, customerID string) ([]chat.Claim, error)

	// GetPolicy 按保单号查询，不存在时返回 ErrNotFound。
	GetPolicy(ctx context.Context, policyNumber string) (Policy, error)

	// PoliciesByCustomer 返回某位客户名下的保单。
	PoliciesByCustomer(ctx context.Context, customerID string) ([]Policy, error)

	// UpsertPolicy 新增或更新一张保单。
	UpsertPolicy(ctx context.Context, policy Policy) error

	// RecordEscalation 记录一次转人工请求并返回其编号。
	RecordEscalation(ctx context.Context, requestID, message string) (int64, error)

	// ListEscalations 按时间倒序返回最近的转人工请求。
	ListEscalations(ctx context.Context, limit int) ([]Escalation, error)

	Ping(ctx context.Context) error
	Close() error
}

// SampleClaims 是首次启动时写入的示例理赔。
func SampleClaims() []ClaimRecord {
	return []ClaimRecord{
		{
			Claim:        chat.Claim{ClaimID: "CLM1001", PolicyHolder: "Amit Kumar", Status: chat.StatusUnderReview, SubmittedOn: "2025-09-10", Amount: 12500, Notes: "Documents received, awaiting assessment"},
			PolicyNumber: "POL101A", CustomerID: "CUST1001",
		},
		{
			Claim:        chat.Claim{ClaimID: "CLM1002", PolicyHolder: "Rina Sharma", Status: chat.StatusApproved, SubmittedOn: "2025-08-18", Amount: 43000, Notes: "Settlement scheduled"},
			PolicyNumber: "POL202B", CustomerID: "CUST1002",
		},
		{
			Claim:        chat.Claim{ClaimID: "CLM1003", PolicyHolder: "Sahil Mehta", Status: chat.StatusRejected, SubmittedOn: "2025-06-01", Amount: 9800, Notes: "Rejected due to missing documents"},
			PolicyNumber: "POL303C", CustomerID: "CUST1003",
		},
	}
}

// SamplePolicies 是与示例理赔对应的保单。
func SamplePolicies() []Policy {
	return []Policy{
		{PolicyNumber: "POL101A", CustomerID: "CUST1001", HolderName: "Amit Kumar", PlanType: "Health Plus", Status: "Active", StartDate: "2025-01-01", EndDate: "2025-12-31", SumInsured: 500000, Premium: 12000},
		{PolicyNumber: "POL202B", CustomerID: "CUST1002", HolderName: "Rina Sharma", PlanType: "Motor Secure", Status: "Active", StartDate: "2025-04-01", EndDate: "2026-03-31", SumInsured: 300000, Premium: 8500},
		{PolicyNumber: "POL303C", CustomerID: "CUST1003", HolderName: "Sahil Mehta", PlanType: "Home Shield", Status: "Lapsed", StartDate: "2024-06-01", EndDate: "2025-05-31", SumInsured: 1500000, Premium: 6400},
	}
}

// Seed 写入一组理赔，已存在的编号会被覆盖。
func Seed(ctx context.Context, repo Repository, claims []ClaimRecord) error {
	for _, c := range claims {
		if err := repo.UpsertClaim(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// SeedPolicies 写入一组保单，已存在的保单号会被覆盖。
func SeedPolicies(ctx context.Context, repo Repository, policies []Policy) error {
	for _, p := range policies {
		if err := repo.UpsertPolicy(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
