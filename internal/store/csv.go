package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"insurabot/internal/chat"
)

// ImportStats 记录一次目录导入写入的行数。
type ImportStats struct {
	Claims   int
	Policies int
}

// 表头按小写并去掉空格与下划线后匹配，同一字段接受多个列名。
var (
	claimColumns = map[string][]string{
		"id":        {"claimid"},
		"holder":    {"policyholder", "customername", "holdername", "name"},
		"status":    {"status", "claimstatus"},
		"submitted": {"submittedon", "claimdate", "date"},
		"amount":    {"amount", "claimamount"},
		"notes":     {"notes", "remarks"},
		"policy":    {"policynumber"},
		"customer":  {"customerid"},
	}
	policyColumnNames = map[string][]string{
		"number":   {"policynumber"},
		"customer": {"customerid"},
		"holder":   {"holdername", "policyholder", "customername", "name"},
		"plan":     {"plantype", "policytype", "plan"},
		"status":   {"status", "policystatus"},
		"start":    {"startdate"},
		"end":      {"enddate", "expirydate"},
		"sum":      {"suminsured", "coverage", "coverageamount"},
		"premium":  {"premium", "premiumamount"},
	}
)

// ImportDir 导入 dir 下文件名含 claims 或 policy 的 CSV。目录不存在时不做任何事。
func ImportDir(ctx context.Context, repo Repository, dir string) (ImportStats, error) {
	var stats ImportStats
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("read data dir: %w", err)
	}
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if e.IsDir() || filepath.Ext(name) != ".csv" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		switch {
		case strings.Contains(name, "claim"):
			claims, err := parseFile(path, ParseClaims)
			if err != nil {
				return stats, err
			}
			if err := Seed(ctx, repo, claims); err != nil {
				return stats, fmt.Errorf("import %s: %w", path, err)
			}
			stats.Claims += len(claims)
		case strings.Contains(name, "polic"):
			policies, err := parseFile(path, ParsePolicies)
			if err != nil {
				return stats, err
			}
			if err := SeedPolicies(ctx, repo, policies); err != nil {
				return stats, fmt.Errorf("import %s: %w", path, err)
			}
			stats.Policies += len(policies)
		}
	}
	return stats, nil
}

func parseFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	out, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}

// ParseClaims 读取理赔 CSV，必须包含 Claim_ID 列。
func ParseClaims(r io.Reader) ([]ClaimRecord, error) {
	var out []ClaimRecord
	err := readTable(r, claimColumns, "id", func(line int, get func(string) string) error {
		amount, err := parseAmount(get("amount"))
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, ClaimRecord{
			Claim: chat.Claim{
				ClaimID:      get("id"),
				PolicyHolder: get("holder"),
				Status:       chat.ClaimStatus(get("status")),
				SubmittedOn:  get("submitted"),
				Amount:       amount,
				Notes:        get("notes"),
			},
			PolicyNumber: get("policy"),
			CustomerID:   get("customer"),
		})
		return nil
	})
	return out, err
}

// ParsePolicies 读取保单 CSV，必须包含 Policy_Number 列。
func ParsePolicies(r io.Reader) ([]Policy, error) {
	var out []Policy
	err := readTable(r, policyColumnNames, "number", func(line int, get func(string) string) error {
		sum, err := parseAmount(get("sum"))
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		premium, err := parseAmount(get("premium"))
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, Policy{
			PolicyNumber: get("number"),
			CustomerID:   get("customer"),
			HolderName:   get("holder"),
			PlanType:     get("plan"),
			Status:       get("status"),
			StartDate:    get("start"),
			EndDate:      get("end"),
			SumInsured:   sum,
			Premium:      premium,
		})
		return nil
	})
	return out, err
}

// readTable 解析表头后逐行回调；key 列为空的行被跳过。
func readTable(r io.Reader, columns map[string][]string, key string, row func(line int, get func(string) string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	index := map[string]int{}
	for i, name := range header {
		norm := normalizeHeader(name)
		for field, aliases := range columns {
			if _, taken := index[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if norm == alias {
					index[field] = i
					break
				}
			}
		}
	}
	if _, ok := index[key]; !ok {
		return fmt.Errorf("missing %s column", columns[key][0])
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line++
		get := func(field string) string {
			i, ok := index[field]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if get(key) == "" {
			continue
		}
		if err := row(line, get); err != nil {
			return err
		}
	}
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(name)
}

func parseAmount(raw string) (float64, error) {
	cleaned := strings.NewReplacer(",", "", "₹", "", " ", "").Replace(raw)
	if cleaned == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return v, nil
}
