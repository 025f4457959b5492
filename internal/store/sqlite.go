package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"insurabot/internal/chat"

	_ "modernc.org/sqlite"
)

// SQLiteStore 基于 SQLite 实现 Repository。
type SQLiteStore struct {
	db      *sql.DB
	writeMu sync.Mutex // 串行写入，避免 SQLITE_BUSY
	now     func() time.Time
}

// NewSQLite 打开（必要时创建）数据库并初始化表结构。
// dbPath 为 ":memory:" 时使用内存库。
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// 每个连接都是独立的内存库。
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS claims (
		claim_id TEXT PRIMARY KEY,
		policy_holder TEXT NOT NULL,
		status TEXT NOT NULL,
		submitted_on TEXT NOT NULL,
		amount REAL NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		policy_number TEXT NOT NULL DEFAULT '',
		customer_id TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS policies (
		policy_number TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL DEFAULT '',
		holder_name TEXT NOT NULL DEFAULT '',
		plan_type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT '',
		sum_insured REAL NOT NULL DEFAULT 0,
		premium REAL NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_policies_customer ON policies(customer_id);

	CREATE TABLE IF NOT EXISTS escalations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_escalations_created ON escalations(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	// 旧版本的 claims 表没有保单号与客户号。
	for _, col := range []string{"policy_number", "customer_id"} {
		if err := s.ensureColumn("claims", col, "TEXT NOT NULL DEFAULT ''"); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec(`
	CREATE INDEX IF NOT EXISTS idx_claims_policy ON claims(policy_number);
	CREATE INDEX IF NOT EXISTS idx_claims_customer ON claims(customer_id);`); err != nil {
		return fmt.Errorf("create claim indexes: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ensureColumn(table, column, decl string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	found := false
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan %s columns: %w", table, err)
		}
		if name == column {
			found = true
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if found {
		return nil
	}
	if _, err := s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl)); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

// Ping 检查数据库连通性。
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 关闭数据库连接。
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetClaim(ctx context.Context, claimID string) (chat.Claim, error) {
	query := `
		SELECT claim_id, policy_holder, status, submitted_on, amount, notes
		FROM claims WHERE claim_id = ?`

	var c chat.Claim
	var status string
	err := s.db.QueryRowContext(ctx, query, normalizeID(claimID)).Scan(
		&c.ClaimID, &c.PolicyHolder, &status, &c.SubmittedOn, &c.Amount, &c.Notes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Claim{}, ErrNotFound
	}
	if err != nil {
		return chat.Claim{}, fmt.Errorf("scan claim row: %w", err)
	}
	c.Status = chat.ClaimStatus(status)
	return c, nil
}

func (s *SQLiteStore) UpsertClaim(ctx context.Context, c ClaimRecord) error {
	id := normalizeID(c.ClaimID)
	if id == "" {
		return errors.New("claim id is required")
	}
	query := `
	INSERT INTO claims (claim_id, policy_holder, status, submitted_on, amount, notes, policy_number, customer_id, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(claim_id) DO UPDATE SET
		policy_holder = excluded.policy_holder,
		status = excluded.status,
		submitted_on = excluded.submitted_on,
		amount = excluded.amount,
		notes = excluded.notes,
		policy_number = excluded.policy_number,
		customer_id = excluded.customer_id,
		updated_at = excluded.updated_at`

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.ExecContext(ctx, query,
		id, c.PolicyHolder, string(c.Status), c.SubmittedOn, c.Amount, c.Notes,
		normalizeID(c.PolicyNumber), normalizeID(c.CustomerID), s.now().Unix(),
	); err != nil {
		return fmt.Errorf("upsert claim %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) ClaimsByPolicy(ctx context.Context, policyNumber string) ([]chat.Claim, error) {
	return s.queryClaims(ctx, "policy_number", policyNumber)
}

func (s *SQLiteStore) ClaimsByCustomer(ctx context.Context, customerID string) ([]chat.Claim, error) {
	return s.queryClaims(ctx, "customer_id", customerID)
}

// queryClaims 的 column 只来自本文件的常量。
func (s *SQLiteStore) queryClaims(ctx context.Context, column, value string) ([]chat.Claim, error) {
	id := normalizeID(value)
	if id == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT claim_id, policy_holder, status, submitted_on, amount, notes
		FROM claims WHERE `+column+` = ? ORDER BY claim_id`, id)
	if err != nil {
		return nil, fmt.Errorf("query claims by %s: %w", column, err)
	}
	defer rows.Close()

	var out []chat.Claim
	for rows.Next() {
		var c chat.Claim
		var status string
		if err := rows.Scan(&c.ClaimID, &c.PolicyHolder, &status, &c.SubmittedOn, &c.Amount, &c.Notes); err != nil {
			return nil, fmt.Errorf("scan claim row: %w", err)
		}
		c.Status = chat.ClaimStatus(status)
		out = append(out, c)
	}
	return out, rows.Err()
}

const policyColumns = `policy_number, customer_id, holder_name, plan_type, status, start_date, end_date, sum_insured, premium`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (Policy, error) {
	var p Policy
	err := row.Scan(&p.PolicyNumber, &p.CustomerID, &p.HolderName, &p.PlanType, &p.Status,
		&p.StartDate, &p.EndDate, &p.SumInsured, &p.Premium)
	return p, err
}

func (s *SQLiteStore) GetPolicy(ctx context.Context, policyNumber string) (Policy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE policy_number = ?`, normalizeID(policyNumber))
	p, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Policy{}, ErrNotFound
	}
	if err != nil {
		return Policy{}, fmt.Errorf("scan policy row: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) PoliciesByCustomer(ctx context.Context, customerID string) ([]Policy, error) {
	id := normalizeID(customerID)
	if id == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE customer_id = ? ORDER BY policy_number`, id)
	if err != nil {
		return nil, fmt.Errorf("query policies: %w", err)
	}
	defer rows.Close()

	var out []Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpsertPolicy(ctx context.Context, p Policy) error {
	number := normalizeID(p.PolicyNumber)
	if number == "" {
		return errors.New("policy number is required")
	}
	query := `
	INSERT INTO policies (` + policyColumns + `, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(policy_number) DO UPDATE SET
		customer_id = excluded.customer_id,
		holder_name = excluded.holder_name,
		plan_type = excluded.plan_type,
		status = excluded.status,
		start_date = excluded.start_date,
		end_date = excluded.end_date,
		sum_insured = excluded.sum_insured,
		premium = excluded.premium,
		updated_at = excluded.updated_at`

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.ExecContext(ctx, query,
		number, normalizeID(p.CustomerID), p.HolderName, p.PlanType, p.Status,
		p.StartDate, p.EndDate, p.SumInsured, p.Premium, s.now().Unix(),
	); err != nil {
		return fmt.Errorf("upsert policy %s: %w", number, err)
	}
	return nil
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func (s *SQLiteStore) RecordEscalation(ctx context.Context, requestID, message string) (int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO escalations (request_id, message, created_at) VALUES (?, ?, ?)`,
		requestID, message, s.now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert escalation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("escalation id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) ListEscalations(ctx context.Context, limit int) ([]Escalation, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, message, created_at
		FROM escalations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query escalations: %w", err)
	}
	defer rows.Close()

	var out []Escalation
	for rows.Next() {
		var e Escalation
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan escalation row: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}
