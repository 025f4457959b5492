// Package faq 加载常见问题并按用户提问做模糊检索。
package faq

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
)

// FileName 是数据目录中 FAQ 文件的约定名称。
const FileName = "faqs.csv"

// 过短的提问不做子串命中。
const minSubstringQuery = 4

//go:embed faqs.csv
var builtin string

// Entry 是一条问答。
type Entry struct {
	Question string
	Answer   string
}

// Index 保存 FAQ 条目并提供检索。
type Index struct {
	entries   []Entry
	questions []string
	words     []string
	owners    []int
}

// NewIndex 由条目构建索引，忽略问题为空的条目。
func NewIndex(entries []Entry) *Index {
	idx := &Index{}
	for _, e := range entries {
		q := strings.TrimSpace(e.Question)
		if q == "" {
			continue
		}
		lower := strings.ToLower(q)
		for _, w := range splitWords(lower) {
			idx.words = append(idx.words, w)
			idx.owners = append(idx.owners, len(idx.entries))
		}
		idx.entries = append(idx.entries, Entry{Question: q, Answer: strings.TrimSpace(e.Answer)})
		idx.questions = append(idx.questions, lower)
	}
	return idx
}

// Builtin 返回内置示例 FAQ。
func Builtin() *Index {
	entries, err := Parse(strings.NewReader(builtin))
	if err != nil {
		panic(fmt.Sprintf("builtin faqs: %v", err))
	}
	return NewIndex(entries)
}

// Load 读取 CSV 文件；文件不存在时返回内置 FAQ。
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Builtin(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open faq file: %w", err)
	}
	defer f.Close()
	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewIndex(entries), nil
}

// Parse 读取带 Question、Answer 表头的 CSV。
func Parse(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	qCol, aCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "question":
			qCol = i
		case "answer":
			aCol = i
		}
	}
	if qCol < 0 || aCol < 0 {
		return nil, errors.New("missing Question/Answer columns")
	}

	var out []Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if qCol >= len(record) {
			continue
		}
		e := Entry{Question: record[qCol]}
		if aCol < len(record) {
			e.Answer = record[aCol]
		}
		out = append(out, e)
	}
	return out, nil
}

// Len 返回条目数。
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Lookup 返回与提问最接近的条目。
// 提问是某个问题的子串时直接命中；否则逐个关键词与问题中的单词做模糊匹配，
// 至少一半且不少于两个关键词命中才算匹配（只有一个关键词时命中一个即可）。
func (idx *Index) Lookup(query string) (Entry, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || len(idx.entries) == 0 {
		return Entry{}, false
	}
	if len(q) >= minSubstringQuery {
		for i, question := range idx.questions {
			if strings.Contains(question, q) {
				return idx.entries[i], true
			}
		}
	}

	words := keywords(q)
	if len(words) == 0 {
		return Entry{}, false
	}
	hits := make([]int, len(idx.entries))
	scores := make([]int, len(idx.entries))
	for _, w := range words {
		seen := map[int]bool{}
		for _, m := range fuzzy.Find(w, idx.words) {
			// 关键词需要几乎覆盖整个单词，容忍词尾变化。
			if len(m.Str) > len(w)+2 {
				continue
			}
			owner := idx.owners[m.Index]
			if seen[owner] {
				continue
			}
			seen[owner] = true
			hits[owner]++
			scores[owner] += m.Score
		}
	}

	need := min(2, len(words))
	best := -1
	for i := range idx.entries {
		if hits[i]*2 < len(words) || hits[i] < need {
			continue
		}
		if best < 0 || hits[i] > hits[best] || (hits[i] == hits[best] && scores[i] > scores[best]) {
			best = i
		}
	}
	if best < 0 {
		return Entry{}, false
	}
	return idx.entries[best], true
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "how": {}, "what": {}, "why": {}, "can": {},
	"does": {}, "did": {}, "was": {}, "are": {}, "you": {}, "your": {}, "my": {},
	"is": {}, "do": {}, "to": {}, "a": {}, "an": {}, "of": {}, "in": {}, "on": {},
	"i": {}, "me": {}, "please": {}, "about": {}, "with": {}, "this": {}, "that": {},
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func keywords(q string) []string {
	fields := splitWords(q)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 3 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}
