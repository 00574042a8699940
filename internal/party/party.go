// 包 party：参选政党的封闭集合、显示颜色，以及结果表头到政党的声明式映射
package party

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Count：参与排名的政党数量（封闭集合）
const Count = 5

var (
	ErrUnrecognizedHeader = errors.New("party: unrecognized header")
	ErrAmbiguousHeader    = errors.New("party: header matches more than one party")
	ErrInvalidTable       = errors.New("party: invalid party table")
)

// Party：一个政党及其颜色与表头匹配片段
type Party struct {
	Name  string   `yaml:"name"`
	Color string   `yaml:"color"`
	Match []string `yaml:"match,omitempty"`
}

// Vote：某地点某政党的票数
type Vote struct {
	Party string
	Votes int64
}

// Table：政党集合与表头映射规则
// 约束：Columns 为精确表头到政党名的映射，优先于 Match 片段；Ignore 为声明丢弃的表头（如无党派候选人）
type Table struct {
	Parties []Party
	Columns map[string]string
	Ignore  []string
	Strict  bool
}

// Kind：表头分类结果
type Kind int

const (
	KindUnknown Kind = iota
	KindParty
	KindIgnored
)

// Class：单个表头的分类
type Class struct {
	Kind  Kind
	Party string
}

// Default：内置政党表，按政党名片段匹配表头，未识别表头丢弃（非严格）
func Default() *Table {
	return &Table{
		Parties: []Party{
			{Name: "ABC", Color: "#17A7DF", Match: []string{"ABC"}},
			{Name: "COPE", Color: "red", Match: []string{"COPE"}},
			{Name: "TEAM", Color: "yellow", Match: []string{"TEAM"}},
			{Name: "GREEN", Color: "#009245", Match: []string{"GREEN"}},
			{Name: "OneCity", Color: "pink", Match: []string{"OneCity"}},
		},
	}
}

type tableFile struct {
	Strict  *bool             `yaml:"strict"`
	Parties []Party           `yaml:"parties"`
	Columns map[string]string `yaml:"columns"`
	Ignore  []string          `yaml:"ignore"`
}

// LoadTable：从 YAML 映射文件加载政党表
// 约束：文件中未写 strict 时按严格模式处理，未识别的表头在清洗阶段直接报错
func LoadTable(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("party: read mapping: %w", err)
	}
	return ParseTable(b)
}

// ParseTable：解析 YAML 映射内容并校验
func ParseTable(b []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("party: parse mapping: %w", err)
	}
	t := &Table{Parties: f.Parties, Columns: f.Columns, Ignore: f.Ignore, Strict: true}
	if f.Strict != nil {
		t.Strict = *f.Strict
	}
	for i := range t.Parties {
		if len(t.Parties[i].Match) == 0 {
			t.Parties[i].Match = []string{t.Parties[i].Name}
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate：校验政党表
func (t *Table) Validate() error {
	if len(t.Parties) != Count {
		return fmt.Errorf("%w: want %d parties, got %d", ErrInvalidTable, Count, len(t.Parties))
	}
	seen := make(map[string]bool, len(t.Parties))
	for _, p := range t.Parties {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: party with empty name", ErrInvalidTable)
		}
		if strings.Contains(p.Name, "_") {
			return fmt.Errorf("%w: party name %q contains '_'", ErrInvalidTable, p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate party %q", ErrInvalidTable, p.Name)
		}
		seen[p.Name] = true
		if strings.TrimSpace(p.Color) == "" {
			return fmt.Errorf("%w: party %q has no color", ErrInvalidTable, p.Name)
		}
		for _, m := range p.Match {
			if strings.TrimSpace(m) == "" {
				return fmt.Errorf("%w: party %q has an empty match token", ErrInvalidTable, p.Name)
			}
		}
	}
	for header, name := range t.Columns {
		if !seen[name] {
			return fmt.Errorf("%w: column %q mapped to unknown party %q", ErrInvalidTable, header, name)
		}
	}
	for _, h := range t.Ignore {
		if _, ok := t.Columns[h]; ok {
			return fmt.Errorf("%w: column %q is both mapped and ignored", ErrInvalidTable, h)
		}
	}
	return nil
}

// Classify：判定一个结果表头属于哪个政党
// 约束：精确映射优先；其次恰好一个政党片段命中；多个政党命中视为歧义并报错；
// 声明忽略的表头返回 KindIgnored；其余在严格模式下报错，非严格模式返回 KindUnknown
func (t *Table) Classify(header string) (Class, error) {
	if name, ok := t.Columns[header]; ok {
		return Class{Kind: KindParty, Party: name}, nil
	}
	var hits []string
	for _, p := range t.Parties {
		for _, m := range p.Match {
			if strings.Contains(header, m) {
				hits = append(hits, p.Name)
				break
			}
		}
	}
	switch len(hits) {
	case 1:
		return Class{Kind: KindParty, Party: hits[0]}, nil
	case 0:
	default:
		return Class{}, fmt.Errorf("%w: %q matches %s", ErrAmbiguousHeader, header, strings.Join(hits, ", "))
	}
	for _, h := range t.Ignore {
		if h == header {
			return Class{Kind: KindIgnored}, nil
		}
	}
	if t.Strict {
		return Class{}, fmt.Errorf("%w: %q", ErrUnrecognizedHeader, header)
	}
	return Class{Kind: KindUnknown}, nil
}

// Color：政党显示颜色
func (t *Table) Color(name string) (string, bool) {
	for _, p := range t.Parties {
		if p.Name == name {
			return p.Color, true
		}
	}
	return "", false
}

// Names：按表中顺序返回政党名
func (t *Table) Names() []string {
	out := make([]string, len(t.Parties))
	for i, p := range t.Parties {
		out[i] = p.Name
	}
	return out
}
