// 包 results：读取投票站结果表，清洗地点名称、按地点汇总，并把候选人列归并为每党一列
package results

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"votemap/internal/logger"
	"votemap/internal/metrics"
	"votemap/internal/tabular"
)

// 结果文件前两行为元数据，第三行为表头
const headerRows = 2

// LocationColumn：首列重命名后的名称
const LocationColumn = "Location"

var (
	ErrNoData        = errors.New("results: no data rows")
	ErrRowShape      = errors.New("results: row width does not match header")
	ErrBadCount      = errors.New("results: malformed vote count")
	ErrEmptyLocation = errors.New("results: empty location name")
)

// Table：按地点汇总后的结果表
// 约束：Headers 不含 Location 列，Headers[j] 对应原文件第 j+1 列；Rows 按地点名排序且地点唯一
type Table struct {
	Headers []string
	Rows    []Row
}

// Row：一个地点的各列计数
type Row struct {
	Location string
	Values   []int64
}

// Column：返回指定表头所在下标
func (t *Table) Column(header string) (int, bool) {
	for i, h := range t.Headers {
		if h == header {
			return i, true
		}
	}
	return -1, false
}

// Normalizer：地点名称规范化规则
type Normalizer struct {
	// CityHall：名称中含此标签的多投票站地点统一归为该名称
	CityHall string
}

// 投票站编码前缀：首个空白分隔片段为括号包裹的编码，如 "(101)"
// 约束：名称本身以数字开头（如 "411 Seniors Centre"）不视为编码
var codeToken = regexp.MustCompile(`^\([0-9A-Za-z]+\)$`)

// Location：规范化一个原始地点标签
// 约束：仅当首片段为编码时去除，已清洗的名称保持不变（幂等）
func (n Normalizer) Location(raw string) (string, error) {
	name := tabular.Text(raw)
	if first, rest, ok := strings.Cut(name, " "); ok && codeToken.MatchString(first) {
		name = rest
	} else if !ok && codeToken.MatchString(name) {
		name = ""
	}
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyLocation, raw)
	}
	if n.CityHall != "" && strings.Contains(name, n.CityHall) {
		name = n.CityHall
	}
	return name, nil
}

// Load：读取结果文件并汇总
// 约束：跳过前两行；最后一行为合计行，直接丢弃；任何格式问题立即返回错误
func Load(path, sheet string, n Normalizer) (*Table, error) {
	rows, err := tabular.Read(path, sheet)
	if err != nil {
		return nil, err
	}
	return Parse(rows, n)
}

// Parse：从已读取的行构建汇总表
func Parse(rows [][]string, n Normalizer) (*Table, error) {
	if len(rows) <= headerRows {
		return nil, fmt.Errorf("%w: missing header row", ErrNoData)
	}
	header := rows[headerRows]
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: header has %d columns", ErrRowShape, len(header))
	}
	data := rows[headerRows+1:]
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: %d rows including total", ErrNoData, len(data))
	}
	data = data[:len(data)-1]

	headers := make([]string, len(header)-1)
	for i, h := range header[1:] {
		headers[i] = strings.TrimSpace(h)
	}
	parsed := make([]Row, 0, len(data))
	for i, r := range data {
		// 文件行号（1 起）用于错误定位
		line := headerRows + 2 + i
		if len(r) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d cells, header has %d", ErrRowShape, line, len(r), len(header))
		}
		loc, err := n.Location(r[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		vals := make([]int64, len(headers))
		for j, cell := range r[1:] {
			v, err := parseCount(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %q: %v", ErrBadCount, line, headers[j], err)
			}
			vals[j] = v
		}
		parsed = append(parsed, Row{Location: loc, Values: vals})
	}
	metrics.ResultRowsTotal.Add(float64(len(parsed)))
	t := &Table{Headers: headers, Rows: Aggregate(parsed)}
	metrics.LocationsTotal.Set(float64(len(t.Rows)))
	logger.L().Info("results_loaded", "rows", len(parsed), "locations", len(t.Rows), "columns", len(headers))
	return t, nil
}

// Aggregate：同名地点逐列求和，结果按地点名排序
func Aggregate(rows []Row) []Row {
	idx := make(map[string]int, len(rows))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if i, ok := idx[r.Location]; ok {
			for j, v := range r.Values {
				out[i].Values[j] += v
			}
			continue
		}
		idx[r.Location] = len(out)
		out = append(out, Row{Location: r.Location, Values: append([]int64(nil), r.Values...)})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Location < out[b].Location })
	return out
}

func parseCount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// 部分导出工具把整数写成 "12.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, fmt.Errorf("not an integer: %q", s)
		}
		v = int64(f)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative count %d", v)
	}
	return v, nil
}
