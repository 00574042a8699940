package results

import (
	"errors"
	"fmt"
	"strings"

	"votemap/internal/logger"
	"votemap/internal/metrics"
	"votemap/internal/party"
)

// NonSignal：不参与排名的汇总列
var NonSignal = []string{"Times Cast", "Undervotes", "Overvotes", "Total Votes"}

// TotalVotesColumn：一致性核对使用的合计列
const TotalVotesColumn = "Total Votes"

var ErrUnexpectedColumns = errors.New("results: unexpected column set")

// VoteRecord：归并后每个地点一行，每个政党恰好一个票数
// 约束：Votes 按政党在表头中首次出现的顺序排列，该顺序也是排名时的并列次序
type VoteRecord struct {
	Location string
	Votes    []party.Vote
}

// Get：取某政党票数
func (r VoteRecord) Get(name string) (int64, bool) {
	for _, v := range r.Votes {
		if v.Party == name {
			return v.Votes, true
		}
	}
	return 0, false
}

// KeptColumn：保留的政党列，Name 形如 "ABC_3"（政党_原列号）
type KeptColumn struct {
	Name   string
	Party  string
	Header string
}

// Reduction：归并结果
type Reduction struct {
	Records []VoteRecord
	Columns []KeptColumn
	// Reduced：有多名候选人、取最大值归并的政党，按首次出现顺序
	Reduced []string
	// Dropped：被丢弃的非政党候选人列（不含 NonSignal）
	Dropped []string
}

// Reduce：丢弃汇总列与非政党列，多候选人政党取逐行最大值
// 约束：表中声明的每个政党都必须至少有一列，否则返回 ErrUnexpectedColumns
func Reduce(t *Table, parties *party.Table) (*Reduction, error) {
	red := &Reduction{}
	byParty := make(map[string][]int)
	var order []string
	for j, h := range t.Headers {
		if isNonSignal(h) {
			continue
		}
		c, err := parties.Classify(h)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", j+1, err)
		}
		switch c.Kind {
		case party.KindParty:
			if _, ok := byParty[c.Party]; !ok {
				order = append(order, c.Party)
			}
			byParty[c.Party] = append(byParty[c.Party], j)
			red.Columns = append(red.Columns, KeptColumn{Name: fmt.Sprintf("%s_%d", c.Party, j+1), Party: c.Party, Header: h})
		case party.KindIgnored:
			red.Dropped = append(red.Dropped, h)
			metrics.DroppedHeadersTotal.WithLabelValues("ignored").Inc()
		default:
			red.Dropped = append(red.Dropped, h)
			metrics.DroppedHeadersTotal.WithLabelValues("unrecognized").Inc()
			logger.L().Warn("header_dropped", "header", h, "column", j+1)
		}
	}
	var missing []string
	for _, name := range parties.Names() {
		if len(byParty[name]) == 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: no column for %s", ErrUnexpectedColumns, strings.Join(missing, ", "))
	}
	for _, name := range order {
		if len(byParty[name]) > 1 {
			red.Reduced = append(red.Reduced, name)
			metrics.ReducedPartiesTotal.Inc()
		}
	}
	red.Records = make([]VoteRecord, len(t.Rows))
	for i, row := range t.Rows {
		votes := make([]party.Vote, len(order))
		for k, name := range order {
			var best int64
			for n, j := range byParty[name] {
				if n == 0 || row.Values[j] > best {
					best = row.Values[j]
				}
			}
			votes[k] = party.Vote{Party: name, Votes: best}
		}
		red.Records[i] = VoteRecord{Location: row.Location, Votes: votes}
	}
	logger.L().Info("results_reduced", "locations", len(red.Records), "party_columns", len(red.Columns), "reduced", red.Reduced, "dropped", len(red.Dropped))
	return red, nil
}

// FromRecords：把归并结果还原成每党一列的表（用于复核与幂等校验）
func FromRecords(recs []VoteRecord) *Table {
	t := &Table{}
	if len(recs) == 0 {
		return t
	}
	for _, v := range recs[0].Votes {
		t.Headers = append(t.Headers, v.Party)
	}
	t.Rows = make([]Row, len(recs))
	for i, r := range recs {
		vals := make([]int64, len(r.Votes))
		for j, v := range r.Votes {
			vals[j] = v.Votes
		}
		t.Rows[i] = Row{Location: r.Location, Values: vals}
	}
	return t
}

func isNonSignal(h string) bool {
	for _, n := range NonSignal {
		if h == n {
			return true
		}
	}
	return false
}
