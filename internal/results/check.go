package results

import "votemap/internal/logger"

// Mismatch：候选人列之和与合计列不一致的地点
type Mismatch struct {
	Location   string
	Candidates int64
	Total      int64
}

// Check：核对每个地点所有候选人列之和是否等于 Total Votes
// 约束：仅报告不中断；缺少 Total Votes 列时返回空
func Check(t *Table) []Mismatch {
	total, ok := t.Column(TotalVotesColumn)
	if !ok {
		return nil
	}
	var out []Mismatch
	for _, r := range t.Rows {
		var sum int64
		for j, h := range t.Headers {
			if isNonSignal(h) {
				continue
			}
			sum += r.Values[j]
		}
		if sum != r.Values[total] {
			out = append(out, Mismatch{Location: r.Location, Candidates: sum, Total: r.Values[total]})
			logger.L().Warn("total_mismatch", "location", r.Location, "candidates", sum, "total", r.Values[total])
		}
	}
	return out
}
