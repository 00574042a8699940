// 包 rank：按地点把五个政党的票数升序排名，并做累加（堆叠）变换供分层气泡渲染
package rank

import (
	"errors"
	"fmt"
	"sort"

	"votemap/internal/party"
	"votemap/internal/results"
)

var (
	ErrPartyCount   = errors.New("rank: wrong number of parties")
	ErrUnknownParty = errors.New("rank: party has no color")
)

// Entry：某一名次上的政党
// 约束：Votes 为原始票数；Value 为本名次及以下所有名次票数之和（堆叠值）
type Entry struct {
	Party string
	Color string
	Votes int64
	Value int64
}

// RankedRow：一个地点的排名结果，Ranks[0] 为票数最少的政党（第 1 名次）
type RankedRow struct {
	Location string
	Ranks    [party.Count]Entry
}

// Rank：单个地点排名
// 约束：稳定排序，票数相同时保持原始列顺序（政党在结果表头中首次出现的顺序）
func Rank(rec results.VoteRecord, parties *party.Table) (RankedRow, error) {
	out := RankedRow{Location: rec.Location}
	if len(rec.Votes) != party.Count {
		return out, fmt.Errorf("%w: %q has %d, want %d", ErrPartyCount, rec.Location, len(rec.Votes), party.Count)
	}
	votes := append([]party.Vote(nil), rec.Votes...)
	sort.SliceStable(votes, func(i, j int) bool { return votes[i].Votes < votes[j].Votes })
	var acc int64
	for n, v := range votes {
		color, ok := parties.Color(v.Party)
		if !ok {
			return out, fmt.Errorf("%w: %q", ErrUnknownParty, v.Party)
		}
		acc += v.Votes
		out.Ranks[n] = Entry{Party: v.Party, Color: color, Votes: v.Votes, Value: acc}
	}
	return out, nil
}

// All：批量排名，任一地点失败即返回
func All(recs []results.VoteRecord, parties *party.Table) ([]RankedRow, error) {
	out := make([]RankedRow, 0, len(recs))
	for _, rec := range recs {
		r, err := Rank(rec, parties)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Total：该地点五个政党的票数之和（即最高名次的堆叠值）
func (r RankedRow) Total() int64 {
	return r.Ranks[party.Count-1].Value
}
