package main

import (
	"bytes"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votemap/internal/geo"
	"votemap/internal/pipeline"
	"votemap/internal/rank"
	"votemap/internal/results"
)

func TestReport(t *testing.T) {
	row := rank.RankedRow{Location: "Britannia Community Centre"}
	parties := []string{"OneCity", "TEAM", "COPE", "GREEN", "ABC"}
	votes := []int64{2, 7, 30, 40, 50}
	var acc int64
	for i := range row.Ranks {
		acc += votes[i]
		row.Ranks[i] = rank.Entry{Party: parties[i], Votes: votes[i], Value: acc}
	}
	res := &pipeline.Result{
		Reduction:  &results.Reduction{Reduced: []string{"ABC", "TEAM"}, Dropped: []string{"SMITH Jane (IND)"}},
		Mismatches: []results.Mismatch{{Location: "Britannia Community Centre", Candidates: 170, Total: 175}},
		Ranked:     []rank.RankedRow{row},
		Report:     &geo.Report{Matched: 1},
		Clearance:  &geo.Clearance{InsideBound: true, Nearest: "Britannia Community Centre", DistanceMeters: 90},
		Sites:      []geo.Site{{RankedRow: row, Point: orb.Point{-123.07, 49.27}, Located: true}},
	}
	var buf bytes.Buffer
	require.NoError(t, report(&buf, res))
	out := buf.String()
	assert.Contains(t, out, "OneCity 2")
	assert.Contains(t, out, "2/9/39/79/129")
	assert.Contains(t, out, "reduced parties: ABC, TEAM")
	assert.Contains(t, out, "dropped columns: SMITH Jane (IND)")
	assert.Contains(t, out, "total mismatch: Britannia Community Centre candidates=170 total=175")
	assert.Contains(t, out, "matched 1 of 1 locations")
	assert.Contains(t, out, "unmatched: none")
	assert.Contains(t, out, "warning: override point is 90 m from Britannia Community Centre")
}
