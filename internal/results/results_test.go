package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votemap/internal/party"
)

const fixture = `2025 Vancouver By-Election,,,,,,,,,,,,
Councillor - Results by Voting Place,,,,,,,,,,,,
Precinct,Times Cast,Undervotes,Overvotes,KIRBY-YUNG Sarah (ABC),ORR Jean (COPE),DOMINATO Lisa (ABC),HARDWICK Colleen (TEAM),MELLA Theodore (TEAM),CARR Adriane (GREEN),ZHOU Jean (OneCity),SMITH Jane (IND),Total Votes
(101) Britannia Community Centre,120,60,5,50,30,40,5,7,40,2,1,175
(102) Vancouver City Hall - Advance 1,40,17,0,10,20,12,3,1,8,9,0,63
(103) Vancouver City Hall - Advance 2,20,15,0,5,5,6,2,2,4,1,0,25
(307) Vote By Mail,300,145,0,100,90,80,20,30,70,60,5,455
Total,480,237,5,165,145,138,30,40,122,72,6,718
`

var cityHall = Normalizer{CityHall: "Vancouver City Hall"}

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNormalizerLocation(t *testing.T) {
	cases := []struct {
		raw, want string
	}{
		{"(101) Britannia Community Centre", "Britannia Community Centre"},
		{"  (307)   Vote By Mail ", "Vote By Mail"},
		{"(102) Vancouver City Hall - Advance 1", "Vancouver City Hall"},
		{"Vancouver City Hall Precinct 4", "Vancouver City Hall"},
		{"(A12) Killarney Secondary", "Killarney Secondary"},
		{"(204) 411 Seniors Centre", "411 Seniors Centre"},
		{"411 Seniors Centre", "411 Seniors Centre"},
		// already clean names are left alone
		{"Britannia Community Centre", "Britannia Community Centre"},
		{"Vote By Mail", "Vote By Mail"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := cityHall.Location(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizerLocationIsStable(t *testing.T) {
	for _, raw := range []string{
		"(204) 411 Seniors Centre",
		"(101) Britannia Community Centre",
		"(102) Vancouver City Hall - Advance 1",
		"2nd Avenue Hall",
	} {
		once, err := cityHall.Location(raw)
		require.NoError(t, err)
		twice, err := cityHall.Location(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, raw)
	}
}

func TestNormalizerRejectsEmptyNames(t *testing.T) {
	for _, raw := range []string{"", "   ", "(101)"} {
		_, err := cityHall.Location(raw)
		require.ErrorIs(t, err, ErrEmptyLocation, raw)
	}
}

func TestLoadAggregatesAndDropsTotalRow(t *testing.T) {
	tbl, err := Load(writeFixture(t, fixture), "", cityHall)
	require.NoError(t, err)

	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, "Britannia Community Centre", tbl.Rows[0].Location)
	assert.Equal(t, "Vancouver City Hall", tbl.Rows[1].Location)
	assert.Equal(t, "Vote By Mail", tbl.Rows[2].Location)
	assert.Equal(t, []int64{60, 32, 0, 15, 25, 18, 5, 3, 12, 10, 0, 88}, tbl.Rows[1].Values)
	assert.Equal(t, "Times Cast", tbl.Headers[0])
}

func TestParseSumsRowsSharingALocation(t *testing.T) {
	rows := [][]string{
		{"meta"},
		{"meta"},
		{"Precinct", "SIM Ken (ABC)", "ORR Jean (COPE)"},
		{"(101) City Hall", "50", "30"},
		{"(101) City Hall", "60", "20"},
		{"Total", "110", "50"},
	}
	tbl, err := Parse(rows, Normalizer{})
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, Row{Location: "City Hall", Values: []int64{110, 50}}, tbl.Rows[0])
}

func TestParseCellFormats(t *testing.T) {
	rows := [][]string{
		{"m"}, {"m"},
		{"Precinct", "A", "B", "C"},
		{"(1) Hall", " 1,204 ", "", "7.0"},
		{"Total", "0", "0", "0"},
	}
	tbl, err := Parse(rows, Normalizer{})
	require.NoError(t, err)
	assert.Equal(t, []int64{1204, 0, 7}, tbl.Rows[0].Values)
}

func TestParseFailsFast(t *testing.T) {
	header := []string{"Precinct", "A (ABC)", "B (COPE)"}
	cases := map[string]struct {
		rows [][]string
		want error
	}{
		"missing header": {[][]string{{"m"}, {"m"}}, ErrNoData},
		"only total row": {[][]string{{"m"}, {"m"}, header, {"Total", "1", "1"}}, ErrNoData},
		"short row":      {[][]string{{"m"}, {"m"}, header, {"(1) Hall", "1"}, {"Total", "1", "1"}}, ErrRowShape},
		"text count":     {[][]string{{"m"}, {"m"}, header, {"(1) Hall", "x", "1"}, {"Total", "1", "1"}}, ErrBadCount},
		"negative count": {[][]string{{"m"}, {"m"}, header, {"(1) Hall", "-4", "1"}, {"Total", "1", "1"}}, ErrBadCount},
		"fraction":       {[][]string{{"m"}, {"m"}, header, {"(1) Hall", "2.5", "1"}, {"Total", "1", "1"}}, ErrBadCount},
		"empty location": {[][]string{{"m"}, {"m"}, header, {"(1)", "1", "1"}, {"Total", "1", "1"}}, ErrEmptyLocation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(tc.rows, Normalizer{})
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReduceTakesMaxForMultiCandidateParties(t *testing.T) {
	tbl, err := Load(writeFixture(t, fixture), "", cityHall)
	require.NoError(t, err)

	red, err := Reduce(tbl, party.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"ABC", "TEAM"}, red.Reduced)
	assert.Equal(t, []string{"SMITH Jane (IND)"}, red.Dropped)
	var names []string
	for _, c := range red.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"ABC_4", "COPE_5", "ABC_6", "TEAM_7", "TEAM_8", "GREEN_9", "OneCity_10"}, names)

	want := []VoteRecord{
		{Location: "Britannia Community Centre", Votes: []party.Vote{{Party: "ABC", Votes: 50}, {Party: "COPE", Votes: 30}, {Party: "TEAM", Votes: 7}, {Party: "GREEN", Votes: 40}, {Party: "OneCity", Votes: 2}}},
		{Location: "Vancouver City Hall", Votes: []party.Vote{{Party: "ABC", Votes: 18}, {Party: "COPE", Votes: 25}, {Party: "TEAM", Votes: 5}, {Party: "GREEN", Votes: 12}, {Party: "OneCity", Votes: 10}}},
		{Location: "Vote By Mail", Votes: []party.Vote{{Party: "ABC", Votes: 100}, {Party: "COPE", Votes: 90}, {Party: "TEAM", Votes: 30}, {Party: "GREEN", Votes: 70}, {Party: "OneCity", Votes: 60}}},
	}
	if diff := cmp.Diff(want, red.Records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	for _, r := range red.Records {
		require.Len(t, r.Votes, party.Count)
		for _, v := range r.Votes {
			assert.GreaterOrEqual(t, v.Votes, int64(0))
		}
	}
	v, ok := red.Records[0].Get("GREEN")
	require.True(t, ok)
	assert.Equal(t, int64(40), v)
}

func TestReduceIsIdempotentOnCleanData(t *testing.T) {
	tbl, err := Load(writeFixture(t, fixture), "", cityHall)
	require.NoError(t, err)
	first, err := Reduce(tbl, party.Default())
	require.NoError(t, err)

	clean := FromRecords(first.Records)
	clean.Rows = Aggregate(clean.Rows)
	second, err := Reduce(clean, party.Default())
	require.NoError(t, err)

	if diff := cmp.Diff(first.Records, second.Records); diff != "" {
		t.Fatalf("second pass changed records (-first +second):\n%s", diff)
	}
	assert.Empty(t, second.Reduced)
	assert.Empty(t, second.Dropped)
	for _, r := range clean.Rows {
		name, err := cityHall.Location(r.Location)
		require.NoError(t, err)
		assert.Equal(t, r.Location, name)
	}
}

func TestReduceRequiresEveryParty(t *testing.T) {
	body := strings.Replace(fixture, "CARR Adriane (GREEN)", "CARR Adriane (IND)", 1)
	tbl, err := Load(writeFixture(t, body), "", cityHall)
	require.NoError(t, err)
	_, err = Reduce(tbl, party.Default())
	require.ErrorIs(t, err, ErrUnexpectedColumns)
	assert.Contains(t, err.Error(), "GREEN")
}

func TestReduceStrictTableRejectsUnknownHeader(t *testing.T) {
	tbl, err := Load(writeFixture(t, fixture), "", cityHall)
	require.NoError(t, err)
	strict := party.Default()
	strict.Strict = true
	_, err = Reduce(tbl, strict)
	require.ErrorIs(t, err, party.ErrUnrecognizedHeader)

	strict.Ignore = []string{"SMITH Jane (IND)"}
	red, err := Reduce(tbl, strict)
	require.NoError(t, err)
	assert.Equal(t, []string{"SMITH Jane (IND)"}, red.Dropped)
}

func TestCheckReportsTotalMismatches(t *testing.T) {
	tbl, err := Load(writeFixture(t, fixture), "", cityHall)
	require.NoError(t, err)
	assert.Empty(t, Check(tbl))

	body := strings.Replace(fixture, ",1,175\n", ",1,170\n", 1)
	tbl, err = Load(writeFixture(t, body), "", cityHall)
	require.NoError(t, err)
	got := Check(tbl)
	require.Len(t, got, 1)
	assert.Equal(t, Mismatch{Location: "Britannia Community Centre", Candidates: 175, Total: 170}, got[0])
}
