package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSources(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "simple select",
			sql:  "select * from users",
			want: []string{"USERS"},
		},
		{
			name: "from and join",
			sql:  "select * from DB.SCH.TBL a join DB.SCH.OTHER b on a.id=b.id",
			want: []string{"DB.SCH.OTHER", "DB.SCH.TBL"},
		},
		{
			name: "no sources",
			sql:  "select 1",
			want: []string{NoSourcesFound},
		},
		{
			name: "empty statement",
			sql:  "",
			want: []string{NoSourcesFound},
		},
		{
			name: "procedure call",
			sql:  "CALL my_proc(1,2)",
			want: []string{"MY_PROC(1,2)"},
		},
		{
			name: "multiple joins deduplicated",
			sql:  "select * from a join b on 1=1 join b on 2=2 join c on 3=3",
			want: []string{"A", "B", "C"},
		},
		{
			name: "dot notation passes through as one token",
			sql:  "select x from warehouse.public.orders",
			want: []string{"WAREHOUSE.PUBLIC.ORDERS"},
		},
		{
			name: "trailing keyword yields no reference",
			sql:  "select * from",
			want: []string{NoSourcesFound},
		},
		{
			name: "subquery sources are collected too",
			sql:  "select * from (select id from inner_tbl) t",
			want: []string{"(SELECT", "INNER_TBL)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSources(tt.sql))
		})
	}
}

func TestExtractSourcesCaseInsensitive(t *testing.T) {
	lower := ExtractSources("select * from t")
	upper := ExtractSources("SELECT * FROM T")
	assert.Equal(t, upper, lower)
	assert.Equal(t, []string{"T"}, lower)
}

func TestExtractSourcesIdempotent(t *testing.T) {
	sql := "select * from a join b on a.id = b.id"
	first := ExtractSources(sql)
	second := ExtractSources(sql)
	assert.Equal(t, first, second)
}

func TestExtractSourcesNeverEmpty(t *testing.T) {
	for _, sql := range []string{"", "   ", "select 1", "update t_set set x = 1", "from", "FROM  "} {
		got := ExtractSources(sql)
		assert.NotEmpty(t, got, "input %q", sql)
	}
}

// The keyword match is a raw substring match, not word-boundary aware.
// Identifiers containing FROM/JOIN/CALL as a substring produce spurious
// split points. This is a documented quirk of the extractor, preserved for
// compatibility with existing consumers; these tests pin the behavior.
func TestExtractSourcesSubstringQuirks(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "identifier containing FROM splits mid-word",
			sql:  "select * from custom_from_table",
			// "CUSTOM_FROM_TABLE" is split at both FROM occurrences:
			// the fragment after the first yields "CUSTOM_", the fragment
			// after the second yields "_TABLE".
			want: []string{"CUSTOM_", "_TABLE"},
		},
		{
			name: "column containing CALL triggers a capture",
			sql:  "select recall_rate from metrics",
			want: []string{"METRICS", "_RATE"},
		},
		{
			name: "keyword inside string literal is still matched",
			sql:  "select 'from nowhere'",
			want: []string{"NOWHERE'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSources(tt.sql))
		})
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "A,B", Join([]string{"A", "B"}))
	assert.Equal(t, NoSourcesFound, Join([]string{NoSourcesFound}))
	assert.Equal(t, "", Join(nil))
}
