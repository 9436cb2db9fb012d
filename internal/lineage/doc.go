// Package lineage provides lightweight SQL source-lineage extraction.
//
// The extractor identifies which tables, views, and procedures a statement
// references by inspecting the tokens adjacent to FROM, JOIN, and CALL. It
// deliberately trades parsing correctness for speed and robustness: it is a
// single-pass keyword scanner that never fails, not a SQL parser. No
// validation against an actual schema occurs.
//
// # Basic Usage
//
//	sources := lineage.ExtractSources("select * from db.sch.orders o join db.sch.lines l on o.id = l.oid")
//	// sources == []string{"DB.SCH.LINES", "DB.SCH.ORDERS"}
//
// A statement with no recognizable references yields the sentinel
// lineage.NoSourcesFound rather than an empty list, so the result is always
// displayable as-is.
package lineage
