package models

import (
	"fmt"
	"strconv"
)

// Names of the standard per-workspace queries the collector runs. The
// analyzer looks results up by these keys.
const (
	QueryVolumeByTable    = "volume_by_table"
	QueryFrequencyByTable = "query_frequency"
	QueryHeartbeatCheck   = "heartbeat_check"
)

// Well-known column names in the standard query results.
const (
	ColumnDataType      = "DataType"
	ColumnBillableGB    = "BillableGB"
	ColumnTableName     = "TableName"
	ColumnQueriesPerDay = "AvgQueriesPerDay"
)

// Fallback column positions used when a result does not carry the expected
// header. Early workspace exports had a fixed column order and stored
// results from that era still round-trip through here, so the positions
// are kept even though a reordered result would read the wrong cell.
const (
	FallbackDataTypeIndex   = 0
	FallbackBillableGBIndex = 1
)

// QueryResultTable is one tabular query result: ordered column names plus
// positional rows. Cells are decoded as loose JSON values.
type QueryResultTable struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Empty reports whether the result carries no rows.
func (t QueryResultTable) Empty() bool {
	return len(t.Rows) == 0
}

// ColumnIndex returns the position of the named column, or the given
// fallback position when the column is absent.
func (t QueryResultTable) ColumnIndex(name string, fallback int) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return fallback
}

// FloatAt reads the cell at (row, col) as a float64. Out-of-range
// positions and non-numeric cells read as zero.
func (t QueryResultTable) FloatAt(row, col int) float64 {
	cell := t.cell(row, col)
	switch v := cell.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// StringAt reads the cell at (row, col) as a string. Out-of-range
// positions and nil cells read as the empty string.
func (t QueryResultTable) StringAt(row, col int) string {
	cell := t.cell(row, col)
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (t QueryResultTable) cell(row, col int) any {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return nil
	}
	return r[col]
}

// WorkspaceMetadata describes one Log Analytics workspace.
type WorkspaceMetadata struct {
	Name          string `json:"name"`
	ResourceGroup string `json:"resource_group"`
	RetentionDays int    `json:"retention_days"`
	SkuTier       string `json:"sku_tier"`
}

// QueryRef is a saved query text with its display name. Alert rules and
// dashboard tiles both reduce to this shape before analysis.
type QueryRef struct {
	DisplayName      string `json:"display_name"`
	QueryText        string `json:"query_text"`
	TargetsWorkspace bool   `json:"targets_workspace"`
}

// WorkspaceData couples one workspace's metadata with its named query
// results.
type WorkspaceData struct {
	Metadata WorkspaceMetadata           `json:"metadata"`
	Tables   map[string]QueryResultTable `json:"tables"`
}

// AnalysisInput is everything the engine consumes for one run. The
// collector finishes gathering all of it before analysis starts, so alert
// and dashboard gates apply across every workspace, not just the one being
// summed.
type AnalysisInput struct {
	Workspaces     []WorkspaceData `json:"workspaces"`
	AlertRules     []QueryRef      `json:"alert_rules"`
	DashboardTiles []QueryRef      `json:"dashboard_tiles"`
}
