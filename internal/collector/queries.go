package collector

import (
	"fmt"

	"github.com/ppiankov/logspectre/internal/models"
)

// standardQueries is the per-workspace query set, in execution order.
var standardQueries = []string{
	models.QueryVolumeByTable,
	models.QueryFrequencyByTable,
	models.QueryHeartbeatCheck,
}

// QueryNames returns the names of the standard per-workspace queries.
func QueryNames() []string {
	names := make([]string, len(standardQueries))
	copy(names, standardQueries)
	return names
}

// QueryText returns the KQL behind a named saved query, parameterized by
// the lookback window in days.
func QueryText(name string, lookbackDays int) (string, bool) {
	if lookbackDays < 1 {
		lookbackDays = 1
	}

	switch name {
	case models.QueryVolumeByTable:
		return fmt.Sprintf(`Usage
| where TimeGenerated > ago(%dd)
| where IsBillable == true
| summarize BillableGB = sum(Quantity) / 1024.0 by DataType
| sort by BillableGB desc`, lookbackDays), true

	case models.QueryFrequencyByTable:
		return fmt.Sprintf(`LAQueryLogs
| where TimeGenerated > ago(%dd)
| extend TableName = trim(" ", tostring(split(QueryText, "|")[0]))
| where isnotempty(TableName)
| summarize AvgQueriesPerDay = todouble(count()) / %d.0 by TableName`, lookbackDays, lookbackDays), true

	case models.QueryHeartbeatCheck:
		return `Heartbeat
| where TimeGenerated > ago(1h)
| summarize LastBeat = max(TimeGenerated) by Computer
| count`, true
	}

	return "", false
}
