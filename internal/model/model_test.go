package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"Run", &Run{}, "runs"},
		{"StageTiming", &StageTiming{}, "stage_timings"},
		{"MonthStat", &MonthStat{}, "month_stats"},
		{"StreamlineRecord", &StreamlineRecord{}, "streamlines"},
		{"ImpactRecord", &ImpactRecord{}, "impacts"},
		{"DiagnosticRecord", &DiagnosticRecord{}, "diagnostics"},
		{"FrameRecord", &FrameRecord{}, "ocean_frames"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModels_CoverEveryTable(t *testing.T) {
	assert.Len(t, DatabaseModels, 7)
	assert.Equal(t, DatabaseModels, DatabaseModelsSQLite)
}
