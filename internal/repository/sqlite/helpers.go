package sqlite

import (
	"database/sql"
	"time"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToUint16Ptr converts sql.NullInt64 to *uint16
func nullToUint16Ptr(ni sql.NullInt64) *uint16 {
	if !ni.Valid {
		return nil
	}
	v := uint16(ni.Int64)
	return &v
}

// uint16PtrToNull converts *uint16 to sql.NullInt64
func uint16PtrToNull(v *uint16) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// ============================================================================
// Time Helpers
// ============================================================================

// timeLayout sorts lexically in the same order as chronologically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
