package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericDecoding(t *testing.T) {
	var rec LeaveRecord
	// The backend mixes bare numbers, quoted numbers and nulls for the
	// same fields across responses.
	payload := `{
		"LeaveGrid_Lvm_ID_N": 3,
		"LeaveGrid_Ela_Tot": "2",
		"Ela_AirTicketReq_N": null
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))

	id, ok := rec.LeaveTypeID.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(3), id)

	days, ok := rec.TotalDays.Float64()
	require.True(t, ok)
	assert.Equal(t, 2.0, days)

	assert.False(t, rec.AirTicketReq.IsSet())
	assert.False(t, rec.TicketRequested())
}

func TestNumericParsing(t *testing.T) {
	_, ok := Numeric("").Float64()
	assert.False(t, ok)
	_, ok = Numeric("N/A").Float64()
	assert.False(t, ok)

	i, ok := Numeric("7.9").Int64()
	require.True(t, ok)
	assert.Equal(t, int64(7), i, "fractions truncate")
}

func TestEmployeeName(t *testing.T) {
	assert.Equal(t, "Jordan Smith", (&Employee{FullName: "Jordan Smith"}).Name())
	assert.Equal(t, "J. Smith", (&Employee{DisplayName: "J. Smith"}).Name())
	assert.Equal(t, "Unknown", (&Employee{}).Name())
	assert.Equal(t, "Unknown", (*Employee)(nil).Name())
}

func TestLeaveRecordIsApproved(t *testing.T) {
	assert.True(t, (&LeaveRecord{Status: "Approved"}).IsApproved())
	assert.False(t, (&LeaveRecord{Status: "approved"}).IsApproved(), "exact match only")
	assert.False(t, (&LeaveRecord{Status: "Pending"}).IsApproved())
}
