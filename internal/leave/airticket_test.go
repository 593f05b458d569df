package leave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leavebot/internal/model"
)

func TestNextAirTicketEligibility(t *testing.T) {
	tests := []struct {
		name      string
		anniv     string
		lastClaim string
		want      string
		ok        bool
	}{
		{name: "day-month anniversary", anniv: "10-Aug-2023", want: "2025-08-09", ok: true},
		{name: "iso anniversary", anniv: "2023-08-10", want: "2025-08-09", ok: true},
		{name: "last claim wins over anniversary", anniv: "10-Aug-2023",
			lastClaim: "2024-01-15T00:00:00", want: "2026-01-14", ok: true},
		{name: "unparseable claim falls back to anniversary", anniv: "10-Aug-2023",
			lastClaim: "soon", want: "2025-08-09", ok: true},
		{name: "unparseable anniversary", anniv: "next year", ok: false},
		{name: "empty anniversary", anniv: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextAirTicketEligibility(tt.anniv, tt.lastClaim)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAirTicketEligibility(t *testing.T) {
	balances := map[int64]*model.LeaveBalance{
		13: {AirTicket: "1", AirTicketPercent: "100", AnniversaryDate: "10-Aug-2023"},
		11: {AirTicket: "0"},
	}
	history := []model.LeaveRecord{
		{AirTicketReq: "1", TravelDate: "2024-01-15T00:00:00"},
		{AirTicketReq: "1", FromDate: "2023-06-01T00:00:00"},
		{AirTicketReq: "0", TravelDate: "2026-02-01T00:00:00"},
	}

	info := AirTicketEligibility(balances, history)
	assert.True(t, info.Eligible)
	assert.Equal(t, 100.0, info.Percent)
	assert.Equal(t, "2024-01-15T00:00:00", info.LastClaimDate)
	assert.Equal(t, "2026-01-14", info.NextEligibleDate)
}

func TestAirTicketEligibilityNoneEligible(t *testing.T) {
	balances := map[int64]*model.LeaveBalance{
		11: {AirTicket: "0"},
		12: nil,
	}
	info := AirTicketEligibility(balances, nil)
	assert.False(t, info.Eligible)
	assert.Empty(t, info.NextEligibleDate)
}

func TestAirTicketEligibilityNoClaims(t *testing.T) {
	balances := map[int64]*model.LeaveBalance{
		11: {AirTicket: "1", AnniversaryDate: "2023-08-10"},
	}
	info := AirTicketEligibility(balances, nil)
	assert.True(t, info.Eligible)
	assert.Empty(t, info.LastClaimDate)
	assert.Equal(t, "2025-08-09", info.NextEligibleDate)
}

func TestAirTicketFlagText(t *testing.T) {
	assert.Equal(t, "Eligible", AirTicketFlagText(map[int64]*model.LeaveBalance{
		11: {AirTicket: "1"},
	}))
	assert.Equal(t, "Not Eligible", AirTicketFlagText(map[int64]*model.LeaveBalance{
		11: {AirTicket: "0"},
	}))
	assert.Equal(t, "Unknown", AirTicketFlagText(map[int64]*model.LeaveBalance{
		11: {},
		12: nil,
	}))
	assert.Equal(t, "Unknown", AirTicketFlagText(nil))
}
