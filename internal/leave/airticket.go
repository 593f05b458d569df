package leave

import (
	"sort"

	"leavebot/internal/model"
)

// airTicketPeriodDays is the fixed eligibility period between air ticket
// claims: two years counted as 730 days.
const airTicketPeriodDays = 730

// AirTicketInfo is the payload of the air_ticket_info tool.
type AirTicketInfo struct {
	Eligible         bool    `json:"eligible"`
	Percent          float64 `json:"percent,omitempty"`
	NextEligibleDate string  `json:"next_eligible_date,omitempty"`
	LastClaimDate    string  `json:"last_claim_date,omitempty"`
}

// AirTicketEligibility scans the balance records for the first leave type
// flagged air-ticket eligible (in policy-identifier order, so the scan is
// deterministic) and derives percentage, last claim and next eligible date.
func AirTicketEligibility(balances map[int64]*model.LeaveBalance, history []model.LeaveRecord) AirTicketInfo {
	policyIDs := make([]int64, 0, len(balances))
	for id := range balances {
		policyIDs = append(policyIDs, id)
	}
	sort.Slice(policyIDs, func(i, j int) bool { return policyIDs[i] < policyIDs[j] })

	var eligible *model.LeaveBalance
	for _, id := range policyIDs {
		if balances[id].AirTicketEligible() {
			eligible = balances[id]
			break
		}
	}
	if eligible == nil {
		return AirTicketInfo{Eligible: false}
	}

	lastClaim := lastTicketClaimDate(history)
	info := AirTicketInfo{
		Eligible:      true,
		Percent:       eligible.AirTicketPercentValue(),
		LastClaimDate: lastClaim,
	}
	if eligible.AnniversaryDate != "" {
		if next, ok := NextAirTicketEligibility(eligible.AnniversaryDate, lastClaim); ok {
			info.NextEligibleDate = next
		}
	}
	return info
}

// lastTicketClaimDate finds the most recent ticket-linked claim: among
// records flagged as ticket-requested, the travel date (falling back to the
// from-date), taking the lexicographically latest ISO string. Upstream dates
// are zero-padded ISO, so string order is date order.
func lastTicketClaimDate(history []model.LeaveRecord) string {
	var last string
	for i := range history {
		rec := &history[i]
		if !rec.TicketRequested() {
			continue
		}
		date := rec.TravelDate
		if date == "" {
			date = rec.FromDate
		}
		if date != "" && date > last {
			last = date
		}
	}
	return last
}

// NextAirTicketEligibility computes the next eligible date: the last claim
// date when one exists, otherwise the anniversary date, plus the fixed
// two-year period. The anniversary is accepted as "02-Jan-2006" or
// "2006-01-02"; ok is false when it parses as neither.
func NextAirTicketEligibility(annivDate, lastClaimDate string) (string, bool) {
	anniv, ok := parseProfileDate(annivDate)
	if !ok {
		return "", false
	}
	base := anniv
	if lastClaimDate != "" {
		if claimed, parsed := parseRecordDate(lastClaimDate); parsed {
			base = claimed
		}
	}
	return base.AddDate(0, 0, airTicketPeriodDays).Format(layoutISODate), true
}
