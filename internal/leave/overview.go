package leave

import (
	"sort"
	"strings"
	"time"

	"leavebot/internal/model"
)

// AirTicketFlagText renders the air-ticket flag of the first balance record
// (in policy-identifier order) for display.
func AirTicketFlagText(balances map[int64]*model.LeaveBalance) string {
	policyIDs := make([]int64, 0, len(balances))
	for id := range balances {
		policyIDs = append(policyIDs, id)
	}
	sort.Slice(policyIDs, func(i, j int) bool { return policyIDs[i] < policyIDs[j] })

	for _, id := range policyIDs {
		bal := balances[id]
		if bal == nil || !bal.AirTicket.IsSet() {
			continue
		}
		if bal.AirTicketEligible() {
			return "Eligible"
		}
		return "Not Eligible"
	}
	return "Unknown"
}

// Overview renders a ready-to-display summary of the employee's profile,
// leave and air ticket status, shown when a conversation opens. Profile
// lines with no upstream data are left out.
func Overview(emp *model.Employee, balances map[int64]*model.LeaveBalance, history []model.LeaveRecord, types []model.LeaveType) string {
	lines := []string{"Employee: " + emp.Name()}
	if nationality := emp.NationalityValue(); nationality != "" {
		lines = append(lines, "Nationality: "+nationality)
	}
	lines = append(lines, "Anniversary: "+AnniversaryISO(emp))

	probation := "In Progress"
	if ProbationCompleted(emp, time.Now()) {
		probation = "Completed"
	}
	lines = append(lines, "Probation: "+probation)
	lines = append(lines, "Air Ticket Eligibility: "+AirTicketFlagText(balances))
	if reset := NextBalanceReset(types); reset != "" {
		lines = append(lines, "Next Balance Reset: "+reset)
	}

	return strings.Join(lines, "\n") + "\n\n" + FormatSummary(LeavesByType(history, types))
}
