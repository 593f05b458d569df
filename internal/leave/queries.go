package leave

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"leavebot/internal/model"
)

// TotalLeaveTaken sums approved leave days for a code, description or
// keyword group. An empty argument sums across every leave type.
// Non-numeric day counts are skipped, not errored.
func TotalLeaveTaken(history []model.LeaveRecord, types []model.LeaveType, codeOrGroup string) float64 {
	codes := resolveCodes(codeOrGroup, types)

	var total float64
	for i := range history {
		rec := &history[i]
		if !rec.IsApproved() {
			continue
		}
		if codes != nil {
			if _, ok := codes[rec.Code]; !ok {
				continue
			}
		}
		if days, ok := rec.TotalDays.Float64(); ok {
			total += days
		}
	}
	return total
}

// LeavesByType groups approved leave days by human-readable description.
// A code with no matching leave type keeps the code itself as its label.
func LeavesByType(history []model.LeaveRecord, types []model.LeaveType) map[string]float64 {
	m := buildMappings(types)
	result := make(map[string]float64)
	for i := range history {
		rec := &history[i]
		if !rec.IsApproved() || rec.Code == "" {
			continue
		}
		days, _ := rec.TotalDays.Float64()
		label := rec.Code
		if desc, ok := m.codeToDesc[rec.Code]; ok && desc != "" {
			label = desc
		}
		result[label] += days
	}
	return result
}

// FormatSummary renders a LeavesByType result for display, with
// descriptions in stable order.
func FormatSummary(summary map[string]float64) string {
	if len(summary) == 0 {
		return "No approved leave records found."
	}
	labels := make([]string, 0, len(summary))
	for label := range summary {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	lines := []string{"Leave Summary:"}
	for _, label := range labels {
		lines = append(lines, fmt.Sprintf("- %s: %.1f days taken", label, summary[label]))
	}
	return strings.Join(lines, "\n")
}

// TypeOption is one entry of the available-leave-types listing.
type TypeOption struct {
	Code        string `json:"code"`
	Description string `json:"desc"`
}

// AvailableTypes lists every leave type with a non-empty code.
func AvailableTypes(types []model.LeaveType) []TypeOption {
	options := make([]TypeOption, 0, len(types))
	for _, lt := range types {
		if lt.Code == "" {
			continue
		}
		options = append(options, TypeOption{Code: lt.Code, Description: lt.Description})
	}
	return options
}

// TypeBalance resolves a code or description to its policy-detail
// identifier and returns the remaining balance. ok is false when the
// argument resolves to no known leave type, the balance record is missing,
// or its balance field is not numeric.
func TypeBalance(balances map[int64]*model.LeaveBalance, types []model.LeaveType, codeOrDesc string) (float64, bool) {
	m := buildMappings(types)

	policyID, ok := m.codeToPolicy[codeOrDesc]
	if !ok {
		code, found := m.descToCode[codeOrDesc]
		if !found {
			return 0, false
		}
		if policyID, ok = m.codeToPolicy[code]; !ok {
			return 0, false
		}
	}

	bal := balances[policyID]
	if bal == nil {
		return 0, false
	}
	return bal.Balance.Float64()
}

// OnLeave reports whether any approved record's [from, to] range contains
// the given day, inclusive on both ends. The comparison is by calendar date
// in the caller's zone; record dates parse as UTC midnights. Records with
// unparseable dates are skipped.
func OnLeave(history []model.LeaveRecord, day time.Time) bool {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	for i := range history {
		rec := &history[i]
		if !rec.IsApproved() {
			continue
		}
		from, okFrom := parseRecordDate(dateOnly(rec.FromDate))
		to, okTo := parseRecordDate(dateOnly(rec.ToDate))
		if !okFrom || !okTo {
			continue
		}
		if !day.Before(from) && !day.After(to) {
			return true
		}
	}
	return false
}

// RecentLeave is one entry of the recent-leaves listing.
type RecentLeave struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	From        string `json:"from"`
	To          string `json:"to"`
	Status      string `json:"status"`
}

// Recent returns up to count approved records sorted by from-date
// descending. Unparseable from-dates sort as the earliest possible date.
func Recent(history []model.LeaveRecord, count int) []RecentLeave {
	approved := make([]model.LeaveRecord, 0, len(history))
	for _, rec := range history {
		if rec.IsApproved() {
			approved = append(approved, rec)
		}
	}
	sort.SliceStable(approved, func(i, j int) bool {
		ti, _ := parseRecordDate(approved[i].FromDate)
		tj, _ := parseRecordDate(approved[j].FromDate)
		return ti.After(tj)
	})

	if count < 0 {
		count = 0
	}
	if count > len(approved) {
		count = len(approved)
	}
	result := make([]RecentLeave, 0, count)
	for _, rec := range approved[:count] {
		result = append(result, RecentLeave{
			Code:        rec.Code,
			Description: rec.Description,
			From:        dateOnly(rec.FromDate),
			To:          dateOnly(rec.ToDate),
			Status:      rec.Status,
		})
	}
	return result
}

// Unapproved returns records whose status is anything but approved,
// compared case-insensitively after trimming. A non-empty status narrows
// the result to an exact case-insensitive status match.
func Unapproved(history []model.LeaveRecord, status string) []model.LeaveRecord {
	status = strings.TrimSpace(status)
	result := make([]model.LeaveRecord, 0)
	for _, rec := range history {
		recStatus := strings.TrimSpace(rec.Status)
		if strings.EqualFold(recStatus, model.StatusApproved) {
			continue
		}
		if status != "" && !strings.EqualFold(recStatus, status) {
			continue
		}
		result = append(result, rec)
	}
	return result
}

// NextBalanceReset returns the next reset date, taken from the first leave
// type carrying an anniversary date. Falls back to the raw string when the
// date has an unexpected layout.
func NextBalanceReset(types []model.LeaveType) string {
	for _, lt := range types {
		if lt.AnniversaryDate == "" {
			continue
		}
		if t, ok := parseProfileDate(lt.AnniversaryDate); ok {
			return t.Format(layoutISODate)
		}
		return lt.AnniversaryDate
	}
	return ""
}
