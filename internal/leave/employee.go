package leave

import (
	"time"

	"leavebot/internal/model"
)

// YearsOfService returns whole years elapsed since the date of joining,
// falling back to the service-base date. Zero when neither parses.
func YearsOfService(emp *model.Employee, now time.Time) int {
	if emp == nil {
		return 0
	}
	raw := emp.DateOfJoining
	if raw == "" {
		raw = emp.ServiceBaseDate
	}
	doj, ok := parseProfileDate(raw)
	if !ok {
		return 0
	}
	days := int(now.Sub(doj).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days / 365
}

// ContactSummary flattens the employee profile into the shape the
// employee_contact tool exposes.
func ContactSummary(emp *model.Employee) model.Contact {
	if emp == nil {
		return model.Contact{}
	}
	return model.Contact{
		Name:         emp.FullName,
		Email:        emp.Email,
		Mobile:       emp.Mobile,
		Department:   emp.Department,
		Designation:  emp.Designation,
		EmployeeCode: emp.Code,
	}
}

// ManagerContact builds the manager's contact card from the manager's own
// profile record. When the record is nil (no reporting manager, or the
// lookup failed) the card keeps the display name from the employee record
// and leaves the contact fields empty.
func ManagerContact(mgr *model.Employee, fallbackName string) model.Contact {
	if mgr == nil {
		return model.Contact{Name: fallbackName}
	}
	name := mgr.FullName
	if name == "" {
		name = fallbackName
	}
	return model.Contact{
		Name:         name,
		Email:        mgr.Email,
		Mobile:       mgr.Mobile,
		Designation:  mgr.Designation,
		EmployeeCode: mgr.Code,
	}
}

// ProbationCompleted reports whether probation has ended. Missing or
// unparseable end dates count as completed.
func ProbationCompleted(emp *model.Employee, now time.Time) bool {
	if emp == nil || emp.ProbationEndDate == "" {
		return true
	}
	end, ok := parseProfileDate(emp.ProbationEndDate)
	if !ok {
		return true
	}
	return now.After(end)
}

// AnniversaryISO normalizes the employee anniversary date to ISO form,
// returning the raw value when the layout is unexpected.
func AnniversaryISO(emp *model.Employee) string {
	if emp == nil || emp.AnniversaryDate == "" {
		return "Unknown"
	}
	if t, ok := parseProfileDate(emp.AnniversaryDate); ok {
		return t.Format(layoutISODate)
	}
	return emp.AnniversaryDate
}
