package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"leavebot/internal/model"
)

func TestYearsOfService(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		emp  *model.Employee
		want int
	}{
		{name: "day-month joining date",
			emp: &model.Employee{DateOfJoining: "15-Mar-2019"}, want: 7},
		{name: "iso joining date",
			emp: &model.Employee{DateOfJoining: "2019-03-15"}, want: 7},
		{name: "falls back to service base date",
			emp: &model.Employee{ServiceBaseDate: "01-Jan-2024"}, want: 2},
		{name: "unparseable", emp: &model.Employee{DateOfJoining: "unknown"}, want: 0},
		{name: "future date", emp: &model.Employee{DateOfJoining: "2030-01-01"}, want: 0},
		{name: "nil employee", emp: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, YearsOfService(tt.emp, now))
		})
	}
}

func TestContactSummary(t *testing.T) {
	emp := &model.Employee{
		FullName:    "Jordan Smith",
		Email:       "jordan@example.com",
		Mobile:      "0501234567",
		Department:  "Finance",
		Designation: "Accountant",
		Code:        "EMP-042",
	}
	got := ContactSummary(emp)
	assert.Equal(t, model.Contact{
		Name:         "Jordan Smith",
		Email:        "jordan@example.com",
		Mobile:       "0501234567",
		Department:   "Finance",
		Designation:  "Accountant",
		EmployeeCode: "EMP-042",
	}, got)

	assert.Equal(t, model.Contact{}, ContactSummary(nil))
}

func TestManagerContact(t *testing.T) {
	mgr := &model.Employee{FullName: "Alex Lee", Email: "alex@example.com"}
	got := ManagerContact(mgr, "fallback name")
	assert.Equal(t, "Alex Lee", got.Name)
	assert.Equal(t, "alex@example.com", got.Email)

	// Nil manager record keeps only the display name from the employee
	// profile.
	got = ManagerContact(nil, "Alex Lee")
	assert.Equal(t, model.Contact{Name: "Alex Lee"}, got)

	got = ManagerContact(&model.Employee{Email: "a@b.c"}, "From Profile")
	assert.Equal(t, "From Profile", got.Name)
}

func TestProbationCompleted(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	assert.True(t, ProbationCompleted(&model.Employee{ProbationEndDate: "01-Jan-2020"}, now))
	assert.False(t, ProbationCompleted(&model.Employee{ProbationEndDate: "2026-12-31"}, now))
	assert.True(t, ProbationCompleted(&model.Employee{}, now))
	assert.True(t, ProbationCompleted(nil, now))
}

func TestAnniversaryISO(t *testing.T) {
	assert.Equal(t, "2023-08-10", AnniversaryISO(&model.Employee{AnniversaryDate: "10-Aug-2023"}))
	assert.Equal(t, "2023-08-10", AnniversaryISO(&model.Employee{AnniversaryDate: "2023-08-10"}))
	assert.Equal(t, "someday", AnniversaryISO(&model.Employee{AnniversaryDate: "someday"}))
	assert.Equal(t, "Unknown", AnniversaryISO(nil))
}
