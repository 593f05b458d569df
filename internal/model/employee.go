package model

// Employee is one profile record from the employee-details endpoint. The
// endpoint returns a single-element list; field names follow the upstream
// column naming. All date fields are raw strings and are parsed lazily by
// the derived-query layer, since the backend mixes "02-Jan-2006" and
// "2006-01-02" formats.
type Employee struct {
	ID               Numeric `json:"Emp_ID_N"`
	FullName         string  `json:"Emp_EFullName_V"`
	DisplayName      string  `json:"Emp_EDisplayName_V"`
	Email            string  `json:"Emp_EmailID_V"`
	Mobile           string  `json:"Emp_Mobile_V"`
	Department       string  `json:"Dpm_Desc_V"`
	Designation      string  `json:"Dsm_Desc_V"`
	Code             string  `json:"Emp_Code_V"`
	DateOfJoining    string  `json:"Emp_DOJ_D"`
	ServiceBaseDate  string  `json:"Emp_ESBDate_D"`
	AnniversaryDate  string  `json:"Emp_AnnivDate_D"`
	ReportingToID    Numeric `json:"Emp_ReportingToID_N"`
	ReportingToName  string  `json:"Emp_EmployeeReportsDesc_V"`
	ProbationEndDate string  `json:"Emp_ProbationEndDate_D"`
	Nationality      string  `json:"Cnt_Nationality_V"`
	AltNationality   string  `json:"Emp_Nationality_V"`
}

// Name returns the best display name available.
func (e *Employee) Name() string {
	if e == nil {
		return "Unknown"
	}
	if e.FullName != "" {
		return e.FullName
	}
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return "Unknown"
}

// NationalityValue falls back across the two nationality columns.
func (e *Employee) NationalityValue() string {
	if e == nil {
		return ""
	}
	if e.Nationality != "" {
		return e.Nationality
	}
	return e.AltNationality
}

// Contact is the flattened contact summary exposed by the employee_contact
// and manager_contact tools.
type Contact struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	Department   string `json:"department,omitempty"`
	Designation  string `json:"designation"`
	EmployeeCode string `json:"employee_code"`
}
