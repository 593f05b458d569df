package model

// LeaveType is one record from the leave-type endpoint. PolicyDetailID keys
// the balance lookup for this type.
type LeaveType struct {
	ID               Numeric `json:"Lvm_ID_N"`
	Code             string  `json:"Lvm_Code_V"`
	Description      string  `json:"Lvm_Description_V"`
	PolicyDetailID   Numeric `json:"Lpd_ID_N"`
	AnniversaryDate  string  `json:"Emp_AnnivDate_D"`
	AirTicket        Numeric `json:"Airticket"`
	AirTicketPercent Numeric `json:"AirTicketPercent"`
}

// LeaveRecord is one leave application from the history endpoint. Code is
// not sent by the backend; the HR client joins it in from the leave-type
// list via LeaveTypeID.
type LeaveRecord struct {
	LeaveTypeID  Numeric `json:"LeaveGrid_Lvm_ID_N"`
	Code         string  `json:"LeaveGrid_Lvm_Code_V"`
	Description  string  `json:"LeaveGrid_Lvm_Description_V"`
	Status       string  `json:"LeaveGrid_Status"`
	FromDate     string  `json:"LeaveGrid_Ela_FromDate_D"`
	ToDate       string  `json:"LeaveGrid_Ela_ToDate_D"`
	TotalDays    Numeric `json:"LeaveGrid_Ela_Tot"`
	AppliedDate  string  `json:"LeaveGrid_Ela_AppDate_D"`
	TravelDate   string  `json:"LeaveGrid_dtTravelDate"`
	AirTicketReq Numeric `json:"Ela_AirTicketReq_N"`
}

// StatusApproved is the exact status string the backend uses for approved
// applications. Totals and summaries filter on it verbatim.
const StatusApproved = "Approved"

// IsApproved matches the status exactly, the way the backend reports it.
func (r *LeaveRecord) IsApproved() bool {
	return r.Status == StatusApproved
}

// TicketRequested reports whether this application claimed an air ticket.
func (r *LeaveRecord) TicketRequested() bool {
	return r.AirTicketReq.String() == "1"
}

// LeaveBalance is the single balance record for one
// (employee, policy-detail, date-range) combination. A nil *LeaveBalance
// means the backend had no data for the combination.
type LeaveBalance struct {
	Balance          Numeric `json:"Balance"`
	AirTicket        Numeric `json:"Airticket"`
	AirTicketPercent Numeric `json:"AirTicketPercent"`
	AnniversaryDate  string  `json:"Emp_AnnivDate_D"`
}

// AirTicketEligible reports whether this leave type grants air tickets.
func (b *LeaveBalance) AirTicketEligible() bool {
	return b != nil && b.AirTicket.String() == "1"
}

// AirTicketPercentValue returns the eligible percentage, zero when unset or
// unparseable.
func (b *LeaveBalance) AirTicketPercentValue() float64 {
	if b == nil {
		return 0
	}
	f, ok := b.AirTicketPercent.Float64()
	if !ok {
		return 0
	}
	return f
}
