package model

import (
	"time"
)

// MonthlyStats is the snapshot persisted under "stats-YYYY-MM".
type MonthlyStats struct {
	Patients     int     `json:"patients"`
	Revenue      float64 `json:"revenue"`
	Appointments int     `json:"appointments"`
	Pending      int     `json:"pending"`
}

// DashboardStats are the admin dashboard headline figures.
type DashboardStats struct {
	TotalPatients int     `json:"totalPatients"`
	Upcoming      int     `json:"upcomingAppointments"`
	Revenue       float64 `json:"totalRevenue"`
	Pending       int     `json:"pendingTreatments"`

	// NextAppointments holds the first few upcoming incidents.
	NextAppointments []IncidentEntry `json:"nextAppointments"`
}

// Snapshot returns the headline figures in their persisted form.
func (d DashboardStats) Snapshot() MonthlyStats {
	return MonthlyStats{
		Patients:     d.TotalPatients,
		Revenue:      d.Revenue,
		Appointments: d.Upcoming,
		Pending:      d.Pending,
	}
}

// QuickStats are the appointment page counters.
type QuickStats struct {
	TodayAppointments int `json:"todayAppointments"`
	PendingTreatments int `json:"pendingTreatments"`
	CompletedMonth    int `json:"completedMonth"`
	CancelledToday    int `json:"cancelledToday"`
}

// MonthRevenue is one bar of the revenue chart.
type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// RevenueReport is the revenue chart with its summary figures.
type RevenueReport struct {
	Months  []MonthRevenue `json:"months"`
	Total   float64        `json:"total"`
	Average float64        `json:"average"`
}

// IncidentEntry is an incident together with its resolved patient name.
type IncidentEntry struct {
	Incident    Incident `json:"incident"`
	PatientName string   `json:"patientName"`
}

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Date           string          `json:"date"`
	InCurrentMonth bool            `json:"inCurrentMonth"`
	IsToday        bool            `json:"isToday"`
	Entries        []IncidentEntry `json:"entries"`
}

// CalendarMonth is a Sunday-first grid of whole weeks covering a month.
type CalendarMonth struct {
	Month string          `json:"month"`
	Weeks [][]CalendarDay `json:"weeks"`
}

// PatientSummary is the patient dashboard.
type PatientSummary struct {
	Patient    Patient    `json:"patient"`
	Upcoming   []Incident `json:"upcoming"`
	Completed  int        `json:"completed"`
	InProgress int        `json:"inProgress"`
	TotalCost  float64    `json:"totalCost"`
}

// PatientRecords is the patient's treatment history, optionally for one year.
type PatientRecords struct {
	Patient    Patient    `json:"patient"`
	Years      []string   `json:"years"`
	Incidents  []Incident `json:"incidents"`
	Completed  int        `json:"completed"`
	TotalCost  float64    `json:"totalCost"`
	TotalFiles int        `json:"totalFiles"`
}

// Change is a month-over-month delta in percent. Nil when there is no
// previous snapshot or the previous value was zero.
type Change struct {
	Current  float64  `json:"current"`
	Previous *float64 `json:"previous,omitempty"`
	Percent  *float64 `json:"percent,omitempty"`
}

// MonthComparison compares a month against the previous month's snapshot.
type MonthComparison struct {
	Month        string `json:"month"`
	Previous     string `json:"previousMonth"`
	Patients     Change `json:"patients"`
	Revenue      Change `json:"revenue"`
	Appointments Change `json:"appointments"`
	Pending      Change `json:"pending"`
}

// MonthKey formats t as the "YYYY-MM" key used for snapshots.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}
