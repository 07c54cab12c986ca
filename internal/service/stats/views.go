package stats

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/jwalitptl/dentalcare/internal/model"
)

// nextAppointmentsLimit caps the dashboard's upcoming list.
const nextAppointmentsLimit = 5

// The functions in this file are pure: they read whole collections and
// never touch storage. Calendar arithmetic happens in loc.

func Dashboard(patients []model.Patient, incidents []model.Incident, now time.Time) model.DashboardStats {
	d := model.DashboardStats{
		TotalPatients:    len(patients),
		NextAppointments: []model.IncidentEntry{},
	}
	for _, inc := range incidents {
		switch {
		case inc.Status == model.StatusCompleted:
			d.Revenue += inc.CostValue()
		case inc.Status == model.StatusInProgress:
			d.Pending++
		case inc.IsUpcoming(now):
			d.Upcoming++
			if len(d.NextAppointments) < nextAppointmentsLimit {
				d.NextAppointments = append(d.NextAppointments, entry(patients, inc))
			}
		}
	}
	return d
}

func Quick(incidents []model.Incident, now time.Time, loc *time.Location) model.QuickStats {
	var q model.QuickStats
	now = now.In(loc)
	for _, inc := range incidents {
		at := inc.AppointmentDate.In(loc)
		today := sameDay(at, now)
		if today {
			q.TodayAppointments++
		}
		switch inc.Status {
		case model.StatusScheduled, model.StatusInProgress:
			q.PendingTreatments++
		case model.StatusCompleted:
			if sameMonth(at, now) {
				q.CompletedMonth++
			}
		case model.StatusCancelled:
			if today {
				q.CancelledToday++
			}
		}
	}
	return q
}

// Revenue sums the cost of every incident that has one, per month of its
// appointment, regardless of status.
func Revenue(incidents []model.Incident, loc *time.Location) model.RevenueReport {
	byMonth := make(map[string]float64)
	for _, inc := range incidents {
		if inc.CostValue() == 0 {
			continue
		}
		byMonth[model.MonthKey(inc.AppointmentDate.In(loc))] += inc.CostValue()
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	r := model.RevenueReport{Months: make([]model.MonthRevenue, 0, len(months))}
	for _, m := range months {
		r.Months = append(r.Months, model.MonthRevenue{Month: m, Revenue: byMonth[m]})
		r.Total += byMonth[m]
	}
	if len(months) > 0 {
		r.Average = math.Round(r.Total / float64(len(months)))
	}
	return r
}

// Calendar lays out month as whole Sunday-first weeks, from the week
// holding the 1st to the week holding the last day.
func Calendar(patients []model.Patient, incidents []model.Incident, month, now time.Time, loc *time.Location) model.CalendarMonth {
	month = month.In(loc)
	now = now.In(loc)
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	byDay := make(map[string][]model.IncidentEntry)
	for _, inc := range incidents {
		key := inc.AppointmentDate.In(loc).Format(model.DateLayout)
		byDay[key] = append(byDay[key], entry(patients, inc))
	}

	cal := model.CalendarMonth{Month: model.MonthKey(first)}
	var week []model.CalendarDay
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(model.DateLayout)
		entries := byDay[key]
		sortEntries(entries)
		if entries == nil {
			entries = []model.IncidentEntry{}
		}
		week = append(week, model.CalendarDay{
			Date:           key,
			InCurrentMonth: d.Month() == first.Month(),
			IsToday:        sameDay(d, now),
			Entries:        entries,
		})
		if len(week) == 7 {
			cal.Weeks = append(cal.Weeks, week)
			week = nil
		}
	}
	return cal
}

// Day lists the incidents booked on day, earliest first.
func Day(patients []model.Patient, incidents []model.Incident, day time.Time, loc *time.Location) []model.IncidentEntry {
	day = day.In(loc)
	out := []model.IncidentEntry{}
	for _, inc := range incidents {
		if sameDay(inc.AppointmentDate.In(loc), day) {
			out = append(out, entry(patients, inc))
		}
	}
	sortEntries(out)
	return out
}

// Summary is the patient dashboard. incidents may hold other patients'
// records; they are ignored.
func Summary(patient model.Patient, incidents []model.Incident, now time.Time) model.PatientSummary {
	s := model.PatientSummary{Patient: patient, Upcoming: []model.Incident{}}
	for _, inc := range incidents {
		if inc.PatientID != patient.ID {
			continue
		}
		switch {
		case inc.Status == model.StatusCompleted:
			s.Completed++
			s.TotalCost += inc.CostValue()
		case inc.Status == model.StatusInProgress:
			s.InProgress++
		case inc.IsUpcoming(now):
			s.Upcoming = append(s.Upcoming, inc)
		}
	}
	sort.SliceStable(s.Upcoming, func(i, j int) bool {
		return s.Upcoming[i].AppointmentDate.Before(s.Upcoming[j].AppointmentDate)
	})
	return s
}

// Records is the patient's treatment history. year is "all", empty, or a
// four digit year; Years always lists every year with records, newest first.
func Records(patient model.Patient, incidents []model.Incident, year string, loc *time.Location) model.PatientRecords {
	r := model.PatientRecords{Patient: patient, Years: []string{}, Incidents: []model.Incident{}}
	seen := make(map[string]bool)
	for _, inc := range incidents {
		if inc.PatientID != patient.ID {
			continue
		}
		y := strconv.Itoa(inc.AppointmentDate.In(loc).Year())
		if !seen[y] {
			seen[y] = true
			r.Years = append(r.Years, y)
		}
		if year != "" && year != "all" && y != year {
			continue
		}
		r.Incidents = append(r.Incidents, inc)
		r.TotalFiles += len(inc.Files)
		if inc.Status == model.StatusCompleted {
			r.Completed++
			r.TotalCost += inc.CostValue()
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(r.Years)))
	sortNewestFirst(r.Incidents)
	return r
}

// Appointments filters one patient's incidents for the given view, newest
// appointment first. Unknown views behave like "all".
func Appointments(patientID string, incidents []model.Incident, view model.AppointmentView, now time.Time) []model.Incident {
	out := []model.Incident{}
	for _, inc := range incidents {
		if inc.PatientID != patientID {
			continue
		}
		keep := true
		switch view {
		case model.AppointmentViewUpcoming:
			keep = inc.IsUpcoming(now)
		case model.AppointmentViewCompleted:
			keep = inc.Status == model.StatusCompleted
		case model.AppointmentViewInProgress:
			keep = inc.Status == model.StatusInProgress
		}
		if keep {
			out = append(out, inc)
		}
	}
	sortNewestFirst(out)
	return out
}

// Compare builds the month-over-month view. previous may be nil.
func Compare(month string, current model.MonthlyStats, previousMonth string, previous *model.MonthlyStats) model.MonthComparison {
	c := model.MonthComparison{Month: month, Previous: previousMonth}
	if previous == nil {
		c.Patients = model.Change{Current: float64(current.Patients)}
		c.Revenue = model.Change{Current: current.Revenue}
		c.Appointments = model.Change{Current: float64(current.Appointments)}
		c.Pending = model.Change{Current: float64(current.Pending)}
		return c
	}
	c.Patients = change(float64(current.Patients), float64(previous.Patients))
	c.Revenue = change(current.Revenue, previous.Revenue)
	c.Appointments = change(float64(current.Appointments), float64(previous.Appointments))
	c.Pending = change(float64(current.Pending), float64(previous.Pending))
	return c
}

func change(current, previous float64) model.Change {
	c := model.Change{Current: current, Previous: &previous}
	if previous != 0 {
		pct := math.Round((current-previous)/previous*1000) / 10
		c.Percent = &pct
	}
	return c
}

// PreviousMonth returns the "YYYY-MM" key before month.
func PreviousMonth(month string) (string, error) {
	t, err := time.Parse(model.MonthLayout, month)
	if err != nil {
		return "", err
	}
	return model.MonthKey(t.AddDate(0, -1, 0)), nil
}

func entry(patients []model.Patient, inc model.Incident) model.IncidentEntry {
	return model.IncidentEntry{Incident: inc, PatientName: model.PatientName(patients, inc.PatientID)}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func sortEntries(entries []model.IncidentEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Incident.AppointmentDate.Before(entries[j].Incident.AppointmentDate)
	})
}

func sortNewestFirst(incidents []model.Incident) {
	sort.SliceStable(incidents, func(i, j int) bool {
		return incidents[i].AppointmentDate.After(incidents[j].AppointmentDate)
	})
}
