package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/storage"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDashboard(t *testing.T) {
	d := Dashboard(storage.SeedPatients(), storage.SeedIncidents(), at("2025-01-10T00:00:00Z"))

	assert.Equal(t, 3, d.TotalPatients)
	assert.Equal(t, 1, d.Upcoming)
	assert.Equal(t, 120.0, d.Revenue)
	assert.Equal(t, 1, d.Pending)
	require.Len(t, d.NextAppointments, 1)
	assert.Equal(t, "i2", d.NextAppointments[0].Incident.ID)
	assert.Equal(t, "John Doe", d.NextAppointments[0].PatientName)

	later := Dashboard(storage.SeedPatients(), storage.SeedIncidents(), at("2025-02-01T00:00:00Z"))
	assert.Zero(t, later.Upcoming)
	assert.Empty(t, later.NextAppointments)

	snap := d.Snapshot()
	assert.Equal(t, model.MonthlyStats{Patients: 3, Revenue: 120, Appointments: 1, Pending: 1}, snap)
}

func TestQuick(t *testing.T) {
	incidents := append(storage.SeedIncidents(), model.Incident{
		ID:              "i9",
		PatientID:       "p3",
		AppointmentDate: at("2025-01-20T08:00:00Z"),
		Status:          model.StatusCancelled,
	})

	q := Quick(incidents, at("2025-01-20T09:00:00Z"), time.UTC)
	assert.Equal(t, model.QuickStats{
		TodayAppointments: 2,
		PendingTreatments: 2,
		CompletedMonth:    1,
		CancelledToday:    1,
	}, q)

	// in UTC-10 the 08:00Z cancellation falls on the previous day
	hawaii := time.FixedZone("HST", -10*60*60)
	q = Quick(incidents, at("2025-01-20T20:00:00Z"), hawaii)
	assert.Equal(t, 1, q.TodayAppointments)
	assert.Zero(t, q.CancelledToday)
}

func TestRevenue(t *testing.T) {
	r := Revenue(storage.SeedIncidents(), time.UTC)
	require.Len(t, r.Months, 1)
	assert.Equal(t, "2025-01", r.Months[0].Month)
	assert.Equal(t, 1170.0, r.Total)
	assert.Equal(t, 1170.0, r.Average)

	incidents := append(storage.SeedIncidents(),
		model.Incident{ID: "a", AppointmentDate: at("2025-02-03T10:00:00Z"), Cost: model.Float(30), Status: model.StatusScheduled},
		model.Incident{ID: "b", AppointmentDate: at("2024-12-03T10:00:00Z"), Status: model.StatusCompleted},
		model.Incident{ID: "c", AppointmentDate: at("2024-11-03T10:00:00Z"), Cost: model.Float(0), Status: model.StatusCompleted},
	)
	r = Revenue(incidents, time.UTC)
	assert.Equal(t, []model.MonthRevenue{
		{Month: "2025-01", Revenue: 1170},
		{Month: "2025-02", Revenue: 30},
	}, r.Months)
	assert.Equal(t, 1200.0, r.Total)
	assert.Equal(t, 600.0, r.Average)

	empty := Revenue(nil, time.UTC)
	assert.Empty(t, empty.Months)
	assert.Zero(t, empty.Average)
}

func TestCalendarGrid(t *testing.T) {
	tests := []struct {
		month string
		weeks int
		first string
		last  string
	}{
		{"2015-02", 4, "2015-02-01", "2015-02-28"},
		{"2025-01", 5, "2024-12-29", "2025-02-01"},
		{"2025-02", 5, "2025-01-26", "2025-03-01"},
		{"2024-06", 6, "2024-05-26", "2024-07-06"},
	}
	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			month, err := time.Parse(model.MonthLayout, tt.month)
			require.NoError(t, err)

			cal := Calendar(nil, nil, month, at("2025-01-15T12:00:00Z"), time.UTC)
			assert.Equal(t, tt.month, cal.Month)
			require.Len(t, cal.Weeks, tt.weeks)
			for _, week := range cal.Weeks {
				require.Len(t, week, 7)
			}
			assert.Equal(t, tt.first, cal.Weeks[0][0].Date)
			assert.Equal(t, tt.last, cal.Weeks[tt.weeks-1][6].Date)
		})
	}
}

func TestCalendarBucketsIncidents(t *testing.T) {
	month, err := time.Parse(model.MonthLayout, "2025-01")
	require.NoError(t, err)

	incidents := append(storage.SeedIncidents(), model.Incident{
		ID:              "orphan",
		PatientID:       "gone",
		AppointmentDate: at("2025-01-15T08:00:00Z"),
		Status:          model.StatusScheduled,
	})
	cal := Calendar(storage.SeedPatients(), incidents, month, at("2025-01-15T12:00:00Z"), time.UTC)

	days := map[string]model.CalendarDay{}
	for _, week := range cal.Weeks {
		for _, d := range week {
			days[d.Date] = d
		}
	}

	jan15 := days["2025-01-15"]
	assert.True(t, jan15.IsToday)
	assert.True(t, jan15.InCurrentMonth)
	require.Len(t, jan15.Entries, 2)
	assert.Equal(t, "orphan", jan15.Entries[0].Incident.ID)
	assert.Equal(t, model.UnknownPatientName, jan15.Entries[0].PatientName)
	assert.Equal(t, "John Doe", jan15.Entries[1].PatientName)

	assert.Len(t, days["2025-01-18"].Entries, 1)
	assert.Len(t, days["2025-01-20"].Entries, 1)
	assert.Empty(t, days["2025-01-16"].Entries)
	assert.NotNil(t, days["2025-01-16"].Entries)
	assert.False(t, days["2024-12-29"].InCurrentMonth)
	assert.False(t, days["2025-01-16"].IsToday)
}

func TestDay(t *testing.T) {
	entries := Day(storage.SeedPatients(), storage.SeedIncidents(), at("2025-01-18T00:00:00Z"), time.UTC)
	require.Len(t, entries, 1)
	assert.Equal(t, "i3", entries[0].Incident.ID)
	assert.Equal(t, "Jane Smith", entries[0].PatientName)

	assert.Empty(t, Day(storage.SeedPatients(), storage.SeedIncidents(), at("2025-01-19T00:00:00Z"), time.UTC))
}

func TestSummary(t *testing.T) {
	p1 := storage.SeedPatients()[0]
	incidents := append(storage.SeedIncidents(), model.Incident{
		ID:              "i0",
		PatientID:       "p1",
		AppointmentDate: at("2025-01-12T10:00:00Z"),
		Status:          model.StatusScheduled,
	})

	s := Summary(p1, incidents, at("2025-01-10T00:00:00Z"))
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 120.0, s.TotalCost)
	assert.Zero(t, s.InProgress)
	require.Len(t, s.Upcoming, 2)
	assert.Equal(t, "i0", s.Upcoming[0].ID)
	assert.Equal(t, "i2", s.Upcoming[1].ID)

	p2 := storage.SeedPatients()[1]
	s = Summary(p2, incidents, at("2025-01-10T00:00:00Z"))
	assert.Equal(t, 1, s.InProgress)
	assert.Empty(t, s.Upcoming)
}

func TestRecords(t *testing.T) {
	p1 := storage.SeedPatients()[0]
	incidents := append(storage.SeedIncidents(), model.Incident{
		ID:              "old",
		PatientID:       "p1",
		AppointmentDate: at("2024-06-01T10:00:00Z"),
		Status:          model.StatusCompleted,
		Cost:            model.Float(80),
		Files:           []model.Attachment{{ID: "f1"}, {ID: "f2"}},
	})

	all := Records(p1, incidents, "all", time.UTC)
	assert.Equal(t, []string{"2025", "2024"}, all.Years)
	require.Len(t, all.Incidents, 3)
	assert.Equal(t, "i2", all.Incidents[0].ID)
	assert.Equal(t, "old", all.Incidents[2].ID)
	assert.Equal(t, 2, all.Completed)
	assert.Equal(t, 200.0, all.TotalCost)
	assert.Equal(t, 2, all.TotalFiles)

	only2024 := Records(p1, incidents, "2024", time.UTC)
	assert.Equal(t, []string{"2025", "2024"}, only2024.Years)
	require.Len(t, only2024.Incidents, 1)
	assert.Equal(t, 80.0, only2024.TotalCost)
}

func TestAppointments(t *testing.T) {
	now := at("2025-01-10T00:00:00Z")
	incidents := storage.SeedIncidents()

	ids := func(list []model.Incident) []string {
		out := []string{}
		for _, inc := range list {
			out = append(out, inc.ID)
		}
		return out
	}

	assert.Equal(t, []string{"i2", "i1"}, ids(Appointments("p1", incidents, model.AppointmentViewAll, now)))
	assert.Equal(t, []string{"i2"}, ids(Appointments("p1", incidents, model.AppointmentViewUpcoming, now)))
	assert.Equal(t, []string{"i1"}, ids(Appointments("p1", incidents, model.AppointmentViewCompleted, now)))
	assert.Empty(t, Appointments("p1", incidents, model.AppointmentViewInProgress, now))
	assert.Equal(t, []string{"i3"}, ids(Appointments("p2", incidents, model.AppointmentViewInProgress, now)))
	assert.Empty(t, Appointments("p1", incidents, model.AppointmentViewUpcoming, at("2025-03-01T00:00:00Z")))
}

func TestCompare(t *testing.T) {
	current := model.MonthlyStats{Patients: 4, Revenue: 120, Appointments: 2, Pending: 0}

	c := Compare("2025-02", current, "2025-01", nil)
	assert.Equal(t, 120.0, c.Revenue.Current)
	assert.Nil(t, c.Revenue.Previous)
	assert.Nil(t, c.Revenue.Percent)

	c = Compare("2025-02", current, "2025-01", &model.MonthlyStats{Patients: 3, Revenue: 100, Appointments: 0, Pending: 2})
	require.NotNil(t, c.Revenue.Percent)
	assert.Equal(t, 20.0, *c.Revenue.Percent)
	assert.Equal(t, 33.3, *c.Patients.Percent)
	assert.Equal(t, -100.0, *c.Pending.Percent)
	require.NotNil(t, c.Appointments.Previous)
	assert.Nil(t, c.Appointments.Percent)

	prev, err := PreviousMonth("2025-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-12", prev)
	_, err = PreviousMonth("January")
	assert.Error(t, err)
}
