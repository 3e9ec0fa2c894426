package reporting

import (
	"context"

	"github.com/clinic/clinic/pkg/calendar"
)

// Summary is the headline count of each entity set.
type Summary struct {
	TotalPatients     int64 `json:"totalPatients"`
	TotalDoctors      int64 `json:"totalDoctors"`
	TotalAppointments int64 `json:"totalAppointments"`
}

// DayCount is the number of appointments dated on one calendar day.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// Detailed extends Summary with the dashboard breakdowns. The parts are read
// independently and may disagree under concurrent writes.
type Detailed struct {
	Summary
	TodayAppointments     int64            `json:"todayAppointments"`
	AppointmentsByStatus  map[string]int64 `json:"appointmentsByStatus"`
	Last7DaysAppointments []DayCount       `json:"last7DaysAppointments"`
}

// Source answers the raw counting queries behind the statistics.
type Source interface {
	CountPatients(ctx context.Context) (int64, error)
	CountDoctors(ctx context.Context) (int64, error)
	CountAppointments(ctx context.Context) (int64, error)
	// CountAppointmentsBetween counts appointments dated in [from, to).
	CountAppointmentsBetween(ctx context.Context, from, to calendar.Day) (int64, error)
	// CountByStatus omits statuses with no appointments.
	CountByStatus(ctx context.Context) (map[string]int64, error)
	// CountByDay returns one entry per day in [from, to) that has
	// appointments, ascending by day.
	CountByDay(ctx context.Context, from, to calendar.Day) ([]DayCount, error)
}
