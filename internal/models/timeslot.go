package models

// TimeSlot represents one teaching period on a weekday. Non-break slots on
// days 1-5 form the schedulable universe for a generation run.
type TimeSlot struct {
	ID         int64  `db:"id" json:"id"`
	DayOfWeek  int    `db:"day_of_week" json:"day_of_week"`
	StartTime  string `db:"start_time" json:"start_time"`
	EndTime    string `db:"end_time" json:"end_time"`
	PeriodName string `db:"period_name" json:"period_name"`
	IsBreak    bool   `db:"is_break" json:"is_break"`
}

var dayNames = map[int]string{
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
	6: "Saturday",
	7: "Sunday",
}

// DayName returns the English weekday name for the slot's day.
func (t TimeSlot) DayName() string {
	return DayName(t.DayOfWeek)
}

// DayName maps a 1-7 day-of-week index to its English name.
func DayName(day int) string {
	if name, ok := dayNames[day]; ok {
		return name
	}
	return ""
}
