package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DaysPerWeek is the number of days every weekly plan carries
const DaysPerWeek = 7

// PlanDays lists the plan days in display order, Monday first
var PlanDays = [DaysPerWeek]time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// PlanEntry is one subject's allocation of chapters and time to one day
type PlanEntry struct {
	SubjectID                  int64      `json:"subject_id"`
	SubjectName                string     `json:"subject_name"`
	ChaptersAssigned           int        `json:"chapters"`
	Difficulty                 Difficulty `json:"difficulty"`
	Priority                   Priority   `json:"priority"`
	RecommendedDurationMinutes int        `json:"recommended_duration_mins"`
}

// DayPlan holds the ordered entries of a single day
type DayPlan struct {
	Day     time.Weekday
	Entries []PlanEntry
}

// WeeklyPlan maps each of the seven weekdays to its entries.
// Use NewWeeklyPlan to get a plan with all days initialised.
type WeeklyPlan struct {
	Days [DaysPerWeek]DayPlan
}

// NewWeeklyPlan returns a plan with seven empty days, Monday to Sunday
func NewWeeklyPlan() WeeklyPlan {
	var p WeeklyPlan
	for i, day := range PlanDays {
		p.Days[i] = DayPlan{Day: day, Entries: []PlanEntry{}}
	}
	return p
}

// dayIndex converts a weekday to its position in PlanDays
func dayIndex(day time.Weekday) int {
	return (int(day) + 6) % DaysPerWeek
}

// Day returns the entries planned for the given weekday
func (p WeeklyPlan) Day(day time.Weekday) []PlanEntry {
	return p.Days[dayIndex(day)].Entries
}

// Append adds an entry at the end of the given weekday
func (p *WeeklyPlan) Append(day time.Weekday, entry PlanEntry) {
	i := dayIndex(day)
	p.Days[i].Day = day
	p.Days[i].Entries = append(p.Days[i].Entries, entry)
}

// EntryCount returns the number of entries across the whole week
func (p WeeklyPlan) EntryCount() int {
	count := 0
	for _, d := range p.Days {
		count += len(d.Entries)
	}
	return count
}

// TotalMinutes returns the recommended study time across the whole week
func (p WeeklyPlan) TotalMinutes() int {
	total := 0
	for _, d := range p.Days {
		for _, e := range d.Entries {
			total += e.RecommendedDurationMinutes
		}
	}
	return total
}

// MarshalJSON encodes the plan as an object keyed by day name in Monday to Sunday
// order. Empty days are encoded as empty arrays.
func (p WeeklyPlan) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, day := range PlanDays {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(day.String())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		entries := p.Days[i].Entries
		if entries == nil {
			entries = []PlanEntry{}
		}
		value, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the object form written by MarshalJSON. Missing days stay empty.
func (p *WeeklyPlan) UnmarshalJSON(data []byte) error {
	var raw map[string][]PlanEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = NewWeeklyPlan()
	for i, day := range PlanDays {
		if entries := raw[day.String()]; entries != nil {
			p.Days[i].Entries = entries
		}
	}
	return nil
}

// PlanRecord is a generated plan together with its generation metadata
type PlanRecord struct {
	ID                uuid.UUID  `json:"id"`
	UserID            int64      `json:"user_id"`
	Plan              WeeklyPlan `json:"plan"`
	GeneratedAt       time.Time  `json:"generated_at"`
	SubjectCount      int        `json:"subject_count"`
	OptimizationNotes string     `json:"optimization_notes"`
}
