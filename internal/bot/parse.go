package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/studyplanner/internal/usecase"
	"github.com/example/studyplanner/pkg/models"
)

// errUsage marks command arguments that could not be parsed
var errUsage = errors.New("invalid arguments")

const deadlineLayout = "2006-01-02"

// parseAddArgs parses "name | chapters | difficulty | priority | YYYY-MM-DD"
func parseAddArgs(args string) (usecase.SubjectInput, error) {
	parts := strings.Split(args, "|")
	if len(parts) != 5 {
		return usecase.SubjectInput{}, fmt.Errorf("%w: expected 5 fields separated by |", errUsage)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	chapters, err := strconv.Atoi(parts[1])
	if err != nil {
		return usecase.SubjectInput{}, fmt.Errorf("%w: chapters must be a number", errUsage)
	}
	deadline, err := time.ParseInLocation(deadlineLayout, parts[4], time.UTC)
	if err != nil {
		return usecase.SubjectInput{}, fmt.Errorf("%w: deadline must look like 2025-06-30", errUsage)
	}

	return usecase.SubjectInput{
		Name:       parts[0],
		Chapters:   chapters,
		Difficulty: models.Difficulty(strings.ToLower(parts[2])),
		Priority:   models.Priority(strings.ToLower(parts[3])),
		Deadline:   deadline,
	}, nil
}

// parseIDs parses exactly n whitespace separated integers
func parseIDs(args string, n int) ([]int64, error) {
	fields := strings.Fields(args)
	if len(fields) != n {
		return nil, fmt.Errorf("%w: expected %d numbers", errUsage, n)
	}
	ids := make([]int64, n)
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", errUsage, f)
		}
		ids[i] = v
	}
	return ids, nil
}

// parseSessionArgs parses "[minutes] [subject_id] [pomodoros]"
func parseSessionArgs(args string) (usecase.SessionInput, error) {
	var in usecase.SessionInput
	fields := strings.Fields(args)
	if len(fields) > 3 {
		return in, fmt.Errorf("%w: too many arguments", errUsage)
	}

	nums := make([]int64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil || v < 0 {
			return in, fmt.Errorf("%w: %q is not a positive number", errUsage, f)
		}
		nums[i] = v
	}

	if len(nums) > 0 {
		in.DurationMinutes = int(nums[0])
	}
	if len(nums) > 1 && nums[1] > 0 {
		id := nums[1]
		in.SubjectID = &id
	}
	if len(nums) > 2 {
		in.PomodoroCount = int(nums[2])
	}
	return in, nil
}

// parseNotifyArgs parses "on|off [hour]". hour is -1 when not given.
func parseNotifyArgs(args string) (enabled bool, hour int, err error) {
	fields := strings.Fields(strings.ToLower(args))
	if len(fields) == 0 || len(fields) > 2 {
		return false, -1, fmt.Errorf("%w: expected on or off", errUsage)
	}

	switch fields[0] {
	case "on":
		enabled = true
	case "off":
	default:
		return false, -1, fmt.Errorf("%w: expected on or off", errUsage)
	}

	hour = -1
	if len(fields) == 2 {
		hour, err = strconv.Atoi(fields[1])
		if err != nil || hour < 0 || hour > 23 {
			return false, -1, fmt.Errorf("%w: hour must be between 0 and 23", errUsage)
		}
	}
	return enabled, hour, nil
}

// parseMoodArgs parses "<tired|normal|energetic> [effectiveness] [minutes]"
func parseMoodArgs(args string) (usecase.MoodInput, error) {
	var in usecase.MoodInput
	fields := strings.Fields(strings.ToLower(args))
	if len(fields) == 0 || len(fields) > 3 {
		return in, fmt.Errorf("%w: expected a mood", errUsage)
	}

	in.Mood = models.MoodKind(fields[0])
	if len(fields) > 1 {
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			return in, fmt.Errorf("%w: effectiveness must be a number", errUsage)
		}
		in.Effectiveness = v
	}
	if len(fields) > 2 {
		v, err := strconv.Atoi(fields[2])
		if err != nil || v < 0 {
			return in, fmt.Errorf("%w: minutes must be a positive number", errUsage)
		}
		in.DurationMinutes = v
	}
	return in, nil
}

// parseReflectArgs parses "<reason> [subject_id] [note...]"
func parseReflectArgs(args string) (usecase.ReflectionInput, error) {
	var in usecase.ReflectionInput
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return in, fmt.Errorf("%w: expected a reason number", errUsage)
	}

	reason, err := strconv.Atoi(fields[0])
	if err != nil {
		return in, fmt.Errorf("%w: reason must be a number", errUsage)
	}
	in.ReasonIdx = reason
	rest := fields[1:]

	if len(rest) > 0 {
		if id, err := strconv.ParseInt(rest[0], 10, 64); err == nil {
			in.SubjectID = &id
			rest = rest[1:]
		}
	}
	in.ReasonText = strings.Join(rest, " ")
	return in, nil
}
