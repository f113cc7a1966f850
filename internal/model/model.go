package model

import "strings"

const (
	DefaultIcon    = "📋"
	DefaultMinutes = 15
)

type Activity struct {
	Name    string
	Minutes int
	Done    bool
	Icon    string

	// Term is the ARASAAC search term used to look up a pictogram.
	Term string
	// Pictogram is the local path of the resolved pictogram, if any.
	Pictogram string
}

// NewActivity builds an activity the way the add form does: trimmed name,
// clipboard icon and a quarter hour.
func NewActivity(name string) Activity {
	return Activity{
		Name:    strings.TrimSpace(name),
		Minutes: DefaultMinutes,
		Icon:    DefaultIcon,
	}
}

// Normalize clamps negative durations to zero.
func (a Activity) Normalize() Activity {
	if a.Minutes < 0 {
		a.Minutes = 0
	}
	return a
}

// DisplayIcon returns the icon glyph, falling back to DefaultIcon.
func (a Activity) DisplayIcon() string {
	if a.Icon == "" {
		return DefaultIcon
	}
	return a.Icon
}

func CloneSchedule(activities []Activity) []Activity {
	if activities == nil {
		return nil
	}
	result := make([]Activity, len(activities))
	for i, activity := range activities {
		result[i] = activity.Normalize()
	}
	return result
}

func CountDone(activities []Activity) int {
	count := 0
	for _, activity := range activities {
		if activity.Done {
			count++
		}
	}
	return count
}

func SampleActivities() []Activity {
	return []Activity{
		{Name: "Wake up", Icon: "🌅", Term: "wake up", Minutes: 10},
		{Name: "Breakfast", Icon: "🥣", Term: "breakfast", Minutes: 20},
		{Name: "Get dressed", Icon: "👕", Term: "get dressed", Minutes: 15},
		{Name: "School", Icon: "🏫", Term: "school", Minutes: 360},
		{Name: "Lunch", Icon: "🍽️", Term: "lunch", Minutes: 30},
		{Name: "Play", Icon: "🎮", Term: "play", Minutes: 60},
		{Name: "Dinner", Icon: "🍝", Term: "dinner", Minutes: 30},
		{Name: "Bath", Icon: "🛁", Term: "bath", Minutes: 20},
		{Name: "Bedtime", Icon: "🌙", Term: "sleep", Minutes: 10},
	}
}
