package models

import (
	"sort"
	"strings"
)

// DaysOfWeek is the fixed Monday-first ordering of the schedule.
var DaysOfWeek = []string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// DayIndex returns the position of day in DaysOfWeek, ignoring case, or -1.
func DayIndex(day string) int {
	trimmed := strings.TrimSpace(day)
	for i, d := range DaysOfWeek {
		if strings.EqualFold(d, trimmed) {
			return i
		}
	}
	return -1
}

// PlanID is the document id of a day's plan.
func PlanID(day string) string {
	return strings.ToLower(strings.TrimSpace(day))
}

// SortPlans orders plans Monday to Sunday; unknown day names go last.
func SortPlans(plans []MealPlan) {
	sort.SliceStable(plans, func(i, j int) bool {
		return dayRank(plans[i].DayOfWeek) < dayRank(plans[j].DayOfWeek)
	})
}

func dayRank(day string) int {
	if i := DayIndex(day); i >= 0 {
		return i
	}
	return len(DaysOfWeek)
}
