// Package catalog holds the fixed set of bookable barbers and the daily
// time-slot labels. Both lists are static for the lifetime of the process;
// there is no dynamic provider management.
package catalog

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for booking dates (date only, no time part).
const DateLayout = "2006-01-02"

var providers = []string{
	"Ejie",
	"Marco",
	"Paulo",
	"Dario",
}

// The same labels are offered every calendar day.
var timeSlots = []string{
	"10:30AM",
	"11:00AM",
	"11:30AM",
	"12:00PM",
	"12:30PM",
}

// Providers returns the ordered barber list. The slice is a copy; callers may
// not mutate the catalog.
func Providers() []string {
	out := make([]string, len(providers))
	copy(out, providers)
	return out
}

// TimeSlots returns the ordered daily slot labels.
func TimeSlots() []string {
	out := make([]string, len(timeSlots))
	copy(out, timeSlots)
	return out
}

func ValidProvider(name string) bool {
	for _, p := range providers {
		if p == name {
			return true
		}
	}
	return false
}

func ValidTimeSlot(label string) bool {
	for _, t := range timeSlots {
		if t == label {
			return true
		}
	}
	return false
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}
