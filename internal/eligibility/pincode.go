// Package eligibility decides whether a shipping pincode qualifies for
// priority (one-day) delivery. It is a client-side affordance only; the
// backend remains the authority on whether priority is honored.
package eligibility

import (
	"strconv"
	"strings"
)

var allowedPincodes = []int{
	600049, 600050, 600053, 600054, 600055, 600058,
	600020,
	600040, 600044, 600045, 600090,
	600062, 600064, 600069, 600075,
	600116, 600118, 600120, 600123,
}

type pinRange struct {
	start, end int
}

var allowedRanges = []pinRange{
	{start: 600001, end: 600014},
	{start: 600029, end: 600037},
}

// Eligible reports whether the given pincode is served by priority
// delivery. Empty or non-numeric input is simply ineligible, never an
// error; the evaluator is safe to call on every keystroke.
func Eligible(input string) bool {
	s := strings.TrimSpace(input)
	if s == "" {
		return false
	}

	pin, err := strconv.Atoi(s)
	if err != nil {
		return false
	}

	for _, p := range allowedPincodes {
		if p == pin {
			return true
		}
	}
	for _, r := range allowedRanges {
		if pin >= r.start && pin <= r.end {
			return true
		}
	}
	return false
}

// PriorityOption derives the effective priority selection from the current
// pincode. The selection only counts while the pincode is eligible, so a
// pincode edit that loses eligibility silently drops the opt-in.
func PriorityOption(pincode string, selected bool) (eligible, effective bool) {
	eligible = Eligible(pincode)
	return eligible, eligible && selected
}
