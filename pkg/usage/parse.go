// Package usage extracts remaining-online-time state for a named
// device from the router's parental-control markup.
package usage

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/dkemper/fritzwatch/pkg/model"
)

// ErrDeviceNotFound means the markup contains no entry for the device.
var ErrDeviceNotFound = errors.New("usage: device not found")

// ErrNoTimeInfo means the device entry carries none of the known time
// markers.
var ErrNoTimeInfo = errors.New("usage: no time information")

var (
	// Budget used up entirely. The router renders this instead of a
	// numeric used/total pair.
	exhaustedRe = regexp.MustCompile(`(?i)(?:exhausted|abgelaufen)`)

	// "HH:MM of H:MM hours" with a one- or two-digit total hour
	// component. German firmware renders "von ... Std.".
	timeRe = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(?:of|von)\s*(\d{1,2}):(\d{2})\s*(?:hours|Std)`)
)

// Parse scans markup for deviceName and returns its time-remaining
// state. The device name must appear as a delimiter-bounded text span;
// the markers are searched forward of it, exhausted taking precedence
// over the numeric pair.
func Parse(markup, deviceName string) (model.TimeRemaining, error) {
	deviceRe, err := regexp.Compile(`[>"']\s*` + regexp.QuoteMeta(deviceName) + `\s*[<"']`)
	if err != nil {
		return model.TimeRemaining{}, fmt.Errorf("usage: bad device name %q: %w", deviceName, err)
	}

	loc := deviceRe.FindStringIndex(markup)
	if loc == nil {
		return model.TimeRemaining{}, ErrDeviceNotFound
	}
	region := markup[loc[1]:]

	if exhaustedRe.MatchString(region) {
		return model.TimeRemaining{
			UsedLabel:        "N/A",
			TotalLabel:       "N/A",
			RemainingMinutes: 0,
			Exhausted:        true,
		}, nil
	}

	m := timeRe.FindStringSubmatch(region)
	if m == nil {
		return model.TimeRemaining{}, ErrNoTimeInfo
	}

	used := toMinutes(m[1], m[2])
	total := toMinutes(m[3], m[4])
	remaining := total - used
	if remaining < 0 {
		// Router rounding can report used > total.
		remaining = 0
	}

	return model.TimeRemaining{
		UsedLabel:        m[1] + ":" + m[2],
		TotalLabel:       m[3] + ":" + m[4],
		RemainingMinutes: remaining,
		Exhausted:        remaining <= 0,
	}, nil
}

func toMinutes(hours, minutes string) int {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	return h*60 + m
}
