package ftn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var dayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ErrBadDate is returned when a date field cannot be interpreted.
var ErrBadDate = errors.New("ftn: unrecognised date")

// Layouts accepted for the stored message date field. The first two are
// FTS-0001 ("DD Mon YY  HH:MM:SS"), the rest the SEAdog variant
// ("Www DD Mon YY HH:MM") that this tool itself writes.
var dateLayouts = []string{
	"_2 Jan 06  15:04:05",
	"_2 Jan 06 15:04:05",
	"Mon _2 Jan 06 15:04",
	"_2 Jan 06  15:04",
	"_2 Jan 06 15:04",
}

// Weekday returns the day of the week for day (1-31), month (1-12) and a
// two digit year, 0 being Sunday. Years 80-99 are taken as 19xx, the rest
// as 20xx.
func Weekday(day, month, year int) int {
	century := 20
	if year >= 80 {
		century = 19
	}
	month -= 2
	if month <= 0 {
		month += 12
		year--
	}
	w := (26*month-2)/10 + day + year + floorDiv(year, 4) + century/4 - 2*century
	w %= 7
	if w < 0 {
		w += 7
	}
	return w
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ParseDate converts a stored message date into the RA header post time
// ("hh:mm") and post date ("mm-dd-yy").
func ParseDate(s string) (postTime, postDate string, err error) {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	for _, layout := range dateLayouts {
		t, perr := time.Parse(layout, s)
		if perr != nil {
			continue
		}
		return t.Format("15:04"), t.Format("01-02-06"), nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrBadDate, s)
}

// FormatDate builds the SEAdog style stored message date
// ("Www DD Mon YY HH:MM") from an RA post date and post time.
func FormatDate(postDate, postTime string) (string, error) {
	if len(postDate) < 8 {
		return "", fmt.Errorf("%w: post date %q", ErrBadDate, postDate)
	}
	month, err1 := strconv.Atoi(strings.TrimSpace(postDate[0:2]))
	day, err2 := strconv.Atoi(strings.TrimSpace(postDate[3:5]))
	year, err3 := strconv.Atoi(strings.TrimSpace(postDate[6:8]))
	if err1 != nil || err2 != nil || err3 != nil {
		return "", fmt.Errorf("%w: post date %q", ErrBadDate, postDate)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 0 || year > 99 {
		return "", fmt.Errorf("%w: post date %q", ErrBadDate, postDate)
	}

	hhmm := postTime
	if len(hhmm) > 5 {
		hhmm = hhmm[:5]
	}
	for len(hhmm) < 5 {
		hhmm += " "
	}

	return fmt.Sprintf("%s %02d %s %02d %s",
		dayNames[Weekday(day, month, year)], day, monthNames[month-1], year, hhmm), nil
}
