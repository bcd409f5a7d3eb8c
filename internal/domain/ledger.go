package domain

import "time"

// DateKeyLayout is the calendar-day layout ledger entries are partitioned by.
const DateKeyLayout = "2006-01-02"

// DateKey formats t as a ledger date-key in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateKeyLayout)
}

// Ledger records which categories each user answered, per day.
// Categories keep insertion order and never repeat.
type Ledger map[string]map[string][]string

// Has reports whether user answered category on date. Missing levels read as false.
func (l Ledger) Has(date, userID, category string) bool {
	for _, c := range l[date][userID] {
		if c == category {
			return true
		}
	}
	return false
}

// Add records the triple and reports whether it was new.
func (l Ledger) Add(date, userID, category string) bool {
	if l.Has(date, userID, category) {
		return false
	}
	users := l[date]
	if users == nil {
		users = make(map[string][]string)
		l[date] = users
	}
	users[userID] = append(users[userID], category)
	return true
}

// PruneBefore drops every date-key older than cutoff and returns how many were removed.
// Keys that do not parse as dates are left alone.
func (l Ledger) PruneBefore(cutoff string) int {
	removed := 0
	for date := range l {
		if _, err := time.Parse(DateKeyLayout, date); err != nil {
			continue
		}
		if date < cutoff {
			delete(l, date)
			removed++
		}
	}
	return removed
}
