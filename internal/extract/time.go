package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/MrWong99/painvoice/internal/transcript"
)

// TimeSource names the rule that produced an occurrence time.
type TimeSource string

const (
	TimeFromNow      TimeSource = "now"
	TimeFromRelative TimeSource = "relative"
	TimeFromClock    TimeSource = "clock"
	TimeFromDayPart  TimeSource = "day_part"
	TimeFromDay      TimeSource = "day"
	TimeFromDefault  TimeSource = "default"
)

// Occurrence is when the described event happened.
type Occurrence struct {
	Time time.Time `json:"time"`

	// Explicit is false when the transcript named no time and Time is the
	// parse instant.
	Explicit bool       `json:"explicit"`
	Source   TimeSource `json:"source"`
}

// OccurredAt resolves the occurrence time in nt relative to now using the
// default lexicon.
func OccurredAt(nt transcript.NormalizedTranscript, now time.Time) Occurrence {
	return std.OccurredAt(nt, now)
}

// OccurredAt resolves the occurrence time in nt relative to now. It never
// fails: without a time phrase the result is now with Explicit unset.
// Results use now's location.
func (e *Extractor) OccurredAt(nt transcript.NormalizedTranscript, now time.Time) Occurrence {
	s := nt.Normalized
	lex := e.lex

	if lex.HalfHourAgo.MatchString(s) {
		return Occurrence{Time: now.Add(-30 * time.Minute), Explicit: true, Source: TimeFromRelative}
	}
	if m := lex.RelativeAgo.FindStringSubmatch(s); m != nil {
		if n, ok := lex.Number(m[1]); ok {
			unit := time.Hour
			if strings.HasPrefix(m[2], "minute") {
				unit = time.Minute
			}
			return Occurrence{Time: now.Add(-time.Duration(n) * unit), Explicit: true, Source: TimeFromRelative}
		}
	}

	shift, part := 0, ""
	if m := lex.DayRef.FindStringSubmatch(s); m != nil {
		shift, part = lex.DayShift[m[1]], m[2]
	}

	if h, mm, ok := e.clock(s); ok {
		day := now.AddDate(0, 0, shift)
		t := time.Date(day.Year(), day.Month(), day.Day(), h, mm, 0, 0, now.Location())
		// A bare clock time later than now refers to yesterday.
		if shift == 0 && t.After(now) {
			t = t.AddDate(0, 0, -1)
		}
		return Occurrence{Time: t, Explicit: true, Source: TimeFromClock}
	}

	if m := lex.DayRef.FindStringSubmatch(s); m != nil {
		day := now.AddDate(0, 0, shift)
		if c, ok := lex.DayParts[part]; ok {
			t := time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, now.Location())
			return Occurrence{Time: t, Explicit: true, Source: TimeFromDayPart}
		}
		return Occurrence{Time: day, Explicit: true, Source: TimeFromDay}
	}

	if lex.NowWords.MatchString(s) {
		return Occurrence{Time: now, Explicit: true, Source: TimeFromNow}
	}
	return Occurrence{Time: now, Source: TimeFromDefault}
}

// clock finds "HH:MM" or "H uhr [MM]" in s. A "HH.MM" directly followed by
// a dose unit is a decimal dose, and one followed by another dot is a date
// ("12.03."), neither is a time.
func (e *Extractor) clock(s string) (hour, minute int, ok bool) {
	for _, loc := range e.lex.ClockTime.FindAllStringSubmatchIndex(s, -1) {
		if e.lex.UnitPrefix.MatchString(s[loc[1]:]) {
			continue
		}
		if s[loc[3]] == '.' && loc[1] < len(s) && s[loc[1]] == '.' {
			continue
		}
		hour, _ = strconv.Atoi(s[loc[2]:loc[3]])
		minute, _ = strconv.Atoi(s[loc[4]:loc[5]])
		return hour, minute, true
	}
	if m := e.lex.ClockHour.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		return hour, minute, true
	}
	return 0, 0, false
}
