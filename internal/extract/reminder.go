package extract

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/MrWong99/painvoice/internal/lexicon"
	"github.com/MrWong99/painvoice/internal/transcript"
	"github.com/MrWong99/painvoice/pkg/types"
)

// Level grades how a reminder field was obtained.
type Level string

const (
	High   Level = "high"
	Medium Level = "medium"
	Low    Level = "low"
)

// ReminderType distinguishes medication intake from appointments.
type ReminderType string

const (
	ReminderMedication  ReminderType = "medication"
	ReminderAppointment ReminderType = "appointment"
)

// RepeatNone is the cadence of a one-off reminder.
const RepeatNone = "none"

// ReminderConfidence grades each reminder field independently: high when a
// pattern fired, medium when the value was inferred, low when a default
// was used.
type ReminderConfidence struct {
	Type        Level `json:"type"`
	Time        Level `json:"time"`
	Medications Level `json:"medications"`
}

// ReminderEntry is a parsed reminder.
type ReminderEntry struct {
	Type        ReminderType       `json:"type"`
	Title       string             `json:"title"`
	Medications []string           `json:"medications"`
	Date        string             `json:"date"`
	Time        string             `json:"time"`
	TimeOfDay   lexicon.TimeOfDay  `json:"time_of_day"`
	Repeat      string             `json:"repeat"`
	Notes       string             `json:"notes"`
	Confidence  ReminderConfidence `json:"confidence"`
}

// Reminder parses text as a reminder request using the default lexicon.
func Reminder(text string, userMeds []types.UserMedication, now time.Time) ReminderEntry {
	return std.Reminder(text, userMeds, now)
}

// Reminder parses text as a reminder request. Dates are resolved against
// now in now's location. It never fails: every field falls back to a
// default with a low confidence grade.
func (e *Extractor) Reminder(text string, userMeds []types.UserMedication, now time.Time) ReminderEntry {
	nt := e.normalizer.Normalize(text)
	s := nt.Normalized

	out := ReminderEntry{
		Repeat: RepeatNone,
		Notes:  strings.TrimSpace(text),
	}

	out.Medications, out.Confidence.Medications = e.reminderMedications(nt, userMeds)
	out.Type, out.Confidence.Type = e.reminderType(s, len(out.Medications) > 0)

	clock, tod, timeLevel := e.reminderClock(s)
	out.Time = clock.String()
	out.TimeOfDay = tod
	out.Confidence.Time = timeLevel

	out.Date = e.reminderDate(s, clock, now).Format(time.DateOnly)

	if r, ok := e.lex.Repeats.First(s); ok {
		out.Repeat = r
	}
	out.Title = e.reminderTitle(text, out)
	return out
}

func (e *Extractor) reminderMedications(nt transcript.NormalizedTranscript, userMeds []types.UserMedication) ([]string, Level) {
	if found := e.matcher.FindInTokens(nt.Tokens, types.MedicationNames(userMeds)); len(found) > 0 {
		return found, High
	}
	var meds []string
	for _, alias := range e.matcher.FindInTokens(nt.Tokens, e.synonyms) {
		canonical, _ := e.lex.Canonical(alias)
		if !slices.ContainsFunc(meds, func(m string) bool { return e.matcher.Matches(m, canonical) }) {
			meds = append(meds, canonical)
		}
	}
	if len(meds) > 0 {
		return meds, Medium
	}
	return []string{}, Low
}

func (e *Extractor) reminderType(s string, hasMeds bool) (ReminderType, Level) {
	typ, level := ReminderMedication, Low
	switch {
	case hasMeds:
		level = High
	case e.lex.AppointmentKeyword.MatchString(s):
		typ, level = ReminderAppointment, High
	case e.lex.MedicationKeyword.MatchString(s):
		level = High
	}
	// Without a trigger phrase the whole utterance may not be a reminder.
	if level == High && !e.lex.Reminder.MatchString(s) {
		level = Medium
	}
	return typ, level
}

// reminderClock resolves the reminder time. An explicit "um H[:MM] [uhr]"
// wins and is shifted into the afternoon when a later bucket was named
// ("abends um 7" is 19:00). A bucket alone uses its default clock time.
func (e *Extractor) reminderClock(s string) (lexicon.Clock, lexicon.TimeOfDay, Level) {
	tod, hasBucket := e.lex.TimesOfDay.First(s)

	c, ok := e.explicitClock(s)
	if !ok {
		if hasBucket {
			return e.lex.DefaultClock[tod], tod, Medium
		}
		return e.lex.DefaultClock[lexicon.Morning], lexicon.Morning, Low
	}

	if hasBucket {
		switch {
		case tod == lexicon.Evening && c.Hour < 12,
			tod == lexicon.Night && c.Hour >= 6 && c.Hour < 12,
			tod == lexicon.Noon && c.Hour < 6:
			c.Hour += 12
		}
	} else {
		tod = bucketOf(c.Hour)
	}
	return c, tod, High
}

func (e *Extractor) explicitClock(s string) (lexicon.Clock, bool) {
	if m := e.lex.ReminderAt.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		var minute int
		switch {
		case m[2] != "":
			minute, _ = strconv.Atoi(m[2])
		case m[3] != "":
			minute, _ = strconv.Atoi(m[3])
		}
		if h <= 23 && minute <= 59 {
			return lexicon.Clock{Hour: h, Minute: minute}, true
		}
	}
	for _, m := range e.lex.ReminderAtWd.FindAllStringSubmatch(s, -1) {
		if _, ok := e.lex.NumberWords[m[1]]; !ok {
			continue
		}
		if h, ok := e.lex.Number(m[1]); ok && h <= 23 {
			return lexicon.Clock{Hour: h}, true
		}
	}
	return lexicon.Clock{}, false
}

func bucketOf(hour int) lexicon.TimeOfDay {
	switch {
	case hour >= 5 && hour <= 10:
		return lexicon.Morning
	case hour >= 11 && hour <= 16:
		return lexicon.Noon
	case hour >= 17 && hour <= 21:
		return lexicon.Evening
	default:
		return lexicon.Night
	}
}

// reminderDate resolves the reminder day. Without a date phrase the
// reminder is today, or tomorrow when clock has already passed.
func (e *Extractor) reminderDate(s string, clock lexicon.Clock, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if m := e.lex.InDays.FindStringSubmatch(s); m != nil {
		if n, ok := e.lex.Number(m[1]); ok {
			if strings.HasPrefix(m[2], "woche") {
				n *= 7
			}
			return today.AddDate(0, 0, n)
		}
	}

	// "am morgen" is a time of day, not tomorrow.
	masked := e.lex.MorningPhrase.ReplaceAllStringFunc(s, func(m string) string {
		return strings.Repeat(" ", len(m))
	})
	if n, ok := e.lex.RelativeDays.First(masked); ok {
		return today.AddDate(0, 0, n)
	}

	if m := e.lex.WeekdayRef.FindStringSubmatch(s); m != nil {
		diff := (int(e.lex.Weekdays[m[1]]) - int(now.Weekday()) + 7) % 7
		if diff == 0 {
			diff = 7
		}
		return today.AddDate(0, 0, diff)
	}

	at := today.Add(time.Duration(clock.Hour)*time.Hour + time.Duration(clock.Minute)*time.Minute)
	if at.Before(now) {
		return today.AddDate(0, 0, 1)
	}
	return today
}

func (e *Extractor) reminderTitle(text string, r ReminderEntry) string {
	if r.Type == ReminderAppointment {
		lower := strings.ToLower(norm.NFC.String(text))
		if m := e.lex.AppointmentTitle.FindStringSubmatch(lower); m != nil {
			return titleCase(m[1])
		}
		return "Termin"
	}
	switch {
	case len(r.Medications) > 0:
		return strings.Join(r.Medications, ", ") + " einnehmen"
	case r.Confidence.Type == Low:
		return "Erinnerung"
	default:
		return "Medikament einnehmen"
	}
}

var titleParticles = map[string]bool{
	"bei": true, "beim": true, "im": true, "in": true, "der": true, "zur": true, "zum": true,
}

// titleCase capitalizes the nouns of an appointment phrase.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if !titleParticles[w] {
			words[i] = displayName(w)
		}
	}
	return strings.Join(words, " ")
}
