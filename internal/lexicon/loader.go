package lexicon

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Overrides is the on-disk format for site-specific lexicon additions.
//
// Example:
//
//	corrections:
//	  - name: drug-almo-triptan
//	    pattern: '\balmo\s+triptan\b'
//	    replacement: almotriptan
//	synonyms:
//	  dolormin: Ibuprofen
//	stopwords: [heut]
//	default_clock:
//	  morning: "07:30"
type Overrides struct {
	Corrections  []CorrectionOverride `yaml:"corrections"`
	Synonyms     map[string]string    `yaml:"synonyms"`
	Stopwords    []string             `yaml:"stopwords"`
	DefaultClock map[string]string    `yaml:"default_clock"`
}

// CorrectionOverride is an additional ASR correction. Overrides run after
// the built-in table.
type CorrectionOverride struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// LoadFile reads the German lexicon and applies the overrides at path.
// An empty path returns the plain German lexicon.
func LoadFile(path string) (*Lexicon, error) {
	if path == "" {
		return German(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: open %q: %w", path, err)
	}
	defer f.Close()

	o, err := LoadOverrides(f)
	if err != nil {
		return nil, fmt.Errorf("lexicon: parse %q: %w", path, err)
	}
	return Apply(German(), o)
}

// LoadOverrides parses override YAML from r. The reader is consumed
// entirely; the caller is responsible for closing it.
func LoadOverrides(r io.Reader) (*Overrides, error) {
	var o Overrides
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil {
		if errors.Is(err, io.EOF) {
			return &o, nil
		}
		return nil, fmt.Errorf("lexicon: decode yaml: %w", err)
	}
	return &o, nil
}

// Apply returns a copy of base with o merged in. base is not modified.
// All invalid entries are reported together.
func Apply(base *Lexicon, o *Overrides) (*Lexicon, error) {
	l := base.clone()
	if o == nil {
		return l, nil
	}

	var errs []error
	for i, c := range o.Corrections {
		if c.Pattern == "" {
			errs = append(errs, fmt.Errorf("corrections[%d]: pattern is required", i))
			continue
		}
		rx, err := regexp.Compile(c.Pattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("corrections[%d]: %w", i, err))
			continue
		}
		name := c.Name
		if name == "" {
			name = "custom-" + strconv.Itoa(i)
		}
		l.Corrections = append(l.Corrections, Correction{Name: name, Pattern: rx, Replacement: c.Replacement})
	}

	for alias, canonical := range o.Synonyms {
		key := strings.ToLower(strings.TrimSpace(l.Folder.Replace(alias)))
		if key == "" || strings.TrimSpace(canonical) == "" {
			errs = append(errs, fmt.Errorf("synonyms: empty alias or canonical name for %q", alias))
			continue
		}
		l.Synonyms[key] = strings.TrimSpace(canonical)
	}

	for _, w := range o.Stopwords {
		if w = strings.ToLower(strings.TrimSpace(l.Folder.Replace(w))); w != "" {
			l.Stopwords[w] = struct{}{}
		}
	}

	for bucket, hhmm := range o.DefaultClock {
		tod := TimeOfDay(bucket)
		if _, ok := l.DefaultClock[tod]; !ok {
			errs = append(errs, fmt.Errorf("default_clock: unknown time of day %q", bucket))
			continue
		}
		c, err := ParseClock(hhmm)
		if err != nil {
			errs = append(errs, fmt.Errorf("default_clock.%s: %w", bucket, err))
			continue
		}
		l.DefaultClock[tod] = c
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("lexicon: invalid overrides: %w", errors.Join(errs...))
	}
	return l, nil
}

// ParseClock parses an "HH:MM" wall-clock time.
func ParseClock(s string) (Clock, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Clock{}, fmt.Errorf("clock %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("clock %q: invalid hour", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("clock %q: invalid minute", s)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}
