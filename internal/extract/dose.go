package extract

import "github.com/MrWong99/painvoice/internal/transcript"

// QuartersPerTablet is the dose of one whole tablet in quarters.
const QuartersPerTablet = 4

// DoseQuarters returns the spoken tablet amount in quarters using the
// default lexicon.
func DoseQuarters(nt transcript.NormalizedTranscript) int {
	return std.DoseQuarters(nt)
}

// DoseQuarters returns the spoken tablet amount in quarters: a fraction
// ("halbe tablette" is 2), a count ("zwei tabletten" is 8), or one whole
// tablet when nothing was said.
func (e *Extractor) DoseQuarters(nt transcript.NormalizedTranscript) int {
	if q, ok := e.lex.DoseFractions.First(nt.Normalized); ok {
		return q
	}
	for _, m := range e.lex.TabletCount.FindAllStringSubmatch(nt.Normalized, -1) {
		if n, ok := e.lex.Number(m[1]); ok && n > 0 && n <= 12 {
			return n * QuartersPerTablet
		}
	}
	return QuartersPerTablet
}
