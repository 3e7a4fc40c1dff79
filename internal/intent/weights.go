package intent

// Weights is the scoring table. All values are additive unless noted.
type Weights struct {
	NoteBase float64

	AddVerb     float64
	ExplicitAdd float64
	DosageAdd   float64
	DosagePain  float64

	// Pain keywords add PainKeywordBase for the first distinct keyword and
	// PainKeywordStep for each further one, up to PainKeywordCap keywords.
	PainKeywordBase float64
	PainKeywordStep float64
	PainKeywordCap  int

	PainLevel            float64
	IntakeVerb           float64
	UserMedicationPain   float64
	UserMedicationUpdate float64
	MedicationUpdate     float64
	MedicationEffect     float64
	Reminder             float64
	AnalyticsKeyword     float64
	Question             float64
	TimeRange            float64
	Navigation           float64
	NoteMarker           float64

	// Pain context dominance: applied when an add verb co-occurs with at
	// least PainDominanceMinKeywords pain keywords and no explicit
	// "füge X hinzu" construction.
	PainDominanceMinKeywords int
	PainDominanceBoost       float64
	PainDominancePenalty     float64

	// AnalyticsPainFactor multiplies the pain score for analytics questions.
	AnalyticsPainFactor float64

	ReminderAddPenalty float64

	// MinScore is the lowest winning score accepted as a real intent. A
	// note carried only by NoteBase counts as below it, so short filler
	// ("hallo") is unknown rather than a note.
	MinScore float64

	// NoteMinLength is the transcript length (in runes) above which weak
	// input becomes a note instead of unknown.
	NoteMinLength int

	MaxConfidence     float64
	UnknownConfidence float64
}

// DefaultWeights returns the tuned German weight table.
func DefaultWeights() Weights {
	return Weights{
		NoteBase: 0.3,

		AddVerb:     0.5,
		ExplicitAdd: 0.3,
		DosageAdd:   0.25,
		DosagePain:  0.1,

		PainKeywordBase: 0.4,
		PainKeywordStep: 0.15,
		PainKeywordCap:  4,

		PainLevel:            0.2,
		IntakeVerb:           0.2,
		UserMedicationPain:   0.15,
		UserMedicationUpdate: 0.1,
		MedicationUpdate:     0.6,
		MedicationEffect:     0.6,
		Reminder:             0.7,
		AnalyticsKeyword:     0.5,
		Question:             0.2,
		TimeRange:            0.2,
		Navigation:           0.6,
		NoteMarker:           0.4,

		PainDominanceMinKeywords: 2,
		PainDominanceBoost:       0.4,
		PainDominancePenalty:     0.3,

		AnalyticsPainFactor: 0.5,
		ReminderAddPenalty:  0.25,

		MinScore:      0.3,
		NoteMinLength: 10,

		MaxConfidence:     0.95,
		UnknownConfidence: 0.2,
	}
}
