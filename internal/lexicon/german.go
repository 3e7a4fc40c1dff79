package lexicon

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/MrWong99/painvoice/internal/rules"
)

// Version is the rule-set identifier reported as nlp_version.
const Version = "de-rules-1.0"

var re = regexp.MustCompile

var defaultGerman = sync.OnceValue(German)

var germanFolder = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue", "ẞ", "SS",
)

// FoldGerman replaces German umlauts and sharp s with their ASCII digraphs.
func FoldGerman(s string) string {
	return germanFolder.Replace(s)
}

// Default returns a shared German lexicon. The value is read-only; callers
// that need to customise rules should start from [German] or [Apply].
func Default() *Lexicon {
	return defaultGerman()
}

// German builds a fresh German lexicon.
func German() *Lexicon {
	return &Lexicon{
		Locale:  "de-DE",
		Version: Version,

		Corrections: germanCorrections(),
		Folder:      germanFolder,

		AddVerb:          re(`\bfuege\b.*\bhinzu\b|\bhinzufuegen\b|\blege\b.*\ban\b|\banlegen\b|\bneue[sn]?\s+(?:medikament|medikation|arznei)|\berstelle\b.*\bmedikament`),
		ExplicitAdd:      re(`\bfuege\s+\S+(?:\s+\S+){0,3}\s+hinzu\b|\b(?:medikament|medikation)\s+(?:hinzufuegen|anlegen)\b|\bneues\s+medikament\b`),
		Dosage:           re(`\b\d{1,4}(?:[.,]\d{1,2})?\s*(?:mcg|mg|ml|ug|g)\b`),
		PainLevel:        re(`\b(?:staerke|stufe|level|nrs|schmerzlevel|schmerzstaerke|intensitaet)\s*(?:von\s+)?(10|[0-9])\b|\b(10|[0-9])\s+von\s+10\b`),
		IntakeVerb:       re(`\b(?:genommen|eingenommen|nehme|nahm|geschluckt|gespritzt|inhaliert|eingeworfen)\b`),
		AnalyticsKeyword: re(`\bwie\s+(?:viele|viel|oft|lange|haeufig)\b|\bwieviele?\b|\bdurchschnitt\w*|\bstatistik\w*|\bauswertung\w*|\banzahl\b|\btrend\w*|\bzusammenfassung\b|\bwann\s+(?:hatte|habe|war)\b|\bvergleich\w*`),
		Question:         re(`\?|^(?:wie|wann|was|wo|welche[rsnm]?|wieviele?|warum|hatte\s+ich|habe\s+ich|war\s+ich)\b`),
		TimeRange:        re(`\b(?:letzten|vergangenen|letzte[rm]?|diese[nrm]?|seit)\s+(?:\d+\s+|zwei\s+|drei\s+|vier\s+|sechs\s+)?(?:tag|tage|tagen|woche|wochen|monat|monate|monaten|jahr|jahren)\b`),
		MedicationUpdate: re(`\b(?:aendere|aendern|aenderung|umstellen|umgestellt|erhoehe|erhoehen|erhoeht|reduziere|reduzieren|reduziert|absetzen|abgesetzt|neue\s+dosis|dosis\s+(?:aendern|anpassen|erhoehen|reduzieren)|nicht\s+mehr\s+nehmen|setze\b.*\bab)\b`),
		MedicationEffect: re(`\b(?:geholfen|gewirkt|wirkt|wirkung|hilft|half|wirkungslos|angeschlagen)\b`),
		Reminder:         re(`\b(?:erinnere|erinner|erinnerung|erinnern|wecker|benachrichtige|benachrichtigung)\b|\bvergiss\s+nicht\b|\bnicht\s+vergessen\b`),
		Navigation:       re(`\b(?:oeffne|zeige?|gehe?|wechsle|navigiere|bring\s+mich)\b.*\b(?:tagebuch|einstellungen|auswertung|auswertungen|kalender|uebersicht|startseite|bericht|berichte|medikamente|profil|statistik)\b|^(?:zurueck|startseite|einstellungen)\b`),
		NoteMarker:       re(`\b(?:notiz|notiere|notieren|vermerk|vermerke|anmerkung|merke\s+dir)\b`),

		PainKeywords: rules.Table[string]{
			{Name: "schmerz", Pattern: re(`schmerz`), Value: "schmerz"},
			{Name: "migraene", Pattern: re(`migraene`), Value: "migraene"},
			{Name: "attacke", Pattern: re(`\battacke`), Value: "attacke"},
			{Name: "kopfweh", Pattern: re(`\bkopfweh\b`), Value: "kopfweh"},
			{Name: "aura", Pattern: re(`\baura\b`), Value: "aura"},
			{Name: "staerke", Pattern: re(`\bstaerke\s*(?:10|[0-9])\b`), Value: "staerke"},
			{Name: "pochend", Pattern: re(`\b(?:pochend|pulsierend|haemmernd)`), Value: "pochend"},
			{Name: "stechend", Pattern: re(`\bstechend`), Value: "stechend"},
			{Name: "drueckend", Pattern: re(`\bdrueckend`), Value: "drueckend"},
		},

		NumberWords: map[string]int{
			"null": 0, "eins": 1, "zwei": 2, "drei": 3, "vier": 4, "fuenf": 5,
			"sechs": 6, "sieben": 7, "acht": 8, "neun": 9, "zehn": 10,
			"elf": 11, "zwoelf": 12,
		},
		IndefiniteOne: set("ein eine einer einem einen"),

		IntensityBands: rules.Table[int]{
			{Name: "severe", Pattern: re(`\b(?:sehr\s+stark\w*|extrem\w*|unertraeglich\w*|maximal\w*)`), Value: 9},
			{Name: "strong", Pattern: re(`\b(?:stark|starke[nrms]?|heftig|heftige[nrms]?|schlimm|schlimme[nrms]?)\b`), Value: 7},
			{Name: "moderate", Pattern: re(`\b(?:mittel|mittlere[nrms]?|mittelstark\w*|maessig\w*)\b`), Value: 5},
			{Name: "mild", Pattern: re(`\b(?:leicht\w*|schwach\w*|gering\w*)\b`), Value: 3},
		},

		NonPainFollowers: set("stunde stunden std minute minuten min uhr tag tage tagen woche wochen monat monate jahr jahre jahren mal " +
			"mg ml g mcg ug tablette tabletten pille pillen kapsel kapseln tropfen hub stueck prozent tassen glaeser glas " +
			"attacke attacken anfall anfaelle episode episoden"),
		NonPainPrecursors: set("vor um seit nach in ab bis gegen von"),

		Stopwords: set("ich habe hab hatte hatten eine ein einen einer einem und oder mit von vom zum zur bitte " +
			"fuege hinzu lege an neues neue neu medikament medikation genommen eingenommen nehme nahm " +
			"mich mir um uhr heute gestern morgen jetzt gerade noch dann danach tablette tabletten kapsel kapseln tropfen hub " +
			"das die der den dem des am im in auf fuer gegen bei beim erinnere erinnerung mal schon etwas so sehr " +
			"stark starke staerke zu es ist war wurde wegen weil nur gleich sofort zwei drei vier halbe viertel " +
			"ml mg g mcg ug dosis spaeter nochmal wieder zusaetzlich erst auch"),

		Synonyms: map[string]string{
			"sumatriptan":         "Sumatriptan",
			"imigran":             "Sumatriptan",
			"rizatriptan":         "Rizatriptan",
			"maxalt":              "Rizatriptan",
			"zolmitriptan":        "Zolmitriptan",
			"ascotop":             "Zolmitriptan",
			"naratriptan":         "Naratriptan",
			"formigran":           "Naratriptan",
			"eletriptan":          "Eletriptan",
			"relpax":              "Eletriptan",
			"almotriptan":         "Almotriptan",
			"frovatriptan":        "Frovatriptan",
			"ibuprofen":           "Ibuprofen",
			"paracetamol":         "Paracetamol",
			"aspirin":             "Aspirin",
			"ass":                 "Aspirin",
			"acetylsalicylsaeure": "Aspirin",
			"naproxen":            "Naproxen",
			"diclofenac":          "Diclofenac",
			"metamizol":           "Metamizol",
			"novalgin":            "Metamizol",
			"thomapyrin":          "Thomapyrin",
			"metoclopramid":       "Metoclopramid",
			"mcp":                 "Metoclopramid",
			"domperidon":          "Domperidon",
			"topiramat":           "Topiramat",
			"propranolol":         "Propranolol",
			"metoprolol":          "Metoprolol",
			"amitriptylin":        "Amitriptylin",
			"flunarizin":          "Flunarizin",
			"erenumab":            "Erenumab",
			"aimovig":             "Erenumab",
			"fremanezumab":        "Fremanezumab",
			"ajovy":               "Fremanezumab",
			"galcanezumab":        "Galcanezumab",
			"emgality":            "Galcanezumab",
			"botox":               "Botox",
		},

		DoseAmount: re(`\b(\d{1,4}(?:[.,]\d{1,2})?)\s*(mcg|mg|ml|ug|g|tropfen|hub|huebe)\b`),
		UnitPrefix: re(`^\s*(?:mcg|mg|ml|ug|g)\b`),

		DoseFractions: rules.Table[int]{
			{Name: "three-quarters", Pattern: re(`\bdrei\s*viertel\s+(?:tablette|pille)`), Value: 3},
			{Name: "half", Pattern: re(`\bhalbe\s+(?:tablette|pille|kapsel|dosis)`), Value: 2},
			{Name: "quarter", Pattern: re(`\bviertel\s+(?:tablette|pille)`), Value: 1},
		},
		TabletCount: re(`\b(\d{1,2}|[a-z]+)\s+(?:tabletten?|pillen?|kapseln?)\b`),

		NowWords:    re(`\b(?:jetzt|gerade|eben|soeben)\b`),
		HalfHourAgo: re(`\bvor\s+(?:einer\s+)?halben?\s+stunde\b`),
		RelativeAgo: re(`\bvor\s+(\d{1,3}|[a-z]+)\s+(stunden?|minuten?)\b`),
		ClockTime:   re(`\b([01]?\d|2[0-3])[:.]([0-5]\d)\b`),
		ClockHour:   re(`\b([01]?\d|2[0-3])\s*uhr(?:\s+([0-5]\d)\b)?`),
		DayRef:      re(`\b(vorgestern|gestern|heute)(?:\s+(frueh|morgen|vormittag|mittag|nachmittag|abend|nacht))?\b`),
		DayShift:    map[string]int{"vorgestern": -2, "gestern": -1, "heute": 0},
		DayParts: map[string]Clock{
			"frueh":      {Hour: 8},
			"morgen":     {Hour: 8},
			"vormittag":  {Hour: 10},
			"mittag":     {Hour: 12},
			"nachmittag": {Hour: 15},
			"abend":      {Hour: 19},
			"nacht":      {Hour: 23},
		},

		ClauseSplit:      re(`[.!?;]+(?:\s+|$)`),
		ConjunctionSplit: re(`(?i),\s*((?:und|aber|weil|dass|obwohl)\b)`),

		MedicationEvent: re(`\b(?:genommen|eingenommen|nehme|nahm|geschluckt|gespritzt|eingeworfen|tablette\w*|medikament\w*|\w*triptan|schmerzmittel|spritze|dosis|geholfen|gewirkt|wirkung\w*)\b`),
		SymptomCourse:   re(`schmerz|migraene|\b(?:uebelkeit|uebel|erbrochen|erbrechen|aura|schwindel\w*|lichtempfindlich\w*|geraeuschempfindlich\w*|kopfweh|attacke\w*|nachgelassen|pochend\w*|stechend\w*|flimmer\w*|sehstoerung\w*|symptom\w*|besser|schlimmer)\b`),
		LifestyleFactor: re(`\b(?:schlaf\w*|geschlafen|muede|muedigkeit|stress\w*|gestresst|kaffee|espresso|koffein|cola|alkohol|wein|rotwein|bier|sekt|getrunken|trinken|wasser|gegessen|essen|mahlzeit\w*|fruehstueck|mittagessen|abendessen|sport|joggen|training|gelaufen|bildschirm\w*|computer|handy|periode|menstruation|zyklus|regelblutung)\b`),
		Trigger:         re(`\b(?:ausgeloest|ausloeser|trigger\w*|wetter\w*|foehn|gewitter|laerm|licht|geruch|gerueche|parfum|hitze|kaelte|unterzuckert|nackenverspannung|verspannt)\b`),
		TimePattern:     re(`\b(?:jeden|jede|jedes|immer|wieder|regelmaessig\w*|in\s+folge|wochenende\w*|montag\w*|dienstag\w*|mittwoch\w*|donnerstag\w*|freitag\w*|samstag\w*|sonntag\w*|morgens|abends|nachts|taeglich|seit)\b`),

		EffectRatings: rules.Table[string]{
			{Name: "worse", Pattern: re(`\b(?:schlimmer\s+geworden|verschlechter\w*|verschlimmer\w*|noch\s+schlimmer)\b`), Value: "verschlechterung"},
			{Name: "none", Pattern: re(`\b(?:nicht\s+geholfen|nichts\s+geholfen|keine\s+wirkung|nichts\s+gebracht|nicht\s+gewirkt|wirkungslos)\b`), Value: "keine_wirkung"},
			{Name: "very-good", Pattern: re(`\b(?:sehr\s+gut\s+(?:geholfen|gewirkt)|super\s+geholfen|komplett\s+weg|voellig\s+weg|ganz\s+weg|schmerzfrei)\b`), Value: "sehr_gut"},
			{Name: "slight", Pattern: re(`\b(?:kaum\s+(?:geholfen|gewirkt)|wenig\s+geholfen|etwas\s+geholfen|bisschen\s+geholfen|kaum\s+besser)\b`), Value: "gering"},
			{Name: "moderate", Pattern: re(`\b(?:teilweise\s+geholfen|einigermassen|maessig\s+geholfen|halbwegs|mittelmaessig|etwas\s+besser)\b`), Value: "mittel"},
			{Name: "good", Pattern: re(`\b(?:gut\s+geholfen|gut\s+gewirkt|geholfen|gewirkt|besser\s+geworden|deutlich\s+besser|wirkt\s+gut)\b`), Value: "gut"},
		},
		MedicationRoles: rules.Table[string]{
			{Name: "rescue", Pattern: re(`\b(?:notfall\w*|zweite\s+dosis|nachgenommen|nochmal\s+genommen|noch\s+eine|zusaetzlich)\b`), Value: "rescue"},
			{Name: "companion", Pattern: re(`\b(?:gegen\s+(?:die\s+)?uebelkeit|begleit\w*|magenschutz|mcp|metoclopramid|domperidon)\b`), Value: "begleit"},
			{Name: "prophylaxis", Pattern: re(`\b(?:prophylax\w*|vorbeug\w*|dauermedikation|taeglich|jeden\s+(?:tag|abend|morgen))\b`), Value: "prophylaxe"},
			{Name: "acute", Pattern: re(`\b(?:akut\w*|bei\s+bedarf|gegen\s+(?:die\s+)?(?:schmerzen|migraene|attacke|kopfschmerz\w*)|\w*triptan)\b`), Value: "akut"},
		},
		TimingRelations: rules.Table[string]{
			{Name: "late", Pattern: re(`\b(?:zu\s+spaet|spaet\s+genommen|erst\s+nach|verspaetet)\b`), Value: "late"},
			{Name: "early", Pattern: re(`\b(?:sofort|direkt|rechtzeitig|frueh\s+genommen|gleich\s+zu\s+beginn|bei\s+beginn)\b`), Value: "early"},
			{Name: "before", Pattern: re(`\b(?:vorher|bevor|vor\s+dem|vor\s+der)\b`), Value: "before"},
			{Name: "after", Pattern: re(`\b(?:danach|nachher|anschliessend|am\s+naechsten|spaeter)\b`), Value: "after"},
			{Name: "during", Pattern: re(`\b(?:waehrend|gleichzeitig|beim)\b`), Value: "during"},
		},
		TimeReferences: rules.Table[string]{
			{Name: "streak", Pattern: re(`\b(?:erste|zweite|dritte|vierte|fuenfte|\d+\.)[rnms]?\s+(?:montag|dienstag|mittwoch|donnerstag|freitag|samstag|sonntag|tag|nacht|woche|morgen|abend)\s+in\s+folge\b`), Value: "streak"},
			{Name: "next-day", Pattern: re(`\bam\s+naechsten\s+(?:morgen|tag|abend|mittag)\b`), Value: "next_day"},
			{Name: "afterwards", Pattern: re(`\b(?:kurz\s+)?danach\b`), Value: "afterwards"},
			{Name: "offset", Pattern: re(`\b(?:nach|vor|seit)\s+(?:\d+|einer|einem|zwei|drei|vier|fuenf|einer\s+halben)\s+(?:stunden?|minuten?|tagen?|wochen?)\b`), Value: "offset"},
			{Name: "recurring", Pattern: re(`\bjede[nrs]?\s+(?:montag|dienstag|mittwoch|donnerstag|freitag|samstag|sonntag|morgen|abend|tag|nacht|wochenende)\b`), Value: "recurring"},
			{Name: "day", Pattern: re(`\b(?:vorgestern|gestern|heute)(?:\s+(?:morgen|frueh|mittag|nachmittag|abend|nacht))?\b`), Value: "day"},
			{Name: "routine", Pattern: re(`\b(?:beim\s+aufwachen|nach\s+dem\s+aufstehen|vor\s+dem\s+schlafen(?:gehen)?)\b`), Value: "routine"},
			{Name: "day-part", Pattern: re(`\b(?:morgens|mittags|abends|nachts)\b`), Value: "day_part"},
			{Name: "weekday", Pattern: re(`\bam\s+(?:montag|dienstag|mittwoch|donnerstag|freitag|samstag|sonntag|wochenende)\b`), Value: "weekday"},
		},

		Factors: []FactorRule{
			{Type: "sleep", Pattern: re(`\b(?:schlaf\w*|geschlafen|muede|muedigkeit|wach\s+gelegen|ausgeschlafen)\b`), Values: rules.Table[string]{
				{Name: "bad", Pattern: re(`\b(?:schlecht|unruhig|kaum|wenig|zu\s+kurz|nicht\s+gut|wach\s+gelegen|muede)\b`), Value: "schlecht"},
				{Name: "good", Pattern: re(`\b(?:gut|ausgeschlafen|erholsam|lange|tief)\b`), Value: "gut"},
			}},
			{Type: "stress", Pattern: re(`\b(?:stress\w*|gestresst|angespannt|hektik|hektisch|aerger|streit)\b`), Values: rules.Table[string]{
				{Name: "high", Pattern: re(`\b(?:viel|sehr|extrem|stark|grosse[nrm]?|hoch)\b`), Value: "hoch"},
				{Name: "low", Pattern: re(`\b(?:wenig|kaum|kein\w*|entspannt)\b`), Value: "niedrig"},
			}},
			{Type: "alcohol", Pattern: re(`\b(?:alkohol|wein|rotwein|bier|sekt|schnaps|cocktail\w*)\b`)},
			{Type: "caffeine", Pattern: re(`\b(?:kaffee|espresso|koffein|cola|energy\w*|tee)\b`)},
			{Type: "hydration", Pattern: re(`\b(?:wasser|getrunken|trinken|fluessigkeit|durst\w*)\b`)},
			{Type: "meal", Pattern: re(`\b(?:gegessen|essen|mahlzeit\w*|fruehstueck|mittagessen|abendessen|hunger|schokolade|kaese|gefastet)\b`)},
			{Type: "exercise", Pattern: re(`\b(?:sport|joggen|gejoggt|training|trainiert|fitness|gelaufen|spaziergang|radfahren|yoga)\b`)},
			{Type: "screen", Pattern: re(`\b(?:bildschirm\w*|computer|handy|monitor|laptop)\b`)},
			{Type: "menstruation", Pattern: re(`\b(?:periode|menstruation|zyklus|regelblutung)\b`)},
			{Type: "weather", Pattern: re(`\b(?:wetter\w*|foehn|gewitter|hitze|kaelte)\b`)},
		},
		FactorQuality: rules.Table[string]{
			{Name: "much", Pattern: re(`\b(?:zu\s+viel|sehr\s+viel|viel|hoch|extrem)\b`), Value: "viel"},
			{Name: "little", Pattern: re(`\b(?:zu\s+wenig|wenig|kaum|kein\w*|ausgelassen|vergessen|ohne)\b`), Value: "wenig"},
		},
		FactorQuantity: re(`\b(\d{1,2}|ein|eine|einen|zwei|drei|vier|fuenf|sechs|sieben|acht|neun|zehn)\s+(tassen?|glaeser|glas|becher|flaschen?|stunden?|liter|dosen?)\b`),

		MedicationKeyword:  re(`\b(?:tablette\w*|medikament\w*|einnahme|einnehmen|nehmen|pille\w*|spritze\w*|dosis|tropfen)\b`),
		AppointmentKeyword: re(`\b(?:termin\w*|arzttermin\w*|arzt\w*|aerztin|praxis|neurolog\w*|zahnarzt|untersuchung|kontrolle|sprechstunde|physiotherapie|mrt|blutabnahme)\b`),
		AppointmentTitle:   re(`(?:^|\s)((?:arzttermin|termin|zahnarzt|arzt|ärztin|aerztin|praxis|neurolog\S*|untersuchung|kontrolle|sprechstunde|physiotherapie|mrt|blutabnahme)(?:\s+(?:bei|beim|im|in\s+der|zur|zum)\s+[^\s,.!?]+)?)`),

		TimesOfDay: rules.Table[TimeOfDay]{
			{Name: "morning", Pattern: re(`\b(?:morgens|frueh|fruehs|vormittags?|am\s+morgen|jeden\s+morgen|zum\s+fruehstueck|nach\s+dem\s+aufstehen)\b`), Value: Morning},
			{Name: "noon", Pattern: re(`\b(?:mittags?|nachmittags?|zum\s+mittagessen)\b`), Value: Noon},
			{Name: "evening", Pattern: re(`\b(?:abends?|am\s+abend|jeden\s+abend|zum\s+abendessen)\b`), Value: Evening},
			{Name: "night", Pattern: re(`\b(?:nachts|nacht|zur\s+nacht|vor\s+dem\s+schlafen\w*|schlafengehen)\b`), Value: Night},
		},
		DefaultClock: map[TimeOfDay]Clock{
			Morning: {Hour: 8},
			Noon:    {Hour: 12},
			Evening: {Hour: 18},
			Night:   {Hour: 22},
		},
		ReminderAt:   re(`\bum\s+(\d{1,2})(?:[:.](\d{2}))?(?:\s*uhr(?:\s+(\d{2}))?)?\b`),
		ReminderAtWd: re(`\bum\s+([a-z]+)(?:\s+uhr)?\b`),

		RelativeDays: rules.Table[int]{
			{Name: "day-after-tomorrow", Pattern: re(`\buebermorgen\b`), Value: 2},
			{Name: "next-week", Pattern: re(`\bnaechste[nrs]?\s+woche\b`), Value: 7},
			{Name: "today", Pattern: re(`\bheute\b`), Value: 0},
			{Name: "tomorrow", Pattern: re(`\bmorgen\b`), Value: 1},
		},
		InDays:        re(`\bin\s+(\d{1,3}|[a-z]+)\s+(tag|tagen|woche|wochen)\b`),
		WeekdayRef:    re(`\b(montag|dienstag|mittwoch|donnerstag|freitag|samstag|sonntag)\b`),
		MorningPhrase: re(`\b(?:am|jeden|zum|diesen|den)\s+morgen\b`),
		Weekdays: map[string]time.Weekday{
			"montag":     time.Monday,
			"dienstag":   time.Tuesday,
			"mittwoch":   time.Wednesday,
			"donnerstag": time.Thursday,
			"freitag":    time.Friday,
			"samstag":    time.Saturday,
			"sonntag":    time.Sunday,
		},

		Repeats: rules.Table[string]{
			{Name: "daily", Pattern: re(`\b(?:taeglich|jeden\s+(?:tag|morgen|abend|mittag)|jede\s+nacht|morgens\s+und\s+abends)\b`), Value: "daily"},
			{Name: "weekly", Pattern: re(`\b(?:woechentlich|jede\s+woche|jeden\s+(?:montag|dienstag|mittwoch|donnerstag|freitag|samstag|sonntag))\b`), Value: "weekly"},
			{Name: "monthly", Pattern: re(`\b(?:monatlich|jeden\s+monat)\b`), Value: "monthly"},
		},
	}
}

// germanCorrections is the ordered ASR correction table. Rules run on
// lowercased text before umlaut folding. Order matters: "hab's" must be
// expanded before the bare "hab" rule sees it.
func germanCorrections() []Correction {
	return []Correction{
		{Name: "contraction-habs", Pattern: re(`\bhab'?s\b`), Replacement: "habe es"},
		{Name: "contraction-hab", Pattern: re(`\bhab\b`), Replacement: "habe"},
		{Name: "contraction-gibts", Pattern: re(`\bgibt'?s\b`), Replacement: "gibt es"},
		{Name: "contraction-gehts", Pattern: re(`\bgeht'?s\b`), Replacement: "geht es"},
		{Name: "contraction-nehm", Pattern: re(`\bnehm\b`), Replacement: "nehme"},
		{Name: "unit-split-mg", Pattern: re(`(\d)\s*m\s+g\b`), Replacement: "${1} mg"},
		{Name: "unit-milligramm", Pattern: re(`\bmilligramm?\b`), Replacement: "mg"},
		{Name: "unit-mikrogramm", Pattern: re(`\bmikrogramm?\b`), Replacement: "mcg"},
		{Name: "unit-milliliter", Pattern: re(`\bmilliliter\b`), Replacement: "ml"},
		{Name: "drug-somatriptan", Pattern: re(`\bsomatriptan\b`), Replacement: "sumatriptan"},
		{Name: "drug-suma-triptan", Pattern: re(`\bsuma\s+triptan\b`), Replacement: "sumatriptan"},
		{Name: "drug-ibu-profen", Pattern: re(`\bibu\s+profen\b`), Replacement: "ibuprofen"},
		{Name: "drug-ibuprophen", Pattern: re(`\bibuprophen\b`), Replacement: "ibuprofen"},
		{Name: "drug-para-cetamol", Pattern: re(`\bpara\s+cetamol\b`), Replacement: "paracetamol"},
		{Name: "drug-riza-triptan", Pattern: re(`\briza\s+triptan\b`), Replacement: "rizatriptan"},
		{Name: "drug-zolmi-triptan", Pattern: re(`\bzolmi\s+triptan\b`), Replacement: "zolmitriptan"},
		{Name: "compound-kopfschmerz", Pattern: re(`\bkopf\s+schmerz`), Replacement: "kopfschmerz"},
		{Name: "scale-slash", Pattern: re(`\b(\d{1,2})\s*/\s*10\b`), Replacement: "${1} von 10"},
		{Name: "scale-word", Pattern: re(`\bvon\s+zehn\b`), Replacement: "von 10"},
	}
}
