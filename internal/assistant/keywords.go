package assistant

// Keyword tables. Matching is case-insensitive substring containment, so
// every entry must be lowercase and spelled exactly as users type it,
// diacritics included.

var greetingKeywords = []string{
	"ahoj", "čau", "dobrý den", "dobré ráno", "dobrý večer", "zdravím",
	"nazdar", "servus", "hello", "hi", "hey", "good morning", "good evening",
}

var calendarAnalysisKeywords = []string{
	"volno", "kdy mám volno", "prázdný kalendář", "volný termín", "volné dny",
	"kdy můžu", "týden volno", "kdy mám čas", "volný čas", "analyzuj",
	"free time", "when am i free", "availability",
}

var meetingSuggestionKeywords = []string{
	"pozvat", "kamarád", "kafe", "schůzka", "kdy se můžeme sejít", "sejít",
	"setkání", "sraz", "pozvánka", "navrhni termín",
}

var eventCreationKeywords = []string{
	"vytvoř", "přidej", "naplánuj", "zapiš", "událost", "schůzka", "meeting",
	"doktor", "lékař", "večeře", "oběd", "zítra", "pozítří", "dnes", "příští",
	"create", "add event",
}

// intentRules is evaluated in order; the first rule with a matching keyword
// decides the intent.
var intentRules = []struct {
	intent   Intent
	keywords []string
}{
	{IntentGreeting, greetingKeywords},
	{IntentCalendarAnalysis, calendarAnalysisKeywords},
	{IntentMeetingSuggestion, meetingSuggestionKeywords},
	{IntentEventCreation, eventCreationKeywords},
}

type dateRule struct {
	keyword string
	days    int
	months  int
}

var dateRules = []dateRule{
	{keyword: "zítra", days: 1},
	{keyword: "pozítří", days: 2},
	{keyword: "dnes", days: 0},
	{keyword: "příští týden", days: 7},
	{keyword: "příští měsíc", months: 1},
}

type timeRule struct {
	keyword string
	clock   string
}

// Longer words that contain a shorter keyword come first: "dopoledne" and
// "odpoledne" both contain "poledne".
var timeRules = []timeRule{
	{"dopoledne", "10:00"},
	{"odpoledne", "14:00"},
	{"poledne", "12:00"},
	{"ráno", "09:00"},
	{"večer", "19:00"},
	{"noc", "22:00"},
}

type titleRule struct {
	keywords []string
	title    string
}

var titleRules = []titleRule{
	{[]string{"schůzka", "meeting"}, "Schůzka"},
	{[]string{"večeře", "dinner"}, "Večeře"},
	{[]string{"oběd", "lunch"}, "Oběd"},
	{[]string{"kafe", "coffee"}, "Kafe"},
	{[]string{"sport", "cvičení"}, "Sport"},
	{[]string{"doktor", "lékař"}, "Doktor"},
	{[]string{"návštěva", "visit"}, "Návštěva"},
}

const defaultTitle = "Událost"

// weekdayLabels is indexed by time.Weekday (Sunday = 0).
var weekdayLabels = [7]string{"Ne", "Po", "Út", "St", "Čt", "Pá", "So"}

// DefaultCandidateTimes approximates working hours with a lunch gap.
var DefaultCandidateTimes = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00"}

const (
	DefaultAnalysisWindowDays = 30
	DefaultSlotWindowDays     = 14
	DefaultSuggestionLimit    = 5

	freeDaysShown = 5
	busyDaysShown = 3
)
