package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intent
	}{
		{"greeting", "Ahoj!", IntentGreeting},
		{"greeting english", "Hello there", IntentGreeting},
		{"analysis", "Kdy mám volno?", IntentCalendarAnalysis},
		{"meeting", "Chtěl bych pozvat kamaráda", IntentMeetingSuggestion},
		{"event", "Vytvoř událost", IntentEventCreation},
		{"event relative day", "doktor v pondělí", IntentEventCreation},
		{"fallback", "co umíš?", IntentHelp},
		{"empty", "", IntentHelp},

		// One string per precedence pair: the earlier rule must win.
		{"greeting beats analysis", "ahoj, kdy mám volno?", IntentGreeting},
		{"analysis beats meeting", "mám volno na kafe?", IntentCalendarAnalysis},
		{"analysis beats event", "kdy mám zítra volno", IntentCalendarAnalysis},
		{"meeting beats event", "schůzka zítra v 10:00", IntentMeetingSuggestion},
		{"meeting beats event dinner", "pozvat kamarádku na večeři", IntentMeetingSuggestion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassifyIsSubstringMatch(t *testing.T) {
	// "volno" inside a longer word still counts.
	assert.Equal(t, IntentCalendarAnalysis, Classify("nevolnost"))
	// Diacritics are matched literally.
	assert.Equal(t, IntentHelp, Classify("cau"))
	assert.Equal(t, IntentGreeting, Classify("ČAU"))
}
