package chat

import "strings"

const maxAnalysisEntries = 5

// parseAnalysis extracts risk and question bullet lines from a model
// answer in the "РИСКИ: ... ВОПРОСЫ: ..." format. A malformed answer
// degrades to empty lists, never to an error.
func parseAnalysis(analysis string) (risks, questions []string) {
	if idx := strings.Index(analysis, "РИСКИ:"); idx >= 0 {
		section := analysis[idx+len("РИСКИ:"):]
		if qIdx := strings.Index(section, "ВОПРОСЫ:"); qIdx >= 0 {
			section = section[:qIdx]
		}
		risks = parseBullets(section)
	}

	if idx := strings.Index(analysis, "ВОПРОСЫ:"); idx >= 0 {
		questions = parseBullets(analysis[idx+len("ВОПРОСЫ:"):])
	}

	if len(risks) > maxAnalysisEntries {
		risks = risks[:maxAnalysisEntries]
	}
	if len(questions) > maxAnalysisEntries {
		questions = questions[:maxAnalysisEntries]
	}
	return risks, questions
}

func parseBullets(section string) []string {
	var entries []string
	for _, line := range strings.Split(strings.TrimSpace(section), "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-•"))
		if line == "" || strings.EqualFold(line, "нет") || len([]rune(line)) <= 3 {
			continue
		}
		entries = append(entries, line)
	}
	return entries
}
