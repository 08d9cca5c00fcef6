package trigger

import (
	"regexp"
	"strings"
)

// Keyword groups that mark a message as a reference question rather than
// part of the ongoing interview.
var keywords = []string{
	// best practices and rules
	"best practice", "лучшие практики", "как правильно", "правило", "правила",
	"рекомендации", "советы", "совет",

	// reference lookups
	"что такое", "как составить", "как написать", "шаблон", "пример",
	"структура", "формат", "чек-лист", "чеклист", "checklist",

	// mistakes and risks
	"ошибка", "ошибки", "типичные ошибки", "частые ошибки",
	"риск", "риски", "red flag", "проблема", "проблемы",

	// brief specifics
	"техническое задание", "тз", "бриф", "требования",
	"scope", "скоуп", "deliverable",
}

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`как\s+(правильно|лучше|нужно)`),
	regexp.MustCompile(`что\s+(должно|нужно|следует)`),
	regexp.MustCompile(`какие\s+(бывают|есть|существуют)`),
	regexp.MustCompile(`почему\s+(важно|нужно|стоит)`),
	regexp.MustCompile(`в\s+чём\s+(разница|отличие)`),
	regexp.MustCompile(`что\s+такое`),
	regexp.MustCompile(`зачем\s+нужн`),
}

var questionPrefixes = []string{"как", "что", "какие", "почему", "зачем"}

var referenceWords = []string{"тз", "бриф", "проект", "задание"}

// ShouldRetrieve reports whether the message asks for reference knowledge
// and therefore warrants a knowledge-base lookup before answering.
func ShouldRetrieve(message string) bool {
	lower := strings.ToLower(message)

	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	for _, pattern := range patterns {
		if pattern.MatchString(lower) {
			return true
		}
	}

	isQuestion := strings.Contains(message, "?")
	if !isQuestion {
		for _, prefix := range questionPrefixes {
			if strings.HasPrefix(lower, prefix) {
				isQuestion = true
				break
			}
		}
	}
	if !isQuestion {
		return false
	}

	for _, word := range referenceWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
