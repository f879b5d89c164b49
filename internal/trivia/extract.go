package trivia

import (
	"fmt"
	"regexp"
	"strings"
)

// Answers longer than this are cut down to their first two sentences.
const maxAnswerChars = 300

var (
	questionOfTheDay     = regexp.MustCompile(`(?is)Trivia Question of the Day:\s*(.*?)Answer:\s*(.*?)(?:Previous|\z)`)
	// Only a Category line directly above the marker counts.
	categoryLine         = regexp.MustCompile(`(?i)Category:[ \t]*([^\n]+)\s*\z`)
	sentence             = regexp.MustCompile(`[^.!?]+[.!?]+`)
	extraneousWhitespace = regexp.MustCompile(`\s+`)
)

// ExtractFromText pulls the question of the day out of a page's visible text.
func ExtractFromText(text string) (Item, error) {
	loc := questionOfTheDay.FindStringSubmatchIndex(text)
	if loc == nil {
		return Item{}, fmt.Errorf("%w: question of the day marker not found", ErrMalformedResponse)
	}
	question := normalizeWhitespace(text[loc[2]:loc[3]])
	answer := normalizeWhitespace(text[loc[4]:loc[5]])
	if question == "" || answer == "" {
		return Item{}, fmt.Errorf("%w: empty question or answer", ErrMalformedResponse)
	}
	item := Item{Question: question, Answer: shortenAnswer(answer)}
	if match := categoryLine.FindStringSubmatch(text[:loc[0]]); match != nil {
		item.Category = normalizeWhitespace(match[1])
	}
	return item, nil
}

func shortenAnswer(answer string) string {
	if len(answer) <= maxAnswerChars {
		return answer
	}
	sentences := splitSentences(answer)
	if len(sentences) == 0 {
		return answer
	}
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}
	return strings.Join(sentences, " ")
}

func normalizeWhitespace(s string) string {
	return extraneousWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// splitSentences returns the punctuation-terminated sentences in text. A
// run of terminators ends one sentence and an unterminated tail is dropped.
func splitSentences(text string) []string {
	matches := sentence.FindAllString(text, -1)
	sentences := make([]string, 0, len(matches))
	for _, match := range matches {
		if trimmed := strings.TrimSpace(match); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}
