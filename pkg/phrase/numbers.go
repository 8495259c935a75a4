package phrase

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// maxSpelledNumber is the largest digit run spelled as a single number.
	// Longer runs are spelled digit by digit, which matches how station
	// names like frequencies are usually spoken.
	maxSpelledNumber = 999999
)

var (
	spacedDigitRunRegex = regexp.MustCompile(` [0-9]+ `)
	digitRunRegex       = regexp.MustCompile(`[0-9]+`)
	numberWordRegex     = regexp.MustCompile(`\b(one|two|three|four|five|six|seven|eight|nine)\b`)
)

var onesWords = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tensWords = []string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

var wordDigits = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9",
}

// HasSpacedDigitRun reports whether the text contains a digit run flanked by
// spaces, e.g. "radio 105 live".
func HasSpacedDigitRun(text string) bool {
	return spacedDigitRunRegex.MatchString(text)
}

// ContainsNumberWord reports whether the text contains a spoken numeral
// (one through nine) as a whole word.
func ContainsNumberWord(text string) bool {
	return numberWordRegex.MatchString(text)
}

// DigitsToWords replaces every digit run in the text with its spelled-out
// English form: "radio 105" becomes "radio one hundred five". Each run is
// converted individually.
func DigitsToWords(text string) string {
	return digitRunRegex.ReplaceAllStringFunc(text, numberToWords)
}

// WordsToDigits replaces spoken numerals one through nine with their digit
// form: "radio five live" becomes "radio 5 live".
func WordsToDigits(text string) string {
	return numberWordRegex.ReplaceAllStringFunc(text, func(word string) string {
		return wordDigits[word]
	})
}

func numberToWords(digits string) string {
	n, err := strconv.Atoi(digits)
	if err != nil || n > maxSpelledNumber {
		return digitByDigit(digits)
	}
	return intToWords(n)
}

func digitByDigit(digits string) string {
	words := make([]string, 0, len(digits))
	for _, d := range digits {
		words = append(words, onesWords[d-'0'])
	}
	return strings.Join(words, " ")
}

func intToWords(n int) string {
	switch {
	case n < 20:
		return onesWords[n]
	case n < 100:
		word := tensWords[n/10]
		if n%10 != 0 {
			word += " " + onesWords[n%10]
		}
		return word
	case n < 1000:
		word := onesWords[n/100] + " hundred"
		if n%100 != 0 {
			word += " " + intToWords(n%100)
		}
		return word
	default:
		word := intToWords(n/1000) + " thousand"
		if n%1000 != 0 {
			word += " " + intToWords(n%1000)
		}
		return word
	}
}
