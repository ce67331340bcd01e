package content

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

const wordsPerMinute = 200

// ReadingTime estimates how long body takes to read, e.g. "4 min read".
// CJK characters count as one word each.
func ReadingTime(body string) string {
	words := 0
	for _, field := range strings.Fields(body) {
		cjk := 0
		for _, r := range field {
			if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
				cjk++
			}
		}
		if cjk > 0 {
			words += cjk
			if len([]rune(field)) > cjk {
				words++
			}
			continue
		}
		words++
	}
	minutes := float64(words) / wordsPerMinute
	rounded := math.Round(minutes*100) / 100
	return strconv.Itoa(int(math.Ceil(rounded))) + " min read"
}
