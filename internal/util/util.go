package util

import "strings"

// MakeTextList gives a nice list of things based on their display name,
// joined with "or" ("a or b", "a, b, or c"). items is not modified.
//
// TODO: turn this into a generic function that accepts displayable OR ~string
func MakeTextList(items []string) string {
	if len(items) < 1 {
		return ""
	}

	output := ""

	if len(items) == 1 {
		output += items[0]
	} else if len(items) == 2 {
		output += items[0] + " or " + items[1]
	} else {
		// if its more than two, use an oxford comma
		output += strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
	}

	return output
}

// ArticleFor returns "a" or "an" depending on the leading sound of s,
// going purely by first letter rather than actual pronunciation. If
// capital is true, the article is capitalized.
func ArticleFor(s string, capital bool) string {
	article := "a"
	if len(s) > 0 {
		switch s[0] {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			article = "an"
		}
	}
	if capital {
		return strings.ToUpper(article[:1]) + article[1:]
	}
	return article
}
