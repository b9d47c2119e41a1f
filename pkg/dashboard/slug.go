package dashboard

import (
	"strconv"
	"strings"
	"unicode"
)

// IDFromSlug reads the tab id from a slug such as "5-my-tab". The id is the
// text before the first hyphen; zero or non-numeric text yields no id.
func IDFromSlug(slug string) (TabID, bool) {
	if slug == "" {
		return 0, false
	}
	head, _, _ := strings.Cut(slug, "-")
	id, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || id == 0 {
		return 0, false
	}
	return TabID(id), true
}

// TabSlug builds the URL slug of a tab, "<id>-<name in kebab case>".
func TabSlug(tab Tab) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(tab.Name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	id := strconv.Itoa(int(tab.ID))
	if b.Len() == 0 {
		return id
	}
	return id + "-" + b.String()
}
