package traits

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TagsPrefix starts the textual attribute form.
const TagsPrefix = "tags:"

var errNoTagsPrefix = errors.New("missing '" + TagsPrefix + "' prefix")

// Tags returns the textual attribute form of t, like
// "tags:class8;rarity3;power2".
func (t Traits) Tags() string {
	return fmt.Sprintf("%sclass%d;rarity%d;power%d", TagsPrefix, t.Class, t.Rarity, t.Power)
}

// ParseTags parses the textual attribute form produced by Tags. Fields may
// come in any order, but every one of them must be present exactly once.
func ParseTags(s string) (Traits, error) {
	if !strings.HasPrefix(s, TagsPrefix) {
		return Traits{}, errNoTagsPrefix
	}
	body := s[len(TagsPrefix):]
	var (
		vals [fieldCount]int
		seen [fieldCount]bool
	)
	for _, part := range strings.Split(body, ";") {
		if part == "" {
			continue
		}
		var found bool
		for _, f := range Fields {
			if !strings.HasPrefix(part, f.String()) {
				continue
			}
			num := part[len(f.String()):]
			if seen[f] {
				return Traits{}, fmt.Errorf("duplicate %s tag", f)
			}
			v, err := strconv.Atoi(num)
			if err != nil {
				return Traits{}, fmt.Errorf("invalid %s tag: %w", f, err)
			}
			vals[f], seen[f], found = v, true, true
			break
		}
		if !found {
			return Traits{}, fmt.Errorf("unknown tag %q", part)
		}
	}
	for _, f := range Fields {
		if !seen[f] {
			return Traits{}, fmt.Errorf("missing %s tag", f)
		}
	}
	return New(vals[Class], vals[Rarity], vals[Power])
}
