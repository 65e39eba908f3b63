package codeplug

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes accented characters and strips combining marks, so
// "São José" becomes "Sao Jose".
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// NormalizeName reduces a display name to the character set the target
// format accepts: printable ASCII, no leading/trailing space, at most
// maxLen characters.
func NormalizeName(name string, maxLen int) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r >= 0x20 && r < 0x7f {
			b.WriteRune(r)
		}
	}

	normalized := strings.TrimSpace(b.String())
	if maxLen > 0 && len(normalized) > maxLen {
		normalized = normalized[:maxLen]
	}
	return normalized
}

// ChannelName derives a channel's display name from the repeater's callsign
// and nearest city: callsign, a mode marker ('_' digital, '~' analog), then
// the city in camel case. Truncated to maxLen.
func ChannelName(callsign, city string, digital bool, maxLen int) string {
	marker := "~"
	if digital {
		marker = "_"
	}

	var cityPart strings.Builder
	for _, word := range strings.Fields(city) {
		runes := []rune(word)
		cityPart.WriteRune(unicode.ToUpper(runes[0]))
		cityPart.WriteString(strings.ToLower(string(runes[1:])))
	}

	return NormalizeName(callsign+marker+cityPart.String(), maxLen)
}

// NameSet resolves duplicate display names by appending a sequence number
// to every member of a duplicated name group, keeping results within the
// length limit.
type NameSet struct {
	maxLen int
	counts map[string]int
	next   map[string]int
	taken  map[string]bool
}

// NewNameSet prepares a resolver for the given full list of names. The list
// must contain every name that will be resolved so duplicate groups are
// known up front.
func NewNameSet(names []string, maxLen int) *NameSet {
	counts := make(map[string]int, len(names))
	for _, name := range names {
		counts[name]++
	}
	return &NameSet{
		maxLen: maxLen,
		counts: counts,
		next:   make(map[string]int),
		taken:  make(map[string]bool),
	}
}

// Resolve returns the unique display name for the next occurrence of name.
// Names that appear once pass through unchanged.
func (ns *NameSet) Resolve(name string) string {
	if ns.counts[name] <= 1 && !ns.taken[name] {
		ns.taken[name] = true
		return name
	}

	for {
		ns.next[name]++
		suffix := fmt.Sprintf("%d", ns.next[name])
		base := name
		if ns.maxLen > 0 && len(base)+len(suffix) > ns.maxLen {
			base = base[:ns.maxLen-len(suffix)]
		}
		candidate := base + suffix
		if !ns.taken[candidate] && ns.counts[candidate] == 0 {
			ns.taken[candidate] = true
			return candidate
		}
	}
}
