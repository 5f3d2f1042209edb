// Package speech provides Speaker implementations for the playback sequencer.
package speech

import (
	"golang.org/x/text/language"
)

// Voice is a named synthesizer voice for one language.
type Voice struct {
	Name string
	Lang language.Tag
}

// DefaultVoices lists espeak-ng voices for the languages our datasets use.
func DefaultVoices() []Voice {
	return []Voice{
		{Name: "en-us", Lang: language.AmericanEnglish},
		{Name: "en-gb", Lang: language.BritishEnglish},
		{Name: "ja", Lang: language.Japanese},
		{Name: "de", Lang: language.German},
		{Name: "fr-fr", Lang: language.French},
		{Name: "es", Lang: language.Spanish},
	}
}

// Catalog picks voices by language.
type Catalog struct {
	voices  []Voice
	matcher language.Matcher
}

// NewCatalog builds a catalog. The first voice is the fallback for languages
// nothing matches.
func NewCatalog(voices []Voice) *Catalog {
	tags := make([]language.Tag, 0, len(voices))
	for _, v := range voices {
		tags = append(tags, v.Lang)
	}
	c := &Catalog{voices: voices}
	if len(tags) > 0 {
		c.matcher = language.NewMatcher(tags)
	}
	return c
}

// Match returns the voice best suited for lang.
func (c *Catalog) Match(lang language.Tag) (Voice, bool) {
	if c.matcher == nil {
		return Voice{}, false
	}
	_, idx, conf := c.matcher.Match(lang)
	if conf == language.No {
		return Voice{}, false
	}
	return c.voices[idx], true
}

// ForLanguage returns the voices sharing lang's base language, in catalog order.
func (c *Catalog) ForLanguage(lang language.Tag) []Voice {
	base, _ := lang.Base()
	var out []Voice
	for _, v := range c.voices {
		if b, _ := v.Lang.Base(); b == base {
			out = append(out, v)
		}
	}
	return out
}

// NextVoice cycles through the voices for lang after current. An empty
// current starts at the first one.
func (c *Catalog) NextVoice(lang language.Tag, current string) string {
	voices := c.ForLanguage(lang)
	if len(voices) == 0 {
		return ""
	}
	for i, v := range voices {
		if v.Name == current {
			return voices[(i+1)%len(voices)].Name
		}
	}
	return voices[0].Name
}
