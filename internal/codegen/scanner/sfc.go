package scanner

import (
	"regexp"
	"strings"
)

// Block is one top-level block of a single-file component.
type Block struct {
	Attrs   map[string]string
	Content string
	// Offset is the byte offset of Content within the component source.
	Offset int
}

// Lang returns the lang attribute, "js" when absent.
func (b *Block) Lang() string {
	if lang, ok := b.Attrs["lang"]; ok && lang != "" {
		return lang
	}
	return "js"
}

// SFC holds the script blocks of a .vue component.
type SFC struct {
	Script      *Block
	ScriptSetup *Block
}

var (
	scriptOpenRe = regexp.MustCompile(`(?i)<script\b([^>]*)>`)
	scriptClose  = regexp.MustCompile(`(?i)</script\s*>`)
	attrRe       = regexp.MustCompile(`([\w:@.-]+)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+)))?`)
)

// ParseSFC splits a component source into its script blocks. The template
// and style blocks are not needed for prop extraction and are ignored.
func ParseSFC(source string) SFC {
	var sfc SFC
	pos := 0
	for pos < len(source) {
		loc := scriptOpenRe.FindStringSubmatchIndex(source[pos:])
		if loc == nil {
			break
		}
		openEnd := pos + loc[1]
		attrs := parseAttrs(source[pos+loc[2] : pos+loc[3]])

		closeLoc := scriptClose.FindStringIndex(source[openEnd:])
		if closeLoc == nil {
			break
		}
		block := &Block{
			Attrs:   attrs,
			Content: source[openEnd : openEnd+closeLoc[0]],
			Offset:  openEnd,
		}
		if _, ok := attrs["setup"]; ok {
			if sfc.ScriptSetup == nil {
				sfc.ScriptSetup = block
			}
		} else if sfc.Script == nil {
			sfc.Script = block
		}
		pos = openEnd + closeLoc[1]
	}
	return sfc
}

func parseAttrs(raw string) map[string]string {
	attrs := map[string]string{}
	for _, m := range attrRe.FindAllStringSubmatch(strings.TrimSuffix(strings.TrimSpace(raw), "/"), -1) {
		attrs[strings.ToLower(m[1])] = m[2] + m[3] + m[4]
	}
	return attrs
}
