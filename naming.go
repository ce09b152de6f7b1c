package cbzconv

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/alnah/go-cbzconv/internal/fileutil"
)

// UnknownName is the name of last resort.
const UnknownName = "Unknown"

// placeholderNames are names storage providers hand out when they have
// nothing better. They never become output names.
var placeholderNames = []string{"unknown", "document", "file", "download", "content", "item", "untitled"}

var (
	copySuffix    = regexp.MustCompile(`\s*\(\d+\)$`)
	counterSuffix = regexp.MustCompile(`[-_\s]*\d+$`)
	chapterToken  = regexp.MustCompile(`^\d+(?:[.,]\d+)?$`)
)

// IsPlaceholderName reports whether name is empty or a generic placeholder
// such as "document.cbz", "Download (2)" or "file_3".
func IsPlaceholderName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return true
	}
	base := fileutil.TrimExtension(strings.ToLower(strings.TrimSpace(name)))
	base = copySuffix.ReplaceAllString(base, "")
	base = counterSuffix.ReplaceAllString(base, "")
	return slices.Contains(placeholderNames, strings.TrimSpace(base))
}

// CleanDisplayName reduces a raw name hint (a path, URI or provider display
// name) to a bare file name.
func CleanDisplayName(raw string) string {
	s := raw
	if decoded, err := url.PathUnescape(s); err == nil {
		s = decoded
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, "\x00", " "))
	if i := strings.LastIndexAny(s, `/\:`); i >= 0 {
		s = s[i+1:]
	}
	s, _, _ = strings.Cut(s, "?")
	s, _, _ = strings.Cut(s, "#")
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	return strings.TrimSpace(s)
}

// ChapterNumber returns the number that ends at the last digit of name,
// ignoring its extension. Decimals with a dot or comma are kept whole:
// "Ch. 12,5.cbz" yields "12,5", and "Ch 12.5.6" yields "5.6".
func ChapterNumber(name string) (string, bool) {
	s := fileutil.TrimExtension(name)
	end := strings.LastIndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) + 1
	if end == 0 {
		return "", false
	}
	for start := 0; start < end; start++ {
		if chapterToken.MatchString(s[start:end]) {
			return s[start:end], true
		}
	}
	return "", false
}

func chapterValue(ch string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(ch, ",", "."), 64)
	return v, err == nil
}

// groupKey identifies the series a source belongs to. Empty means unknown.
func groupKey(s Source) string {
	if g := strings.TrimSpace(s.Group); g != "" {
		return "group:" + g
	}
	if p := strings.TrimSpace(s.Parent); p != "" {
		return "parent:" + filepath.Clean(p)
	}
	return ""
}

// CanMerge reports whether sources may be merged into one output: every
// source must have the same group name, or the same parent when no group
// is known. A single source is always mergeable.
func CanMerge(sources []Source) bool {
	if len(sources) < 2 {
		return true
	}
	first := groupKey(sources[0])
	if first == "" {
		return false
	}
	for _, s := range sources[1:] {
		if groupKey(s) != first {
			return false
		}
	}
	return true
}

// NamingContext caches the names resolved for the sources of one job,
// keyed by source identity. Create one per job.
type NamingContext struct {
	display map[string]string
	group   map[string]string
}

// NewNamingContext returns an empty context.
func NewNamingContext() *NamingContext {
	return &NamingContext{
		display: make(map[string]string),
		group:   make(map[string]string),
	}
}

func sourceKey(s Source) string {
	if s.ID != "" {
		return s.ID
	}
	return s.Name
}

// DisplayName returns the cleaned file name of s, or UnknownName.
func (nc *NamingContext) DisplayName(s Source) string {
	key := sourceKey(s)
	if name, ok := nc.display[key]; ok {
		return name
	}
	name := CleanDisplayName(s.Name)
	if name == "" {
		name = UnknownName
	}
	nc.display[key] = name
	return name
}

// GroupName returns the first meaningful name among the group, the parent
// folder and the file name without extension, or UnknownName.
func (nc *NamingContext) GroupName(s Source) string {
	key := sourceKey(s)
	if name, ok := nc.group[key]; ok {
		return name
	}
	name := UnknownName
	candidates := []string{
		CleanDisplayName(s.Group),
		CleanDisplayName(s.Parent),
		fileutil.TrimExtension(nc.DisplayName(s)),
	}
	for _, c := range candidates {
		if !IsPlaceholderName(c) {
			name = c
			break
		}
	}
	nc.group[key] = name
	return name
}

// SourceBaseName returns the output name, without extension, of
// sources[i] when each source is converted on its own.
//
// A custom name wins, suffixed with the 1-based source index when there are
// several sources. Otherwise the group name is suffixed with the chapter
// number when chapters is set and one is found. Failing that, sources with an
// explicit group get the source index when there are several sources; other
// sources keep the bare name and duplicates are left to conflict resolution.
func (nc *NamingContext) SourceBaseName(sources []Source, i int, chapters bool, custom string) string {
	if custom != "" {
		if len(sources) == 1 {
			return custom
		}
		return fmt.Sprintf("%s_%d", custom, i+1)
	}
	s := sources[i]
	base := nc.GroupName(s)
	if chapters {
		if ch, ok := ChapterNumber(nc.DisplayName(s)); ok {
			return base + "_" + ch
		}
	}
	if len(sources) > 1 && strings.TrimSpace(s.Group) != "" {
		return fmt.Sprintf("%s_%d", base, i+1)
	}
	return base
}

// MergedBaseName returns the output name, without extension, of sources
// merged into one. With chapters set, the group name is suffixed with the
// chapter range found across the sources: "_12-14", or "_12" when all
// chapters are equal.
func (nc *NamingContext) MergedBaseName(sources []Source, chapters bool, custom string) string {
	if custom != "" {
		return custom
	}
	if len(sources) == 0 {
		return UnknownName
	}
	base := nc.GroupName(sources[0])
	if !chapters {
		return base
	}

	var lo, hi string
	var loV, hiV float64
	for _, s := range sources {
		ch, ok := ChapterNumber(nc.DisplayName(s))
		if !ok {
			continue
		}
		v, ok := chapterValue(ch)
		if !ok {
			continue
		}
		if lo == "" || v < loV {
			lo, loV = ch, v
		}
		if hi == "" || v > hiV {
			hi, hiV = ch, v
		}
	}
	switch {
	case lo == "":
		return base
	case loV == hiV:
		return base + "_" + lo
	default:
		return base + "_" + lo + "-" + hi
	}
}

// PartName returns the file name of part (1-based) out of parts.
func PartName(base string, part, parts int, format Format) string {
	if parts <= 1 {
		return base + format.Ext()
	}
	return fmt.Sprintf("%s_part-%d%s", base, part, format.Ext())
}

// ResolveConflict returns candidate if it is not in existing. Otherwise it
// inserts " n" before the extension, for the smallest n >= 1 that is free.
func ResolveConflict(candidate string, existing []string) string {
	taken := newNameSet(existing)
	return taken.resolve(candidate)
}

// ResolveConflicts resolves candidates in order. Each result is checked
// against existing and every earlier result.
func ResolveConflicts(candidates, existing []string) []string {
	taken := newNameSet(existing)
	resolved := make([]string, len(candidates))
	for i, c := range candidates {
		resolved[i] = taken.claim(c)
	}
	return resolved
}

// nameSet holds the names present in an output directory.
type nameSet map[string]struct{}

func newNameSet(names []string) nameSet {
	set := make(nameSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (ns nameSet) resolve(candidate string) string {
	if _, ok := ns[candidate]; !ok {
		return candidate
	}
	ext := filepath.Ext(candidate)
	stem := strings.TrimSuffix(candidate, ext)
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s %d%s", stem, n, ext)
		if _, ok := ns[name]; !ok {
			return name
		}
	}
}

// claim resolves candidate and marks the result as taken.
func (ns nameSet) claim(candidate string) string {
	name := ns.resolve(candidate)
	ns[name] = struct{}{}
	return name
}
