package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// FallbackSlug is used when the slug source has no [a-z0-9] characters.
const FallbackSlug = "item"

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases text, collapses every run of characters outside
// [a-z0-9] to one hyphen, and trims hyphens from both ends.
//
//	Slugify("Hand-Knit   Beanie!!") // "hand-knit-beanie"
//	Slugify("***")                  // "item"
func Slugify(text string) string {
	s := nonSlugRun.ReplaceAllString(strings.ToLower(text), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return FallbackSlug
	}
	return s
}

// Registry hands out slugs that are unique within one build.
//
// The first record to claim a base slug keeps it. Later claims get base-2,
// base-3, ... in arrival order, skipping any suffixed form that an earlier
// record already holds verbatim. The result depends only on the sequence of
// slug sources, so identical input order gives identical identifiers.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	taken map[string]struct{}
	next  map[string]int
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		taken: make(map[string]struct{}),
		next:  make(map[string]int),
	}
}

// Assign derives a slug from source and reserves a unique form of it.
func (r *Registry) Assign(source string) string {
	base := Slugify(source)
	if _, ok := r.taken[base]; !ok {
		r.taken[base] = struct{}{}
		return base
	}

	n := r.next[base]
	if n < 2 {
		n = 2
	}
	for {
		candidate := base + "-" + strconv.Itoa(n)
		n++
		if _, ok := r.taken[candidate]; ok {
			continue
		}
		r.next[base] = n
		r.taken[candidate] = struct{}{}
		return candidate
	}
}

// AssignRecord sets rec.Identifier from its slug source and returns it.
func (r *Registry) AssignRecord(rec *CatalogRecord) string {
	rec.Identifier = r.Assign(rec.SlugSource())
	return rec.Identifier
}

// Len returns the number of slugs handed out.
func (r *Registry) Len() int {
	return len(r.taken)
}
