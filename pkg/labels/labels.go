package labels

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// Label set validation errors.
var (
	ErrOddArguments  = errors.New("labels: odd number of name/value arguments")
	ErrInvalidName   = errors.New("labels: invalid label name")
	ErrInvalidValue  = errors.New("labels: label value is not valid UTF-8")
	ErrDuplicateName = errors.New("labels: duplicate label name")
)

// Separators never occur in valid UTF-8, so they cannot collide with
// label names or values.
const (
	nameSep = "\xfe"
	pairSep = "\xff"
)

// Pair is a single label name/value pair.
type Pair struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Labeler is implemented by label-set types that can be encoded.
type Labeler interface {
	Pairs() []Pair
}

// Set is an immutable, comparable label set.
//
// Pairs are kept sorted by name, so two sets built from the same pairs in
// different order are equal. The zero value is the empty set.
type Set struct {
	enc string
}

// New builds a Set from alternating name/value arguments.
func New(kv ...string) (Set, error) {
	if len(kv)%2 != 0 {
		return Set{}, ErrOddArguments
	}
	pairs := make([]Pair, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		pairs = append(pairs, Pair{Name: kv[i], Value: kv[i+1]})
	}
	return FromPairs(pairs...)
}

// MustNew is like New but panics on invalid input.
func MustNew(kv ...string) Set {
	s, err := New(kv...)
	if err != nil {
		panic(err)
	}
	return s
}

// FromPairs builds a Set from pairs. The input slice is not modified.
func FromPairs(pairs ...Pair) (Set, error) {
	if len(pairs) == 0 {
		return Set{}, nil
	}

	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	for i, p := range sorted {
		if !ValidName(p.Name) {
			return Set{}, fmt.Errorf("%w: %q", ErrInvalidName, p.Name)
		}
		if !utf8.ValidString(p.Value) {
			return Set{}, fmt.Errorf("%w: %s", ErrInvalidValue, p.Name)
		}
		if i > 0 && sorted[i-1].Name == p.Name {
			return Set{}, fmt.Errorf("%w: %q", ErrDuplicateName, p.Name)
		}
		b.WriteString(p.Name)
		b.WriteString(nameSep)
		b.WriteString(p.Value)
		b.WriteString(pairSep)
	}
	return Set{enc: b.String()}, nil
}

// ValidName reports whether name is a legal OpenMetrics label name.
// Names starting with "__" are reserved.
func ValidName(name string) bool {
	if name == "" || strings.HasPrefix(name, "__") {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Pairs returns the pairs of the set sorted by name.
func (s Set) Pairs() []Pair {
	if s.enc == "" {
		return nil
	}
	pairs := make([]Pair, 0, strings.Count(s.enc, pairSep))
	rest := s.enc
	for rest != "" {
		entry, tail, _ := strings.Cut(rest, pairSep)
		name, value, _ := strings.Cut(entry, nameSep)
		pairs = append(pairs, Pair{Name: name, Value: value})
		rest = tail
	}
	return pairs
}

// Get returns the value for name.
func (s Set) Get(name string) (string, bool) {
	for _, p := range s.Pairs() {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Len returns the number of pairs.
func (s Set) Len() int {
	return strings.Count(s.enc, pairSep)
}

// Hash returns a stable 64-bit hash of the set.
func (s Set) Hash() uint64 {
	return xxhash.Sum64String(s.enc)
}

// String renders the set in exposition form, e.g. {code="200",method="GET"}.
// The empty set renders as "".
func (s Set) String() string {
	return Format(s.Pairs())
}

// Format renders pairs in exposition form without sorting them.
func Format(pairs []Pair) string {
	if len(pairs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Name)
		b.WriteString(`="`)
		b.WriteString(EscapeValue(p.Value))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// EscapeValue escapes a label value for the text exposition format.
func EscapeValue(v string) string {
	return valueEscaper.Replace(v)
}
