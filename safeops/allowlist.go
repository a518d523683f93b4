package safeops

import "sync"

// The standard-library allowlist: functions that may be called inside a
// checked block without a side-effect-free annotation. Every entry is a
// value-only operation: it computes a result from its operands and performs
// no observable effect. Entries are fully-qualified so that no local
// identifier can shadow an allowlisted name.
//
// sort.Ints and friends mutate their argument slice in place; the mutation
// is confined to a value the block already owns, so it is invisible outside
// the block.
var stdAllowlist = map[string]struct{}{
	"math.Abs":                  {},
	"math.Ceil":                 {},
	"math.Floor":                {},
	"math.Inf":                  {},
	"math.IsInf":                {},
	"math.IsNaN":                {},
	"math.Max":                  {},
	"math.Min":                  {},
	"math.Mod":                  {},
	"math.NaN":                  {},
	"math.Pow":                  {},
	"math.Sqrt":                 {},
	"math.Trunc":                {},
	"math/bits.LeadingZeros64":  {},
	"math/bits.OnesCount64":     {},
	"math/bits.TrailingZeros64": {},

	"strings.Compare":    {},
	"strings.Contains":   {},
	"strings.Count":      {},
	"strings.EqualFold":  {},
	"strings.Fields":     {},
	"strings.HasPrefix":  {},
	"strings.HasSuffix":  {},
	"strings.Index":      {},
	"strings.Join":       {},
	"strings.Repeat":     {},
	"strings.Replace":    {},
	"strings.ReplaceAll": {},
	"strings.Split":      {},
	"strings.ToLower":    {},
	"strings.ToUpper":    {},
	"strings.TrimSpace":  {},

	"strconv.Atoi":       {},
	"strconv.FormatInt":  {},
	"strconv.Itoa":       {},
	"strconv.ParseFloat": {},
	"strconv.ParseInt":   {},
	"strconv.Quote":      {},

	"unicode.IsDigit":  {},
	"unicode.IsLetter": {},
	"unicode.IsLower":  {},
	"unicode.IsSpace":  {},
	"unicode.IsUpper":  {},
	"unicode.ToLower":  {},
	"unicode.ToUpper":  {},

	"unicode/utf8.RuneCountInString": {},
	"unicode/utf8.RuneLen":           {},
	"unicode/utf8.ValidString":       {},

	"sort.Float64s":      {},
	"sort.Ints":          {},
	"sort.SearchInts":    {},
	"sort.SearchStrings": {},
	"sort.Strings":       {},
	"slices.Contains":    {},
	"slices.Index":       {},
	"slices.Max":         {},
	"slices.Min":         {},
	"slices.Reverse":     {},
	"slices.Sort":        {},
	"maps.Keys":          {},
	"maps.Values":        {},
	"cmp.Compare":        {},
	"cmp.Less":           {},
}

var (
	allowMu    sync.RWMutex
	extraAllow = make(map[string]struct{})
)

// Allowed reports whether the fully-qualified function name may be called
// inside a checked block.
func Allowed(fullName string) bool {
	if _, ok := stdAllowlist[fullName]; ok {
		return true
	}
	allowMu.RLock()
	_, ok := extraAllow[fullName]
	allowMu.RUnlock()
	return ok
}

// Extend adds policy-supplied names to the allowlist. Each added name is a
// locally-trusted assertion, on the same footing as an Unchecked escape.
func Extend(names []string) {
	allowMu.Lock()
	for _, n := range names {
		extraAllow[n] = struct{}{}
	}
	allowMu.Unlock()
}

// AllowlistedNames returns the built-in allowlist. Used by documentation and
// by the checker's diagnostics.
func AllowlistedNames() []string {
	out := make([]string, 0, len(stdAllowlist))
	for n := range stdAllowlist {
		out = append(out, n)
	}
	return out
}
