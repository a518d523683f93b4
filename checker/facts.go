package checker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// Summary is the serialized form of a package's declarations: the lattice
// pairs, purity assertions, and annotated functions it contributes.
// Standalone checker runs write one summary per checked package so later
// runs over importing packages start from the same knowledge the analyzer
// would carry as facts.
type Summary struct {
	Package             string      `cbor:"1,keyasint"`
	LatticePairs        [][2]string `cbor:"2,keyasint"`
	AssertedTypes       []string    `cbor:"3,keyasint"`
	SideEffectFreeFuncs []string    `cbor:"4,keyasint"`
}

// Summary snapshots the engine's accumulated declarations under the given
// package path.
func (e *Engine) Summary(pkgPath string) *Summary {
	s := &Summary{
		Package:             pkgPath,
		LatticePairs:        e.LatticePairs(),
		AssertedTypes:       e.classifier.AssertedNames(),
		SideEffectFreeFuncs: e.SideEffectFreeFuncs(),
	}
	sort.Slice(s.LatticePairs, func(i, j int) bool {
		a, b := s.LatticePairs[i], s.LatticePairs[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return a[1] < b[1]
	})
	sort.Strings(s.AssertedTypes)
	sort.Strings(s.SideEffectFreeFuncs)
	return s
}

// AddSummary merges a previously written summary into the engine.
func (e *Engine) AddSummary(s *Summary) {
	for _, p := range s.LatticePairs {
		e.AddLatticePair(p[0], p[1])
	}
	for _, n := range s.AssertedTypes {
		e.AddAssertedType(n)
	}
	for _, fn := range s.SideEffectFreeFuncs {
		e.AddSideEffectFreeFunc(fn)
	}
}

// WriteSummary encodes a summary in deterministic CBOR.
func WriteSummary(w io.Writer, s *Summary) error {
	opts := cbor.CoreDetEncOptions()
	em, err := opts.EncMode()
	if err != nil {
		return err
	}
	return em.NewEncoder(w).Encode(s)
}

// ReadSummary decodes a summary written by WriteSummary.
func ReadSummary(r io.Reader) (*Summary, error) {
	var s Summary
	if err := cbor.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding summary: %w", err)
	}
	return &s, nil
}

// SaveSummary writes the summary to dir, named after the package path.
func SaveSummary(dir string, s *Summary) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, summaryFileName(s.Package))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteSummary(f, s); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// LoadSummaries merges every summary file found in dir; a missing dir is
// an empty knowledge base, not an error.
func LoadSummaries(dir string, e *Engine) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".cbor" {
			continue
		}
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		s, err := ReadSummary(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", entry.Name(), err)
		}
		e.AddSummary(s)
	}
	return nil
}

func summaryFileName(pkgPath string) string {
	out := make([]byte, 0, len(pkgPath))
	for i := 0; i < len(pkgPath); i++ {
		c := pkgPath[i]
		if c == '/' {
			c = '_'
		}
		out = append(out, c)
	}
	return string(out) + ".cbor"
}
