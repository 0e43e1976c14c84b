package prefilter

import (
	"github.com/cloudflare/ahocorasick"
	"github.com/praetorian-inc/sigscan/pkg/signature"
)

// MinKeywordLen is the shortest exact run worth checking. Single bytes are
// present in nearly every module image and would never reject anything.
const MinKeywordLen = 2

// Prefilter uses Aho-Corasick to reject subjects that cannot contain a match.
//
// Every run of consecutive exact bytes in a signature must occur somewhere in
// a subject the signature matches, so a subject missing any run is rejected
// without running the masked scan. A Prefilter is safe for concurrent use.
type Prefilter struct {
	matcher  *ahocorasick.Matcher
	keywords [][]byte // keyword at each dictionary index
}

// New creates a prefilter for sig. Runs shorter than MinKeywordLen are ignored.
func New(sig *signature.Signature) *Prefilter {
	pf := &Prefilter{}

	seen := make(map[string]bool)
	for _, run := range exactRuns(sig.Pattern(), sig.Mask()) {
		if len(run) < MinKeywordLen || seen[string(run)] {
			continue
		}
		seen[string(run)] = true
		pf.keywords = append(pf.keywords, run)
	}

	// Build Aho-Corasick matcher if we have keywords
	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewMatcher(pf.keywords)
	}

	return pf
}

// Keywords returns the runs the prefilter checks for.
func (pf *Prefilter) Keywords() [][]byte {
	return pf.keywords
}

// Active reports whether the prefilter has anything to check.
func (pf *Prefilter) Active() bool {
	return pf.matcher != nil
}

// MayMatch returns false only when content is missing at least one keyword.
func (pf *Prefilter) MayMatch(content []byte) bool {
	if pf.matcher == nil {
		return true
	}

	hits := pf.matcher.MatchThreadSafe(content)

	found := make(map[int]bool, len(hits))
	for _, hit := range hits {
		found[hit] = true
	}
	return len(found) == len(pf.keywords)
}

// exactRuns splits a pattern into its maximal runs of masked bytes.
func exactRuns(pattern []byte, mask []bool) [][]byte {
	var runs [][]byte
	start := -1
	for i := 0; i <= len(mask); i++ {
		if i < len(mask) && mask[i] {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, pattern[start:i])
			start = -1
		}
	}
	return runs
}
