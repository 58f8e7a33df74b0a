// Package digest computes the verification digest republished alongside a
// completed tally (spec.md §4.I): a SHA-256 hash over a canonical JSON
// encoding of {election_id, final_tally, total_votes}. Canonical here means
// lexicographically sorted object keys at every level, no insignificant
// whitespace, and integers rendered as plain ASCII decimal digits, never
// with an exponent or fraction, so the digest is reproducible by any independent observer
// re-running it against the published result.
package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Input is the canonical input object digested by Digest: the election id,
// the final per-candidate tally, and the total vote count. The creation
// timestamp is intentionally excluded (spec.md §9 Open Question 3).
type Input struct {
	ElectionID uuid.UUID
	FinalTally map[string]int64
	TotalVotes int64
}

// Digest computes hex(SHA-256(canonical_json)) over in, per spec.md §4.I.
func Digest(in Input) string {
	canon := canonicalize(in)
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:])
}

// canonicalize renders in as canonical JSON by hand, rather than via
// encoding/json, so key order and integer rendering are this package's own
// contract instead of an accident of Go map iteration or json.Marshal's
// float-prone number handling.
func canonicalize(in Input) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')

	names := make([]string, 0, len(in.FinalTally))
	for name := range in.FinalTally {
		names = append(names, name)
	}
	sort.Strings(names)

	// Top-level keys sorted lexicographically: "election_id" < "final_tally" < "total_votes".
	buf.WriteString(`"election_id":`)
	writeJSONString(&buf, in.ElectionID.String())
	buf.WriteByte(',')

	buf.WriteString(`"final_tally":{`)
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(&buf, name)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", in.FinalTally[name])
	}
	buf.WriteString("},")

	buf.WriteString(`"total_votes":`)
	fmt.Fprintf(&buf, "%d", in.TotalVotes)

	buf.WriteByte('}')
	return buf.Bytes()
}

// writeJSONString writes s as a minimal, strict JSON string literal:
// quotes, backslashes and control characters escaped, everything else
// emitted verbatim so the output never depends on encoding/json's own
// (unspecified-for-our-purposes) escaping choices for non-ASCII text.
func writeJSONString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
