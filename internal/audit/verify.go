package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/truthgate/internal/gates"
	"github.com/ppiankov/truthgate/internal/model"
)

// GenesisHash is the prev_hash carried by the first entry of every log.
const GenesisHash = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

// maxLineBytes bounds a single log line; hook input is capped at 4MB and a
// recorded resource never exceeds it.
const maxLineBytes = 8 << 20

// HashLine returns "sha256:<hex>" of one serialized log line.
func HashLine(line []byte) string {
	h := sha256.Sum256(line)
	return "sha256:" + hex.EncodeToString(h[:])
}

// VerifyResult reports whether a log's chain and entries are intact. On a
// break, ErrorLine is 1-based and Session/Gate identify the offending entry
// when it could be decoded.
type VerifyResult struct {
	Valid     bool   `json:"valid"`
	Lines     int    `json:"lines"`
	Error     string `json:"error,omitempty"`
	ErrorLine int    `json:"error_line,omitempty"`
	Session   string `json:"session_id,omitempty"`
	Gate      string `json:"gate,omitempty"`
}

func (r VerifyResult) broken(line int, e *AuditEntry, format string, args ...any) VerifyResult {
	r.Valid = false
	r.ErrorLine = line
	r.Error = fmt.Sprintf(format, args...)
	if e != nil {
		r.Session = e.SessionID
		r.Gate = e.Gate
	}
	return r
}

// Verify walks a JSONL audit log and checks that every line links to the
// hash of the one before it and records a well-formed gate decision. It
// stops at the first problem.
func Verify(path string) VerifyResult {
	var res VerifyResult
	f, err := os.Open(path)
	if err != nil {
		res.Error = fmt.Sprintf("open: %v", err)
		return res
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	want := GenesisHash
	for sc.Scan() {
		res.Lines++
		line := sc.Bytes()

		var e AuditEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return res.broken(res.Lines, nil, "parse error: %v", err)
		}
		if e.PrevHash != want {
			if res.Lines == 1 {
				return res.broken(1, &e, "first entry prev_hash is %q, expected genesis hash", e.PrevHash)
			}
			return res.broken(res.Lines, &e, "hash mismatch: expected %s, got %s", want, e.PrevHash)
		}
		if msg := checkEntry(&e); msg != "" {
			return res.broken(res.Lines, &e, "%s", msg)
		}
		want = HashLine(line)
	}
	if err := sc.Err(); err != nil {
		return res.broken(res.Lines+1, nil, "scan: %v", err)
	}

	res.Valid = true
	return res
}

// checkEntry validates the decision fields of one entry.
func checkEntry(e *AuditEntry) string {
	switch model.Decision(e.Decision) {
	case model.Allow, model.Deny:
	default:
		return fmt.Sprintf("invalid decision %q", e.Decision)
	}
	if e.Gate == "" {
		return ""
	}
	if _, ok := gates.Lookup(model.GateID(e.Gate)); !ok {
		return fmt.Sprintf("unknown gate %q", e.Gate)
	}
	return ""
}
