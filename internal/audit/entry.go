package audit

// AuditAction is the flattened action recorded in each audit entry.
type AuditAction struct {
	Tool     string `json:"tool"`
	Resource string `json:"resource"`
}

// AuditEntry is one line in the hash-chained JSONL audit log.
// All fields are structs (no map[string]any) to guarantee deterministic
// json.Marshal field order for reproducible hashing.
type AuditEntry struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"ts"`
	SessionID string      `json:"session_id,omitempty"`
	Cwd       string      `json:"cwd,omitempty"`
	Action    AuditAction `json:"action"`
	Gate      string      `json:"gate,omitempty"`
	Decision  string      `json:"decision"`
	Reason    string      `json:"reason,omitempty"`
	PolicyID  string      `json:"policy_id,omitempty"`
	StatePath string      `json:"state_path,omitempty"`
	StateHash string      `json:"state_hash"`
	PrevHash  string      `json:"prev_hash"`
}
