package core

// DispatchLimits is the per-script resource ceiling enforced by the
// execution fabric. Keyed by script id, independent of any project or
// deployment lifecycle.
type DispatchLimits struct {
	ScriptID string `json:"script_id" db:"script_id"`
	CPUMs    int    `json:"cpu_ms" db:"cpu_ms"`
	Memory   int64  `json:"memory" db:"memory"`
}

// OutboundWorker binds a script to the egress execution identity its
// outbound network calls are dispatched through.
type OutboundWorker struct {
	ScriptID         string `json:"script_id" db:"script_id"`
	OutboundScriptID string `json:"outbound_script_id" db:"outbound_script_id"`
}
