package models

// Severity captures notification impact levels.
type Severity string

const (
	SeverityWarn      Severity = "warn"
	SeverityAlarm     Severity = "alarm"
	SeverityEmergency Severity = "emergency"
)

// Delivery method hints for the notification sink.
const (
	MethodVisual = "visual"
	MethodSound  = "sound"
)

// Notification is one record produced for the external sink, addressed by a
// path-like key. A nil-valued publish on the same key clears it.
type Notification struct {
	Key         string   `json:"key"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Method      []string `json:"method,omitempty"`
	Silenceable bool     `json:"silenceable"`
	Value       *float64 `json:"value,omitempty"`
}

// Well-known notification keys.
const (
	KeyAnchorDrag    = "anchor.drag"
	KeyAnchorWatch   = "anchor.watch"
	KeyAnchorMode    = "anchor.modeChange"
	KeyAnchorRadius  = "anchor.currentRadius"
	KeyCollisionBase = "collision."
)
