package models

// RiskTier orders collision threats from most to least pressing.
type RiskTier string

const (
	TierDanger  RiskTier = "danger"
	TierCaution RiskTier = "caution"
	TierWatch   RiskTier = "watch"
	TierSafe    RiskTier = "safe"
)

// Rank returns the sort position of a tier (danger first).
func (t RiskTier) Rank() int {
	switch t {
	case TierDanger:
		return 0
	case TierCaution:
		return 1
	case TierWatch:
		return 2
	default:
		return 3
	}
}

// Situation is the right-of-way category derived from relative bearing and speed.
type Situation string

const (
	SituationHeadOn            Situation = "head_on"
	SituationCrossingStarboard Situation = "crossing_starboard"
	SituationCrossingPort      Situation = "crossing_port"
	SituationOvertaking        Situation = "overtaking"
	SituationBeingOvertaken    Situation = "being_overtaken"
	SituationSafePassing       Situation = "safe_passing"
)

// RiskAssessment is the per-target output of a collision scan. Recomputed
// every cycle, never mutated in place.
type RiskAssessment struct {
	TargetID        string    `json:"target_id"`
	TargetName      string    `json:"target_name"`
	RangeNM         float64   `json:"range_nm"`
	BearingDeg      float64   `json:"bearing"`
	RelativeBearing float64   `json:"relative_bearing"`
	CPANM           float64   `json:"cpa_nm"`
	TCPAMinutes     float64   `json:"tcpa_minutes"`
	Tier            RiskTier  `json:"tier"`
	Situation       Situation `json:"situation"`
}

// Alert is an announceable collision threat that survived cooldown filtering.
type Alert struct {
	TargetID    string    `json:"target_id"`
	TargetName  string    `json:"target_name"`
	Severity    Severity  `json:"severity"`
	Tier        RiskTier  `json:"tier"`
	Situation   Situation `json:"situation"`
	CPANM       float64   `json:"cpa_nm"`
	TCPAMinutes float64   `json:"tcpa_minutes"`
	RangeNM     float64   `json:"range_nm"`
	BearingDeg  float64   `json:"bearing"`
	Message     string    `json:"message"`
	Action      string    `json:"action"`
}
