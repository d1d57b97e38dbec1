package engine

import (
	"fmt"

	"github.com/marinerstack/mariner-guard/internal/models"
)

// situationText returns the human phrasing and the suggested evasive action
// for a right-of-way situation. Pure lookup, keyed by situation.
func situationText(s models.Situation) (phrase, action string) {
	switch s {
	case models.SituationHeadOn:
		return "head-on approach", "alter course to starboard"
	case models.SituationCrossingStarboard:
		return "crossing from starboard", "give way"
	case models.SituationCrossingPort:
		return "crossing from port", "maintain course and speed"
	case models.SituationOvertaking:
		return "overtaking a slower vessel", "give way"
	case models.SituationBeingOvertaken:
		return "being overtaken", "maintain course and speed"
	default:
		return "passing clear", "maintain course and speed"
	}
}

func alertMessage(a models.RiskAssessment, phrase string) string {
	name := a.TargetName
	if name == "" {
		name = a.TargetID
	}
	return fmt.Sprintf("%s %s: CPA %.2f NM in %.1f min, range %.2f NM, bearing %03.0f",
		name, phrase, a.CPANM, a.TCPAMinutes, a.RangeNM, a.BearingDeg)
}
