package journey

import "fmt"

// Stage names, in walk order.
const (
	StageGrounding   = "grounding"
	StageAwareness   = "awareness"
	StageReflection  = "reflection"
	StageReframing   = "reframing"
	StagePlanning    = "planning"
	StageAction      = "action"
	StageIntegration = "integration"
)

// Stages returns the fixed walk order of the healing journey.
func Stages() []string {
	return []string{
		StageGrounding,
		StageAwareness,
		StageReflection,
		StageReframing,
		StagePlanning,
		StageAction,
		StageIntegration,
	}
}

// fallbackNote is the checkpoint note used when no model guidance is
// available for a stage.
func fallbackNote(stage string) string {
	return fmt.Sprintf("Completed the %s stage.", stage)
}
