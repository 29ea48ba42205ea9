package audit

// Stage is the fine-grained pipeline stage name the backend writes while an
// audit runs. The set below tracks the backend worker; the console treats
// anything else as an early stage rather than an error.
type Stage string

// Backend pipeline stages, in execution order.
const (
	StageScrapingTarget      Stage = "scraping_target"
	StageScrapingCompetitors Stage = "scraping_competitors"
	StagePreparingContext    Stage = "preparing_context"
	StageBuildingContext     Stage = "building_context"
	StageTestingAIModels     Stage = "testing_ai_models"
	StageIdentifyingGaps     Stage = "identifying_gaps"
	StageCoreAudit           Stage = "stage_a_core_audit"
	StageRenderingHTML       Stage = "rendering_html"
	StageGeneratingPDF       Stage = "generating_pdf"
	StageSavingToDatabase    Stage = "saving_to_database"
)

// StepCount is the number of coarse steps shown to the user.
const StepCount = 4

var stageSteps = map[Stage]int{
	StageScrapingTarget:      1,
	StageScrapingCompetitors: 1,
	StagePreparingContext:    2,
	StageBuildingContext:     2,
	StageTestingAIModels:     2,
	StageIdentifyingGaps:     3,
	StageCoreAudit:           3,
	StageRenderingHTML:       4,
	StageGeneratingPDF:       4,
	StageSavingToDatabase:    4,
}

// ActiveStep maps a backend stage to the coarse display step in [1, 4].
// Total: an absent or unrecognized stage defaults to step 1.
func ActiveStep(stage Stage) int {
	if step, ok := stageSteps[stage]; ok {
		return step
	}
	return 1
}

// StepLabels are the user-facing names for the four coarse steps, indexed by
// step number minus one.
var StepLabels = [StepCount]string{
	"Scanning your website",
	"Testing AI assistants",
	"Identifying visibility gaps",
	"Building your report",
}
