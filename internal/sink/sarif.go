package sink

import (
	"fmt"
	"os"

	"github.com/owenrumney/go-sarif/v2/sarif"
)

// writeSarifReport renders the collected findings as a SARIF 2.1.0 report.
func writeSarifReport(path string, entries []entry) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("detect-secrets", "https://github.com/Yelp/detect-secrets")
	for _, e := range entries {
		for _, finding := range e.findings {
			rule := run.AddRule(finding.Type).
				WithDescription(finding.Type)

			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(e.filePath)).
					WithRegion(sarif.NewRegion().WithStartLine(finding.LineNumber)),
			)

			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(fmt.Sprintf("Potential %s in %s (object %s)", finding.Type, e.filePath, e.key))).
				WithLevel("warning").
				WithLocations([]*sarif.Location{location})
			run.AddResult(result)
		}
	}
	report.AddRun(run)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create SARIF file %q: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return report.PrettyWrite(file)
}
