package prompts

import (
	"fmt"

	"github.com/jonathan/resume-intake/internal/llm"
)

// ResumeFile is the embedded template file for the resume pipeline
const ResumeFile = "resume.json"

// Keys within ResumeFile
const (
	KeyExtract     = "extract-resume"
	KeyRepair      = "repair-json"
	KeyConsolidate = "consolidate-resumes"
)

// Set holds the three rendered pipeline prompts and their version.
type Set struct {
	Version       string
	Extraction    string
	Repair        string
	Consolidation string
}

// Resume renders the resume prompt set with the canonical schema skeleton
// substituted for {{.Schema}}.
func Resume() (Set, error) {
	version, err := Version(ResumeFile)
	if err != nil {
		return Set{}, err
	}

	data := map[string]string{"Schema": llm.DescribeSchema(llm.ResumeSchema())}
	set := Set{Version: version}
	for key, dst := range map[string]*string{
		KeyExtract:     &set.Extraction,
		KeyRepair:      &set.Repair,
		KeyConsolidate: &set.Consolidation,
	} {
		tmpl, err := Get(ResumeFile, key)
		if err != nil {
			return Set{}, fmt.Errorf("resume prompts: %w", err)
		}
		*dst = Format(tmpl, data)
	}
	return set, nil
}

// MustResume is Resume for program start-up; it panics on a broken embed.
func MustResume() Set {
	set, err := Resume()
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return set
}
