package types

import "strings"

type GenerationRequest struct {
	Profile  *Package
	Packages []Package
}

// GenerationResult is the outcome of writing one package or profile.
// MessageTemplate uses {key} placeholders resolved from Variables.
type GenerationResult struct {
	PackageName     string
	Kind            PackageKind
	Success         bool
	MessageTemplate string
	Variables       map[string]string
}

func (r GenerationResult) Message() string {
	if len(r.Variables) == 0 {
		return r.MessageTemplate
	}
	pairs := make([]string, 0, len(r.Variables)*2)
	for key, value := range r.Variables {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(r.MessageTemplate)
}

// KindLabel is the capitalised kind used in result messages.
func KindLabel(kind PackageKind) string {
	if kind == PackageKindProfile {
		return "Profile"
	}
	return "Package"
}

type RevertResult struct {
	Name    string
	Success bool
	Message string
}

type RevertReport struct {
	Results []RevertResult
	Empty   bool
}

func (r RevertReport) Failed() int {
	count := 0
	for _, result := range r.Results {
		if !result.Success {
			count++
		}
	}
	return count
}
