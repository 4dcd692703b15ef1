package translate

import "github.com/ha1tch/trigpiler/ir"

// Result is the output of a body-only translation.
type Result struct {
	Body     string       `json:"body"`
	Warnings []ir.Warning `json:"warnings,omitempty"`
}

// Deployment is a full generated deployment: the trigger function and the
// statement binding it to its table.
type Deployment struct {
	FunctionName string       `json:"functionName"`
	FunctionSQL  string       `json:"functionSql"`
	TriggerSQL   string       `json:"triggerSql"`
	Warnings     []ir.Warning `json:"warnings,omitempty"`
}

// Summary counts warnings by code, for compact reporting.
func Summary(warnings []ir.Warning) map[ir.WarningCode]int {
	if len(warnings) == 0 {
		return nil
	}
	counts := make(map[ir.WarningCode]int, len(warnings))
	for _, w := range warnings {
		counts[w.Code]++
	}
	return counts
}
