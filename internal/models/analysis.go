package models

// ResultKind tags an AnalysisResult.
type ResultKind string

const (
	ResultWellFormed ResultKind = "well_formed"
	ResultMalformed  ResultKind = "malformed"
)

// AnalysisResult is what came back from a vision/chat call: either a decoded
// object (Fields) or the raw text that could not be decoded and why.
type AnalysisResult struct {
	Kind   ResultKind `json:"kind"`
	Fields ResultBag  `json:"fields,omitempty"`
	Raw    string     `json:"raw,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

// WellFormed wraps decoded fields.
func WellFormed(fields ResultBag) AnalysisResult {
	return AnalysisResult{Kind: ResultWellFormed, Fields: fields}
}

// Malformed records undecodable output.
func Malformed(raw, reason string) AnalysisResult {
	return AnalysisResult{Kind: ResultMalformed, Raw: raw, Reason: reason}
}

// OK reports whether the result is well formed.
func (r AnalysisResult) OK() bool {
	return r.Kind == ResultWellFormed
}

// TriageFinding is the typed view of a single-image triage analysis.
type TriageFinding struct {
	Type     string   `json:"type"`
	Status   string   `json:"status"`
	Finding  string   `json:"finding"`
	FirstAid []string `json:"first_aid"`
}

// ComparisonFinding is the typed view of an old-vs-new image comparison.
type ComparisonFinding struct {
	Status       string `json:"status"`
	Observations string `json:"observations"`
	Advice       string `json:"advice"`
}

// MedicineLabel is the typed view of a medicine packaging scan. Missing
// values are reported as "Unknown" by the model.
type MedicineLabel struct {
	Name    string `json:"name"`
	Usage   string `json:"usage"`
	Dosage  string `json:"dosage"`
	Warning string `json:"warning"`
}

// Triage reads a TriageFinding out of the fields.
func (r AnalysisResult) Triage() TriageFinding {
	return TriageFinding{
		Type:     r.Fields.String("type"),
		Status:   r.Fields.String("status"),
		Finding:  r.Fields.String("finding"),
		FirstAid: r.Fields.Strings("first_aid"),
	}
}

// Comparison reads a ComparisonFinding out of the fields.
func (r AnalysisResult) Comparison() ComparisonFinding {
	return ComparisonFinding{
		Status:       r.Fields.String("status"),
		Observations: r.Fields.String("observations"),
		Advice:       r.Fields.String("advice"),
	}
}

// Medicine reads a MedicineLabel out of the fields.
func (r AnalysisResult) Medicine() MedicineLabel {
	return MedicineLabel{
		Name:    r.Fields.String("name"),
		Usage:   r.Fields.String("usage"),
		Dosage:  r.Fields.String("dosage"),
		Warning: r.Fields.String("warning"),
	}
}
