package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraph_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Paragraph
		wantErr bool
	}{
		{name: "string", input: `"Schedule a technical follow-up"`, want: "Schedule a technical follow-up"},
		{name: "list", input: `["Practice pivots", "Review VBA"]`, want: "Practice pivots\nReview VBA"},
		{name: "null", input: `null`, want: ""},
		{name: "number", input: `42`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				NextSteps Paragraph `json:"nextSteps"`
			}
			err := json.Unmarshal([]byte(`{"nextSteps": `+tt.input+`}`), &body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, body.NextSteps)
		})
	}
}

func TestReportBody_DecodesNarrativeFields(t *testing.T) {
	var body ReportBody
	err := json.Unmarshal([]byte(`{
		"executiveSummary": "Solid",
		"roleSuitability": "Good fit",
		"nextSteps": "Schedule a technical follow-up",
		"skillAssessment": {"dataAnalysis": {"score": 72, "assessment": "Comfortable with pivots"}}
	}`), &body)
	require.NoError(t, err)

	assert.Equal(t, "Good fit", body.RoleSuitability)
	assert.Equal(t, Paragraph("Schedule a technical follow-up"), body.NextSteps)
	assert.Equal(t, SkillScore{Score: 72, Assessment: "Comfortable with pivots"}, body.SkillAssessment["dataAnalysis"])
}
