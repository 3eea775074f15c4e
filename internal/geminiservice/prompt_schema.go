package geminiservice

import (
	"fmt"
	"strings"
)

/* =================================================================================
							GEMINI SCHEMA DEFINITION
	This is the core structure that tells Gemini how to format its JSON response
=================================================================================*/

// GeminiSchema defines the structure for "Controlled Generation" (Structured Output).
type GeminiSchema struct {
	// Type defines the data type (e.g., "OBJECT", "ARRAY", "STRING").
	Type string `json:"type"`

	// Description explains the field's purpose to the AI, helping it generate better content.
	Description string `json:"description,omitempty"`

	// Properties maps field names to their child schemas (used when Type is "OBJECT").
	Properties map[string]*GeminiSchema `json:"properties,omitempty"`

	// Required lists the field names that the AI MUST include in the response.
	Required []string `json:"required,omitempty"`
}

// Explanation is the structured answer for one food/condition verdict.
type Explanation struct {
	Explanation string `json:"explanation"`
	Biomarkers  string `json:"biomarkers"`
}

// ExplanationSchema mirrors Explanation for structured output.
var ExplanationSchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"explanation": {
			Type:        "STRING",
			Description: "Two or three sentences on why the food is or is not suitable for the condition.",
		},
		"biomarkers": {
			Type:        "STRING",
			Description: "Comma-separated list of the biomarkers the food affects for this condition.",
		},
	},
	Required: []string{"explanation", "biomarkers"},
}

/* =================================================================================
									PROMPTS
=================================================================================*/

const ExplainSystemPrompt = `You are a clinical nutrition assistant.
You are given a food, a health condition and a verdict ("good" or "bad") already decided by a
trained model. Do not change the verdict. Explain it in plain language for a patient and list
the biomarkers the food influences for that condition. Do not give dosage or medication advice.`

// BuildExplainPrompt renders the user prompt for one verdict.
func BuildExplainPrompt(food, condition, label string) string {
	var sb strings.Builder
	sb.WriteString("Food: ")
	sb.WriteString(food)
	sb.WriteString("\nCondition: ")
	sb.WriteString(condition)
	sb.WriteString(fmt.Sprintf("\nVerdict: %s\n", strings.ToLower(label)))
	sb.WriteString("Explain the verdict and list the affected biomarkers.")
	return sb.String()
}
