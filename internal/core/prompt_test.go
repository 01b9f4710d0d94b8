package core

import (
	"testing"

	"health-chatbot/pkg"

	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPromptWithFullContext(t *testing.T) {
	prompt := BuildSystemPrompt(&pkg.PatientData{
		FirstName:      "Maria",
		LastName:       "Santos",
		Age:            "34",
		Sex:            "Female",
		Address:        "Quezon City",
		ContactNumber:  "09171234567",
		MedicalHistory: "Asthma",
	})

	assert.Contains(t, prompt, "PATIENT INFORMATION")
	assert.Contains(t, prompt, "Maria Santos")
	assert.Contains(t, prompt, "- Age: 34")
	assert.Contains(t, prompt, "- Sex: Female")
	assert.Contains(t, prompt, "- Medical History: Asthma")
	assert.Contains(t, prompt, "greet the patient by their first name (Maria)")
}

func TestBuildSystemPromptWithoutContext(t *testing.T) {
	for name, patient := range map[string]*pkg.PatientData{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			prompt := BuildSystemPrompt(patient)
			assert.NotContains(t, prompt, "PATIENT INFORMATION")
			assert.Contains(t, prompt, "You are a helpful AI health assistant.")
			assert.Contains(t, prompt, "IMPORTANT INSTRUCTIONS:")
		})
	}
}

func TestBuildSystemPromptPartialContextUsesPlaceholders(t *testing.T) {
	prompt := BuildSystemPrompt(&pkg.PatientData{FirstName: "Juan"})

	assert.Contains(t, prompt, "- Name: Juan")
	assert.Contains(t, prompt, "- Age: Unknown")
	assert.Contains(t, prompt, "- Sex: Unknown")
	assert.Contains(t, prompt, "- Address: Not provided")
	assert.Contains(t, prompt, "- Contact: Not provided")
	assert.Contains(t, prompt, "- Medical History: None provided")
}

func TestBuildSystemPromptPolicyBlock(t *testing.T) {
	prompt := BuildSystemPrompt(nil)

	assert.Contains(t, prompt, "911")
	assert.Contains(t, prompt, "Your name is Tam")
	assert.Contains(t, prompt, `"It could possibly be..."`)
	assert.Contains(t, prompt, "Example conversation flow:")
}

func TestBuildSystemPromptDeterministic(t *testing.T) {
	patient := &pkg.PatientData{FirstName: "Maria", Age: "34"}
	assert.Equal(t, BuildSystemPrompt(patient), BuildSystemPrompt(patient))
}
