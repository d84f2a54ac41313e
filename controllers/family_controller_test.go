package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tribeconnect/models"
	"tribeconnect/utils"
)

func TestFamilyMemberInputApply(t *testing.T) {
	tests := []struct {
		name  string
		input familyMemberInput
	}{
		{
			name:  "numeric age",
			input: familyMemberInput{Name: "Amara", Age: "7", Relationship: "daughter"},
		},
		{
			name:  "free-form age",
			input: familyMemberInput{Name: "Joseph", Age: "72 years", Relationship: "grandfather"},
		},
		{
			name:  "age omitted",
			input: familyMemberInput{Name: "Nia"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member := models.FamilyMember{CircleID: 3}
			tt.input.apply(&member)

			assert.Equal(t, uint(3), member.CircleID)
			assert.Equal(t, tt.input.Name, member.Name)
			assert.Equal(t, tt.input.Age, member.Age)
			assert.Equal(t, tt.input.Relationship, member.Relationship)
		})
	}
}

func TestFamilyMemberInputValidation(t *testing.T) {
	assert.NoError(t, utils.ValidateStruct(familyMemberInput{Name: "Amara", Age: "7"}))
	assert.Error(t, utils.ValidateStruct(familyMemberInput{Age: "7"}), "name is required")
	assert.Error(t, utils.ValidateStruct(familyMemberInput{
		Name: "Amara",
		Age:  "far too long a description of an age",
	}))
}
