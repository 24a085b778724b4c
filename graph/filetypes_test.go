package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Run("known export files", func(t *testing.T) {
		expected := map[string]RecordType{
			"Profile.csv":                   TypeProfile,
			"Connections.csv":               TypeConnections,
			"Skills.csv":                    TypeSkills,
			"Company Follows.csv":           TypeCompanyFollows,
			"Endorsement_Received_Info.csv": TypeEndorsementReceived,
			"Positions.csv":                 TypePositions,
			"messages.csv":                  TypeMessages,
			"Ad_Targeting.csv":              TypeAdTargeting,
			"Job Applicant Saved Screening Question Responses.csv": TypeJobApplicantScreening,
		}
		for name, want := range expected {
			assert.Equal(t, want, Classify(name), "file %s", name)
		}
	})

	t.Run("matching is verbatim", func(t *testing.T) {
		assert.Equal(t, TypeUnknown, Classify("connections.csv"))
		assert.Equal(t, TypeUnknown, Classify("Messages.csv"))
		assert.Equal(t, TypeUnknown, Classify("Profile"))
		assert.Equal(t, TypeUnknown, Classify("Profile.csv "))
		assert.Equal(t, TypeUnknown, Classify(""))
		assert.Equal(t, TypeUnknown, Classify("Recommendations_Given.csv"))
	})

	t.Run("registry is total", func(t *testing.T) {
		names := KnownFileNames()
		require.Len(t, names, 27)
		for _, name := range names {
			assert.NotEqual(t, TypeUnknown, Classify(name), "file %s", name)
		}
	})
}
