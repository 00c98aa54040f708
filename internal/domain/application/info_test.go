package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship_admin/internal/domain/application"
)

func ptr[T any](v T) *T { return &v }

func TestAdditionalInfo_StorageRoundTrip(t *testing.T) {
	in := application.AdditionalInfo{
		Academic: &application.AcademicInfo{
			Institution:  ptr("State University"),
			GPA:          ptr(3.85),
			YearOfStudy:  ptr(2),
			Achievements: []string{"Dean's list"},
		},
		Financial: &application.FinancialInfo{
			HouseholdIncome:   ptr(18500.50),
			OtherScholarships: []string{},
		},
	}

	v, err := in.Value()
	require.NoError(t, err)

	var out application.AdditionalInfo
	require.NoError(t, out.Scan([]byte(v.(string))))

	assert.Equal(t, in, out)
}

func TestAdditionalInfo_EmptyListsSurviveStorage(t *testing.T) {
	in := application.AdditionalInfo{
		Academic:  &application.AcademicInfo{Achievements: []string{}},
		Financial: &application.FinancialInfo{},
	}

	v, err := in.Value()
	require.NoError(t, err)

	var out application.AdditionalInfo
	require.NoError(t, out.Scan(v))

	require.NotNil(t, out.Academic.Achievements)
	assert.Empty(t, out.Academic.Achievements)
	assert.Nil(t, out.Financial.OtherScholarships)
	assert.Equal(t, in, out)
}

func TestAdditionalInfo_ScanNullAndEmpty(t *testing.T) {
	var ai application.AdditionalInfo
	require.NoError(t, ai.Scan(nil))
	assert.Nil(t, ai.Academic)
	require.NoError(t, ai.Scan(""))
	assert.Error(t, ai.Scan(42))
	assert.Error(t, ai.Scan("{not json"))
}

func TestAdditionalInfo_MergeKeepsUnsetFields(t *testing.T) {
	ai := application.AdditionalInfo{
		Academic: &application.AcademicInfo{Institution: ptr("Old U"), GPA: ptr(3.1)},
	}

	ai.Merge(&application.AcademicInfo{GPA: ptr(3.4)}, &application.FinancialInfo{HouseholdSize: ptr(4)})

	require.NotNil(t, ai.Academic)
	assert.Equal(t, "Old U", *ai.Academic.Institution)
	assert.Equal(t, 3.4, *ai.Academic.GPA)
	require.NotNil(t, ai.Financial)
	assert.Equal(t, 4, *ai.Financial.HouseholdSize)

	ai.Merge(nil, nil)
	assert.Equal(t, 3.4, *ai.Academic.GPA)
}
