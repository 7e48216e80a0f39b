package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBloodType_Valid(t *testing.T) {
	for _, bt := range BloodTypes {
		assert.True(t, bt.Valid(), string(bt))
	}
	assert.True(t, BloodTypeUnset.Valid())
	assert.False(t, BloodType("C+").Valid())
	assert.False(t, BloodType("o+").Valid())
}

func TestMedicalIDRecord_JSONKeys(t *testing.T) {
	raw, err := json.Marshal(MedicalIDRecord{Name: "Ali", BloodType: BloodTypeOPos, IsOrganDonor: true})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "Ali", m["name"])
	assert.Equal(t, "O+", m["bloodType"])
	assert.Equal(t, true, m["isOrganDonor"])
	assert.Contains(t, m, "emergencyContact")
	assert.NotContains(t, m, "photo")
}

func TestEmptyMedicalID(t *testing.T) {
	assert.True(t, EmptyMedicalID().IsEmpty())
	assert.False(t, MedicalIDRecord{IsOrganDonor: true}.IsEmpty())
}

func TestResultBag_Accessors(t *testing.T) {
	bag := ResultBag{
		"status":    "Urgent",
		"first_aid": []any{"Rinse", 3, "Cover"},
		"advice":    "Rest",
		"count":     2.0,
	}
	assert.Equal(t, "Urgent", bag.String("status"))
	assert.Equal(t, "", bag.String("count"))
	assert.Equal(t, []string{"Rinse", "Cover"}, bag.Strings("first_aid"))
	assert.Equal(t, []string{"Rest"}, bag.Strings("advice"))
	assert.Nil(t, bag.Strings("missing"))
}

func TestAnalysisResult_Views(t *testing.T) {
	r := WellFormed(ResultBag{"type": "Injury", "status": "Stable", "finding": "Graze", "first_aid": []any{"Clean"}})
	require.True(t, r.OK())
	assert.Equal(t, TriageFinding{Type: "Injury", Status: "Stable", Finding: "Graze", FirstAid: []string{"Clean"}}, r.Triage())

	m := Malformed("not json", "invalid character")
	assert.False(t, m.OK())
	assert.Equal(t, "", m.Medicine().Name)
}
