package models

// BloodType is one of the eight ABO/Rh groups, or empty when unset.
type BloodType string

const (
	BloodTypeUnset BloodType = ""
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

// BloodTypes lists the selectable groups in picker order.
var BloodTypes = []BloodType{
	BloodTypeAPos, BloodTypeANeg,
	BloodTypeBPos, BloodTypeBNeg,
	BloodTypeABPos, BloodTypeABNeg,
	BloodTypeOPos, BloodTypeONeg,
}

// Valid reports whether b is unset or one of BloodTypes.
func (b BloodType) Valid() bool {
	if b == BloodTypeUnset {
		return true
	}
	for _, t := range BloodTypes {
		if b == t {
			return true
		}
	}
	return false
}

// MedicalIDRecord is the single user-editable emergency card kept on the device.
// Photo is persisted in its own slot and never inside the record payload.
type MedicalIDRecord struct {
	Name             string    `json:"name"`
	DOB              string    `json:"dob"`
	BloodType        BloodType `json:"bloodType"`
	Height           string    `json:"height"`
	Weight           string    `json:"weight"`
	Allergies        string    `json:"allergies"`
	Conditions       string    `json:"conditions"`
	EmergencyContact string    `json:"emergencyContact"`
	IsOrganDonor     bool      `json:"isOrganDonor"`
	Photo            string    `json:"photo,omitempty"`
}

// EmptyMedicalID returns the default record used when nothing (readable) is stored.
func EmptyMedicalID() MedicalIDRecord {
	return MedicalIDRecord{}
}

// IsEmpty reports whether every field holds its default value.
func (r MedicalIDRecord) IsEmpty() bool {
	return r == MedicalIDRecord{}
}
