package application

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AcademicInfo is the applicant's academic background. Every field is optional;
// list fields keep the nil/empty distinction through storage.
type AcademicInfo struct {
	Institution        *string  `json:"institution,omitempty"`
	FieldOfStudy       *string  `json:"fieldOfStudy,omitempty"`
	YearOfStudy        *int     `json:"yearOfStudy,omitempty"`
	GPA                *float64 `json:"gpa,omitempty"`
	ExpectedGraduation *string  `json:"expectedGraduation,omitempty"`
	Achievements       []string `json:"achievements"`
}

// FinancialInfo is the applicant's declared financial situation. Every field is optional.
type FinancialInfo struct {
	HouseholdIncome   *float64 `json:"householdIncome,omitempty"`
	HouseholdSize     *int     `json:"householdSize,omitempty"`
	EmploymentStatus  *string  `json:"employmentStatus,omitempty"`
	OtherScholarships []string `json:"otherScholarships"`
	NeedStatement     *string  `json:"needStatement,omitempty"`
}

// AdditionalInfo groups the structured sub-records stored in the
// applications.additional_info column. It is (de)serialized only at the
// storage boundary through driver.Valuer and sql.Scanner.
type AdditionalInfo struct {
	Academic  *AcademicInfo  `json:"academicInfo,omitempty"`
	Financial *FinancialInfo `json:"financialInfo,omitempty"`
}

// Merge applies the set fields of academic and financial on top of the
// current values; unset fields keep what is already stored.
func (ai *AdditionalInfo) Merge(academic *AcademicInfo, financial *FinancialInfo) {
	if academic != nil {
		if ai.Academic == nil {
			ai.Academic = &AcademicInfo{}
		}
		ai.Academic.merge(academic)
	}
	if financial != nil {
		if ai.Financial == nil {
			ai.Financial = &FinancialInfo{}
		}
		ai.Financial.merge(financial)
	}
}

func (a *AcademicInfo) merge(p *AcademicInfo) {
	if p.Institution != nil {
		a.Institution = p.Institution
	}
	if p.FieldOfStudy != nil {
		a.FieldOfStudy = p.FieldOfStudy
	}
	if p.YearOfStudy != nil {
		a.YearOfStudy = p.YearOfStudy
	}
	if p.GPA != nil {
		a.GPA = p.GPA
	}
	if p.ExpectedGraduation != nil {
		a.ExpectedGraduation = p.ExpectedGraduation
	}
	if p.Achievements != nil {
		a.Achievements = append([]string(nil), p.Achievements...)
	}
}

func (f *FinancialInfo) merge(p *FinancialInfo) {
	if p.HouseholdIncome != nil {
		f.HouseholdIncome = p.HouseholdIncome
	}
	if p.HouseholdSize != nil {
		f.HouseholdSize = p.HouseholdSize
	}
	if p.EmploymentStatus != nil {
		f.EmploymentStatus = p.EmploymentStatus
	}
	if p.OtherScholarships != nil {
		f.OtherScholarships = append([]string(nil), p.OtherScholarships...)
	}
	if p.NeedStatement != nil {
		f.NeedStatement = p.NeedStatement
	}
}

// Value implements driver.Valuer.
func (ai AdditionalInfo) Value() (driver.Value, error) {
	b, err := json.Marshal(ai)
	if err != nil {
		return nil, fmt.Errorf("marshal additional info: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner. NULL and empty input yield an empty value.
func (ai *AdditionalInfo) Scan(src any) error {
	*ai = AdditionalInfo{}
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan additional info: unsupported type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, ai); err != nil {
		return fmt.Errorf("unmarshal additional info: %w", err)
	}
	return nil
}
