package records

import (
	"reflect"
	"testing"

	"github.com/hazyhaar/sijill/pkg/source"
)

func medicalCategory() *Category {
	for _, c := range DefaultCategories() {
		if c.ID == "medical" {
			return c
		}
	}
	return nil
}

func medicalTable() *source.Table {
	return &source.Table{
		Columns: []string{"Name", "Patient Name", "Treatment Date", "ICD10CODE", "Chief Complaint", "EMER_IND", "REFER_IND"},
		Rows: []map[string]any{
			{
				"Name":            "Dr. Ahmed Ali",
				"Patient Name":    "محمد عبدالله",
				"Treatment Date":  "04/09/2025",
				"ICD10CODE":       "E11.9",
				"Chief Complaint": "Chest pain",
				"EMER_IND":        "N",
				"REFER_IND":       "N",
			},
			{
				"Name":            "دكتور خالد العتيبي",
				"Patient Name":    "سَارة أحمد",
				"Treatment Date":  "45567",
				"ICD10CODE":       "J45.0; E11",
				"Chief Complaint": "ضيق تنفس",
				"EMER_IND":        "Y",
				"REFER_IND":       "N",
			},
			{
				"Name":            "Dr. Ahmed Ali",
				"Patient Name":    "Omar Hassan",
				"Treatment Date":  "not-a-date",
				"ICD10CODE":       "no code",
				"Chief Complaint": "follow up",
				"EMER_IND":        "N",
				"REFER_IND":       "Y",
			},
			{
				"Name":            "Prof. Lina Saad",
				"Patient Name":    "Huda",
				"Treatment Date":  "03/09/2025",
				"ICD10CODE":       "E11",
				"Chief Complaint": "routine",
				"EMER_IND":        "N",
				"REFER_IND":       "N",
			},
		},
	}
}

func buildMedical(t *testing.T) *Index {
	t.Helper()
	return BuildIndex(medicalCategory(), medicalTable(), "fp-1")
}

func TestBuildIndexProjections(t *testing.T) {
	ix := buildMedical(t)

	if len(ix.Records) != 4 {
		t.Fatalf("records = %d, want 4", len(ix.Records))
	}

	rec := ix.Records[0]
	if rec.ID != 1 {
		t.Errorf("ID = %d, want 1", rec.ID)
	}

	doc := rec.Fields["doctor_name"]
	if doc.Norm != "dr ahmed ali" {
		t.Errorf("doctor Norm = %q, want %q", doc.Norm, "dr ahmed ali")
	}
	if doc.Bare != "ahmed ali" {
		t.Errorf("doctor Bare = %q, want %q", doc.Bare, "ahmed ali")
	}

	code := rec.Fields["icd10_code"]
	if code.Code.Full != "E11.9" || code.Code.Root != "E11" {
		t.Errorf("code = %+v, want E11.9/E11", code.Code)
	}

	date := rec.Fields["treatment_date"]
	if !date.DateOK || date.Display != "2025-09-04" {
		t.Errorf("date = %+v, want resolved 2025-09-04", date)
	}

	// Multi-code cell keeps only the first code.
	if got := ix.Records[1].Fields["icd10_code"].Code.Full; got != "J45.0" {
		t.Errorf("multi-code Full = %q, want J45.0", got)
	}

	// Unresolved date renders the explicit empty marker.
	if got := ix.Records[2].Fields["treatment_date"]; got.DateOK || got.Display != "" {
		t.Errorf("unresolved date = %+v, want empty", got)
	}
}

func TestBuildIndexAbsentColumns(t *testing.T) {
	tab := &source.Table{
		Columns: []string{"Name"},
		Rows:    []map[string]any{{"Name": "Dr. Ahmed"}},
	}
	ix := BuildIndex(medicalCategory(), tab, "fp")

	rec := ix.Records[0]
	if _, ok := rec.Fields["doctor_name"]; !ok {
		t.Fatal("doctor_name missing")
	}
	if _, ok := rec.Fields["patient_name"]; ok {
		t.Error("patient_name derived from absent column")
	}
	if _, ok := rec.Fields["treatment_date"]; ok {
		t.Error("treatment_date derived from absent column")
	}
}

func TestBuildIndexDeterministic(t *testing.T) {
	a := BuildIndex(medicalCategory(), medicalTable(), "fp")
	b := BuildIndex(medicalCategory(), medicalTable(), "fp")
	if !reflect.DeepEqual(a.Records, b.Records) {
		t.Error("two builds over the same snapshot differ")
	}
}
