// Package records derives canonical matching projections from raw claim
// tables and answers deterministic multi-field search queries over them.
// A category schema declares, once, which source columns exist and what
// kind of value each carries; the indexer consults that schema at build
// time so column presence is decided centrally, never per field.
package records

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldKind tells the indexer which projections to derive for a column.
type FieldKind string

const (
	KindPersonName   FieldKind = "person_name"
	KindOrganization FieldKind = "organization"
	KindClinicalCode FieldKind = "clinical_code"
	KindDate         FieldKind = "date"
	KindText         FieldKind = "text"
	KindNumeric      FieldKind = "numeric"
)

var knownKinds = map[FieldKind]bool{
	KindPersonName: true, KindOrganization: true, KindClinicalCode: true,
	KindDate: true, KindText: true, KindNumeric: true,
}

// Column maps a source column header to an output field name and kind.
type Column struct {
	Name string    `yaml:"name" json:"name"`
	As   string    `yaml:"as" json:"as"`
	Kind FieldKind `yaml:"kind" json:"kind"`
}

// Filter declares a query parameter and the output fields it matches
// against. Several columns make the filter a cross-field OR (a company
// filter also probing the contract column, for instance).
type Filter struct {
	Param   string   `yaml:"param" json:"param"`
	Columns []string `yaml:"columns" json:"columns"`
}

// AlertRule is a stateless per-record predicate. Op "gte" compares a
// numeric field against Threshold; op "eq" compares the normalized field
// value against the normalized Value (indicator flags like EMER_IND=Y).
type AlertRule struct {
	Name      string  `yaml:"name" json:"name"`
	Column    string  `yaml:"column" json:"column"`
	Op        string  `yaml:"op" json:"op"`
	Threshold float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Value     string  `yaml:"value,omitempty" json:"value,omitempty"`
}

// Category is the declared schema for one record category.
type Category struct {
	ID             string      `yaml:"id" json:"id"`
	Label          string      `yaml:"label" json:"label"`
	Columns        []Column    `yaml:"columns" json:"columns"`
	DateColumn     string      `yaml:"date_column" json:"date_column"`
	DistinctColumn string      `yaml:"distinct_column" json:"distinct_column"`
	Filters        []Filter    `yaml:"filters" json:"filters"`
	Alerts         []AlertRule `yaml:"alerts" json:"alerts"`
}

// Column returns the column spec for an output field name.
func (c *Category) Column(as string) (Column, bool) {
	for _, col := range c.Columns {
		if col.As == as {
			return col, true
		}
	}
	return Column{}, false
}

func (c *Category) validate() error {
	if c.ID == "" {
		return fmt.Errorf("category missing id")
	}
	seen := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		if col.Name == "" || col.As == "" {
			return fmt.Errorf("category %s: column %d missing name or as", c.ID, i)
		}
		if !knownKinds[col.Kind] {
			return fmt.Errorf("category %s: column %s: unknown kind %q", c.ID, col.As, col.Kind)
		}
		if seen[col.As] {
			return fmt.Errorf("category %s: duplicate field %s", c.ID, col.As)
		}
		seen[col.As] = true
	}
	for _, f := range c.Filters {
		for _, col := range f.Columns {
			if !seen[col] {
				return fmt.Errorf("category %s: filter %s references unknown field %s", c.ID, f.Param, col)
			}
		}
	}
	for _, a := range c.Alerts {
		if a.Op != "gte" && a.Op != "eq" {
			return fmt.Errorf("category %s: alert %s: unknown op %q", c.ID, a.Name, a.Op)
		}
		if !seen[a.Column] {
			return fmt.Errorf("category %s: alert %s references unknown field %s", c.ID, a.Name, a.Column)
		}
	}
	return nil
}

type categoriesFile struct {
	Categories []*Category `yaml:"categories"`
}

// LoadCategories reads category schemas from a YAML file.
func LoadCategories(path string) ([]*Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories %s: %w", path, err)
	}
	var cf categoriesFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse categories %s: %w", path, err)
	}
	if len(cf.Categories) == 0 {
		return nil, fmt.Errorf("categories %s: no categories declared", path)
	}
	ids := make(map[string]bool)
	for _, c := range cf.Categories {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if ids[c.ID] {
			return nil, fmt.Errorf("duplicate category id %s", c.ID)
		}
		ids[c.ID] = true
	}
	return cf.Categories, nil
}

// DefaultCategories are the built-in medical / insurance / drug schemas.
// The alert thresholds are deployment defaults, not business rules;
// override them in a categories file when the operator says otherwise.
func DefaultCategories() []*Category {
	return []*Category{
		{
			ID:    "medical",
			Label: "Medical Records",
			Columns: []Column{
				{Name: "Name", As: "doctor_name", Kind: KindPersonName},
				{Name: "Patient Name", As: "patient_name", Kind: KindPersonName},
				{Name: "Treatment Date", As: "treatment_date", Kind: KindDate},
				{Name: "ICD10CODE", As: "icd10_code", Kind: KindClinicalCode},
				{Name: "Chief Complaint", As: "chief_complaint", Kind: KindText},
				{Name: "SignificantSignes", As: "significant_signs", Kind: KindText},
				{Name: "CLAIM_TYPE", As: "claim_type", Kind: KindText},
				{Name: "REFER_IND", As: "refer_ind", Kind: KindText},
				{Name: "EMER_IND", As: "emer_ind", Kind: KindText},
				{Name: "Contract", As: "contract", Kind: KindText},
			},
			DateColumn:     "treatment_date",
			DistinctColumn: "doctor_name",
			Filters: []Filter{
				{Param: "doctor", Columns: []string{"doctor_name"}},
				{Param: "patient", Columns: []string{"patient_name"}},
				{Param: "icd", Columns: []string{"icd10_code"}},
			},
			Alerts: []AlertRule{
				{Name: "emergency", Column: "emer_ind", Op: "eq", Value: "y"},
				{Name: "referral", Column: "refer_ind", Op: "eq", Value: "y"},
			},
		},
		{
			ID:    "insurance",
			Label: "Insurance Claims",
			Columns: []Column{
				{Name: "INV NO.", As: "inv_no", Kind: KindText},
				{Name: "Company", As: "company", Kind: KindOrganization},
				{Name: "Contract", As: "contract", Kind: KindOrganization},
				{Name: "CLAIM_TYPE", As: "claim_type", Kind: KindOrganization},
				{Name: "Gross_AmountNoVat", As: "gross_amount_no_vat", Kind: KindNumeric},
				{Name: "Vat Amount", As: "vat_amount", Kind: KindNumeric},
				{Name: "Discount", As: "discount", Kind: KindNumeric},
				{Name: "Deductible", As: "deductible", Kind: KindNumeric},
				{Name: "Special Discount", As: "special_discount", Kind: KindNumeric},
				{Name: "Net Amount", As: "net_amount", Kind: KindNumeric},
				{Name: "Pay to", As: "pay_to", Kind: KindOrganization},
				{Name: "REFER_IND", As: "refer_ind", Kind: KindText},
				{Name: "EMER_IND", As: "emer_ind", Kind: KindText},
				{Name: "Treatment Date", As: "treatment_date", Kind: KindDate},
				{Name: "INCUR_DATE_FROM", As: "incur_date_from", Kind: KindDate},
				{Name: "INCUR_DATE_TO", As: "incur_date_to", Kind: KindDate},
			},
			DateColumn:     "treatment_date",
			DistinctColumn: "company",
			Filters: []Filter{
				{Param: "company", Columns: []string{"company", "contract"}},
				{Param: "claim_type", Columns: []string{"claim_type"}},
			},
			Alerts: []AlertRule{
				{Name: "emergency", Column: "emer_ind", Op: "eq", Value: "y"},
				{Name: "referral", Column: "refer_ind", Op: "eq", Value: "y"},
			},
		},
		{
			ID:    "drug",
			Label: "Drug Records",
			Columns: []Column{
				{Name: "Name", As: "doctor_name", Kind: KindPersonName},
				{Name: "Patient Name", As: "patient_name", Kind: KindPersonName},
				{Name: "ServiceCode", As: "service_code", Kind: KindClinicalCode},
				{Name: "ServiceDescription", As: "service_description", Kind: KindText},
				{Name: "QTY", As: "quantity", Kind: KindNumeric},
				{Name: "Item_Unit_Price", As: "item_unit_price", Kind: KindNumeric},
				{Name: "Gross Amount", As: "gross_amount", Kind: KindNumeric},
				{Name: "VAT Amount", As: "vat_amount", Kind: KindNumeric},
				{Name: "Discount", As: "discount", Kind: KindNumeric},
				{Name: "Net Amount", As: "net_amount", Kind: KindNumeric},
				{Name: "Treatment Date", As: "date", Kind: KindDate},
			},
			DateColumn:     "date",
			DistinctColumn: "service_description",
			Filters: []Filter{
				{Param: "doctor", Columns: []string{"doctor_name"}},
				{Param: "patient", Columns: []string{"patient_name"}},
				{Param: "code", Columns: []string{"service_code"}},
			},
			Alerts: []AlertRule{
				{Name: "high quantity", Column: "quantity", Op: "gte", Threshold: 10},
				{Name: "high net amount", Column: "net_amount", Op: "gte", Threshold: 5000},
				{Name: "high discount", Column: "discount", Op: "gte", Threshold: 1000},
			},
		},
	}
}
