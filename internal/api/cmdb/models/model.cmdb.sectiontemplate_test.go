package models

import "testing"

func TestSectionTemplateToSection(t *testing.T) {
	tpl := CmdbSectionTemplate{
		Name:  "general-information",
		Label: "General Information",
		Fields: []TypeField{
			{Name: "name", Label: "Name", Type: FieldTypeText},
			{Name: "description", Label: "Description", Type: FieldTypeTextarea},
		},
	}

	section := tpl.ToSection()

	if section.Type != SectionTypeSection {
		t.Fatalf("section type = %q, want %q", section.Type, SectionTypeSection)
	}
	if section.Name != tpl.Name || section.Label != tpl.Label {
		t.Fatalf("section name/label = %q/%q, want %q/%q", section.Name, section.Label, tpl.Name, tpl.Label)
	}
	if len(section.Fields) != 2 {
		t.Fatalf("section has %d fields, want 2", len(section.Fields))
	}
	if section.Fields[0] != "name" || section.Fields[1] != "description" {
		t.Fatalf("section fields = %v, want field names in template order", section.Fields)
	}
}
