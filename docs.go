package fncall

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

const noFunctionsPrompt = "No functions are currently available."

// RenderSystemPrompt lists functions as "- name: description" lines under a header.
func RenderSystemPrompt(functions []FunctionInfo) string {
	if len(functions) == 0 {
		return noFunctionsPrompt
	}
	var b strings.Builder
	b.WriteString("Available functions:\n\n")
	for _, fn := range functions {
		fmt.Fprintf(&b, "- %s: %s\n", fn.Name, fn.Description)
	}
	return b.String()
}

// RenderDocumentation renders a schema as text: name, description and a parameter table.
// Nested object properties appear as dotted rows below their parent.
func RenderDocumentation(s Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Function: %s\n", s.Name)
	if s.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", s.Description)
	}
	if len(s.Parameters) == 0 {
		b.WriteString("\nParameters: none\n")
		return b.String()
	}
	b.WriteString("\nParameters:\n")
	b.WriteString("| Name | Type | Required | Description |\n")
	b.WriteString("|------|------|----------|-------------|\n")
	required := s.RequiredNames()
	for _, name := range s.ParameterNames() {
		writeParamRows(&b, name, s.Parameters[name], slices.Contains(required, name))
	}
	return b.String()
}

func writeParamRows(b *strings.Builder, path string, p ParameterSpec, required bool) {
	fmt.Fprintf(b, "| %s | %s | %s | %s |\n", path, typeLabel(p), yesNo(required), paramNotes(p))
	for _, name := range slices.Sorted(maps.Keys(p.Properties)) {
		prop := p.Properties[name]
		writeParamRows(b, path+"."+name, prop, prop.Required)
	}
	if p.Items != nil && len(p.Items.Properties) > 0 {
		for _, name := range slices.Sorted(maps.Keys(p.Items.Properties)) {
			prop := p.Items.Properties[name]
			writeParamRows(b, path+"[]."+name, prop, prop.Required)
		}
	}
}

func typeLabel(p ParameterSpec) string {
	if p.Type == TypeArray && p.Items != nil {
		return "array<" + typeLabel(*p.Items) + ">"
	}
	return string(p.Type)
}

func paramNotes(p ParameterSpec) string {
	notes := []string{}
	if p.Description != "" {
		notes = append(notes, escapeCell(p.Description))
	}
	if len(p.Enum) > 0 {
		vals := make([]string, len(p.Enum))
		for i, e := range p.Enum {
			v, err := ValueOf(e)
			if err != nil {
				vals[i] = fmt.Sprint(e)
				continue
			}
			vals[i] = v.String()
		}
		notes = append(notes, "one of: "+strings.Join(vals, ", "))
	}
	if p.Minimum != nil {
		notes = append(notes, fmt.Sprintf("min %v", *p.Minimum))
	}
	if p.Maximum != nil {
		notes = append(notes, fmt.Sprintf("max %v", *p.Maximum))
	}
	if p.Pattern != "" {
		notes = append(notes, "pattern "+escapeCell(p.Pattern))
	}
	return strings.Join(notes, "; ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
