// Package templates provides email template components
package templates

import (
	"bytes"
	"html/template"
	"log"
)

type headingTemplateData struct {
	Text string
}

type paragraphTemplateData struct {
	Text string
}

type rowTemplateData struct {
	Label string
	Value string
}

// Compiled templates for email components
var (
	headingTemplate = template.Must(template.New("emailHeading").Parse(`<h2 style="font-family: Helvetica, sans-serif; font-size: 20px; font-weight: bold; margin: 0; margin-bottom: 16px;">{{.Text}}</h2>`))

	paragraphTemplate = template.Must(template.New("emailParagraph").Parse(`<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">{{.Text}}</p>`))

	rowTemplate = template.Must(template.New("emailRow").Parse(`
    <tr>
      <td style="font-family: Helvetica, sans-serif; font-size: 16px; padding: 4px 12px 4px 0; color: #9a9ea6; white-space: nowrap;" valign="top">{{.Label}}</td>
      <td style="font-family: Helvetica, sans-serif; font-size: 16px; padding: 4px 0;" valign="top">{{.Value}}</td>
    </tr>`))
)

// GetHeading renders a section heading.
func GetHeading(text string) string {
	var buf bytes.Buffer
	if err := headingTemplate.Execute(&buf, headingTemplateData{Text: text}); err != nil {
		log.Printf("Error executing email heading template: %v", err)
		return ""
	}
	return buf.String()
}

// GetParagraph renders a plain text paragraph with HTML escaping.
func GetParagraph(text string) string {
	var buf bytes.Buffer
	if err := paragraphTemplate.Execute(&buf, paragraphTemplateData{Text: text}); err != nil {
		log.Printf("Error executing email paragraph template: %v", err)
		return ""
	}
	return buf.String()
}

// GetDetailRow renders one label/value row for a detail table.
func GetDetailRow(label, value string) string {
	var buf bytes.Buffer
	if err := rowTemplate.Execute(&buf, rowTemplateData{Label: label, Value: value}); err != nil {
		log.Printf("Error executing email row template: %v", err)
		return ""
	}
	return buf.String()
}

// GetDetailTable wraps rendered rows in a presentation table.
func GetDetailTable(rows ...string) string {
	out := `<table role="presentation" border="0" cellpadding="0" cellspacing="0" style="border-collapse: collapse; margin-bottom: 16px;">`
	for _, row := range rows {
		out += row
	}
	out += `</table>`
	return out
}
