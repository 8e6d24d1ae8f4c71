// Package templates provides the admissions lead notification email content.
package templates

// LeadNotificationProps carries the contact form submission into the email body.
type LeadNotificationProps struct {
	Name      string
	Phone     string
	Email     string
	Interest  string
	Message   string
	SessionID string
}

// GetLeadNotificationContent composes the body of the lead notification sent
// to the admissions office when a visitor submits the kiosk contact form.
func GetLeadNotificationContent(props LeadNotificationProps) string {
	rows := []string{
		GetDetailRow("Name", props.Name),
		GetDetailRow("Phone", props.Phone),
	}
	if props.Email != "" {
		rows = append(rows, GetDetailRow("Email", props.Email))
	}
	if props.Interest != "" {
		rows = append(rows, GetDetailRow("Interested in", props.Interest))
	}
	rows = append(rows, GetDetailRow("Kiosk session", props.SessionID))

	content := GetHeading("New admissions lead from the kiosk")
	content += GetParagraph("A visitor left their contact details on the PathFinder kiosk and asked to be contacted about enrolment.")
	content += GetDetailTable(rows...)
	if props.Message != "" {
		content += GetParagraph("Message: " + props.Message)
	}
	content += GetParagraph("Please follow up within one working day.")

	return content
}
