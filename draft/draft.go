/*
Package draft produces human-readable email text around leave decisions.

PURPOSE:
  The engine's decisions are structured data; this package turns them into
  the two email artifacts the workflow needs: the employee's request email
  to their manager, and the manager notification sent on approval.

DRAFTERS:
  TemplateDrafter  deterministic text/template rendering, always available
  OpenAIDrafter    chat-completion phrasing via go-openai, falling back to
                   the template drafter on any API failure

  The engine never depends on a drafter; it is a presentation-side
  collaborator wired in by the API layer.
*/
package draft

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/warp/leave-engine/leave"
)

// Email is a drafted subject/body pair.
type Email struct {
	Subject string
	Body    string
}

// Input carries everything a drafter needs to phrase an email.
type Input struct {
	Employee    leave.Employee
	ManagerName string
	LeaveType   leave.Type
	Start       time.Time
	End         time.Time
	Days        int
	Balance     leave.Balance
	Reason      string // optional free-text reason from the employee
}

// Drafter produces email drafts. Implementations must be safe for
// concurrent use.
type Drafter interface {
	// RequestEmail drafts the employee's leave request email.
	RequestEmail(ctx context.Context, in Input) (Email, error)

	// ApprovalNotice drafts the manager notification for an approved request.
	ApprovalNotice(ctx context.Context, in Input) (Email, error)
}

// =============================================================================
// TEMPLATE DRAFTER
// =============================================================================

var requestTmpl = template.Must(template.New("request").Parse(
	`Hi {{.ManagerName}},

I would like to request {{.Days}} day(s) of {{.LeaveType}} leave from {{.StartDate}} to {{.EndDate}}.
{{if .Reason}}
Reason: {{.Reason}}
{{end}}
My current balance is {{.RemainingDays}} day(s) remaining of a {{.QuotaDays}}-day annual allowance, so this request is covered.

Please let me know if these dates work for the team.

Thanks,
{{.EmployeeName}}`))

var approvalTmpl = template.Must(template.New("approval").Parse(
	`Hi {{.ManagerName}},

This is a confirmation that {{.EmployeeName}}'s {{.LeaveType}} leave has been approved:

  Dates:     {{.StartDate}} to {{.EndDate}} ({{.Days}} day(s))
  Balance:   {{.RemainingDays}} day(s) remaining after this leave

No action is needed; the leave has been recorded in the ledger.`))

type templateData struct {
	EmployeeName  string
	ManagerName   string
	LeaveType     leave.Type
	StartDate     string
	EndDate       string
	Days          int
	RemainingDays string
	QuotaDays     int
	Reason        string
}

// TemplateDrafter renders fixed templates. Zero value is ready to use.
type TemplateDrafter struct{}

func (TemplateDrafter) RequestEmail(_ context.Context, in Input) (Email, error) {
	body, err := render(requestTmpl, in)
	if err != nil {
		return Email{}, err
	}
	return Email{
		Subject: fmt.Sprintf("Leave Request: %s, %s to %s",
			in.LeaveType, in.Start.Format("Jan 2"), in.End.Format("Jan 2, 2006")),
		Body: body,
	}, nil
}

func (TemplateDrafter) ApprovalNotice(_ context.Context, in Input) (Email, error) {
	body, err := render(approvalTmpl, in)
	if err != nil {
		return Email{}, err
	}
	return Email{
		Subject: fmt.Sprintf("Approved: %s leave for %s (%d day(s))",
			in.LeaveType, in.Employee.Name, in.Days),
		Body: body,
	}, nil
}

func render(tmpl *template.Template, in Input) (string, error) {
	manager := in.ManagerName
	if manager == "" {
		manager = "Manager"
	}
	data := templateData{
		EmployeeName:  in.Employee.Name,
		ManagerName:   manager,
		LeaveType:     in.LeaveType,
		StartDate:     in.Start.Format("2006-01-02"),
		EndDate:       in.End.Format("2006-01-02"),
		Days:          in.Days,
		RemainingDays: in.Balance.RemainingDays().String(),
		QuotaDays:     in.Balance.QuotaDays,
		Reason:        in.Reason,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return buf.String(), nil
}
