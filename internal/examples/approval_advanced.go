package examples

import (
	"fmt"
	"strconv"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/flow"
	"github.com/deploymenttheory/go-flow-composer/internal/generator"
	tpl "github.com/deploymenttheory/go-flow-composer/internal/templates"
)

const defaultEscalationHours = 24

// byDepartment selects one of the approver compose outputs by department.
func byDepartment(field string) string {
	return fmt.Sprintf(`@{if(equals(outputs('formatDocumentDetails')?['department'], 'Finance'),
    outputs('setFinanceApprover')?['%[1]s'],
  if(equals(outputs('formatDocumentDetails')?['department'], 'HR'),
    outputs('setHRApprover')?['%[1]s'],
    outputs('setDefaultApprover')?['%[1]s']))}`, field)
}

func approverDetails(email, name, priority string) string {
	return fmt.Sprintf(`{
  "approverEmail": %q,
  "approverName": %q,
  "approvalPriority": %q
}`, email, name, priority)
}

func init() {
	Register(&Example{
		Name:        "sharepoint-approval-advanced",
		Description: "Document approval with departmental routing, owner notification and escalation",
		Inputs: append(append([]Input{}, documentInputs...),
			Input{Name: "department-column", Description: "Library column holding the document department"},
			Input{Name: "escalation-hours", Description: "Hours before an open approval is escalated"},
		),
		configure: configureAdvancedApproval,
	})
}

func configureAdvancedApproval(cfg *config.AppConfig, in Inputs) (*Flow, error) {
	s := newSettings(cfg)
	siteURL := in.Get("document-library-url", s.siteURL())
	libraryID := in.Get("document-library-id", s.list(listApprovals))
	approvalListID := in.Get("approval-list-id", s.list(listApprovals))
	departmentColumn := in.Get("department-column", "Department")

	escalationHours := defaultEscalationHours
	if raw := in.Get("escalation-hours", ""); raw != "" {
		h, err := strconv.Atoi(raw)
		if err != nil || h <= 0 {
			return nil, fmt.Errorf("%w: escalation-hours must be a positive integer, got %q", errors.ErrInvalidArgument, raw)
		}
		escalationHours = h
	}

	primary := s.member(memberApprover)
	secondary := s.member(memberSecondApprover)
	escalation := s.member(memberEscalation)
	notify := s.recipients(s.distributionList(listNotifications))

	details := fmt.Sprintf(`{
  "fileName": @{triggerBody()?['DisplayName']},
  "fileUrl": @{triggerBody()?['Path']},
  "fileId": @{triggerBody()?['ID']},
  "author": @{triggerBody()?['Author']?['DisplayName']},
  "authorEmail": @{triggerBody()?['Author']?['Email']},
  "createdDate": @{formatDateTime(triggerBody()?['TimeCreated'], 'yyyy-MM-dd')},
  "department": @{triggerBody()?['%s'] ?? 'General'},
  "documentType": @{if(contains(triggerBody()?['DisplayName'], '.pdf'), 'PDF',
                   if(contains(triggerBody()?['DisplayName'], '.docx'), 'Word',
                   if(contains(triggerBody()?['DisplayName'], '.xlsx'), 'Excel', 'Other')))},
  "reviewDueDate": @{formatDateTime(addDays(utcNow(), 7), 'yyyy-MM-dd')},
  "escalationDateTime": @{formatDateTime(addHours(utcNow(), %d), 'yyyy-MM-dd HH:mm:ss')}
}`, departmentColumn, escalationHours)

	requestBody := fmt.Sprintf(`<p>A new @{outputs('formatDocumentDetails')?['department']} document has been uploaded and requires your approval:</p>
<p><strong>Document Name:</strong> @{outputs('formatDocumentDetails')?['fileName']}</p>
<p><strong>Document Type:</strong> @{outputs('formatDocumentDetails')?['documentType']}</p>
<p><strong>Department:</strong> @{outputs('formatDocumentDetails')?['department']}</p>
<p><strong>Uploaded By:</strong> @{outputs('formatDocumentDetails')?['author']} (@{outputs('formatDocumentDetails')?['authorEmail']})</p>
<p><strong>Priority:</strong> %s</p>
<p><strong>Review Due By:</strong> @{outputs('formatDocumentDetails')?['reviewDueDate']}</p>
<p><strong>Document Link:</strong> <a href="@{outputs('formatDocumentDetails')?['fileUrl']}">View Document</a></p>
<p><em>Note: If not approved within %d hours, this request will be automatically escalated.</em></p>`,
		byDepartment("approvalPriority"), escalationHours)

	ownerBody := fmt.Sprintf(`<p>Your document has been submitted for approval:</p>
<p><strong>Document Name:</strong> @{outputs('formatDocumentDetails')?['fileName']}</p>
<p><strong>Department:</strong> @{outputs('formatDocumentDetails')?['department']}</p>
<p><strong>Status:</strong> Pending Approval</p>
<p><strong>Approver:</strong> %s</p>
<p><strong>Expected Review By:</strong> @{outputs('formatDocumentDetails')?['reviewDueDate']}</p>`,
		byDepartment("approverName"))

	departmentBody := `<p>A new document has been added to the @{outputs('formatDocumentDetails')?['department']} department:</p>
<p><strong>Document Name:</strong> @{outputs('formatDocumentDetails')?['fileName']}</p>
<p><strong>Uploaded By:</strong> @{outputs('formatDocumentDetails')?['author']}</p>
<p><strong>Document Link:</strong> <a href="@{outputs('formatDocumentDetails')?['fileUrl']}">View Document</a></p>`

	return &Flow{
		DisplayName: "Advanced Document Approval Workflow",
		Description: "Comprehensive document approval system with escalation, monitoring, and departmental routing",
		AddSteps: func(g *generator.Generator) {
			g.AddTrigger("whenNewDocumentAdded",
				tpl.SharePointItemTrigger(siteURL, libraryID, tpl.ItemCreated, s.sharePoint, s.sharePointAPI))

			g.AddAction("formatDocumentDetails", tpl.Compose(details))

			g.AddAction("determineApprover", tpl.Condition(
				"@equals(outputs('formatDocumentDetails')?['department'], 'Finance')",
				flow.ActionMap{
					"setFinanceApprover": tpl.Compose(approverDetails(escalation, "Finance Approver", "High")),
				},
				flow.ActionMap{
					"checkIfHR": tpl.Condition(
						"@equals(outputs('formatDocumentDetails')?['department'], 'HR')",
						flow.ActionMap{
							"setHRApprover": tpl.Compose(approverDetails(secondary, "HR Approver", "Medium")),
						},
						flow.ActionMap{
							"setDefaultApprover": tpl.Compose(approverDetails(primary, "Default Approver", "Normal")),
						},
					),
				},
			))

			g.AddAction("createApprovalEntry", tpl.SharePointCreateItem(siteURL, approvalListID, map[string]any{
				"Title":          "@{outputs('formatDocumentDetails')?['fileName']}",
				"DocumentLink":   "@{outputs('formatDocumentDetails')?['fileUrl']}",
				"RequestedBy":    "@{outputs('formatDocumentDetails')?['author']}",
				"ApproverEmail":  byDepartment("approverEmail"),
				"RequestDate":    "@{utcNow()}",
				"DueDate":        "@{outputs('formatDocumentDetails')?['reviewDueDate']}",
				"ApprovalStatus": "Pending",
				"Department":     "@{outputs('formatDocumentDetails')?['department']}",
				"DocumentType":   "@{outputs('formatDocumentDetails')?['documentType']}",
				"Priority":       byDepartment("approvalPriority"),
				"EscalationDate": "@{outputs('formatDocumentDetails')?['escalationDateTime']}",
			}, s.sharePoint, s.sharePointAPI))

			g.AddAction("sendApprovalRequest", tpl.SendEmail(
				"Document Approval Request: @{outputs('formatDocumentDetails')?['fileName']}",
				requestBody, byDepartment("approverEmail"), s.outlook, s.outlookAPI))

			g.AddAction("updateDocumentMetadata", tpl.SharePointCreateItem(siteURL, libraryID, map[string]any{
				"id":             "@{triggerBody()?['ID']}",
				"ContentType":    "Document",
				"Department":     "@{outputs('formatDocumentDetails')?['department']}",
				"ApprovalStatus": "Pending",
				"RequiresReview": true,
				"ReviewDueDate":  "@{outputs('formatDocumentDetails')?['reviewDueDate']}",
				"IsConfidential": "@{equals(outputs('formatDocumentDetails')?['documentType'], 'PDF')}",
			}, s.sharePoint, s.sharePointAPI))

			g.AddAction("notifyDocumentOwner", tpl.SendEmail(
				"Document Approval Process Started: @{outputs('formatDocumentDetails')?['fileName']}",
				ownerBody, "@{outputs('formatDocumentDetails')?['authorEmail']}", s.outlook, s.outlookAPI))

			g.AddAction("notifyDepartmentAdmin", tpl.Condition(
				"@not(equals(outputs('formatDocumentDetails')?['department'], 'General'))",
				flow.ActionMap{
					"sendDepartmentNotification": tpl.SendEmail(
						"New @{outputs('formatDocumentDetails')?['department']} Document Added: @{outputs('formatDocumentDetails')?['fileName']}",
						departmentBody, notify, s.outlook, s.outlookAPI),
				},
				flow.ActionMap{},
			))
		},
	}, nil
}
