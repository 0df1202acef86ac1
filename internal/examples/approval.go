package examples

import (
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/flow"
	"github.com/deploymenttheory/go-flow-composer/internal/generator"
	tpl "github.com/deploymenttheory/go-flow-composer/internal/templates"
)

const documentDetails = `{
  "fileName": @{triggerBody()?['DisplayName']},
  "fileUrl": @{triggerBody()?['Path']},
  "author": @{triggerBody()?['Author']?['DisplayName']},
  "createdDate": @{formatDateTime(triggerBody()?['TimeCreated'], 'yyyy-MM-dd')},
  "documentType": @{if(contains(triggerBody()?['DisplayName'], '.pdf'), 'PDF',
                   if(contains(triggerBody()?['DisplayName'], '.docx'), 'Word',
                   if(contains(triggerBody()?['DisplayName'], '.xlsx'), 'Excel', 'Other')))}
}`

const approvalRequestBody = `<p>A new document has been uploaded and requires your approval:</p>
<p><strong>Document Name:</strong> @{outputs('formatDocumentDetails')?['fileName']}</p>
<p><strong>Document Type:</strong> @{outputs('formatDocumentDetails')?['documentType']}</p>
<p><strong>Uploaded By:</strong> @{outputs('formatDocumentDetails')?['author']}</p>
<p><strong>Upload Date:</strong> @{outputs('formatDocumentDetails')?['createdDate']}</p>
<p><strong>Document Link:</strong> <a href="@{outputs('formatDocumentDetails')?['fileUrl']}">View Document</a></p>
<p>Please review and approve this document by adding an approval entry to the approval list.</p>`

const nonStandardBody = `<p>A non-standard document has been uploaded and is pending approval:</p>
<p><strong>Document Name:</strong> @{outputs('formatDocumentDetails')?['fileName']}</p>
<p><strong>Document Type:</strong> @{outputs('formatDocumentDetails')?['documentType']}</p>
<p><strong>Uploaded By:</strong> @{outputs('formatDocumentDetails')?['author']}</p>
<p>This document may require special handling.</p>`

var documentInputs = []Input{
	{Name: "document-library-url", Description: "SharePoint site holding the document library"},
	{Name: "document-library-id", Description: "Document library list id"},
	{Name: "approval-list-id", Description: "Approval tracking list id"},
}

func init() {
	Register(&Example{
		Name:        "sharepoint-approval-flow",
		Description: "Routes new documents in a SharePoint library for approval",
		Inputs:      documentInputs,
		configure:   configureApproval,
	})
}

func configureApproval(cfg *config.AppConfig, in Inputs) (*Flow, error) {
	s := newSettings(cfg)
	siteURL := in.Get("document-library-url", s.siteURL())
	libraryID := in.Get("document-library-id", s.list(listApprovals))
	approvalListID := in.Get("approval-list-id", s.list(listApprovals))
	approver := s.member(memberApprover)
	notify := s.recipients(s.distributionList(listNotifications))

	return &Flow{
		DisplayName: "Document Approval Workflow",
		Description: "Automatically routes documents for approval when added to a document library",
		AddSteps: func(g *generator.Generator) {
			g.AddTrigger("whenNewDocumentAdded",
				tpl.SharePointItemTrigger(siteURL, libraryID, tpl.ItemCreated, s.sharePoint, s.sharePointAPI))

			g.AddAction("formatDocumentDetails", tpl.Compose(documentDetails))

			g.AddAction("sendApprovalRequest", tpl.SendEmail(
				"Document Approval Request: @{outputs('formatDocumentDetails')?['fileName']}",
				approvalRequestBody, approver, s.outlook, s.outlookAPI))

			g.AddAction("createApprovalEntry", tpl.SharePointCreateItem(siteURL, approvalListID, map[string]any{
				"Title":          "@{outputs('formatDocumentDetails')?['fileName']}",
				"DocumentLink":   "@{outputs('formatDocumentDetails')?['fileUrl']}",
				"RequestedBy":    "@{outputs('formatDocumentDetails')?['author']}",
				"RequestDate":    "@{utcNow()}",
				"ApprovalStatus": "Pending",
				"DocumentType":   "@{outputs('formatDocumentDetails')?['documentType']}",
			}, s.sharePoint, s.sharePointAPI))

			g.AddAction("checkFileType", tpl.Condition(
				"@equals(outputs('formatDocumentDetails')?['documentType'], 'PDF')",
				flow.ActionMap{
					"addPdfMetadata": tpl.SharePointCreateItem(siteURL, libraryID, map[string]any{
						"id":             "@{triggerBody()?['ID']}",
						"ContentType":    "Document",
						"IsConfidential": true,
						"ReviewDueDate":  "@{addDays(utcNow(), 14)}",
					}, s.sharePoint, s.sharePointAPI),
				},
				flow.ActionMap{
					"notifyAboutNonStandardDoc": tpl.SendEmail(
						"Non-Standard Document Uploaded: @{outputs('formatDocumentDetails')?['fileName']}",
						nonStandardBody, notify, s.outlook, s.outlookAPI),
				},
			))
		},
	}, nil
}
