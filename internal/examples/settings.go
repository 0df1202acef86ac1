package examples

import (
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/connector"
)

// Keys looked up in the user configuration maps. Viper lower-cases map keys,
// so every lookup goes through lookup().
const (
	memberApprover       = "approver"
	memberSecondApprover = "secondary_approver"
	memberEscalation     = "escalation"
	listNotifications    = "workflow_notifications"

	listApprovals       = "approvallist"
	listStatusItems     = "flowtestdata"
	listNotificationMap = "flowtest"
)

// settings is the part of the user configuration every example reads.
type settings struct {
	cfg *config.AppConfig

	sharePoint    string
	sharePointAPI string
	outlook       string
	outlookAPI    string
}

func newSettings(cfg *config.AppConfig) settings {
	s := settings{
		cfg:        cfg,
		sharePoint: cfg.Connections.SharePoint,
		outlook:    cfg.Connections.Outlook,
	}
	if s.sharePoint == "" {
		s.sharePoint = connector.SharePointName
	}
	if s.outlook == "" {
		s.outlook = "shared_office365"
	}
	s.sharePointAPI = connector.ResourceID(s.sharePoint)
	s.outlookAPI = connector.ResourceID(s.outlook)
	return s
}

func lookup(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// member returns a team member's address, falling back to the admin email.
func (s settings) member(key string) string {
	if v := lookup(s.cfg.User.TeamMembers, key); v != "" {
		return v
	}
	return s.cfg.User.AdminEmail
}

// distributionList returns a distribution list address, falling back to the
// admin email.
func (s settings) distributionList(key string) string {
	if v := lookup(s.cfg.User.DistributionLists, key); v != "" {
		return v
	}
	return s.cfg.User.AdminEmail
}

func (s settings) list(key string) string {
	return lookup(s.cfg.SharePoint.ListMap, key)
}

func (s settings) siteURL() string {
	return s.cfg.SharePoint.SiteURL
}

// recipients resolves production recipients against the environment mode.
func (s settings) recipients(emails string) string {
	return s.cfg.GetEnvironmentEmails(emails)
}
