package campaign

import (
	"github.com/hopebridge/donation-management/internal/core/common/validation"
)

const (
	GroupAll        = "all"
	GroupNewsletter = "newsletter"
	GroupMembers    = "members"
	GroupDonors     = "donors"
	GroupCustom     = "custom"
)

type SendCampaignRequest struct {
	Subject        string   `json:"subject"`
	HTMLContent    string   `json:"htmlContent"`
	RecipientGroup string   `json:"recipientGroup"`
	CustomEmails   []string `json:"customEmails,omitempty"`
}

func (r *SendCampaignRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("subject", r.Subject).Required().MaxLength(500)
	validator.Field("htmlContent", r.HTMLContent).Required()
	validator.Field("recipientGroup", r.RecipientGroup).Required().
		OneOf(GroupAll, GroupNewsletter, GroupMembers, GroupDonors, GroupCustom)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Result aggregates per-recipient outcomes for one campaign dispatch.
// Errors holds at most maxReportedErrors samples; every failure is
// logged regardless.
type Result struct {
	Success         bool     `json:"success"`
	TotalRecipients int      `json:"totalRecipients"`
	SuccessCount    int      `json:"successCount"`
	FailCount       int      `json:"failCount"`
	Errors          []string `json:"errors"`
}
