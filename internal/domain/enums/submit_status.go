package enums

type SubmitStatus string

const (
	SubmitStatusPublished     SubmitStatus = "published"
	SubmitStatusPendingReview SubmitStatus = "pending_review"
	SubmitStatusRejected      SubmitStatus = "rejected"
)
