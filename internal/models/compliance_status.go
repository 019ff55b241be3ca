package models

type ComplianceStatus string

const (
	ComplianceCompliant     ComplianceStatus = "COMPLIANT"
	ComplianceAtRisk        ComplianceStatus = "AT_RISK"
	ComplianceNonCompliant  ComplianceStatus = "NON_COMPLIANT"
	CompliancePendingReview ComplianceStatus = "PENDING_REVIEW"
)
