package catalog

import (
	"github.com/bizgrid/backend/internal/domain/shared"
)

// ApprovalStatus is the governance state of a master product
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalAutoPass ApprovalStatus = "auto_pass"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// IsValid reports whether s is one of the four governance states
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalAutoPass, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// IsPublished reports whether the entry is visible to every organization and usable
// on finalized invoices.
func (s ApprovalStatus) IsPublished() bool {
	return s == ApprovalApproved || s == ApprovalAutoPass
}

// ReviewAction is what a reviewer, the system or the submitter does to an entry
type ReviewAction string

const (
	ActionApprove  ReviewAction = "approve"
	ActionReject   ReviewAction = "reject"
	ActionAutoPass ReviewAction = "auto_pass"
	ActionResubmit ReviewAction = "resubmit"
)

// Decision is the reviewer's verdict accepted by the review operation
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Action maps a reviewer decision to its transition action
func (d Decision) Action() (ReviewAction, error) {
	switch d {
	case DecisionApprove:
		return ActionApprove, nil
	case DecisionReject:
		return ActionReject, nil
	}
	return "", shared.NewDomainError(shared.CodeInvalidInput, "Decision must be approve or reject")
}

// NextStatus is the governance transition table. Any pair not listed is invalid.
func NextStatus(from ApprovalStatus, action ReviewAction) (ApprovalStatus, error) {
	switch from {
	case ApprovalPending:
		switch action {
		case ActionApprove:
			return ApprovalApproved, nil
		case ActionReject:
			return ApprovalRejected, nil
		case ActionAutoPass:
			return ApprovalAutoPass, nil
		}
	case ApprovalRejected:
		if action == ActionResubmit {
			return ApprovalPending, nil
		}
	case ApprovalApproved, ApprovalAutoPass:
	}
	return from, shared.NewDomainError(shared.CodeInvalidTransition,
		"Cannot "+string(action)+" a master product in status "+string(from))
}
