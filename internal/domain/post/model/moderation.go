package model

import "social_moderation/internal/pkg/apperr"

// Action 管理员审核动作
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Target 动作的目标状态
func (a Action) Target() Status {
	if a == ActionReject {
		return StatusRejected
	}
	return StatusApproved
}

// Transition 只允许 pending -> approved 和 pending -> rejected
func Transition(from Status, action Action) (Status, error) {
	to := action.Target()
	if from != StatusPending || (action != ActionApprove && action != ActionReject) {
		return from, &apperr.InvalidTransitionError{From: string(from), To: string(to)}
	}
	return to, nil
}
