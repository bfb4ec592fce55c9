package lifecycle

import "TalentHive/internal/models"

// Action names an edge in one of the transition tables below.
type Action string

const (
	ActionActivate Action = "activate"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
	ActionDispute  Action = "dispute"

	ActionStart   Action = "start"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionPay     Action = "pay"

	ActionAccept Action = "accept"

	ActionProcess Action = "process"
	ActionHold    Action = "hold"
	ActionRelease Action = "release"
	ActionRefund  Action = "refund"
	ActionFail    Action = "fail"
)

var contractTransitions = map[models.ContractStatus]map[Action]models.ContractStatus{
	models.ContractDraft: {
		ActionActivate: models.ContractActive,
		ActionCancel:   models.ContractCancelled,
		ActionDispute:  models.ContractDisputed,
	},
	models.ContractActive: {
		ActionPause:    models.ContractPaused,
		ActionComplete: models.ContractCompleted,
		ActionCancel:   models.ContractCancelled,
		ActionDispute:  models.ContractDisputed,
	},
	models.ContractPaused: {
		ActionResume:  models.ContractActive,
		ActionDispute: models.ContractDisputed,
	},
}

var milestoneTransitions = map[models.MilestoneStatus]map[Action]models.MilestoneStatus{
	models.MilestonePending: {
		ActionStart:  models.MilestoneInProgress,
		ActionSubmit: models.MilestoneSubmitted,
	},
	models.MilestoneInProgress: {
		ActionSubmit: models.MilestoneSubmitted,
	},
	models.MilestoneRejected: {
		ActionSubmit: models.MilestoneSubmitted,
	},
	models.MilestoneSubmitted: {
		ActionApprove: models.MilestoneApproved,
		ActionReject:  models.MilestoneRejected,
	},
	models.MilestoneApproved: {
		ActionPay: models.MilestonePaid,
	},
}

var amendmentTransitions = map[models.AmendmentStatus]map[Action]models.AmendmentStatus{
	models.AmendmentPending: {
		ActionAccept: models.AmendmentAccepted,
		ActionReject: models.AmendmentRejected,
	},
}

var transactionTransitions = map[models.TransactionStatus]map[Action]models.TransactionStatus{
	models.TransactionPending: {
		ActionProcess: models.TransactionProcessing,
		ActionFail:    models.TransactionFailed,
		ActionCancel:  models.TransactionCancelled,
	},
	models.TransactionProcessing: {
		ActionHold:   models.TransactionHeldInEscrow,
		ActionFail:   models.TransactionFailed,
		ActionCancel: models.TransactionCancelled,
	},
	models.TransactionHeldInEscrow: {
		ActionRelease: models.TransactionReleased,
		ActionRefund:  models.TransactionRefunded,
	},
}

func NextContractStatus(from models.ContractStatus, a Action) (models.ContractStatus, bool) {
	next, ok := contractTransitions[from][a]
	return next, ok
}

func NextMilestoneStatus(from models.MilestoneStatus, a Action) (models.MilestoneStatus, bool) {
	next, ok := milestoneTransitions[from][a]
	return next, ok
}

func NextAmendmentStatus(from models.AmendmentStatus, a Action) (models.AmendmentStatus, bool) {
	next, ok := amendmentTransitions[from][a]
	return next, ok
}

func NextTransactionStatus(from models.TransactionStatus, a Action) (models.TransactionStatus, bool) {
	next, ok := transactionTransitions[from][a]
	return next, ok
}
