package audit

import (
	"context"

	"github.com/courier-im/courier/pkg/log"
)

// Audit actions.
const (
	ActionCreateUser   = "user.create"
	ActionSendMessage  = "message.send"
	ActionWSRegister   = "ws.register"
	ActionWSDisconnect = "ws.disconnect"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID uint, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithTarget emits an audit log naming the other party of the action.
func LogWithTarget(ctx context.Context, action string, userID, targetID uint, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Uint(FieldTargetID, targetID).
		Msg(msg)
}
