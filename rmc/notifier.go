package rmc

import nex "github.com/olympus-net/nexus"

// Notifier delivers a fire-and-forget ProcessNotificationEvent call
// (protocol 14, method 1) to one pid. Matchmake join handling uses it
// to announce a new participant to every other member of a session.
//
// Actual wire delivery needs the live connection a pid is bound to,
// which protocol handlers (constructed once at startup, long before any
// connection exists) don't hold a reference to; wiring a concrete
// Notifier that reaches back into the router's connection table is
// left to the cmd/ entrypoint that constructs both.
type Notifier interface {
	Notify(pid uint32, event *NotificationEvent)
}

// LoggingNotifier is a Notifier that only logs, used where no live
// transport is wired in (e.g. standalone protocol-handler tests).
type LoggingNotifier struct {
	ctx *nex.CoreContext
}

// NewLoggingNotifier builds a LoggingNotifier.
func NewLoggingNotifier(ctx *nex.CoreContext) *LoggingNotifier {
	return &LoggingNotifier{ctx: ctx}
}

// Notify logs the notification that would have been sent.
func (n *LoggingNotifier) Notify(pid uint32, event *NotificationEvent) {
	n.ctx.Logger.Debug().
		Uint32("pid", pid).
		Uint32("notif_type", event.NotifType).
		Uint32("param1", event.Param1).
		Uint32("param2", event.Param2).
		Msg("notification suppressed: no transport wired")
}
