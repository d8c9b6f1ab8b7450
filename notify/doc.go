// Package notify reports the outcome of pipekit commands to the job log,
// Slack and generic webhooks.
//
// Every command builds an Event and hands it to a Notifier. Multi fans an
// event out to several notifiers and Threshold keeps low-severity events
// away from noisy channels:
//
//	n := notify.Multi{
//	    notify.NewLogNotifier(logger),
//	    notify.Threshold(notify.SeverityWarning,
//	        notify.NewSlackNotifier(webhookURL, notify.WithSlackChannel("#ci-alerts"))),
//	}
//	err := n.Notify(ctx, notify.NewEvent(
//	    notify.EventLintFailed, notify.SeverityError, "2 CI files failed lint",
//	))
package notify
