package sweep

const (
	metricsStructName = "sweep.watcher"

	sweepAttemptCountMetricName   = "SweepWatcher.Attempt"
	sweepDroppedCountMetricName   = "SweepWatcher.Dropped"
	sweepSubmittedCountMetricName = "SweepWatcher.Submitted"

	sweepSubmittedEventName = "SweepSubmitted"
)
