package mint

const (
	metricsStructName = "mint.pipeline"

	mintPipelineDurationMetricName = "MintPipeline.Duration"

	mintCompletedEventName = "TokenMintCompleted"
)
