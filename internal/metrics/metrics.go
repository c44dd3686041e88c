// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Label kinds used as metric label values.
const (
	KindTag        = "tag"
	KindIngredient = "ingredient"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncTokenIssued()
	IncTokenRevoked()

	// Recipe management metrics
	IncRecipeCreated()
	IncRecipeUpdated()
	IncRecipeDeleted()

	// Image upload metrics
	IncImageUploaded()
	IncImageRejected()

	// Label metrics; kind is "tag" or "ingredient"
	IncLabelCreated(kind string)
	IncLabelDeleted(kind string)
	ObserveLabelsReconciled(kind string, count int)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
