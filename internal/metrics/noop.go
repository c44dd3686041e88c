package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncTokenIssued is a no-op.
func (n *NoopRecorder) IncTokenIssued() {}

// IncTokenRevoked is a no-op.
func (n *NoopRecorder) IncTokenRevoked() {}

// IncRecipeCreated is a no-op.
func (n *NoopRecorder) IncRecipeCreated() {}

// IncRecipeUpdated is a no-op.
func (n *NoopRecorder) IncRecipeUpdated() {}

// IncRecipeDeleted is a no-op.
func (n *NoopRecorder) IncRecipeDeleted() {}

// IncImageUploaded is a no-op.
func (n *NoopRecorder) IncImageUploaded() {}

// IncImageRejected is a no-op.
func (n *NoopRecorder) IncImageRejected() {}

// IncLabelCreated is a no-op.
func (n *NoopRecorder) IncLabelCreated(kind string) {}

// IncLabelDeleted is a no-op.
func (n *NoopRecorder) IncLabelDeleted(kind string) {}

// ObserveLabelsReconciled is a no-op.
func (n *NoopRecorder) ObserveLabelsReconciled(kind string, count int) {}
