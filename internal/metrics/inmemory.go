package metrics

import (
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered uint64
	TokensIssued    uint64
	TokensRevoked   uint64

	RecipesCreated uint64
	RecipesUpdated uint64
	RecipesDeleted uint64

	ImagesUploaded uint64
	ImagesRejected uint64

	TagsCreated        uint64
	TagsDeleted        uint64
	IngredientsCreated uint64
	IngredientsDeleted uint64

	TagsReconciledCount        uint64
	TagsReconciledSum          uint64
	IngredientsReconciledCount uint64
	IngredientsReconciledSum   uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered uint64
	tokensIssued    uint64
	tokensRevoked   uint64

	recipesCreated uint64
	recipesUpdated uint64
	recipesDeleted uint64

	imagesUploaded uint64
	imagesRejected uint64

	tagsCreated        uint64
	tagsDeleted        uint64
	ingredientsCreated uint64
	ingredientsDeleted uint64

	tagsReconciledCount        uint64
	tagsReconciledSum          uint64
	ingredientsReconciledCount uint64
	ingredientsReconciledSum   uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:            atomic.LoadUint64(&m.usersRegistered),
		TokensIssued:               atomic.LoadUint64(&m.tokensIssued),
		TokensRevoked:              atomic.LoadUint64(&m.tokensRevoked),
		RecipesCreated:             atomic.LoadUint64(&m.recipesCreated),
		RecipesUpdated:             atomic.LoadUint64(&m.recipesUpdated),
		RecipesDeleted:             atomic.LoadUint64(&m.recipesDeleted),
		ImagesUploaded:             atomic.LoadUint64(&m.imagesUploaded),
		ImagesRejected:             atomic.LoadUint64(&m.imagesRejected),
		TagsCreated:                atomic.LoadUint64(&m.tagsCreated),
		TagsDeleted:                atomic.LoadUint64(&m.tagsDeleted),
		IngredientsCreated:         atomic.LoadUint64(&m.ingredientsCreated),
		IngredientsDeleted:         atomic.LoadUint64(&m.ingredientsDeleted),
		TagsReconciledCount:        atomic.LoadUint64(&m.tagsReconciledCount),
		TagsReconciledSum:          atomic.LoadUint64(&m.tagsReconciledSum),
		IngredientsReconciledCount: atomic.LoadUint64(&m.ingredientsReconciledCount),
		IngredientsReconciledSum:   atomic.LoadUint64(&m.ingredientsReconciledSum),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncTokenIssued increments the token issue counter.
func (m *InMemoryRecorder) IncTokenIssued() {
	atomic.AddUint64(&m.tokensIssued, 1)
}

// IncTokenRevoked increments the token revocation counter.
func (m *InMemoryRecorder) IncTokenRevoked() {
	atomic.AddUint64(&m.tokensRevoked, 1)
}

// IncRecipeCreated increments the recipe created counter.
func (m *InMemoryRecorder) IncRecipeCreated() {
	atomic.AddUint64(&m.recipesCreated, 1)
}

// IncRecipeUpdated increments the recipe updated counter.
func (m *InMemoryRecorder) IncRecipeUpdated() {
	atomic.AddUint64(&m.recipesUpdated, 1)
}

// IncRecipeDeleted increments the recipe deleted counter.
func (m *InMemoryRecorder) IncRecipeDeleted() {
	atomic.AddUint64(&m.recipesDeleted, 1)
}

// IncImageUploaded increments the image upload counter.
func (m *InMemoryRecorder) IncImageUploaded() {
	atomic.AddUint64(&m.imagesUploaded, 1)
}

// IncImageRejected increments the rejected upload counter.
func (m *InMemoryRecorder) IncImageRejected() {
	atomic.AddUint64(&m.imagesRejected, 1)
}

// IncLabelCreated increments the label created counter for the kind.
func (m *InMemoryRecorder) IncLabelCreated(kind string) {
	switch kind {
	case KindTag:
		atomic.AddUint64(&m.tagsCreated, 1)
	case KindIngredient:
		atomic.AddUint64(&m.ingredientsCreated, 1)
	}
}

// IncLabelDeleted increments the label deleted counter for the kind.
func (m *InMemoryRecorder) IncLabelDeleted(kind string) {
	switch kind {
	case KindTag:
		atomic.AddUint64(&m.tagsDeleted, 1)
	case KindIngredient:
		atomic.AddUint64(&m.ingredientsDeleted, 1)
	}
}

// ObserveLabelsReconciled records the size of a reconciled label list.
func (m *InMemoryRecorder) ObserveLabelsReconciled(kind string, count int) {
	if count < 0 {
		return
	}
	switch kind {
	case KindTag:
		atomic.AddUint64(&m.tagsReconciledCount, 1)
		atomic.AddUint64(&m.tagsReconciledSum, uint64(count))
	case KindIngredient:
		atomic.AddUint64(&m.ingredientsReconciledCount, 1)
		atomic.AddUint64(&m.ingredientsReconciledSum, uint64(count))
	}
}
