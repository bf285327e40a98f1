package domain

// OwnerIndex kinds.
const (
	IndexKindPost     = "post"
	IndexKindWorkshop = "workshop"
)
