package domain

// VerdictKind is the outcome of the content gate.
type VerdictKind int

const (
	VerdictUnavailable VerdictKind = iota
	VerdictAccepted
	VerdictRejected
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictAccepted:
		return "accepted"
	case VerdictRejected:
		return "rejected"
	default:
		return "unavailable"
	}
}

// Verdict is what the gate decided about a submission.
// NeedsReview is only meaningful when Kind is VerdictAccepted.
type Verdict struct {
	Kind        VerdictKind
	NeedsReview bool
}

func Accepted(needsReview bool) Verdict {
	return Verdict{Kind: VerdictAccepted, NeedsReview: needsReview}
}

func Rejected() Verdict {
	return Verdict{Kind: VerdictRejected}
}

func Unavailable() Verdict {
	return Verdict{Kind: VerdictUnavailable}
}
