package wallsort

// OutcomeKind classifies what happened to a single walked entry.
type OutcomeKind int

const (
	// OutcomeIgnored means the extension is not a candidate; the file was never opened.
	OutcomeIgnored OutcomeKind = iota
	// OutcomeProcessed means the header decoded and the ratio did not exceed the threshold.
	OutcomeProcessed
	// OutcomeSkipped means the file could not be opened or its header could not be decoded.
	OutcomeSkipped
	// OutcomeMatched means the file exceeded the threshold during a dry run.
	OutcomeMatched
	// OutcomeMoved means the file exceeded the threshold and was renamed into the destination.
	OutcomeMoved
	// OutcomeFailed means the file exceeded the threshold but the rename failed.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeProcessed:
		return "processed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeMatched:
		return "matched"
	case OutcomeMoved:
		return "moved"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of processing one entry.
type Outcome struct {
	Kind        OutcomeKind
	Entry       Entry
	Dimensions  Dimensions // zero unless the header decoded
	Ratio       float64
	Destination string // set for matched, moved and failed outcomes
	Reason      string // short human readable cause for skipped and failed outcomes
	Err         error
}

// Summary counts outcomes across a run.
type Summary struct {
	RunID     string
	Ignored   int
	Processed int
	Skipped   int
	Matched   int
	Moved     int
	Failed    int
}

// Add counts o.
func (s *Summary) Add(o *Outcome) {
	switch o.Kind {
	case OutcomeIgnored:
		s.Ignored++
	case OutcomeProcessed:
		s.Processed++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeMatched:
		s.Matched++
	case OutcomeMoved:
		s.Moved++
	case OutcomeFailed:
		s.Failed++
	}
}

// Candidates returns the number of entries with a JPEG or PNG extension.
func (s *Summary) Candidates() int {
	return s.Processed + s.Skipped + s.Matched + s.Moved + s.Failed
}
