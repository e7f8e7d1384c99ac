package conflict

import "fmt"

// StoreWriteError signals that the internal persistence side of a resolution
// failed. The external provider side, if any, was left (or put back) unchanged.
type StoreWriteError struct {
	Op  string
	Err error
}

func (e StoreWriteError) Error() string {
	return fmt.Sprintf("internal store write failed during %s: %v", e.Op, e.Err)
}

func (e StoreWriteError) Unwrap() error {
	return e.Err
}

// AmbiguousPromotionError signals that the patient-name lookup during a
// promotion could not settle on a single patient.
type AmbiguousPromotionError struct {
	Name    string
	Matches int
}

func (e AmbiguousPromotionError) Error() string {
	if e.Name == "" {
		return "promotion ambiguous: no patient name could be extracted from the event"
	}
	return fmt.Sprintf("promotion ambiguous: %d patients match %q", e.Matches, e.Name)
}
