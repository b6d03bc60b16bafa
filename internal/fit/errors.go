package fit

import "fmt"

// ErrInputMismatch is returned when the observed rate vectors differ in
// length. Use errors.Is(err, ErrInputMismatch) to check for this error.
var ErrInputMismatch = &InputMismatchError{}

// InputMismatchError reports differing lengths of the observed false-alarm
// and hit rate vectors. No optimization work is performed when it occurs.
type InputMismatchError struct {
	FalseAlarms int
	Hits        int
}

func (e *InputMismatchError) Error() string {
	if e.FalseAlarms == 0 && e.Hits == 0 {
		return "input length mismatch"
	}
	return fmt.Sprintf("input length mismatch: %d false-alarm rates vs %d hit rates", e.FalseAlarms, e.Hits)
}

func (e *InputMismatchError) Is(target error) bool {
	_, ok := target.(*InputMismatchError)
	return ok
}

// ErrNoFit is returned when every attempt failed and there is no minimum to
// report. Use errors.Is(err, ErrNoFit) to check for this error.
var ErrNoFit = &NoFitError{}

// NoFitError reports that no attempt produced a usable minimum.
type NoFitError struct {
	Attempts int
}

func (e *NoFitError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("no successful fit in %d attempts", e.Attempts)
	}
	return "no successful fit"
}

func (e *NoFitError) Is(target error) bool {
	_, ok := target.(*NoFitError)
	return ok
}
