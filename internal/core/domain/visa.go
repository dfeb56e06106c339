package domain

// Visa answers capability questions for one actor against one aggregate.
// P is the permission record of the aggregate type.
type Visa[P any] interface {
	DetermineIf(predicate func(P) bool) bool
}

// VisaFunc computes the permission record on every call so that a role change
// made earlier in the same scope is always observed. The function must not
// mutate anything.
type VisaFunc[P any] func() P

func (f VisaFunc[P]) DetermineIf(predicate func(P) bool) bool {
	return predicate(f())
}

// DenyVisa refuses everything.
type DenyVisa[P any] struct{}

func (DenyVisa[P]) DetermineIf(func(P) bool) bool { return false }

// Require runs predicate through visa and returns a PermissionError for op
// when it is not satisfied.
func Require[P any](visa Visa[P], op string, predicate func(P) bool) error {
	if visa == nil || !visa.DetermineIf(predicate) {
		return NewPermissionError(op)
	}
	return nil
}
