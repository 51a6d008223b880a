package model

import "fmt"

// Annotation is an extracted, not yet persisted fact.
//
// Weight expresses extraction confidence. No normalisation is imposed:
// 0 means certain and less certain matchers assign larger fractional values.
type Annotation struct {
	Subject   Resource
	Predicate Resource
	Object    Resource
	Weight    float64
}

// Equal reports whether two annotations state the same fact with the same
// weight.
func (a Annotation) Equal(b Annotation) bool {
	return Same(a.Subject, b.Subject) &&
		Same(a.Predicate, b.Predicate) &&
		Same(a.Object, b.Object) &&
		a.Weight == b.Weight
}

func (a Annotation) String() string {
	return fmt.Sprintf("(%v)\t%s %s %s", a.Weight, a.Subject, a.Predicate, a.Object)
}
