package condition

import "fmt"

// InvalidConditionTreeError reports a tree that is neither a leaf nor a
// branch.
type InvalidConditionTreeError struct{}

func (e InvalidConditionTreeError) Error() string {
	return "invalid condition tree: expected a leaf condition or a branch"
}

// InvalidAggregatorError reports a branch whose aggregator is missing or not
// one of the supported combinators.
type InvalidAggregatorError struct {
	Aggregator Aggregator
}

func (e InvalidAggregatorError) Error() string {
	return fmt.Sprintf("invalid aggregator: %q", e.Aggregator)
}

// InvalidConditionsError reports a branch whose conditions is not a sequence.
type InvalidConditionsError struct{}

func (e InvalidConditionsError) Error() string {
	return "conditions must be a sequence"
}

// UnsupportedOperatorError reports an operator outside the fixed enumeration.
type UnsupportedOperatorError struct {
	Operator Operator
}

func (e UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("Unsupported operator: %q", string(e.Operator))
}
