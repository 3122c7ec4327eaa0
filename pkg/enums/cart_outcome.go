package enums

// CartOutcome describes what a cart mutation did to the affected line.
type CartOutcome string

const (
	CartOutcomeAdded   CartOutcome = "added"
	CartOutcomeUpdated CartOutcome = "updated"
	CartOutcomeRemoved CartOutcome = "removed"
)

// String implements fmt.Stringer.
func (c CartOutcome) String() string {
	return string(c)
}
