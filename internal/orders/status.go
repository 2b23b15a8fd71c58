package orders

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCompleted Status = "completed"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusPaid: true, StatusCompleted: true},
	StatusPaid:      {StatusCompleted: true},
	StatusCompleted: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
