package types

// ProcessOrder defines the order in which ballot mode walks wallets or planned votes.
type ProcessOrder string

const (
	OrderRandom     ProcessOrder = "random"
	OrderSequential ProcessOrder = "sequential"
)
