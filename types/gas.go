package types

// Gas counts metering points consumed by an execution.
type Gas uint64

// GasUsage reports how an execution spent its gas budget. The remaining
// points never exceed the limit, construction clamps.
type GasUsage struct {
	gasLimit        Gas
	remainingPoints Gas
}

func NewGasUsage(limit, remaining Gas) GasUsage {
	if remaining > limit {
		remaining = limit
	}
	return GasUsage{gasLimit: limit, remainingPoints: remaining}
}

func (g GasUsage) GasLimit() Gas {
	return g.gasLimit
}

func (g GasUsage) Remaining() Gas {
	return g.remainingPoints
}

// GasSpent is the number of points consumed.
func (g GasUsage) GasSpent() Gas {
	return g.gasLimit - g.remainingPoints
}
