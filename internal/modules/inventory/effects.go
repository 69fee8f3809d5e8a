package inventory

// stockDelta is the quantity change a transaction applies to its product.
// Sales may drive stock negative; nothing clamps at zero.
func stockDelta(t TransactionType, qty int) int {
	switch t {
	case Sale:
		return -qty
	case Purchase:
		return qty
	default:
		return 0
	}
}
