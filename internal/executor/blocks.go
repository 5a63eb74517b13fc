package executor

// Blocks splits items into contiguous blocks whose total weight stays
// close to maxWeight, so large work units are spread evenly over the
// pool. Items heavier than maxWeight get a block of their own.
func Blocks[T any](items []T, weight func(T) float64, maxWeight float64) [][]T {
	if maxWeight <= 0 {
		maxWeight = 1
	}
	var blocks [][]T
	var current []T
	currentWeight := 0.0
	for _, item := range items {
		w := weight(item)
		if len(current) > 0 && currentWeight+w > maxWeight {
			blocks = append(blocks, current)
			current = nil
			currentWeight = 0
		}
		current = append(current, item)
		currentWeight += w
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

// BlockWeight returns the max-weight target that splits a total weight
// into roughly the given number of blocks.
func BlockWeight(total float64, blocks int) float64 {
	if blocks < 1 {
		blocks = 1
	}
	return total / float64(blocks)
}
