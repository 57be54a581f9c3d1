package pool

// Allocation is a deterministic mapping from ticker symbol to the index
// of its preferred account. It is computed once per universe by
// partitioning the tickers evenly across accounts, with the remainder
// going to the first accounts. The same universe and account count always
// produce the same mapping, so a ticker keeps hitting the same account
// call after call unless that account is exhausted.
type Allocation map[string]int

// Allocate partitions the ticker universe across n accounts.
func Allocate(tickers []string, n int) Allocation {
	alloc := make(Allocation, len(tickers))
	if n <= 0 {
		return alloc
	}

	base := len(tickers) / n
	remainder := len(tickers) % n

	i := 0
	for acct := 0; acct < n; acct++ {
		size := base
		if acct < remainder {
			size++
		}
		for j := 0; j < size && i < len(tickers); j++ {
			alloc[tickers[i]] = acct
			i++
		}
	}

	return alloc
}
