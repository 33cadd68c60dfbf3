package utils

type Index []int

func NewIndex(N int) (I Index) {
	return make(Index, N)
}

func (I Index) Subset(J Index) (r Index) {
	r = make(Index, len(J))
	for j, val := range J {
		r[j] = I[val]
	}
	return
}
