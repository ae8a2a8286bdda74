package rag

import "sort"

// RRFDampingFactor is the k in RRF(d) = Σ weight_i / (k + rank_i(d)).
const RRFDampingFactor = 60

// FuseWithRRF merges ranked lists with Reciprocal Rank Fusion. weights must
// match lists in length, otherwise every list weighs the same. Records are
// identified by FdcID; the first occurrence supplies the record body.
func FuseWithRRF(lists [][]Record, weights []float64) []Record {
	if len(lists) == 0 {
		return nil
	}
	if len(weights) != len(lists) {
		weights = make([]float64, len(lists))
		for i := range weights {
			weights[i] = 1.0 / float64(len(lists))
		}
	}

	scores := make(map[int32]float64)
	first := make(map[int32]Record)
	var order []int32
	for i, list := range lists {
		for rank, r := range list {
			scores[r.FdcID] += weights[i] / float64(RRFDampingFactor+rank+1)
			if _, ok := first[r.FdcID]; !ok {
				first[r.FdcID] = r
				order = append(order, r.FdcID)
			}
		}
	}

	// Stable on first appearance so equal scores keep their input order.
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	out := make([]Record, len(order))
	for i, id := range order {
		r := first[id]
		r.Score = float32(scores[id])
		r.Source = SourceHybrid
		out[i] = r
	}
	return out
}
