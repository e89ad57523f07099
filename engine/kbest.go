package engine

import (
	"container/heap"
	"math"
	"sort"
)

// choice is one candidate class at an output step.
type choice struct {
	class   int
	logProb float64
}

// kbest enumerates label paths through independent per-step distributions in
// non-increasing total log probability.
//
// Each path is a vector of ranks into the sorted per-step candidates. A path
// is expanded by bumping the rank at any position at or after the last
// position bumped to create it, so every vector is generated exactly once.
type kbest struct {
	steps [][]choice
	queue pathQueue
	done  bool
}

type path struct {
	ranks   []int
	last    int
	logProb float64
}

func newKBest(logProbs [][]float64, beam int) *kbest {
	k := &kbest{steps: make([][]choice, len(logProbs))}
	best := 0.0
	for t, row := range logProbs {
		cands := make([]choice, len(row))
		for c, lp := range row {
			cands[c] = choice{class: c, logProb: lp}
		}
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].logProb > cands[j].logProb })
		if beam > 0 && len(cands) > beam {
			cands = cands[:beam]
		}
		if len(cands) == 0 {
			k.done = true
			return k
		}
		k.steps[t] = cands
		best += cands[0].logProb
	}
	heap.Push(&k.queue, &path{ranks: make([]int, len(logProbs)), logProb: best})
	return k
}

// next returns the classes of the next best path.
func (k *kbest) next() ([]int, float64, bool) {
	if k.done || k.queue.Len() == 0 {
		return nil, math.Inf(-1), false
	}
	p := heap.Pop(&k.queue).(*path)

	for i := p.last; i < len(p.ranks); i++ {
		r := p.ranks[i]
		if r+1 >= len(k.steps[i]) {
			continue
		}
		ranks := append([]int(nil), p.ranks...)
		ranks[i] = r + 1
		lp := p.logProb - k.steps[i][r].logProb + k.steps[i][r+1].logProb
		heap.Push(&k.queue, &path{ranks: ranks, last: i, logProb: lp})
	}

	classes := make([]int, len(p.ranks))
	for i, r := range p.ranks {
		classes[i] = k.steps[i][r].class
	}
	return classes, p.logProb, true
}

type pathQueue []*path

func (q pathQueue) Len() int { return len(q) }
func (q pathQueue) Less(i, j int) bool { return q[i].logProb > q[j].logProb }
func (q pathQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *pathQueue) Push(x any) { *q = append(*q, x.(*path)) }
func (q *pathQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return x
}

// logSoftmax normalizes raw scores into log probabilities.
func logSoftmax(row []float32) []float64 {
	out := make([]float64, len(row))
	if len(row) == 0 {
		return out
	}
	maxv := float64(row[0])
	for _, v := range row[1:] {
		if float64(v) > maxv {
			maxv = float64(v)
		}
	}
	sum := 0.0
	for _, v := range row {
		sum += math.Exp(float64(v) - maxv)
	}
	lse := maxv + math.Log(sum)
	for i, v := range row {
		out[i] = float64(v) - lse
	}
	return out
}

// collapse applies the CTC rule: merge repeated classes, then drop blanks.
func collapse(classes []int, blank int) []int {
	var out []int
	prev := -1
	for _, c := range classes {
		if c != prev && c != blank {
			out = append(out, c)
		}
		prev = c
	}
	return out
}
