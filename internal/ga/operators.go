package ga

import (
	"math/rand"

	"fjsp/internal/jobshop"
)

// genome хранит по одной перестановке операций на каждую машину
// (глобальные идентификаторы операций в порядке машин задачи).
type genome [][]int

func newGenome(p *jobshop.Problem) genome {
	g := make(genome, len(p.Machines()))
	for i, m := range p.Machines() {
		ops := p.MachineOperations(m)
		g[i] = make([]int, len(ops))
		for k, op := range ops {
			g[i][k] = op.ID
		}
	}
	return g
}

func cloneGenome(g genome) genome {
	out := make(genome, len(g))
	for i := range g {
		out[i] = append([]int(nil), g[i]...)
	}
	return out
}

func copyGenome(dst, src genome) {
	for i := range src {
		copy(dst[i], src[i])
	}
}

// shuffleGenome выполняет случайную перестановку операций каждой машины.
func shuffleGenome(g genome, rng *rand.Rand) {
	for _, perm := range g {
		for i := len(perm) - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			perm[i], perm[j] = perm[j], perm[i]
		}
	}
}

// tournamentSelect реализует турнирный отбор.
// Возвращается индекс особи с наилучшим значением fitness (минимальное значение целевой функции).
func tournamentSelect(scores []int, tournamentSize int, rng *rand.Rand) int {
	best := rng.Intn(len(scores))
	bestScore := scores[best]
	for i := 1; i < tournamentSize; i++ {
		cand := rng.Intn(len(scores))
		if scores[cand] < bestScore {
			best = cand
			bestScore = scores[cand]
		}
	}
	return best
}

// crossoverGenomes применяет Order Crossover к перестановке каждой машины.
// Каждая перестановка потомка остаётся перестановкой ровно тех операций,
// которые назначены этой машине.
func crossoverGenomes(p1, p2, c1, c2 genome, rng *rand.Rand, mark []int, stamp *int) {
	for mi := range p1 {
		if len(p1[mi]) < 2 {
			copy(c1[mi], p1[mi])
			copy(c2[mi], p2[mi])
			continue
		}
		orderCrossoverOX(p1[mi], p2[mi], c1[mi], c2[mi], rng, mark, stamp)
	}
}

// orderCrossoverOX реализует оператор Order Crossover для одной машины.
// mark индексируется глобальным идентификатором операции.
func orderCrossoverOX(
	p1, p2, c1, c2 []int,
	rng *rand.Rand,
	mark []int,
	stamp *int,
) {
	n := len(p1)

	// Выбор случайного отрезка [a, b)
	a := rng.Intn(n)
	b := rng.Intn(n)
	if a > b {
		a, b = b, a
	}
	if a == b {
		// Что бы длина сегмента не была 0
		b = (a + 1) % n
		if a > b {
			a, b = b, a
		}
	}

	fill := func(dst []int) {
		for i := range dst {
			dst[i] = -1
		}
	}
	fill(c1)
	fill(c2)

	// Формирование первого потомка

	*stamp++
	curStamp := *stamp

	// Копирование сегмента из первого родителя
	for i := a; i < b; i++ {
		gene := p1[i]
		c1[i] = gene
		mark[gene] = curStamp
	}

	// Заполнение оставшихся позиций генами второго родителя
	pos := b % n
	for i := 0; i < n; i++ {
		gene := p2[(b+i)%n]
		if mark[gene] == curStamp {
			continue
		}
		for c1[pos] != -1 {
			pos = (pos + 1) % n
		}
		c1[pos] = gene
		mark[gene] = curStamp
	}

	// Формирование второго потомка

	*stamp++
	curStamp = *stamp

	for i := a; i < b; i++ {
		gene := p2[i]
		c2[i] = gene
		mark[gene] = curStamp
	}
	pos = b % n
	for i := 0; i < n; i++ {
		gene := p1[(b+i)%n]
		if mark[gene] == curStamp {
			continue
		}
		for c2[pos] != -1 {
			pos = (pos + 1) % n
		}
		c2[pos] = gene
		mark[gene] = curStamp
	}
}

// mutateSwap реализует оператор мутации Swap внутри случайной машины.
func mutateSwap(g genome, rng *rand.Rand) {
	candidates := make([]int, 0, len(g))
	for mi := range g {
		if len(g[mi]) >= 2 {
			candidates = append(candidates, mi)
		}
	}
	if len(candidates) == 0 {
		return
	}
	perm := g[candidates[rng.Intn(len(candidates))]]
	i := rng.Intn(len(perm))
	j := rng.Intn(len(perm) - 1)
	if j >= i {
		j++
	}
	perm[i], perm[j] = perm[j], perm[i]
}
