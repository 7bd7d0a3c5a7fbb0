package sa

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"fjsp/internal/jobshop"
	"fjsp/internal/solve"
)

// Solver - структура реализации алгоритма имитации отжига.
// Решение кодируется перестановкой операций каждой машины, как в GA;
// расписание восстанавливается через solve.DecodeMachineOrders.
type Solver struct {
	Cfg Config
	Rng *rand.Rand

	logger zerolog.Logger
}

// New возвращает новый SA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
// Используется в фабриках.
func New(cfg Config, rng *rand.Rand, logger zerolog.Logger) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{
		Cfg:    cfg,
		Rng:    rng,
		logger: logger.With().Str("component", "sa_solver").Logger(),
	}, nil
}

// Solve — реализация эвристики.
func (s *Solver) Solve(ctx context.Context, p *jobshop.Problem) (solve.Result, error) {
	began := time.Now()

	if err := s.Cfg.Validate(); err != nil {
		return solve.Result{}, err
	}
	if s.Rng == nil {
		return solve.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}

	numOps := p.NumOperations()

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerOp * numOps
	}

	// Текущее и кандидатное решения
	curr := newOrders(p)
	cand := newOrders(p)
	starts := make([]int, numOps)

	// Инициализация текущего решения
	shuffleOrders(curr, s.Rng)

	currCost := solve.DecodeMachineOrders(p, curr, starts)
	bestCost := currCost
	bestStarts := append([]int(nil), starts...)

	evals := 1
	T := s.Cfg.InitialTemp

	result := func(iters int, stopped string) solve.Result {
		meta := map[string]any{
			"initial_temp": s.Cfg.InitialTemp,
			"final_temp":   s.Cfg.FinalTemp,
			"alpha":        s.Cfg.Alpha,
			"neighborhood": string(s.Cfg.Neighborhood),
		}
		if stopped != "" {
			meta["stopped"] = stopped
			meta["T"] = T
		}
		return solve.Result{
			Schedule:    jobshop.NewSchedule(p, bestStarts),
			Makespan:    bestCost,
			Evaluations: evals,
			Iterations:  iters,
			Duration:    time.Since(began),
			Meta:        meta,
		}
	}

	iter := 0
	for ; iter < maxIter && T > s.Cfg.FinalTemp; iter++ {
		// Кооперативная отмена с возвратом лучшего найденного решения
		if ctx.Err() != nil {
			s.logger.Debug().Int("iteration", iter).Int("makespan", bestCost).
				Msg("остановлено по контексту")
			return result(iter, "context"), nil
		}

		copyOrders(cand, curr)
		switch s.Cfg.Neighborhood {
		case NeighborhoodInsert:
			// Окрестность на основе вставки операции в другую позицию
			neighborInsert(cand, s.Rng)
		default:
			// Окрестность на основе обмена двух операций одной машины
			neighborSwap(cand, s.Rng)
		}

		candCost := solve.DecodeMachineOrders(p, cand, starts)
		evals++

		delta := candCost - currCost
		accept := false
		if delta <= 0 {
			// Улучшающее решение принимаем всегда
			accept = true
		} else {
			// Критерий Метрополиса:
			// допускает принятие ухудшающих решений
			pr := math.Exp(-float64(delta) / T)
			if s.Rng.Float64() < pr {
				accept = true
			}
		}

		if accept {
			// Обмен ролей текущего и кандидатного решений
			curr, cand = cand, curr
			currCost = candCost

			// Обновление глобально лучшего решения
			if currCost < bestCost {
				bestCost = currCost
				copy(bestStarts, starts)
			}
		}

		// Охлаждение температуры
		T *= s.Cfg.Alpha
	}

	// Счётчик отражает фактически выполненные итерации:
	// цикл может завершиться раньше по границе температуры
	return result(iter, ""), nil
}

// newOrders создаёт перестановки операций по машинам в порядке задачи.
func newOrders(p *jobshop.Problem) [][]int {
	out := make([][]int, len(p.Machines()))
	for i, m := range p.Machines() {
		ops := p.MachineOperations(m)
		out[i] = make([]int, len(ops))
		for k, op := range ops {
			out[i][k] = op.ID
		}
	}
	return out
}

func copyOrders(dst, src [][]int) {
	for i := range src {
		copy(dst[i], src[i])
	}
}

// shuffleOrders выполняет случайную перестановку операций каждой машины.
func shuffleOrders(orders [][]int, rng *rand.Rand) {
	for _, perm := range orders {
		for i := len(perm) - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			perm[i], perm[j] = perm[j], perm[i]
		}
	}
}

func pickMachine(orders [][]int, rng *rand.Rand) []int {
	candidates := make([]int, 0, len(orders))
	for mi := range orders {
		if len(orders[mi]) >= 2 {
			candidates = append(candidates, mi)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return orders[candidates[rng.Intn(len(candidates))]]
}

// Формирует соседнее решение путём обмена двух случайных позиций одной машины.
func neighborSwap(orders [][]int, rng *rand.Rand) {
	p := pickMachine(orders, rng)
	if p == nil {
		return
	}
	i := rng.Intn(len(p))
	j := rng.Intn(len(p) - 1)
	if j >= i {
		j++
	}
	p[i], p[j] = p[j], p[i]
}

// Формирует соседнее решение путём извлечения операции из позиции i и вставки её в позицию j.
func neighborInsert(orders [][]int, rng *rand.Rand) {
	p := pickMachine(orders, rng)
	if p == nil {
		return
	}
	n := len(p)
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}

	// Перемещаем операцию из позиции i в позицию j
	val := p[i]
	if i < j {
		// Сдвиг элементов влево
		copy(p[i:j], p[i+1:j+1])
		p[j] = val
	} else {
		// Сдвиг элементов вправо
		copy(p[j+1:i+1], p[j:i])
		p[j] = val
	}
}
