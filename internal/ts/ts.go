package ts

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"fjsp/internal/jobshop"
	"fjsp/internal/solve"
)

// maxInt используется как бесконечность для стоимостей.
const maxInt = int(^uint(0) >> 1)

// Solver - структура реализации поиска с запретами.
// Решение кодируется перестановкой операций каждой машины, как в GA;
// расписание восстанавливается через solve.DecodeMachineOrders.
// Ход — перемещение операции внутри перестановки одной машины.
type Solver struct {
	Cfg Config
	Rng *rand.Rand

	logger zerolog.Logger
}

// New возвращает новый TS-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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
		logger: logger.With().Str("component", "ts_solver").Logger(),
	}, nil
}

// Solve — основной цикл алгоритма.
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

	// Машины, где ходы вообще возможны (две и более операции)
	movable := make([]int, 0, len(curr))
	for mi := range curr {
		if len(curr[mi]) >= 2 {
			movable = append(movable, mi)
		}
	}

	// Инициализация текущего решения
	shuffleOrders(curr, s.Rng)

	currCost := solve.DecodeMachineOrders(p, curr, starts)
	bestCost := currCost
	bestStarts := append([]int(nil), starts...)

	evals := 1

	// Табу-список - кольцевой буфер с мапой
	// Ёмкость выбирается с запасом относительно длины табу
	tabu := newTabuList(max(32, (s.Cfg.TabuTenure+s.Cfg.TabuTenureRand)*4))

	result := func(iters int, stopped string) solve.Result {
		meta := map[string]any{
			"tabu_tenure":        s.Cfg.TabuTenure,
			"tabu_tenure_rand":   s.Cfg.TabuTenureRand,
			"neighbors_per_iter": s.Cfg.NeighborsPerIter,
			"neighborhood":       string(s.Cfg.Neighborhood),
		}
		if stopped != "" {
			meta["stopped"] = stopped
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

	if len(movable) == 0 {
		// Единственная перестановка: список операций каждой машины фиксирован
		return result(0, ""), nil
	}

	iter := 0
	for ; iter < maxIter; iter++ {
		// Кооперативная отмена с возвратом лучшего найденного решения
		if ctx.Err() != nil {
			s.logger.Debug().Int("iteration", iter).Int("makespan", bestCost).
				Msg("остановлено по контексту")
			return result(iter, "context"), nil
		}

		// Лучший допустимый ход
		bestMoveMach, bestMoveFrom, bestMoveTo := -1, -1, -1
		bestMoveCost := maxInt
		bestMoveOp := -1

		// Запасной ход (лучший без учёта табу),
		// используется если все допустимые ходы табуированы
		fallbackMach, fallbackFrom, fallbackTo := -1, -1, -1
		fallbackCost := maxInt
		fallbackOp := -1

		// Итерация по случайно сгенерированным соседям
		for k := 0; k < s.Cfg.NeighborsPerIter; k++ {
			mi := movable[s.Rng.Intn(len(movable))]
			n := len(curr[mi])
			from := s.Rng.Intn(n)
			to := s.Rng.Intn(n - 1)
			if to >= from {
				to++
			}

			op := curr[mi][from]
			key := moveKey(op, from, to)

			// Формирование соседнего решения.
			// Декодер правит перестановки на месте при конфликте с порядком
			// операций работ, поэтому кандидат копируется целиком.
			copyOrders(cand, curr)
			switch s.Cfg.Neighborhood {
			case NeighborhoodSwap:
				applySwap(cand[mi], from, to)
			default:
				applyInsert(cand[mi], from, to)
			}

			cost := solve.DecodeMachineOrders(p, cand, starts)
			evals++

			// Обновление хода
			if cost < fallbackCost {
				fallbackCost = cost
				fallbackMach, fallbackFrom, fallbackTo = mi, from, to
				fallbackOp = op
			}

			isTabu := tabu.IsTabu(key, iter)
			aspiration := cost < bestCost // критерий аспирации

			// Табуированный ход пропускается,
			// если не выполняется критерий аспирации
			if isTabu && !aspiration {
				continue
			}

			if cost < bestMoveCost {
				bestMoveCost = cost
				bestMoveMach, bestMoveFrom, bestMoveTo = mi, from, to
				bestMoveOp = op
			}
		}

		// Выбор хода: сначала допустимый лучший
		chosenMach, chosenFrom, chosenTo := bestMoveMach, bestMoveFrom, bestMoveTo
		chosenOp := bestMoveOp

		if chosenMach < 0 {
			chosenMach, chosenFrom, chosenTo = fallbackMach, fallbackFrom, fallbackTo
			chosenOp = fallbackOp
		}

		// Нет допустимых ходов — завершаем поиск
		if chosenMach < 0 {
			break
		}

		// Применение выбранного хода
		switch s.Cfg.Neighborhood {
		case NeighborhoodSwap:
			applySwap(curr[chosenMach], chosenFrom, chosenTo)
		default:
			applyInsert(curr[chosenMach], chosenFrom, chosenTo)
		}
		currCost = solve.DecodeMachineOrders(p, curr, starts)
		evals++

		// Добавление обратного хода в табу-список
		tenure := s.Cfg.TabuTenure
		if s.Cfg.TabuTenureRand > 0 {
			tenure += s.Rng.Intn(s.Cfg.TabuTenureRand + 1)
		}
		tabu.Add(moveKey(chosenOp, chosenTo, chosenFrom), iter+tenure)

		// Обновление глобально лучшего решения
		if currCost < bestCost {
			bestCost = currCost
			copy(bestStarts, starts)
		}
	}

	// Счётчик отражает фактически выполненные итерации:
	// цикл может завершиться раньше при отсутствии ходов
	return result(iter, ""), nil
}

// tabuList — структура табу-списка.
// Реализована как кольцевой буфер фиксированного размера
// с map для быстрой проверки табуированности.
type tabuList struct {
	m   map[uint64]int // ключ → итерация истечения табу
	key []uint64       // кольцевой буфер ключей
	exp []int          // соответствующие сроки истечения
	i   int            // текущая позиция в кольце
}

// newTabuList создаёт табу-список заданной ёмкости.
func newTabuList(capacity int) *tabuList {
	if capacity < 8 {
		capacity = 8
	}
	return &tabuList{
		m:   make(map[uint64]int, capacity*2),
		key: make([]uint64, capacity),
		exp: make([]int, capacity),
		i:   0,
	}
}

// IsTabu проверяет, является ли ход табуированным на текущей итерации.
func (t *tabuList) IsTabu(k uint64, iter int) bool {
	if exp, ok := t.m[k]; ok && exp > iter {
		return true
	}
	return false
}

// Add добавляет новый табу-ход с указанием итерации истечения.
func (t *tabuList) Add(k uint64, expiry int) {
	// Удаление старого элемента из кольцевого буфера
	oldK := t.key[t.i]
	oldExp := t.exp[t.i]
	if oldK != 0 {
		if curExp, ok := t.m[oldK]; ok && curExp == oldExp {
			delete(t.m, oldK)
		}
	}

	t.key[t.i] = k
	t.exp[t.i] = expiry
	t.m[k] = expiry

	t.i++
	if t.i >= len(t.key) {
		t.i = 0
	}
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

// applySwap применяет swap-ход (обмен элементов в позициях i и j).
func applySwap(p []int, i, j int) {
	p[i], p[j] = p[j], p[i]
}

// applyInsert применяет insert-ход (элемент из позиции from вставляется в позицию to).
func applyInsert(p []int, from, to int) {
	if from == to {
		return
	}
	val := p[from]
	if from < to {
		copy(p[from:to], p[from+1:to+1])
		p[to] = val
		return
	}
	copy(p[to+1:from+1], p[to:from])
	p[to] = val
}

// moveKey формирует уникальный ключ хода.
// Глобальный номер операции однозначно определяет машину.
func moveKey(op, from, to int) uint64 {
	return (uint64(uint32(op)) << 42) |
		(uint64(uint32(from)) << 21) |
		uint64(uint32(to))
}

// max возвращает максимум из двух целых чисел.
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
