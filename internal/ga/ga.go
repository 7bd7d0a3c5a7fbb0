package ga

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"fjsp/internal/jobshop"
	"fjsp/internal/solve"
)

// Solver — реализация генетического алгоритма для задачи job-shop.
// Особь кодируется перестановкой операций каждой машины; расписание
// восстанавливается детерминированной симуляцией (solve.DecodeMachineOrders).
type Solver struct {
	Cfg Config
	Rng *rand.Rand

	logger zerolog.Logger
}

// New возвращает новый GA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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
		logger: logger.With().Str("component", "ga_solver").Logger(),
	}, nil
}

// Solve — реализация эвристики. Ошибок допустимости не возникает:
// каждая особь декодируется в корректное расписание, поэтому всегда
// возвращается некоторое допустимое решение.
func (s *Solver) Solve(ctx context.Context, p *jobshop.Problem) (solve.Result, error) {
	began := time.Now()

	if err := s.Cfg.Validate(); err != nil {
		return solve.Result{}, err
	}
	if s.Rng == nil {
		return solve.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}

	numOps := p.NumOperations()
	popSize := s.Cfg.Population

	// Две популяции: текущая (A) и следующая (B)
	popA := make([]genome, popSize)
	popB := make([]genome, popSize)
	scoresA := make([]int, popSize)
	scoresB := make([]int, popSize)
	for i := 0; i < popSize; i++ {
		popA[i] = newGenome(p)
		popB[i] = newGenome(p)
	}

	starts := make([]int, numOps)

	// Инициализация начальной популяции
	for i := 0; i < popSize; i++ {
		shuffleGenome(popA[i], s.Rng)
		scoresA[i] = solve.DecodeMachineOrders(p, popA[i], starts)
	}
	evaluations := popSize

	// Поиск лучшего решения в начальной популяции
	bestStarts := make([]int, numOps)
	bestMakespan := scoresA[0]
	solve.DecodeMachineOrders(p, popA[0], bestStarts)
	for i := 1; i < popSize; i++ {
		if scoresA[i] < bestMakespan {
			bestMakespan = scoresA[i]
			solve.DecodeMachineOrders(p, popA[i], bestStarts)
		}
	}

	// Массивы для кроссовера:
	// mark и stamp используются для отметки уже включённых операций
	mark := make([]int, numOps)
	stamp := 1

	// Временный буфер для второго потомка,
	// если в популяции остаётся нечётное число мест
	scratchChild := newGenome(p)

	// Индексы для сортировки популяции по приспособленности
	idxs := make([]int, popSize)
	for i := range idxs {
		idxs[i] = i
	}

	result := func(gens int, stopped string) solve.Result {
		meta := map[string]any{
			"population":  s.Cfg.Population,
			"generations": gens,
			"elite":       s.Cfg.Elite,
		}
		if stopped != "" {
			meta["stopped"] = stopped
		}
		return solve.Result{
			Schedule:    jobshop.NewSchedule(p, bestStarts),
			Makespan:    bestMakespan,
			Evaluations: evaluations,
			Iterations:  gens,
			Duration:    time.Since(began),
			Meta:        meta,
		}
	}

	stall := 0
	for gen := 0; gen < s.Cfg.Generations; gen++ {
		// Кооперативная отмена: раз в поколение, с возвратом
		// лучшего найденного решения вместо отбрасывания работы.
		if ctx.Err() != nil {
			s.logger.Debug().Int("generation", gen).Int("makespan", bestMakespan).
				Msg("остановлено по контексту")
			return result(gen, "context"), nil
		}

		// Сортировка индексов по возрастанию значения целевой функции
		sort.Slice(idxs, func(i, j int) bool {
			return scoresA[idxs[i]] < scoresA[idxs[j]]
		})

		write := 0

		// Элитизм (переносим лучших особей без изменений)
		for e := 0; e < s.Cfg.Elite; e++ {
			src := idxs[e]
			copyGenome(popB[write], popA[src])
			scoresB[write] = scoresA[src]
			write++
		}

		improved := false

		// Генерация остальных особей нового поколения
		for write < popSize {
			// Турнирный отбор
			p1 := tournamentSelect(scoresA, s.Cfg.TournamentSize, s.Rng)
			p2 := tournamentSelect(scoresA, s.Cfg.TournamentSize, s.Rng)
			if popSize > 1 {
				for p2 == p1 {
					p2 = tournamentSelect(scoresA, s.Cfg.TournamentSize, s.Rng)
				}
			}

			child1 := popB[write]
			hasSecond := write+1 < popSize
			child2 := scratchChild
			if hasSecond {
				child2 = popB[write+1]
			}

			// Кроссовер
			if s.Rng.Float64() < s.Cfg.CrossoverRate {
				crossoverGenomes(popA[p1], popA[p2], child1, child2, s.Rng, mark, &stamp)
			} else {
				copyGenome(child1, popA[p1])
				if hasSecond {
					copyGenome(child2, popA[p2])
				}
			}

			// Мутация
			if s.Rng.Float64() < s.Cfg.MutationRate {
				mutateSwap(child1, s.Rng)
			}
			if hasSecond && s.Rng.Float64() < s.Cfg.MutationRate {
				mutateSwap(child2, s.Rng)
			}

			// Оценка первого потомка
			ms1 := solve.DecodeMachineOrders(p, child1, starts)
			scoresB[write] = ms1
			evaluations++
			if ms1 < bestMakespan {
				bestMakespan = ms1
				copy(bestStarts, starts)
				improved = true
			}
			write++

			// Оценка второго потомка
			if hasSecond {
				ms2 := solve.DecodeMachineOrders(p, child2, starts)
				scoresB[write] = ms2
				evaluations++
				if ms2 < bestMakespan {
					bestMakespan = ms2
					copy(bestStarts, starts)
					improved = true
				}
				write++
			}
		}

		// Смена поколений
		popA, popB = popB, popA
		scoresA, scoresB = scoresB, scoresA

		// Критерий сходимости: StallLimit поколений без улучшения
		if improved {
			stall = 0
		} else {
			stall++
			if s.Cfg.StallLimit > 0 && stall >= s.Cfg.StallLimit {
				return result(gen+1, "converged"), nil
			}
		}
	}

	return result(s.Cfg.Generations, ""), nil
}
