package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"airline_ops/internal/models"
)

const DefaultMaxLegs = 3

// Engine составляет маршруты из заранее выбранных кандидатов. Только чтение,
// общего изменяемого состояния нет.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Search: прямые рейсы на запрошенную дату имеют приоритет — если есть хоть
// один, многосегментный поиск не выполняется вовсе. Иначе ограниченный DFS
// по графу аэропортов: не больше maxLegs сегментов, следующий сегмент
// вылетает строго после прилёта предыдущего (минимальная стыковка дизайном
// не задана). Результат отсортирован по прилёту последнего сегмента.
// Пустой результат — не ошибка. Отмена ctx проверяется между ветками.
func (e *Engine) Search(
	ctx context.Context,
	flights []*models.Flight,
	departureIata, arrivalIata string,
	date time.Time,
	maxLegs int,
) ([][]*models.Flight, error) {
	if departureIata == "" || arrivalIata == "" {
		return nil, fmt.Errorf("%w: departure and arrival airports are required", models.ErrValidation)
	}
	if departureIata == arrivalIata {
		return nil, fmt.Errorf("%w: departure and arrival airports must differ", models.ErrValidation)
	}
	if maxLegs <= 0 {
		maxLegs = DefaultMaxLegs
	}

	var direct [][]*models.Flight
	for _, f := range flights {
		if f.Schedule.DepartureAirport.IataCode == departureIata &&
			f.Schedule.ArrivalAirport.IataCode == arrivalIata &&
			sameLocalDate(f.Schedule.DepartureLocal, date) {
			direct = append(direct, []*models.Flight{f})
		}
	}
	if len(direct) > 0 {
		sortByFinalArrival(direct)
		return direct, nil
	}

	adjacency := make(map[string][]*models.Flight)
	for _, f := range flights {
		dep := f.Schedule.DepartureAirport.IataCode
		adjacency[dep] = append(adjacency[dep], f)
	}

	var (
		paths [][]*models.Flight
		stack []*models.Flight
	)
	visited := map[string]bool{departureIata: true}

	var explore func(from string) error
	explore = func(from string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(stack) >= maxLegs {
			return nil
		}

		for _, f := range adjacency[from] {
			if len(stack) == 0 {
				// Первый сегмент — строго в запрошенную дату.
				if !sameLocalDate(f.Schedule.DepartureLocal, date) {
					continue
				}
			} else {
				prev := stack[len(stack)-1]
				if !f.Schedule.DepartureAt.After(prev.Schedule.ArrivalAt) {
					continue
				}
			}

			to := f.Schedule.ArrivalAirport.IataCode
			if visited[to] {
				continue
			}

			stack = append(stack, f)
			if to == arrivalIata {
				path := make([]*models.Flight, len(stack))
				copy(path, stack)
				paths = append(paths, path)
			} else {
				visited[to] = true
				err := explore(to)
				delete(visited, to)
				if err != nil {
					stack = stack[:len(stack)-1]
					return err
				}
			}
			stack = stack[:len(stack)-1]
		}
		return nil
	}

	if err := explore(departureIata); err != nil {
		return nil, err
	}

	sortByFinalArrival(paths)
	return paths, nil
}

func sameLocalDate(t, date time.Time) bool {
	ty, tm, td := t.Date()
	dy, dm, dd := date.Date()
	return ty == dy && tm == dm && td == dd
}

func sortByFinalArrival(paths [][]*models.Flight) {
	sort.SliceStable(paths, func(i, j int) bool {
		a := paths[i][len(paths[i])-1].Schedule.ArrivalAt
		b := paths[j][len(paths[j])-1].Schedule.ArrivalAt
		return a.Before(b)
	})
}
