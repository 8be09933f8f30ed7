package game

import (
	"fmt"
	"run_the_numbers/internal/model"
)

// Ladder набор таблиц выплат с одной активной
type Ladder struct {
	tables []model.Paytable
	active int
}

func NewLadder(tables []model.Paytable, defaultID string) (*Ladder, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no paytables configured")
	}
	l := &Ladder{tables: make([]model.Paytable, 0, len(tables)), active: -1}
	seen := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		if t.ID == "" {
			return nil, fmt.Errorf("paytable without id")
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("duplicate paytable %q", t.ID)
		}
		if len(t.Steps) == 0 {
			return nil, fmt.Errorf("paytable %q has no steps", t.ID)
		}
		for _, s := range t.Steps {
			if s <= 0 {
				return nil, fmt.Errorf("paytable %q has non-positive step %d", t.ID, s)
			}
		}
		seen[t.ID] = struct{}{}
		if t.ID == defaultID {
			l.active = len(l.tables)
		}
		l.tables = append(l.tables, t.Clone())
	}
	if defaultID == "" {
		l.active = 0
	}
	if l.active < 0 {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownPaytable, defaultID)
	}
	return l, nil
}

// Select переключает активную таблицу. false, если она уже активна.
func (l *Ladder) Select(id string) (bool, error) {
	for i, t := range l.tables {
		if t.ID != id {
			continue
		}
		if i == l.active {
			return false, nil
		}
		l.active = i
		return true, nil
	}
	return false, reject(ErrUnknownPaytable, "Unknown paytable %q.", id)
}

func (l *Ladder) Active() model.Paytable {
	return l.tables[l.active].Clone()
}

// Steps множители активной таблицы, индекс = число уже случившихся попаданий
func (l *Ladder) Steps() []int {
	return append([]int(nil), l.tables[l.active].Steps...)
}

func (l *Ladder) Paytables() []model.Paytable {
	out := make([]model.Paytable, len(l.tables))
	for i, t := range l.tables {
		out[i] = t.Clone()
	}
	return out
}
