package stats

import (
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"
	"run_the_numbers/internal/service"
)

type serv struct {
	repo repository.HouseStatsRepository
}

func NewStatsService(repo repository.HouseStatsRepository) service.StatsService {
	return &serv{repo: repo}
}

// House сводка по всем столам с момента запуска
func (s *serv) House() model.HouseStats {
	return s.repo.Snapshot()
}
