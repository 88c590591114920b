package ports

import "forager/internal/domain/forage"

type EpisodeMetrics interface {
	RecordEpisode(report forage.Report)
	RecordFailure()
}
