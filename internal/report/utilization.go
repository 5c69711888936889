package report

import (
	"time"
)

// ResourceUtilization is one resource's state and its occupancy over the window.
type ResourceUtilization struct {
	ResourceID string  `json:"resourceId"`
	Name       string  `json:"name"`
	Occupied   bool    `json:"occupied"`
	Rate       float64 `json:"rate"`
}

// PeakHour is the share of session starts falling in one hour of the day.
type PeakHour struct {
	Hour     int     `json:"hour"`
	Sessions int     `json:"sessions"`
	Rate     float64 `json:"rate"`
}

// UtilizationData summarizes resource usage.
type UtilizationData struct {
	OverallRate            float64               `json:"overallRate"`
	ByResource             []ResourceUtilization `json:"byResource"`
	PeakHours              []PeakHour            `json:"peakHours"`
	AverageSessionDuration float64               `json:"averageSessionDuration"`
}

// Utilization computes current occupancy, windowed per-resource occupancy,
// a 24 bin start-time histogram and the mean ended-session length in minutes.
func Utilization(snap *Snapshot, now time.Time, opts Options) UtilizationData {
	loc := opts.loc()
	window := opts.UtilizationWindow
	if window <= 0 {
		window = DefaultOptions().UtilizationWindow
	}
	from := now.Add(-window)

	busy := make(map[string]time.Duration, len(snap.Resources))
	overlap := func(resourceID string, start, end time.Time) {
		if start.Before(from) {
			start = from
		}
		if end.After(now) {
			end = now
		}
		if end.After(start) {
			busy[resourceID] += end.Sub(start)
		}
	}

	hours := make([]PeakHour, 24)
	for h := range hours {
		hours[h].Hour = h
	}
	var starts int
	var totalMinutes int64

	for _, h := range snap.History {
		overlap(h.ResourceID, h.StartedAt, h.EndedAt)
		hours[h.StartedAt.In(loc).Hour()].Sessions++
		starts++
		totalMinutes += h.DurationMinutes
	}
	for _, s := range snap.Sessions {
		overlap(s.ResourceID, s.StartedAt, now)
		hours[s.StartedAt.In(loc).Hour()].Sessions++
		starts++
	}

	var data UtilizationData
	occupied := 0
	for _, r := range snap.Resources {
		if !r.IsAvailable {
			occupied++
		}
		data.ByResource = append(data.ByResource, ResourceUtilization{
			ResourceID: r.ID,
			Name:       r.Name,
			Occupied:   !r.IsAvailable,
			Rate:       percent(float64(busy[r.ID]), float64(window)),
		})
	}
	data.OverallRate = percent(float64(occupied), float64(len(snap.Resources)))

	for h := range hours {
		hours[h].Rate = percent(float64(hours[h].Sessions), float64(starts))
	}
	data.PeakHours = hours

	if n := len(snap.History); n > 0 {
		data.AverageSessionDuration = float64(totalMinutes) / float64(n)
	}
	return data
}
