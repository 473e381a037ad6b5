/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package health derives per-device health metrics from the observation log.
package health

import (
	"math"
	"time"

	"github.com/carverauto/centraldanone/pkg/models"
)

// Weights of the health score terms.
const (
	WeightUptime    = 0.6
	WeightRecency   = 0.3
	WeightStability = 0.1

	DefaultWindow = 100

	// minAnomalySamples is the number of reachable observations needed
	// before an RTT z-score is reported.
	minAnomalySamples = 5

	// recencyHorizon is how long after last_seen the recency term reaches 0.
	recencyHorizon = time.Hour
)

// Tracker recomputes derived device fields. It holds no state beyond its
// window size, so the same observation log always yields the same result.
type Tracker struct {
	window int
}

func NewTracker(window int) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Tracker{window: window}
}

// Window is the number of most recent observations considered.
func (t *Tracker) Window() int {
	return t.window
}

// Update returns a copy of prev with its derived fields recomputed from
// recent, which must be ordered newest first. Observations beyond the window
// are ignored.
func (t *Tracker) Update(prev *models.DeviceRecord, recent []models.ScanObservation) *models.DeviceRecord {
	next := prev.Clone()
	if len(recent) == 0 {
		return next
	}

	if len(recent) > t.window {
		recent = recent[:t.window]
	}

	latest := recent[0]

	next.IsOnline = latest.Reachable
	next.ConsecutiveFailures = t.consecutiveFailures(prev, recent)
	next.LastSeen = lastSeen(prev.LastSeen, recent)

	if latest.Reachable && latest.ResponseTimeMs != nil {
		rtt := *latest.ResponseTimeMs
		next.ResponseTimeMs = &rtt
	}

	next.UptimePct = UptimePct(recent)
	next.HealthScore = Score(next.UptimePct, Recency(next.LastSeen, latest.Timestamp), Stability(Flips(recent)))
	next.FailureProbability = clamp(1-next.HealthScore/100, 0, 1)
	next.AnomalyScore = AnomalyScore(recent)

	return next
}

// consecutiveFailures counts the trailing run of unreachable observations.
// When the run fills the whole window the previous counter keeps growing.
func (t *Tracker) consecutiveFailures(prev *models.DeviceRecord, recent []models.ScanObservation) int {
	run := 0

	for i := range recent {
		if recent[i].Reachable {
			return run
		}

		run++
	}

	if run == t.window && prev.ConsecutiveFailures+1 > run {
		return prev.ConsecutiveFailures + 1
	}

	return run
}

func lastSeen(prev *time.Time, recent []models.ScanObservation) *time.Time {
	out := prev

	for i := range recent {
		if !recent[i].Reachable {
			continue
		}

		ts := recent[i].Timestamp
		if out == nil || ts.After(*out) {
			out = &ts
		}

		break
	}

	if out == nil {
		return nil
	}

	v := *out

	return &v
}

// UptimePct is the share of reachable observations, 0 to 100.
func UptimePct(recent []models.ScanObservation) float64 {
	if len(recent) == 0 {
		return 0
	}

	reachable := 0

	for i := range recent {
		if recent[i].Reachable {
			reachable++
		}
	}

	return 100 * float64(reachable) / float64(len(recent))
}

// Flips counts reachability changes between consecutive observations.
func Flips(recent []models.ScanObservation) int {
	flips := 0

	for i := 1; i < len(recent); i++ {
		if recent[i].Reachable != recent[i-1].Reachable {
			flips++
		}
	}

	return flips
}

// Recency decays linearly from 100 at last_seen to 0 an hour later. A device
// never seen scores 0.
func Recency(lastSeen *time.Time, at time.Time) float64 {
	if lastSeen == nil {
		return 0
	}

	elapsed := at.Sub(*lastSeen)
	if elapsed < 0 {
		elapsed = 0
	}

	return math.Max(0, 100-elapsed.Minutes()*100/recencyHorizon.Minutes())
}

func Stability(flips int) float64 {
	return 100 / float64(1+flips)
}

func Score(uptime, recency, stability float64) float64 {
	return clamp(WeightUptime*uptime+WeightRecency*recency+WeightStability*stability, 0, 100)
}

// AnomalyScore is the z-score of the latest RTT against the reachable RTTs
// in the window, using the population standard deviation.
func AnomalyScore(recent []models.ScanObservation) float64 {
	if len(recent) == 0 || !recent[0].Reachable || recent[0].ResponseTimeMs == nil {
		return 0
	}

	samples := make([]float64, 0, len(recent))

	for i := range recent {
		if recent[i].Reachable && recent[i].ResponseTimeMs != nil {
			samples = append(samples, *recent[i].ResponseTimeMs)
		}
	}

	if len(samples) < minAnomalySamples {
		return 0
	}

	var sum float64
	for _, v := range samples {
		sum += v
	}

	mean := sum / float64(len(samples))

	var sq float64
	for _, v := range samples {
		sq += (v - mean) * (v - mean)
	}

	stddev := math.Sqrt(sq / float64(len(samples)))
	if stddev == 0 {
		return 0
	}

	return (*recent[0].ResponseTimeMs - mean) / stddev
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
