package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of tracers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each tracer
	// in the input list. Assignments always add up to frameH.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler splits the frame using each tracer's speed estimate.
type naiveScheduler struct{}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	return speedSchedule(tracers, frameH)
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance.
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// When previous frame information is available the scheduler uses the
// following formula for estimating the workload for tracer w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	// If this is the first time we try to schedule or the number of tracers
	// has changed we need to reset the block assignments
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = speedSchedule(tracers, frameH)
		return sch.blockAssignment
	}

	rates := make([]float64, len(tracers))
	var total float64
	for idx, tr := range tracers {
		stats := tr.Stats()
		renderTime := math.Max(1, float64(stats.RenderTime))
		rates[idx] = float64(stats.BlockH) / renderTime
		total += rates[idx]
	}

	// Without feedback (e.g. all blocks were empty) fall back to speed estimates
	if total == 0 {
		sch.blockAssignment = speedSchedule(tracers, frameH)
		return sch.blockAssignment
	}

	sch.blockAssignment = distribute(rates, total, frameH)
	return sch.blockAssignment
}

func speedSchedule(tracers []Tracer, frameH uint32) []uint32 {
	weights := make([]float64, len(tracers))
	var total float64
	for idx, tr := range tracers {
		weights[idx] = float64(tr.Speed())
		total += weights[idx]
	}
	if total == 0 {
		for idx := range weights {
			weights[idx] = 1
		}
		total = float64(len(weights))
	}
	return distribute(weights, total, frameH)
}

// Split frameH rows proportionally to weights. Each tracer gets at least one
// row while there are enough rows to go around.
func distribute(weights []float64, total float64, frameH uint32) []uint32 {
	assignment := make([]uint32, len(weights))
	if len(weights) == 0 {
		return assignment
	}

	minRows := 1.0
	if int(frameH) < len(weights) {
		minRows = 0
	}

	scaler := float64(frameH) / total
	var scheduledRows uint32
	for idx, w := range weights {
		assignment[idx] = uint32(math.Max(minRows, math.Floor(w*scaler)))
		scheduledRows += assignment[idx]
	}

	// In case rows don't add up to the frame height append the missing ones to the
	// first tracer or trim the excess from the largest blocks.
	for scheduledRows > frameH {
		largest := 0
		for idx := range assignment {
			if assignment[idx] > assignment[largest] {
				largest = idx
			}
		}
		assignment[largest]--
		scheduledRows--
	}
	assignment[0] += frameH - scheduledRows

	return assignment
}
