package scene

import (
	"fmt"
	"sort"
	"strings"
)

// The strategy used for picking a light for next event estimation.
type LightSamplerKind uint8

const (
	// Every light is picked with the same probability.
	UniformLightSampler LightSamplerKind = iota

	// Lights are picked proportionally to their flux.
	PowerLightSampler
)

func (k LightSamplerKind) String() string {
	switch k {
	case UniformLightSampler:
		return "uniform"
	case PowerLightSampler:
		return "power"
	}
	return "unknown"
}

// Parse a light sampler name.
func ParseLightSamplerKind(name string) (LightSamplerKind, error) {
	switch strings.ToLower(name) {
	case "uniform":
		return UniformLightSampler, nil
	case "power":
		return PowerLightSampler, nil
	}
	return 0, fmt.Errorf("scene: unknown light sampler %q", name)
}

// A LightSampler picks one light out of a fixed light set.
type LightSampler struct {
	Kind   LightSamplerKind
	Lights []*DiskLight

	// Cumulative selection probabilities.
	cdf []float32
}

// Build a light sampler over lights.
func NewLightSampler(kind LightSamplerKind, lights []*DiskLight) (*LightSampler, error) {
	ls := &LightSampler{
		Kind:   kind,
		Lights: append([]*DiskLight(nil), lights...),
		cdf:    make([]float32, len(lights)),
	}
	if len(lights) == 0 {
		return ls, nil
	}

	weights := make([]float32, len(lights))
	var total float32
	for i, l := range lights {
		switch kind {
		case UniformLightSampler:
			weights[i] = 1
		case PowerLightSampler:
			weights[i] = l.Flux()
		default:
			return nil, fmt.Errorf("scene: unknown light sampler kind %d", kind)
		}
		total += weights[i]
	}

	// Lights without flux make power sampling impossible; fall back to uniform
	if total <= 0 {
		for i := range weights {
			weights[i] = 1
		}
		total = float32(len(weights))
	}

	var acc float32
	for i, w := range weights {
		acc += w / total
		ls.cdf[i] = acc
	}
	ls.cdf[len(ls.cdf)-1] = 1
	return ls, nil
}

// Pick a light using a uniform random number in [0, 1). Returns the light
// and the probability of picking it, or nil if the sampler is empty.
func (ls *LightSampler) Sample(u float32) (*DiskLight, float32) {
	if len(ls.Lights) == 0 {
		return nil, 0
	}
	i := sort.Search(len(ls.cdf), func(i int) bool { return ls.cdf[i] > u })
	if i == len(ls.cdf) {
		i--
	}
	return ls.Lights[i], ls.Pdf(i)
}

// Get the probability of picking light i.
func (ls *LightSampler) Pdf(i int) float32 {
	if i == 0 {
		return ls.cdf[0]
	}
	return ls.cdf[i] - ls.cdf[i-1]
}
