// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"
	"strings"

	vk "github.com/devblok/vulkan"
	"github.com/sirupsen/logrus"
)

const discreteScore = 1000

// Candidate is an adapter evaluated against a surface.
type Candidate struct {
	Adapter    vk.PhysicalDevice
	Properties AdapterProperties
	Families   QueueFamilies
	Support    SurfaceSupport

	// Score is zero for rejected adapters.
	Score int

	// Reason is why the adapter was rejected, empty when it is usable.
	Reason string
}

// Suitable reports whether the adapter passed every requirement.
func (c Candidate) Suitable() bool {
	return c.Reason == ""
}

// Score rates an adapter that passed every requirement: discrete GPUs get
// a fixed bonus, and the largest 2D image side stands in for capability.
func Score(props AdapterProperties) int {
	score := int(props.MaxImageDimension2D)
	if props.Discrete() {
		score += discreteScore
	}
	return score
}

// Best returns the index of the highest scoring candidate. The first one
// wins a tie. It returns false when nothing scores above zero.
func Best(candidates []Candidate) (int, bool) {
	best, bestScore := -1, 0
	for idx, c := range candidates {
		if c.Score > bestScore {
			best, bestScore = idx, c.Score
		}
	}
	return best, best >= 0
}

// NewSelector creates a selector that requires the given device extensions.
func NewSelector(drv Driver, requiredExtensions []string, log logrus.FieldLogger) *Selector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Selector{
		driver:     drv,
		extensions: requiredExtensions,
		log:        log,
	}
}

// Selector picks the physical device to render with.
type Selector struct {
	driver     Driver
	extensions []string
	log        logrus.FieldLogger
}

// Evaluate checks one adapter against the requirements and scores it.
func (s *Selector) Evaluate(adapter vk.PhysicalDevice, surface vk.Surface) Candidate {
	c := Candidate{
		Adapter:    adapter,
		Properties: s.driver.AdapterProperties(adapter),
	}

	available, err := s.driver.DeviceExtensions(adapter)
	if err != nil {
		c.Reason = err.Error()
		return c
	}
	if missing := missingExtensions(available, s.extensions); len(missing) > 0 {
		c.Reason = "missing device extensions: " + strings.Join(missing, ", ")
		return c
	}

	support, err := ProbeSurface(s.driver, adapter, surface)
	if err != nil {
		c.Reason = err.Error()
		return c
	}
	if !support.Valid() {
		c.Reason = "surface support is inadequate"
		return c
	}
	c.Support = support

	c.Families = ResolveQueueFamilies(s.driver.QueueFamilies(adapter), func(family uint32) bool {
		ok, err := s.driver.PresentSupport(adapter, family, surface)
		if err != nil {
			s.log.WithError(err).WithField("family", family).Warn("Present support query failed")
			return false
		}
		return ok
	})
	if !c.Families.Complete() {
		c.Reason = "no graphics and present capable queue families"
		return c
	}

	c.Score = Score(c.Properties)
	return c
}

// Select evaluates every adapter and returns the best one along with all
// evaluations in enumeration order.
func (s *Selector) Select(adapters []vk.PhysicalDevice, surface vk.Surface) (Candidate, []Candidate, error) {
	if len(adapters) == 0 {
		return Candidate{}, nil, ErrNoAdapters
	}

	candidates := make([]Candidate, 0, len(adapters))
	for _, adapter := range adapters {
		c := s.Evaluate(adapter, surface)
		fields := logrus.Fields{
			"adapter": c.Properties.Name,
			"score":   c.Score,
		}
		if c.Suitable() {
			s.log.WithFields(fields).Info("Adapter is suitable")
		} else {
			s.log.WithFields(fields).WithField("reason", c.Reason).Warn("Adapter rejected")
		}
		candidates = append(candidates, c)
	}

	best, ok := Best(candidates)
	if !ok {
		return Candidate{}, candidates, ErrNoSuitableAdapter
	}
	return candidates[best], candidates, nil
}

func missingExtensions(available, required []string) []string {
	have := make(map[string]struct{}, len(available))
	for _, ext := range available {
		have[ext] = struct{}{}
	}

	var missing []string
	for _, ext := range required {
		if _, ok := have[ext]; !ok {
			missing = append(missing, ext)
		}
	}
	return missing
}

func (c Candidate) String() string {
	if !c.Suitable() {
		return fmt.Sprintf("%s (rejected: %s)", c.Properties.Name, c.Reason)
	}
	return fmt.Sprintf("%s (score %d)", c.Properties.Name, c.Score)
}
