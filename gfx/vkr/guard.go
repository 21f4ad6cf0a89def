// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type teardown struct {
	name string
	fn   func()
}

// Guard releases acquired objects in the reverse order of acquisition.
// A teardown is registered only after its object was created, so a
// partially initialised renderer releases exactly what it holds.
type Guard struct {
	log       logrus.FieldLogger
	teardowns []teardown
}

// NewGuard creates an empty guard.
func NewGuard(log logrus.FieldLogger) *Guard {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Guard{log: log}
}

// Defer registers fn to run on Release, before everything registered earlier.
func (g *Guard) Defer(name string, fn func()) {
	g.teardowns = append(g.teardowns, teardown{name: name, fn: fn})
}

// Len returns the number of pending teardowns.
func (g *Guard) Len() int {
	return len(g.teardowns)
}

// Release runs pending teardowns newest first. Each runs once; calling
// Release again does nothing.
func (g *Guard) Release() {
	for len(g.teardowns) > 0 {
		last := len(g.teardowns) - 1
		td := g.teardowns[last]
		g.teardowns = g.teardowns[:last]

		td.fn()
		g.log.WithField("object", td.name).Debug("Released")
	}
}

type step struct {
	name string
	fn   func() error
}

// runSteps runs steps in order and stops at the first failure, which is
// returned annotated with the step name.
func runSteps(steps []step, log logrus.FieldLogger) error {
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return errors.Wrap(err, s.name)
		}
		if log != nil {
			log.WithField("step", s.name).Info("Done")
		}
	}
	return nil
}
