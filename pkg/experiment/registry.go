// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"golang.org/x/exp/slices"
	"sync"
)

// Registry is the ordered collection of fully constructed experiments handed over to a runner.
// The registry keeps its own copy of every experiment and hands out copies, so registered
// experiments cannot change afterwards.
type Registry struct {
	lock        sync.RWMutex
	names       []string
	experiments map[string]*Experiment
}

// NewRegistry creates a new empty experiment registry
func NewRegistry() *Registry {
	return &Registry{
		experiments: make(map[string]*Experiment),
	}
}

// Register validates and seals the given experiment and appends a copy of it to the registry
func (r *Registry) Register(e *Experiment) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	name := e.Name
	if _, ok := r.experiments[name]; ok {
		return errors.NewAlreadyExists("Experiment %s already registered", name)
	}
	if err := e.Seal(); err != nil {
		log.Warnf("Experiment %s: rejected: %+v", name, err)
		return err
	}
	r.names = append(r.names, name)
	r.experiments[name] = e.Clone()
	log.Infof("Experiment %s: registered", name)
	return nil
}

// Get returns a copy of the registered experiment with the specified name
func (r *Registry) Get(name string) (*Experiment, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if e, ok := r.experiments[name]; ok {
		return e.Clone(), nil
	}
	return nil, errors.NewNotFound("Experiment %s not found", name)
}

// List returns copies of all registered experiments in registration order
func (r *Registry) List() []*Experiment {
	r.lock.RLock()
	defer r.lock.RUnlock()
	list := make([]*Experiment, 0, len(r.names))
	for _, name := range r.names {
		list = append(list, r.experiments[name].Clone())
	}
	return list
}

// Remove removes the experiment with the specified name from the registry
func (r *Registry) Remove(name string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.experiments[name]; !ok {
		return errors.NewNotFound("Experiment %s not found", name)
	}
	delete(r.experiments, name)
	if i := slices.Index(r.names, name); i >= 0 {
		r.names = slices.Delete(r.names, i, i+1)
	}
	return nil
}
