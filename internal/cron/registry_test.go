package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryStoresJobsInOrder(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	jobA := &stubJob{name: "a"}
	jobB := &stubJob{name: "b"}
	registry.Register(jobA)
	registry.Register(nil)
	registry.Register(jobB)

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Same(t, jobA, jobs[0])
	assert.Same(t, jobB, jobs[1])

	// Mutating the returned slice must not affect the registry.
	jobs[0] = nil
	assert.Same(t, jobA, registry.Jobs()[0])
}

func TestNewRegistrySkipsNilJobs(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil, &stubJob{name: "only"})
	require.Len(t, registry.Jobs(), 1)
	assert.Equal(t, "only", registry.Jobs()[0].Name())
}
