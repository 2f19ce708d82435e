package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemHealth(t *testing.T) {
	tests := []struct {
		name     string
		services []ServiceHealth
		want     HealthStatus
	}{
		{
			name:     "no probe results",
			services: nil,
			want:     HealthUnhealthy,
		},
		{
			name: "all healthy",
			services: []ServiceHealth{
				{ServiceType: ServiceScheduler, Healthy: true},
				{ServiceType: ServiceSSH, Healthy: true},
				{ServiceType: ServiceFilesystem, Healthy: true},
			},
			want: HealthHealthy,
		},
		{
			name: "none healthy",
			services: []ServiceHealth{
				{ServiceType: ServiceScheduler, Healthy: false},
				{ServiceType: ServiceSSH, Healthy: false},
			},
			want: HealthUnhealthy,
		},
		{
			name: "some healthy",
			services: []ServiceHealth{
				{ServiceType: ServiceScheduler, Healthy: true},
				{ServiceType: ServiceSSH, Healthy: false},
			},
			want: HealthDegraded,
		},
		{
			name: "single healthy service",
			services: []ServiceHealth{
				{ServiceType: ServiceScheduler, Healthy: true},
			},
			want: HealthHealthy,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := System{Name: "daint", Services: tt.services}
			assert.Equal(t, tt.want, sys.Health())
		})
	}
}

func TestSystemDefaultFileSystem(t *testing.T) {
	t.Run("flagged default wins", func(t *testing.T) {
		sys := System{FileSystems: []FileSystem{
			{Path: "/scratch", DataType: "scratch"},
			{Path: "/users", DataType: "users", DefaultWorkDir: true},
		}}
		fs, ok := sys.DefaultFileSystem()
		assert.True(t, ok)
		assert.Equal(t, "/users", fs.Path)
	})

	t.Run("falls back to first mount", func(t *testing.T) {
		sys := System{FileSystems: []FileSystem{
			{Path: "/scratch"},
			{Path: "/users"},
		}}
		fs, ok := sys.DefaultFileSystem()
		assert.True(t, ok)
		assert.Equal(t, "/scratch", fs.Path)
	})

	t.Run("no mounts", func(t *testing.T) {
		_, ok := System{}.DefaultFileSystem()
		assert.False(t, ok)
	})
}
