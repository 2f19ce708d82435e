package model

// Package model contains read-only snapshots of FirecREST resources. Nothing
// in this package is persisted locally; every value is fetched per request.

import "time"

// ServiceType identifies one independently probed service of a System.
type ServiceType string

const (
	ServiceScheduler  ServiceType = "scheduler"
	ServiceSSH        ServiceType = "ssh"
	ServiceFilesystem ServiceType = "filesystem"
)

// ServiceHealth is the most recent health-probe result for one service of
// a System.
type ServiceHealth struct {
	ServiceType ServiceType `json:"serviceType"`
	Healthy     bool        `json:"healthy"`
	LastChecked time.Time   `json:"lastChecked"`
	Message     string      `json:"message,omitempty"`
	Path        string      `json:"path,omitempty"`
}

// HealthStatus is the aggregate health of a System.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// FileSystem is one mounted storage area on a System.
type FileSystem struct {
	Path string `json:"path"`
	// DataType distinguishes storage classes (e.g. "scratch", "users").
	DataType string `json:"dataType,omitempty"`
	// DefaultWorkDir marks the per-user default working directory.
	DefaultWorkDir bool `json:"defaultWorkDir"`
}

// System is one configured remote HPC cluster exposing scheduler, SSH and
// filesystem services.
type System struct {
	Name        string          `json:"name"`
	Services    []ServiceHealth `json:"servicesHealth"`
	FileSystems []FileSystem    `json:"fileSystems"`
}

// Health aggregates per-service probes: healthy iff all services are
// healthy, unhealthy iff none are, degraded otherwise. A system with no
// probe results is unhealthy.
func (s System) Health() HealthStatus {
	if len(s.Services) == 0 {
		return HealthUnhealthy
	}
	healthy := 0
	for _, svc := range s.Services {
		if svc.Healthy {
			healthy++
		}
	}
	switch healthy {
	case len(s.Services):
		return HealthHealthy
	case 0:
		return HealthUnhealthy
	default:
		return HealthDegraded
	}
}

// DefaultFileSystem returns the default working directory mount, falling
// back to the first mount when none is flagged.
func (s System) DefaultFileSystem() (FileSystem, bool) {
	for _, fs := range s.FileSystems {
		if fs.DefaultWorkDir {
			return fs, true
		}
	}
	if len(s.FileSystems) > 0 {
		return s.FileSystems[0], true
	}
	return FileSystem{}, false
}
