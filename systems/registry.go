package systems

import "github.com/pthm-cable/olfaction/telemetry"

// SystemInfo describes a simulation system for logs and perf output.
type SystemInfo struct {
	ID          string // Phase identifier used for perf tracking
	Name        string // Display name
	Description string // What this system does
}

// SystemRegistry holds metadata about all systems in tick order.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known systems in the order a tick runs them.
func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: telemetry.PhaseSensing, Name: "Sensing", Description: "Samples hit counts at each searcher's cell"})
	r.Register(SystemInfo{ID: telemetry.PhaseMotion, Name: "Motion", Description: "Cast-and-surge steering and integration"})
	r.Register(SystemInfo{ID: telemetry.PhasePlume, Name: "Plume Clock", Description: "Advances the plume clock"})
	r.Register(SystemInfo{ID: telemetry.PhaseTelemetry, Name: "Telemetry", Description: "Flushes stats windows"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered systems in tick order.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
