package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run                 RunMetadata `json:"run"`
	Steps               int         `json:"steps"`
	Energies            []float64   `json:"energies"`
	EnergiesPerParticle []float64   `json:"energies_per_particle"`
}

// ExportJSON writes a run and its accepted-energy history as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, energies []float64) error {
	data := ExportData{
		Run:                 *meta,
		Steps:               len(energies),
		Energies:            energies,
		EnergiesPerParticle: make([]float64, len(energies)),
	}
	if data.Energies == nil {
		data.Energies = []float64{}
	}

	n := float64(meta.Particles)
	for i, e := range energies {
		if n > 0 {
			data.EnergiesPerParticle[i] = e / n
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
