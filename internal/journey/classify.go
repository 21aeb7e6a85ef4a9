package journey

import (
	"fmt"

	"vesseltrack/internal/domain"
)

// classificationInput carries everything the rule chain needs to label one
// interval within its journey.
type classificationInput struct {
	NavStatus     string
	StartAnalysis *domain.PortAnalysis
	EndAnalysis   *domain.PortAnalysis
	Index         int
	Total         int
	StartPort     string
	EndPort       string
	FirstManeuver bool
	PortZoneKm    float64
}

// ClassifyInterval labels an interval by running the rule chain in order and
// returning the first match. NavStatus is the raw status of the interval's
// first sample; Index is the interval's 0-based position within the journey
// and Total the journey's interval count. FirstManeuver marks the journey's
// first maneuvering interval.
func ClassifyInterval(in classificationInput) string {
	nearPort := in.StartAnalysis.NearestDistance <= in.PortZoneKm ||
		in.EndAnalysis.NearestDistance <= in.PortZoneKm

	// Docked at the departure port, or an out-of-port stop.
	if in.NavStatus == domain.CodeStopped && in.Index == 0 {
		if nearPort {
			return fmt.Sprintf("Atracado en %s", in.StartPort)
		}
		return "Parada"
	}

	// First maneuvering interval: leaving the departure port.
	if in.NavStatus == domain.CodeManeuvering && in.FirstManeuver {
		if nearPort {
			return fmt.Sprintf("Maniobrando en %s", in.StartPort)
		}
		return "Navegando en velocidad de maniobra hacia Puerto B"
	}

	// Second-to-last interval: approaching the arrival port.
	if in.NavStatus == domain.CodeManeuvering && in.Index == in.Total-2 {
		if nearPort {
			return fmt.Sprintf("Maniobrando en %s", in.EndPort)
		}
		return "Navegando en velocidad de maniobra hacia Puerto B"
	}

	if in.NavStatus == domain.CodeManeuvering {
		return fmt.Sprintf("Navegando en velocidad de maniobra hacia %s", in.EndPort)
	}

	if in.NavStatus == domain.CodeUnderway {
		return fmt.Sprintf("Navegando hacia %s", in.EndPort)
	}

	if in.NavStatus == domain.CodeStopped {
		return "Parada"
	}

	return "Desconocido"
}
