package domain

import "encoding/json"

// PortAnalysis holds the great-circle distance in kilometres from one
// coordinate to every configured port, plus the nearest port and its
// distance. It marshals flat, one key per port, matching the shape the
// dashboard consumes.
type PortAnalysis struct {
	Distances       map[string]float64
	NearestPort     string
	NearestDistance float64
}

func (a PortAnalysis) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(a.Distances)+2)
	for name, d := range a.Distances {
		flat[name] = d
	}
	flat["nearestPort"] = a.NearestPort
	flat["nearestDistance"] = a.NearestDistance
	return json.Marshal(flat)
}

func (a *PortAnalysis) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	a.Distances = make(map[string]float64, len(flat))
	for key, raw := range flat {
		switch key {
		case "nearestPort":
			if err := json.Unmarshal(raw, &a.NearestPort); err != nil {
				return err
			}
		case "nearestDistance":
			if err := json.Unmarshal(raw, &a.NearestDistance); err != nil {
				return err
			}
		default:
			var d float64
			if err := json.Unmarshal(raw, &d); err != nil {
				return err
			}
			a.Distances[key] = d
		}
	}
	return nil
}

// CoordinatePoint is one sample inside an interval, in input order.
type CoordinatePoint struct {
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Timestamp string   `json:"timestamp"`
	Speed     *float64 `json:"speed"`
	NavStatus string   `json:"navStatus"`
}

// SimpleInterval is a maximal run of rows sharing one navigational status
// within a journey, with per-run aggregates and an activity label.
type SimpleInterval struct {
	StartDate          string            `json:"startDate"`
	StartTime          string            `json:"startTime"`
	EndDate            string            `json:"endDate"`
	EndTime            string            `json:"endTime"`
	NavStatus          string            `json:"navStatus"`
	Duration           string            `json:"duration"`
	AvgSpeed           *float64          `json:"avgSpeed"`
	SampleCount        int               `json:"sampleCount"`
	StartLat           *float64          `json:"startLat"`
	StartLon           *float64          `json:"startLon"`
	EndLat             *float64          `json:"endLat"`
	EndLon             *float64          `json:"endLon"`
	StartPortDistances *PortAnalysis     `json:"startPortDistances"`
	EndPortDistances   *PortAnalysis     `json:"endPortDistances"`
	ClassificationType string            `json:"classificationType"`
	JourneyIndex       int               `json:"journeyIndex"`
	IntervalNumber     int               `json:"intervalNumber"`
	CoordinatePoints   []CoordinatePoint `json:"coordinatePoints"`
}

// GapInterval records a temporal discontinuity detected inside a journey span.
type GapInterval struct {
	StartTime          string `json:"startTime"`
	EndTime            string `json:"endTime"`
	Duration           string `json:"duration"`
	Reason             string `json:"reason"`
	BeforeJourneyIndex int    `json:"beforeJourneyIndex"`
	AfterJourneyIndex  int    `json:"afterJourneyIndex"`
}

// Incompleteness flags which end of a journey is missing its dock event. The
// start side is never flagged: journeys only open on an observed dock event.
type Incompleteness struct {
	Start bool `json:"start"`
	End   bool `json:"end"`
}

// JourneyMetadata summarizes a journey span.
type JourneyMetadata struct {
	StartPort           string         `json:"startPort"`
	EndPort             string         `json:"endPort"`
	StartDate           string         `json:"startDate"`
	EndDate             string         `json:"endDate"`
	StartTime           string         `json:"startTime"`
	EndTime             string         `json:"endTime"`
	TotalDuration       string         `json:"totalDuration"`
	IsIncomplete        bool           `json:"isIncomplete"`
	Incompleteness      Incompleteness `json:"incompleteness"`
	IntervalCount       int            `json:"intervalCount"`
	ClassificationTypes []string       `json:"classificationTypes"`
}

// Journey is one port-to-port transit. Incomplete journeys (missing closing
// dock event, or any gap inside the span) carry no classified intervals.
type Journey struct {
	JourneyIndex int              `json:"journeyIndex"`
	Intervals    []SimpleInterval `json:"intervals"`
	Metadata     JourneyMetadata  `json:"metadata"`
}

// Summary counts the outcome of one processing run.
type Summary struct {
	TotalIntervals     int `json:"totalIntervals"`
	TotalRows          int `json:"totalRows"`
	FilesProcessed     int `json:"filesProcessed"`
	TotalJourneys      int `json:"totalJourneys"`
	IncompleteJourneys int `json:"incompleteJourneys"`
	TotalGaps          int `json:"totalGaps"`
}

// ResultData is the payload of a successful processing run.
type ResultData struct {
	Journeys []Journey     `json:"journeys"`
	Gaps     []GapInterval `json:"gaps"`
	Summary  Summary       `json:"summary"`
}

// MergeMeta describes what the multi-source merge consumed and produced.
type MergeMeta struct {
	TotalRows      int `json:"totalRows"`
	FilesProcessed int `json:"filesProcessed"`
	GapsDetected   int `json:"gapsDetected"`
}

// Result is the top-level outcome of the reconstruction pipeline. Failures
// are carried as a value (Success false plus Error), never as a panic or an
// error crossing the engine boundary.
type Result struct {
	Success bool        `json:"success"`
	Data    *ResultData `json:"data,omitempty"`
	Meta    *MergeMeta  `json:"meta,omitempty"`
	Error   string      `json:"error,omitempty"`
}
