package ros

// Observation is one row of the weather/fire table: a measured head-fire
// rate of spread together with the weather covariates recorded at the
// same time.
type Observation struct {
	Site        string  `json:"site"`
	WindSpeed   float64 `json:"wind_speed"`   // km/h, 10 m open wind
	RelHumidity float64 `json:"rel_humidity"` // percent
	ROS         float64 `json:"ros"`          // m/min
}

// ObservationSet is a loaded dataset plus bookkeeping about rows the
// loader had to drop.
type ObservationSet struct {
	Source       string        `json:"source"`
	Observations []Observation `json:"observations"`
	SkippedRows  int           `json:"skipped_rows"`
}

// Len returns the number of usable observations
func (s *ObservationSet) Len() int {
	return len(s.Observations)
}

// Sites returns the distinct site labels in first-appearance order
func (s *ObservationSet) Sites() []string {
	seen := make(map[string]bool)
	var sites []string
	for _, obs := range s.Observations {
		if !seen[obs.Site] {
			seen[obs.Site] = true
			sites = append(sites, obs.Site)
		}
	}
	return sites
}

// Column extracts a named covariate as a vector, in row order
func (s *ObservationSet) Column(name string) []float64 {
	out := make([]float64, len(s.Observations))
	for i, obs := range s.Observations {
		switch name {
		case ColumnWindSpeed:
			out[i] = obs.WindSpeed
		case ColumnRelHumidity:
			out[i] = obs.RelHumidity
		case ColumnROS:
			out[i] = obs.ROS
		}
	}
	return out
}

// Canonical column names used by the loader and the model builders
const (
	ColumnSite        = "site"
	ColumnWindSpeed   = "wind_speed"
	ColumnRelHumidity = "rel_humidity"
	ColumnROS         = "ros"
)
