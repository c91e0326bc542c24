package ros

import (
	"pyrostat/internal/errors"
)

// PriorSpec declares a prior distribution for one model parameter. Args are
// positional in the engine's convention (e.g. normal: location, scale).
type PriorSpec struct {
	Dist string    `json:"dist"`
	Args []float64 `json:"args"`
}

// ModelSpec is a declarative model definition handed to the external
// inference engine. Nothing here samples; the spec is data.
type ModelSpec struct {
	Name       string               `json:"name"`
	Title      string               `json:"title"`
	Response   string               `json:"response"`
	Covariates []string             `json:"covariates"`
	Likelihood string               `json:"likelihood"`
	Priors     map[string]PriorSpec `json:"priors"`
	// Hierarchical marks per-site varying intercepts.
	Hierarchical bool `json:"hierarchical"`
	// Narrative is a markdown description rendered on the model card.
	Narrative string `json:"-"`
}

// Parameters lists the named parameters the engine is expected to return
// draws for, in declaration order.
func (m ModelSpec) Parameters() []string {
	params := []string{"intercept"}
	for _, cov := range m.Covariates {
		params = append(params, "beta_"+cov)
	}
	params = append(params, "sigma")
	if m.Hierarchical {
		params = append(params, "tau_site")
	}
	return params
}

// DataDict assembles the engine's data dictionary from an observation set.
// Sites are encoded as 1-based integer indexes for hierarchical models.
func (m ModelSpec) DataDict(set *ObservationSet) (map[string]interface{}, error) {
	if set == nil || set.Len() == 0 {
		return nil, errors.InvalidInput("observation set is empty")
	}

	dict := map[string]interface{}{
		"N":        set.Len(),
		m.Response: set.Column(m.Response),
	}
	for _, cov := range m.Covariates {
		dict[cov] = set.Column(cov)
	}

	if m.Hierarchical {
		sites := set.Sites()
		index := make(map[string]int, len(sites))
		for i, site := range sites {
			index[site] = i + 1
		}
		siteIdx := make([]int, set.Len())
		for i, obs := range set.Observations {
			siteIdx[i] = index[obs.Site]
		}
		dict["n_sites"] = len(sites)
		dict["site"] = siteIdx
	}

	return dict, nil
}

// Catalog returns the model specifications this workspace studies
func Catalog() []ModelSpec {
	return []ModelSpec{
		{
			Name:       "ros_wind",
			Title:      "ROS ~ wind speed",
			Response:   ColumnROS,
			Covariates: []string{ColumnWindSpeed},
			Likelihood: "lognormal",
			Priors: map[string]PriorSpec{
				"intercept":       {Dist: "normal", Args: []float64{0, 2}},
				"beta_wind_speed": {Dist: "normal", Args: []float64{0, 1}},
				"sigma":           {Dist: "exponential", Args: []float64{1}},
			},
			Narrative: "Log-linear regression of head-fire rate of spread on " +
				"10 m open wind speed.\n\nA weakly informative normal prior on the " +
				"wind coefficient keeps the posterior inside physically plausible " +
				"spread rates while letting the data dominate.",
		},
		{
			Name:       "ros_wind_rh",
			Title:      "ROS ~ wind speed + relative humidity",
			Response:   ColumnROS,
			Covariates: []string{ColumnWindSpeed, ColumnRelHumidity},
			Likelihood: "lognormal",
			Priors: map[string]PriorSpec{
				"intercept":         {Dist: "normal", Args: []float64{0, 2}},
				"beta_wind_speed":   {Dist: "normal", Args: []float64{0, 1}},
				"beta_rel_humidity": {Dist: "normal", Args: []float64{0, 1}},
				"sigma":             {Dist: "exponential", Args: []float64{1}},
			},
			Narrative: "Extends the wind-only model with relative humidity. " +
				"Drier air should raise spread rates, so the humidity coefficient " +
				"is expected negative; the prior stays centred on zero to let the " +
				"data decide.",
		},
		{
			Name:         "ros_site_hier",
			Title:        "Hierarchical per-site intercepts",
			Response:     ColumnROS,
			Covariates:   []string{ColumnWindSpeed, ColumnRelHumidity},
			Likelihood:   "lognormal",
			Hierarchical: true,
			Priors: map[string]PriorSpec{
				"intercept":         {Dist: "normal", Args: []float64{0, 2}},
				"beta_wind_speed":   {Dist: "normal", Args: []float64{0, 1}},
				"beta_rel_humidity": {Dist: "normal", Args: []float64{0, 1}},
				"sigma":             {Dist: "exponential", Args: []float64{1}},
				"tau_site":          {Dist: "exponential", Args: []float64{1}},
			},
			Narrative: "Partial pooling across burn sites. Each site gets its own " +
				"intercept drawn from a shared distribution, separating fuel-bed " +
				"differences between sites from the weather response.",
		},
	}
}

// FindModel looks up a catalog model by name
func FindModel(name string) (ModelSpec, error) {
	for _, spec := range Catalog() {
		if spec.Name == name {
			return spec, nil
		}
	}
	return ModelSpec{}, errors.NotFound("model " + name)
}
