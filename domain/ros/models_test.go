package ros

import (
	"testing"
)

func sampleSet() *ObservationSet {
	return &ObservationSet{
		Source: "burns.csv",
		Observations: []Observation{
			{Site: "ridge", WindSpeed: 12, RelHumidity: 30, ROS: 4.5},
			{Site: "valley", WindSpeed: 8, RelHumidity: 55, ROS: 1.2},
			{Site: "ridge", WindSpeed: 20, RelHumidity: 25, ROS: 9.8},
		},
	}
}

func TestParameters(t *testing.T) {
	cases := []struct {
		model string
		want  []string
	}{
		{"ros_wind", []string{"intercept", "beta_wind_speed", "sigma"}},
		{"ros_wind_rh", []string{"intercept", "beta_wind_speed", "beta_rel_humidity", "sigma"}},
		{"ros_site_hier", []string{"intercept", "beta_wind_speed", "beta_rel_humidity", "sigma", "tau_site"}},
	}

	for _, c := range cases {
		spec, err := FindModel(c.model)
		if err != nil {
			t.Fatalf("FindModel(%s): %v", c.model, err)
		}
		got := spec.Parameters()
		if len(got) != len(c.want) {
			t.Fatalf("%s parameters = %v, want %v", c.model, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("%s parameter %d = %s, want %s", c.model, i, got[i], c.want[i])
			}
		}
	}
}

func TestCatalogPriorsCoverParameters(t *testing.T) {
	// Every parameter the engine must return needs a declared prior.
	for _, spec := range Catalog() {
		for _, param := range spec.Parameters() {
			if _, ok := spec.Priors[param]; !ok {
				t.Errorf("model %s has no prior for %s", spec.Name, param)
			}
		}
	}
}

func TestDataDict(t *testing.T) {
	spec, err := FindModel("ros_wind_rh")
	if err != nil {
		t.Fatal(err)
	}

	dict, err := spec.DataDict(sampleSet())
	if err != nil {
		t.Fatal(err)
	}

	if dict["N"] != 3 {
		t.Errorf("N = %v, want 3", dict["N"])
	}
	for _, col := range []string{ColumnROS, ColumnWindSpeed, ColumnRelHumidity} {
		vec, ok := dict[col].([]float64)
		if !ok || len(vec) != 3 {
			t.Errorf("column %s missing or wrong length: %v", col, dict[col])
		}
	}
	if _, ok := dict["site"]; ok {
		t.Error("non-hierarchical dict should not carry a site index")
	}
}

func TestDataDict_Hierarchical(t *testing.T) {
	spec, err := FindModel("ros_site_hier")
	if err != nil {
		t.Fatal(err)
	}

	dict, err := spec.DataDict(sampleSet())
	if err != nil {
		t.Fatal(err)
	}

	if dict["n_sites"] != 2 {
		t.Errorf("n_sites = %v, want 2", dict["n_sites"])
	}
	siteIdx, ok := dict["site"].([]int)
	if !ok {
		t.Fatal("site index missing")
	}
	// Site indexes follow first-appearance order: ridge=1, valley=2.
	want := []int{1, 2, 1}
	for i := range want {
		if siteIdx[i] != want[i] {
			t.Errorf("site index %d = %d, want %d", i, siteIdx[i], want[i])
		}
	}
}

func TestDataDict_EmptySet(t *testing.T) {
	spec, _ := FindModel("ros_wind")
	if _, err := spec.DataDict(&ObservationSet{}); err == nil {
		t.Error("expected error for empty observation set")
	}
	if _, err := spec.DataDict(nil); err == nil {
		t.Error("expected error for nil observation set")
	}
}

func TestFindModel_Unknown(t *testing.T) {
	if _, err := FindModel("ros_magic"); err == nil {
		t.Error("expected error for unknown model")
	}
}
