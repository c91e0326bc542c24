package tabular

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"pyrostat/domain/ros"
	"pyrostat/internal/errors"
)

// DataReader loads weather/fire observation tables from .xlsx or .csv files
type DataReader struct{}

// NewDataReader creates a reader that dispatches on the file extension at
// read time
func NewDataReader() *DataReader {
	return &DataReader{}
}

// Read loads the observation table at path. Rows whose numeric cells fail
// to parse are skipped and counted rather than failing the whole load.
func (r *DataReader) Read(ctx context.Context, path string) (*ros.ObservationSet, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NotFound("data file " + path)
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSVRows(path)
	case ".xlsx":
		rows, err = readExcelRows(path)
	default:
		return nil, errors.InvalidInput("unsupported data file type: " + filepath.Ext(path))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput("data file has no observation rows")
	}

	return buildObservationSet(path, rows)
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// buildObservationSet maps header names to the canonical ROS columns and
// parses the body rows
func buildObservationSet(path string, rows [][]string) (*ros.ObservationSet, error) {
	header := rows[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[normalizeHeader(name)] = i
	}

	required := []string{ros.ColumnWindSpeed, ros.ColumnRelHumidity, ros.ColumnROS}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, errors.InvalidInput("missing required column: " + col)
		}
	}
	siteIdx, hasSite := index[ros.ColumnSite]

	set := &ros.ObservationSet{Source: filepath.Base(path)}
	for _, row := range rows[1:] {
		wind, err1 := cellFloat(row, index[ros.ColumnWindSpeed])
		rh, err2 := cellFloat(row, index[ros.ColumnRelHumidity])
		spread, err3 := cellFloat(row, index[ros.ColumnROS])
		if err1 != nil || err2 != nil || err3 != nil {
			set.SkippedRows++
			continue
		}

		obs := ros.Observation{
			WindSpeed:   wind,
			RelHumidity: rh,
			ROS:         spread,
		}
		if hasSite && siteIdx < len(row) {
			obs.Site = strings.TrimSpace(row[siteIdx])
		}
		if obs.Site == "" {
			obs.Site = "unknown"
		}
		set.Observations = append(set.Observations, obs)
	}

	if set.Len() == 0 {
		return nil, errors.InvalidInput("no parseable observation rows in " + path)
	}
	return set, nil
}

// normalizeHeader tolerates the header spellings seen in field datasets,
// e.g. "Wind Speed" or "RH%"
func normalizeHeader(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, " ", "_")
	switch n {
	case "wind", "windspeed", "wind_speed_kmh":
		return ros.ColumnWindSpeed
	case "rh", "rh%", "relative_humidity", "humidity":
		return ros.ColumnRelHumidity
	case "rate_of_spread", "spread_rate":
		return ros.ColumnROS
	case "plot", "location":
		return ros.ColumnSite
	}
	return n
}

func cellFloat(row []string, idx int) (float64, error) {
	if idx >= len(row) {
		return 0, errors.InvalidInput("row too short")
	}
	return strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
}
