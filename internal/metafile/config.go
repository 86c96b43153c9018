package metafile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/mcgill-femto/rawdata/dataset"
	"github.com/mcgill-femto/rawdata/internal/monitoring"
)

// SectionName is the single section holding experimental parameters in
// metadata.cfg files.
const SectionName = "EXPERIMENTAL PARAMETERS"

// ParseConfig parses a metadata.cfg experiment config into the shared
// metadata schema. The config keys differ from the schema's names, so a
// fixed translation is applied: "electron energy" becomes Energy, "pump
// wavelength" becomes PumpWavelength, and so on. "nscans" expands to the
// contiguous scan range 1..N, and "time points" is parsed from its
// bracketed textual representation.
func ParseConfig(path string) (dataset.Metadata, error) {
	var md dataset.Metadata

	cfg, err := ini.Load(path)
	if err != nil {
		return md, fmt.Errorf("loading config %s: %w", path, err)
	}
	section, err := cfg.GetSection(SectionName)
	if err != nil {
		return md, fmt.Errorf("config %s: %w", path, err)
	}

	md.Energy = scalar(section, "electron energy")
	md.AcquisitionDate = section.Key("acquisition date").String()
	md.Fluence = scalar(section, "fluence")
	md.Temperature = scalar(section, "temperature")
	md.Exposure = scalar(section, "exposure")
	md.Notes = section.Key("notes").String()
	md.PumpWavelength = scalar(section, "pump wavelength")

	nscans, err := section.Key("nscans").Int()
	if err != nil {
		return md, fmt.Errorf("config %s: bad nscans: %w", path, err)
	}
	md.Scans = dataset.ScanRange(nscans)

	md.TimePoints, err = ParseTimePoints(section.Key("time points").String())
	if err != nil {
		return md, fmt.Errorf("config %s: %w", path, err)
	}
	return md, nil
}

// scalar reads a numeric key, mapping unparseable values to the missing
// sentinel rather than failing the whole parse.
func scalar(section *ini.Section, key string) float64 {
	raw := section.Key(key).String()
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		monitoring.Logf("metafile: non-numeric value %q for key %q", raw, key)
		return dataset.Missing
	}
	return v
}

// ParseTimePoints parses the textual list of time-delays stored in the
// config ("[-1.0, 0.0, 1.5]"). The instrument writes a plain bracketed
// list of decimals, which is parsed directly here instead of being handed
// to a general expression evaluator. The result is de-duplicated and
// sorted ascending.
func ParseTimePoints(text string) ([]float64, error) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimPrefix(trimmed, "(")
	trimmed = strings.TrimSuffix(trimmed, "]")
	trimmed = strings.TrimSuffix(trimmed, ")")
	if strings.TrimSpace(trimmed) == "" {
		return nil, fmt.Errorf("empty time points list %q", text)
	}

	seen := make(map[float64]bool)
	var points []float64
	for _, field := range strings.Split(trimmed, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("bad time point %q in %q: %w", field, text, err)
		}
		if !seen[v] {
			seen[v] = true
			points = append(points, v)
		}
	}
	sort.Float64s(points)
	return points, nil
}
