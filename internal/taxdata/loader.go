package taxdata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aapotheosis/rrspgo/internal/calculation"
	"github.com/aapotheosis/rrspgo/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// maxFallbackYears bounds how far back LoadYear searches for a usable file
// when the requested year is missing or malformed.
const maxFallbackYears = 10

// upperBound is a bracket's max field in the data file: a number, or
// "Infinity"/null for the unbounded top bracket.
type upperBound struct {
	value *decimal.Decimal
}

func (u *upperBound) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		u.value = nil
		return nil
	}
	s := strings.TrimSpace(node.Value)
	if strings.EqualFold(s, "infinity") || s == ".inf" {
		u.value = nil
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid bracket max %q: %w", node.Value, err)
	}
	u.value = &d
	return nil
}

// bracketRecord mirrors one {min,max,rate} entry in the data file.
type bracketRecord struct {
	Min  decimal.Decimal `yaml:"min" json:"min"`
	Max  upperBound      `yaml:"max" json:"max"`
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
}

// provinceRecord mirrors one provincial entry in the data file.
type provinceRecord struct {
	Name     string          `yaml:"name" json:"name"`
	Brackets []bracketRecord `yaml:"brackets" json:"brackets"`
}

// bracketFile mirrors the tax_brackets_<year>.json layout produced by the
// offline generation step.
type bracketFile struct {
	Year       int                       `yaml:"year" json:"year"`
	Federal    []bracketRecord           `yaml:"federal" json:"federal"`
	Provincial map[string]provinceRecord `yaml:"provincial" json:"provincial"`
}

// Store holds the validated schedules for one loaded tax year: the federal
// schedule plus one schedule per province. Immutable after loading; one
// Store serves any number of concurrent model builds.
type Store struct {
	// Year is the year actually loaded, which may be earlier than the year
	// requested when fallback kicked in.
	Year          int
	RequestedYear int

	Federal    *calculation.BracketSchedule
	Provincial map[domain.Province]*calculation.BracketSchedule
}

// FellBack reports whether the store holds a prior year's data.
func (s *Store) FellBack() bool {
	return s.Year != s.RequestedYear
}

// BuildModel combines the federal schedule with the named province's
// schedule. A province with no data in the loaded year is reported as
// unavailable, never silently substituted.
func (s *Store) BuildModel(province domain.Province) (*calculation.CombinedTaxModel, error) {
	provincial, ok := s.Provincial[province]
	if !ok {
		return nil, &domain.DataUnavailableError{
			Jurisdiction: string(province),
			Year:         s.Year,
			Message:      "no bracket data for province",
		}
	}
	return calculation.NewCombinedTaxModel(province, s.Federal, provincial)
}

// Provinces returns the codes with data in the loaded year, sorted.
func (s *Store) Provinces() []domain.Province {
	var out []domain.Province
	for _, p := range domain.AllProvinces() {
		if _, ok := s.Provincial[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Loader reads yearly bracket data files from a directory. Files are named
// tax_brackets_<year>.json; YAML files with the same layout also parse,
// since the decoder accepts both.
type Loader struct {
	DataDir string
}

// NewLoader creates a loader rooted at the given data directory.
func NewLoader(dataDir string) *Loader {
	return &Loader{DataDir: dataDir}
}

// LoadYear loads the requested year's bracket file, falling back to the most
// recent prior year when the requested file is absent or malformed. All
// schedule invariants are checked here, once, before any model is built.
func (l *Loader) LoadYear(year int) (*Store, error) {
	var firstErr error
	for y := year; y > year-maxFallbackYears; y-- {
		store, err := l.loadFile(y)
		if err == nil {
			store.RequestedYear = year
			return store, nil
		}
		if firstErr == nil && !os.IsNotExist(err) {
			firstErr = err
		}
	}
	return nil, &domain.DataUnavailableError{
		Jurisdiction: "federal",
		Year:         year,
		Message:      fmt.Sprintf("no usable bracket file for %d or the %d prior years", year, maxFallbackYears-1),
		Cause:        firstErr,
	}
}

// BuildModel is a convenience wrapper: load the year, then combine the
// federal schedule with the given province's.
func (l *Loader) BuildModel(province domain.Province, year int) (*calculation.CombinedTaxModel, error) {
	store, err := l.LoadYear(year)
	if err != nil {
		return nil, err
	}
	return store.BuildModel(province)
}

func (l *Loader) loadFile(year int) (*Store, error) {
	path := filepath.Join(l.DataDir, fmt.Sprintf("tax_brackets_%d.json", year))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file bracketFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if file.Year != year {
		return nil, fmt.Errorf("%s: file declares year %d", path, file.Year)
	}
	if len(file.Provincial) == 0 {
		return nil, fmt.Errorf("%s: no provincial data", path)
	}

	federal, err := buildSchedule("federal", year, file.Federal)
	if err != nil {
		return nil, err
	}

	provincial := make(map[domain.Province]*calculation.BracketSchedule, len(file.Provincial))
	for code, rec := range file.Provincial {
		province, err := domain.ParseProvince(code)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		schedule, err := buildSchedule(string(province), year, rec.Brackets)
		if err != nil {
			return nil, err
		}
		provincial[province] = schedule
	}

	return &Store{Year: year, RequestedYear: year, Federal: federal, Provincial: provincial}, nil
}

func buildSchedule(jurisdiction string, year int, records []bracketRecord) (*calculation.BracketSchedule, error) {
	brackets := make([]calculation.Bracket, 0, len(records))
	for _, r := range records {
		brackets = append(brackets, calculation.Bracket{Min: r.Min, Max: r.Max.value, Rate: r.Rate})
	}
	return calculation.NewBracketSchedule(jurisdiction, year, brackets)
}
