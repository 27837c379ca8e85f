package report

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"retail-sales-lab/internal/analysis"
	apperrors "retail-sales-lab/internal/errors"
)

// Summary is the machine-readable companion of the printed report.
type Summary struct {
	RunID        string                   `yaml:"run_id"`
	GeneratedAt  time.Time                `yaml:"generated_at"`
	Seed         int64                    `yaml:"seed"`
	Orders       int                      `yaml:"orders"`
	DateFrom     string                   `yaml:"date_from"`
	DateTo       string                   `yaml:"date_to"`
	Insights     analysis.Insights        `yaml:"insights"`
	Describe     []analysis.ColumnSummary `yaml:"describe"`
	Categories   []analysis.Group         `yaml:"categories"`
	Segments     []analysis.Group         `yaml:"segments"`
	Cities       []analysis.Group         `yaml:"cities"`
	Channels     []analysis.Group         `yaml:"channels"`
	MonthlyTrend []analysis.TrendPoint    `yaml:"monthly_trend"`
}

// WriteSummary saves s as YAML.
func WriteSummary(path string, s Summary) error {
	out, err := yaml.Marshal(s)
	if err != nil {
		return apperrors.NewRenderError("encode summary", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.NewRenderError("create summary directory", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return apperrors.NewRenderError("write summary", err).WithContext("path", path)
	}
	return nil
}

// ReadSummary loads a summary written by WriteSummary.
func ReadSummary(path string) (Summary, error) {
	var s Summary
	content, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	err = yaml.Unmarshal(content, &s)
	return s, err
}
