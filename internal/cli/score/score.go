package score

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Miandari/dailygrit/internal/scoring"
	"github.com/Miandari/dailygrit/pkg/models"
)

// Fixture is a challenge's scoring rules plus one day's entry, read from YAML
type Fixture struct {
	Metrics            []models.MetricDefinition `yaml:"metrics"`
	models.BonusConfig `yaml:",inline"`
	Entry              FixtureEntry `yaml:"entry"`
}

// FixtureEntry is the submitted data and the participant's stored streak
type FixtureEntry struct {
	MetricData    map[string]interface{} `yaml:"metric_data"`
	CurrentStreak int                    `yaml:"current_streak"`
}

var ScoreCmd = &cobra.Command{
	Use:   "score <fixture.yaml>",
	Short: "Score one entry offline",
	Long: `Score a day's metric data against a challenge's metrics and bonus settings
without touching the database. The fixture holds "metrics", the bonus fields
and an "entry" with "metric_data" and "current_streak".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read fixture: %w", err)
		}

		fixture, err := ParseFixture(raw)
		if err != nil {
			return err
		}
		if streak, _ := cmd.Flags().GetInt("streak"); cmd.Flags().Changed("streak") {
			fixture.Entry.CurrentStreak = streak
		}

		if strict, _ := cmd.Flags().GetBool("validate"); strict {
			if err := scoring.Validate(fixture.Metrics); err != nil {
				return err
			}
			if err := scoring.ValidateBonus(fixture.BonusConfig); err != nil {
				return err
			}
		}

		result := scoring.EntryScore(fixture.Metrics, fixture.Entry.MetricData, fixture.BonusConfig, fixture.Entry.CurrentStreak)
		output, _ := cmd.Flags().GetString("output")
		return writeResult(cmd.OutOrStdout(), output, result)
	},
}

// ParseFixture decodes a YAML scoring fixture
func ParseFixture(raw []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	if len(fixture.Metrics) == 0 {
		return nil, models.ValidationError("metrics", "fixture defines no metrics")
	}
	return &fixture, nil
}

func writeResult(w io.Writer, format string, v interface{}) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (json or yaml)", format)
	}
}

func init() {
	ScoreCmd.Flags().Int("streak", 0, "override the fixture's current streak")
	ScoreCmd.Flags().Bool("validate", false, "reject invalid metric definitions before scoring")
	ScoreCmd.Flags().StringP("output", "o", "json", "output format: json or yaml")
}
