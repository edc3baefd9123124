package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/s0up4200/areena/areena"
	"github.com/s0up4200/areena/filter"
)

var (
	// Command flags
	filterExpr        string
	categoryMatch     string
	includeCategories []string
	excludeCategories []string
	seasonID          string
	programQuery      areena.ProgramQuery
)

func init() {
	for _, c := range []*cobra.Command{categoriesCmd, searchSeriesCmd, seasonsCmd, episodesCmd, searchProgramsCmd} {
		c.Flags().StringVarP(&filterExpr, "filter", "f", "", "only show results matching this expression")
	}

	categoriesCmd.Flags().StringVarP(&categoryMatch, "match", "m", "", "fuzzy match category names")

	searchSeriesCmd.Flags().StringSliceVarP(&includeCategories, "category", "c", nil, "category ids to include")
	searchSeriesCmd.Flags().StringSliceVarP(&excludeCategories, "ignore", "i", nil, "category ids to exclude")

	episodesCmd.Flags().StringVarP(&seasonID, "season", "s", "", "only list episodes of this season id")

	searchProgramsCmd.Flags().StringVarP(&programQuery.Query, "query", "q", "", "free text query")
	searchProgramsCmd.Flags().StringVar(&programQuery.ID, "id", "", "program ids")
	searchProgramsCmd.Flags().StringVar(&programQuery.Series, "series", "", "series id")
	searchProgramsCmd.Flags().StringVar(&programQuery.Publisher, "publisher", "", "publisher id, e.g. yle-areena")
	searchProgramsCmd.Flags().StringSliceVarP(&programQuery.IncludeCategories, "category", "c", nil, "category ids to include")
	searchProgramsCmd.Flags().StringSliceVarP(&programQuery.ExcludeCategories, "ignore", "i", nil, "category ids to exclude")

	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(servicesCmd)
	rootCmd.AddCommand(schedulesCmd)
	rootCmd.AddCommand(searchSeriesCmd)
	rootCmd.AddCommand(seasonsCmd)
	rootCmd.AddCommand(episodesCmd)
	rootCmd.AddCommand(programCmd)
	rootCmd.AddCommand(searchProgramsCmd)
}

// categoriesCmd represents the categories command
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List program categories",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

func runCategories(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat()
	if err != nil {
		return err
	}
	f, err := compileFilter()
	if err != nil {
		return err
	}

	categories, err := client.ListCategories(cmd.Context())
	if err != nil {
		return err
	}

	if categoryMatch != "" {
		matched := make([]areena.Category, 0, len(categories))
		for _, c := range categories {
			if fuzzy.MatchNormalizedFold(categoryMatch, c.Name) {
				matched = append(matched, c)
			}
		}
		categories = matched
	}

	categories, err = filter.Apply(f, categories)
	if err != nil {
		return err
	}
	return writeList(cmd.OutOrStdout(), format, categories, areena.Category.String)
}

// servicesCmd represents the services command
var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List broadcast and streaming services",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRaw(cmd, client.ListServices)
	},
}

// schedulesCmd represents the schedules command
var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "List broadcast schedules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRaw(cmd, client.ListSchedules)
	},
}

func runRaw(cmd *cobra.Command, list func(context.Context) ([]json.RawMessage, error)) error {
	format, err := resolveFormat()
	if err != nil {
		return err
	}
	items, err := list(cmd.Context())
	if err != nil {
		return err
	}
	return writeRaw(cmd.OutOrStdout(), format, items)
}

// searchSeriesCmd represents the search-series command
var searchSeriesCmd = &cobra.Command{
	Use:   "search-series",
	Short: "Search on-demand series by category",
	Example: `  areena search-series -c 5-136
  areena search-series -c 5-136 -i 5-258,5-259`,
	Args: cobra.NoArgs,
	RunE: runSearchSeries,
}

func runSearchSeries(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat()
	if err != nil {
		return err
	}
	f, err := compileFilter()
	if err != nil {
		return err
	}

	series, err := client.SearchSeries(cmd.Context(), areena.SeriesQuery{
		IncludeCategories: includeCategories,
		ExcludeCategories: excludeCategories,
	})
	if err != nil {
		return err
	}

	series, err = filter.Apply(f, series)
	if err != nil {
		return err
	}
	return writeList(cmd.OutOrStdout(), format, series, areena.Series.String)
}

// seasonsCmd represents the seasons command
var seasonsCmd = &cobra.Command{
	Use:   "seasons <series-id>",
	Short: "List the seasons of a series",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeasons,
}

func runSeasons(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat()
	if err != nil {
		return err
	}
	f, err := compileFilter()
	if err != nil {
		return err
	}

	seasons, err := client.ListSeasonsBySeries(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	seasons, err = filter.Apply(f, seasons)
	if err != nil {
		return err
	}
	return writeList(cmd.OutOrStdout(), format, seasons, areena.Season.String)
}

// episodesCmd represents the episodes command
var episodesCmd = &cobra.Command{
	Use:   "episodes <series-id>",
	Short: "List on-demand episodes of a series",
	Example: `  areena episodes 1-4555656
  areena episodes 1-4555656 -s 1-4553280 -f 'daysUntil(End) < 7'`,
	Args: cobra.ExactArgs(1),
	RunE: runEpisodes,
}

func runEpisodes(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat()
	if err != nil {
		return err
	}
	f, err := compileFilter()
	if err != nil {
		return err
	}

	episodes, err := client.ListEpisodesBySeries(cmd.Context(), args[0], seasonID)
	if err != nil {
		return err
	}
	episodes, err = filter.Apply(f, episodes)
	if err != nil {
		return err
	}

	if len(episodes) == 0 && format == formatText {
		fmt.Fprintln(cmd.OutOrStdout(), "No episodes found.")
		return nil
	}

	now := time.Now()
	return writeList(cmd.OutOrStdout(), format, episodes, func(e areena.Episode) string {
		return e.Text(now)
	})
}

// programCmd represents the program command
var programCmd = &cobra.Command{
	Use:   "program <program-id>",
	Short: "Show a single program",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgram,
}

func runProgram(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat()
	if err != nil {
		return err
	}

	program, err := client.GetProgramByID(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return writeOne(cmd.OutOrStdout(), format, program, program.Text(time.Now()))
}

// searchProgramsCmd represents the search-programs command
var searchProgramsCmd = &cobra.Command{
	Use:     "search-programs",
	Short:   "Search on-demand programs",
	Example: `  areena search-programs -q docventures --publisher yle-areena`,
	Args:    cobra.NoArgs,
	RunE:    runSearchPrograms,
}

func runSearchPrograms(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat()
	if err != nil {
		return err
	}
	f, err := compileFilter()
	if err != nil {
		return err
	}

	programs, err := client.SearchPrograms(cmd.Context(), programQuery)
	if err != nil {
		return err
	}

	programs, err = filter.Apply(f, programs)
	if err != nil {
		return err
	}

	now := time.Now()
	return writeList(cmd.OutOrStdout(), format, programs, func(p areena.Program) string {
		return p.Text(now)
	})
}

// compileFilter compiles --filter. No expression yields a nil filter.
func compileFilter() (filter.CompiledFilter, error) {
	if strings.TrimSpace(filterExpr) == "" {
		return nil, nil
	}
	f, err := filter.CompileFilter(filterExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return f, nil
}
