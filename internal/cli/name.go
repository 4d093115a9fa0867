package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pseudoincorrect/quickfind/internal/config"
	"github.com/pseudoincorrect/quickfind/internal/search"
	"github.com/pseudoincorrect/quickfind/internal/textutil"
)

var nameCmd = &cobra.Command{
	Use:   "name [QUERY] [ROOT]",
	Short: "Rank files fuzzily by name and path",
	Long: `Rank files by how well their name and relative path match QUERY.
Exact substrings score highest, then tight consecutive matches, then
abbreviation-style matches like "ErrInv" for ErrorInvalidInput.ts.
An empty query lists every file under the root.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runName,
}

func runName(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	settings := config.Load()
	sess := search.NewSession(resolveRoot(args), settings.Session)
	rs, err := sess.Search(cmd.Context(), query, search.ModeName, settings.Options)
	if err != nil {
		return err
	}

	for _, sc := range rs.Scored[:rs.Displayed] {
		fmt.Println(textutil.TruncateDisplay(sc.RelPath, displayWidth))
	}
	printFooter(rs)
	return nil
}
