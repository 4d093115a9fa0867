package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pseudoincorrect/quickfind/internal/config"
	"github.com/pseudoincorrect/quickfind/internal/search"
	"github.com/pseudoincorrect/quickfind/internal/textutil"
)

// displayWidth caps match lines so a single long minified line cannot flood
// the terminal.
const displayWidth = 160

var contextFlag int

var textCmd = &cobra.Command{
	Use:   "text PATTERN [ROOT]",
	Short: "Scan file contents for a pattern",
	Long: `Scan file contents line by line. PATTERN is a regular expression;
a pattern that fails to compile is searched for literally. Matching is
case-insensitive unless the pattern contains an uppercase letter or
--case-sensitive is set.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runText,
}

func init() {
	f := textCmd.Flags()
	f.Bool("case-sensitive", viper.GetBool("search.case_sensitive"), "match case exactly")
	f.Bool("word", viper.GetBool("search.whole_word"), "match whole words only")
	f.IntVarP(&contextFlag, "context", "C", 0, "print this many context lines around each match")
	bindFlagToConfig(f.Lookup("case-sensitive"), "search.case_sensitive")
	bindFlagToConfig(f.Lookup("word"), "search.whole_word")
}

func runText(cmd *cobra.Command, args []string) error {
	settings := config.Load()
	if contextFlag > 0 {
		settings.Session.ContextSize = contextFlag
	}

	sess := search.NewSession(resolveRoot(args), settings.Session)
	rs, err := sess.Search(cmd.Context(), args[0], search.ModeText, settings.Options)
	if err != nil {
		return err
	}

	for _, m := range rs.Matches[:rs.Displayed] {
		fmt.Printf("%s:%d:%d: %s\n", m.Path, m.Line, m.Column,
			textutil.TruncateDisplay(m.Text, displayWidth))
		if contextFlag > 0 {
			printContext(sess, m)
		}
	}
	printFooter(rs)
	return nil
}

func printContext(sess *search.Session, m search.MatchResult) {
	lines, err := sess.LoadContext(m.ID, contextFlag)
	if err != nil {
		return
	}
	for _, l := range lines {
		fmt.Printf("    %s\n", textutil.TruncateDisplay(l, displayWidth))
	}
}

func printFooter(rs *search.ResultSet) {
	if rs.Len() > rs.Displayed {
		fmt.Printf("%s results (%d shown)\n", rs.DisplayCount(), rs.Displayed)
		return
	}
	fmt.Printf("%s results\n", rs.DisplayCount())
}
