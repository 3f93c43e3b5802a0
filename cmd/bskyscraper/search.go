package main

import (
	"strings"

	"bskyscraper/pkg/bluesky"

	"github.com/spf13/cobra"
)

var (
	// Search command flags
	searchSort     string
	searchSince    string
	searchUntil    string
	searchMentions string
	searchAuthor   string
	searchLang     string
	searchDomain   string
	searchURL      string
	searchTags     []string
	searchLimit    int
	maxPages       int
	mergeResults   bool
	validateLinks  bool
	templatePath   string
	outputDir      string
	datasetFile    string
	notify         bool
	handle         string
	accountName    string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search posts with filters and save them",
	Long: `Search Bluesky posts matching a query and save them as CSV.

Every page of results is fetched by following the API cursor. A page that
fails to load ends the search and the posts gathered so far are saved.

With --merge the results are merged into the existing dataset: new posts
come first and a post link already present is kept only once. With
--validate every post link is fetched and posts that show the "no content"
page are dropped.`,
	Example: `  # Latest posts about Go
  bskyscraper search golang --sort latest

  # Posts by one author in a date range, merged into the existing file
  bskyscraper search "release" --author alice.bsky.social \
      --since 2024-01-01T00:00:00Z --until 2024-02-01T00:00:00Z --merge

  # Tagged posts, checking each link still resolves
  bskyscraper search climate --tag science --tag weather --validate

  # Stop after five pages of 100 posts
  bskyscraper search bluesky --limit 100 --max-pages 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	f := searchCmd.Flags()
	f.StringVar(&searchSort, "sort", "", "ranking order: top or latest")
	f.StringVar(&searchSince, "since", "", "only posts after this date or datetime")
	f.StringVar(&searchUntil, "until", "", "only posts before this date or datetime")
	f.StringVar(&searchMentions, "mentions", "", "only posts mentioning this handle or DID")
	f.StringVar(&searchAuthor, "author", "", "only posts by this handle or DID")
	f.StringVar(&searchLang, "lang", "", "only posts in this language")
	f.StringVar(&searchDomain, "domain", "", "only posts linking to this domain")
	f.StringVar(&searchURL, "url", "", "only posts linking to this URL")
	f.StringArrayVar(&searchTags, "tag", nil, "only posts with this hashtag (repeatable)")
	f.IntVar(&searchLimit, "limit", 0, "posts per page, 1-100 (default 25)")
	f.IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 = all)")
	f.BoolVar(&mergeResults, "merge", false, "merge into the existing dataset instead of replacing it")
	f.BoolVar(&validateLinks, "validate", false, "drop posts whose link shows the no-content page")
	f.StringVar(&templatePath, "template", "", "no-content page template used by --validate")
	f.StringVarP(&outputDir, "output", "o", "", "output directory")
	f.StringVar(&datasetFile, "file", "", "dataset file (default <output>/<query>.csv); replace keeps only its base name inside the output directory")
	f.BoolVar(&notify, "notify", false, "send a desktop notification when done")
	f.StringVar(&handle, "handle", "", "Bluesky handle to log in with")
	f.StringVarP(&accountName, "account", "a", "", "use a stored account")
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	flags := globalFlags()
	flags["output"] = outputDir
	flags["sort"] = searchSort
	flags["lang"] = searchLang
	flags["limit"] = searchLimit
	flags["max-pages"] = maxPages
	flags["merge"] = mergeResults
	flags["validate"] = validateLinks
	flags["template"] = templatePath
	flags["notify"] = notify
	flags["handle"] = handle

	return run(cmd, runOptions{
		query:   strings.TrimSpace(strings.Join(args, " ")),
		params:  searchParams(),
		flags:   flags,
		account: accountName,
		output:  datasetFile,
	})
}

// searchParams collects the filters that are not part of the configuration
func searchParams() bluesky.QueryParams {
	return bluesky.QueryParams{
		Sort:     searchSort,
		Since:    searchSince,
		Until:    searchUntil,
		Mentions: searchMentions,
		Author:   searchAuthor,
		Lang:     searchLang,
		Domain:   searchDomain,
		URL:      searchURL,
		Tags:     searchTags,
		Limit:    searchLimit,
	}
}
