package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/PuerkitoBio/goquery"

	"roster-scraper/adapters"
	"roster-scraper/internal/types"
	"roster-scraper/utils"
)

// inspect prints what the scraper would see on a team page: the strategy
// markers, qualifying table rows and player links. The page can be a live
// URL or a saved debug.html.
func main() {
	var (
		pageFlag = flag.String("u", "", "team page URL")
		fileFlag = flag.String("f", "", "saved page file (e.g. debug.html)")
		baseFlag = flag.String("base", "", "base URL for resolving links in a saved file")
	)
	flag.Parse()

	if *pageFlag == "" && *fileFlag == "" {
		log.Fatal("Either -u or -f flag is required")
	}

	config := types.DefaultConfig()
	logger := &debugLogger{}
	httpClient := utils.NewHTTPClient(config, logger)
	defer httpClient.Close()
	base := adapters.NewBaseAdapter(config, logger, httpClient)

	var content []byte
	var err error
	baseRaw := *baseFlag
	if *fileFlag != "" {
		content, err = os.ReadFile(*fileFlag)
	} else {
		content, err = base.GetPageContent(context.Background(), *pageFlag)
		if baseRaw == "" {
			baseRaw = *pageFlag
		}
	}
	if err != nil {
		log.Fatalf("Failed to get page: %v", err)
	}

	doc, err := base.ParseHTML(content)
	if err != nil {
		log.Fatalf("Failed to parse HTML: %v", err)
	}

	var baseURL *url.URL
	if baseRaw != "" {
		baseURL, _ = url.Parse(baseRaw)
	}

	if title, err := base.ExtractText(doc, "title"); err == nil {
		fmt.Printf("Page title: %s\n\n", title)
	}

	printStrategy(doc, baseURL)
	printTableRows(doc)
	printPlayerLinks(doc, baseURL)
}

func printStrategy(doc *goquery.Document, baseURL *url.URL) {
	fmt.Println("=== Strategy ===")
	strategy, params := adapters.SelectStrategy(doc)
	fmt.Printf("Club details container found: %v\n", adapters.FindClubDetails(doc).Length() > 0)
	fmt.Printf("  api path='%s' club='%s' competition='%s' round='%s'\n",
		params.APIPath, params.ClubID, params.CompetitionID, params.RoundID)
	fmt.Printf("Strategy: %s\n", strategy)
	if strategy == types.StrategyStructured {
		if baseURL != nil {
			apiURL, query := adapters.BuildAPIURL(baseURL, params)
			fmt.Printf("  API call: %s %v\n", apiURL, query)
		}
		return
	}
	fmt.Printf("Fallback variant: %s\n", adapters.SelectFallback(doc, baseURL))
}

func printTableRows(doc *goquery.Document) {
	fmt.Println("\n=== Table rows ===")
	fmt.Printf("Total rows found: %d\n", doc.Find("tr").Length())

	rows := adapters.ExtractTableRows(doc)
	fmt.Printf("Qualifying rows: %d\n", len(rows))
	for i, row := range rows {
		fmt.Printf("  %d: number='%s', name='%s'\n", i+1, row.JerseyNumber, row.Name)
	}
}

func printPlayerLinks(doc *goquery.Document, baseURL *url.URL) {
	fmt.Println("\n=== Player links ===")
	links := adapters.PlayerLinks(doc)
	fmt.Printf("Links with '/players/' in href: %d\n", links.Length())

	links.Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		record := adapters.ParsePlayerLinkText(adapters.JoinedText(a))
		image := adapters.FindLinkImage(a)
		if image != "" {
			image = adapters.AbsoluteURL(baseURL, image)
		}
		fmt.Printf("  %d: href='%s', name='%s', position='%s', image='%s'\n",
			i+1, href, record.Name, types.Value(record.Position), image)
	})
}

type debugLogger struct{}

func (d *debugLogger) Debug(args ...interface{})                 {}
func (d *debugLogger) Info(args ...interface{})                  { fmt.Println(args...) }
func (d *debugLogger) Warn(args ...interface{})                  { fmt.Println(args...) }
func (d *debugLogger) Error(args ...interface{})                 { fmt.Println(args...) }
func (d *debugLogger) Debugf(format string, args ...interface{}) {}
func (d *debugLogger) Infof(format string, args ...interface{})  { fmt.Printf(format+"\n", args...) }
func (d *debugLogger) Warnf(format string, args ...interface{})  { fmt.Printf(format+"\n", args...) }
func (d *debugLogger) Errorf(format string, args ...interface{}) { fmt.Printf(format+"\n", args...) }
