package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/jomei/notionapi"
)

// PageSize is the number of pages requested per database query.
const PageSize = 100

// PublishStats counts the outcome of one PublishInsights call. In dry-run
// mode Created counts the pages that would have been created.
type PublishStats struct {
	Created int
	Skipped int
	Failed  int
}

type pendingPage struct {
	key   string
	props notionapi.Properties
}

// PublishInsights creates one page per indicator and event of res. Pages
// whose Insight ID already exists in the database are skipped, so
// publishing the same analysis twice creates nothing the second time.
// Individual page failures are logged and counted; an error is returned
// when the existing pages cannot be listed or any page failed.
func PublishInsights(ctx context.Context, notionClient NotionService, notionDBID, analysisID string, res *insights.Result, dryRun bool) (PublishStats, error) {
	var stats PublishStats
	if res == nil {
		return stats, fmt.Errorf("PublishInsights: nil result")
	}
	log := logger.FromContext(ctx)

	existing, err := queryAnalysisPages(ctx, notionClient, notionDBID, analysisID)
	if err != nil {
		return stats, fmt.Errorf("PublishInsights: %w", err)
	}
	existingKeys := make(map[string]bool, len(existing))
	for _, page := range existing {
		if key := extractInsightID(page); key != "" {
			existingKeys[key] = true
		}
	}

	pages := insightPages(analysisID, res)
	log.Info().
		Int("insights", len(pages)).
		Int("existing_pages", len(existingKeys)).
		Bool("dry_run", dryRun).
		Msg("Publishing insights to Notion")

	for _, p := range pages {
		if existingKeys[p.key] {
			stats.Skipped++
			continue
		}

		if dryRun {
			log.Info().Str("insight_id", p.key).Msg("[DRY RUN] Would create Notion page")
			stats.Created++
			continue
		}

		page, err := notionClient.CreatePage(ctx, notionDBID, p.props)
		if err != nil {
			log.Warn().Err(err).Str("insight_id", p.key).Msg("Failed to create Notion page")
			stats.Failed++
			continue
		}
		log.Debug().Str("insight_id", p.key).Str("page_id", string(page.ID)).Msg("Created Notion page")
		stats.Created++
	}

	log.Info().
		Int("created", stats.Created).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Msg("Notion publish completed")

	if stats.Failed > 0 {
		return stats, fmt.Errorf("PublishInsights: %d of %d pages failed", stats.Failed, len(pages))
	}
	return stats, nil
}

// insightPages lists the pages for res in result order, numbering findings
// per kind from 1.
func insightPages(analysisID string, res *insights.Result) []pendingPage {
	ordinals := make(map[string]int)
	next := func(kind string) int {
		ordinals[kind]++
		return ordinals[kind]
	}

	pages := make([]pendingPage, 0, len(res.Indicators)+len(res.Events))
	for _, ind := range res.Indicators {
		n := next(string(ind.Kind))
		pages = append(pages, pendingPage{
			key:   domain.InsightKey(analysisID, string(ind.Kind), n),
			props: IndicatorToNotionProperties(analysisID, n, ind),
		})
	}
	for _, ev := range res.Events {
		n := next(string(ev.Kind))
		pages = append(pages, pendingPage{
			key:   domain.InsightKey(analysisID, string(ev.Kind), n),
			props: EventToNotionProperties(analysisID, n, ev),
		})
	}
	return pages
}

// ArchiveAnalysis archives every page of one analysis and returns how many
// were (or, in dry-run mode, would be) archived.
func ArchiveAnalysis(ctx context.Context, notionClient NotionService, notionDBID, analysisID string, dryRun bool) (int, error) {
	log := logger.FromContext(ctx)

	pages, err := queryAnalysisPages(ctx, notionClient, notionDBID, analysisID)
	if err != nil {
		return 0, fmt.Errorf("ArchiveAnalysis: %w", err)
	}

	var archived int
	for _, page := range pages {
		if dryRun {
			log.Info().Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive Notion page")
			archived++
			continue
		}
		if err := notionClient.ArchivePage(ctx, string(page.ID)); err != nil {
			return archived, fmt.Errorf("ArchiveAnalysis: page %s: %w", page.ID, err)
		}
		archived++
	}

	log.Info().Str("analysis_id", analysisID).Int("archived", archived).Msg("Archived Notion pages")
	return archived, nil
}

// queryAnalysisPages returns all pages of one analysis, following cursors.
func queryAnalysisPages(ctx context.Context, notionClient NotionService, databaseID, analysisID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			Filter: notionapi.PropertyFilter{
				Property: PropAnalysisID,
				RichText: &notionapi.TextFilterCondition{Equals: analysisID},
			},
			PageSize: PageSize,
		}

		// Only set StartCursor if we have a cursor value
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAnalysisPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}

// extractInsightID reads the title property of a queried page.
// Returns empty string if not found.
func extractInsightID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropInsightID]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if len(title.Title) > 0 {
				return title.Title[0].PlainText
			}
		}
	}
	return ""
}

// Sink publishes analysis results to a Notion database.
type Sink struct {
	Service    NotionService
	DatabaseID string
	DryRun     bool
}

// PublishInsights implements pipeline.InsightSink.
func (s *Sink) PublishInsights(ctx context.Context, analysisID string, res *insights.Result) error {
	_, err := PublishInsights(ctx, s.Service, s.DatabaseID, analysisID, res, s.DryRun)
	return err
}
