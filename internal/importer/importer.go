// ABOUTME: Batch import of cultural events and spaces into the store
// ABOUTME: Failed batches are logged and counted but never retried

package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harper/gachi/internal/content"
	"github.com/harper/gachi/internal/discover"
	"github.com/harper/gachi/internal/models"
	"github.com/harper/gachi/internal/opml"
	"github.com/harper/gachi/internal/parse"
	"github.com/harper/gachi/internal/storage"
	"github.com/harper/gachi/internal/timeutil"
	"github.com/sourcegraph/conc/pool"
)

// DefaultBatchSize matches the chunk size used by the open-data loaders.
const DefaultBatchSize = 100

// Summary counts the outcome of one import.
type Summary struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Errors   int `json:"errors"`
	Batches  int `json:"batches"`
}

func (s Summary) String() string {
	return fmt.Sprintf("imported %d of %d (%d errors, %d batches)", s.Imported, s.Total, s.Errors, s.Batches)
}

// Importer loads catalogue data into a store.
type Importer struct {
	store     storage.Store
	clock     timeutil.Clock
	logger    *log.Logger
	batchSize int
}

// New creates an importer. A non-positive batchSize uses DefaultBatchSize.
func New(store storage.Store, clock timeutil.Clock, logger *log.Logger, batchSize int) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{store: store, clock: clock, logger: logger, batchSize: batchSize}
}

// insertBatches writes items in chunks of size. A chunk that fails is
// logged with its 1-based number and counted as errors.
func insertBatches[T any](ctx context.Context, logger *log.Logger, kind string, size int, items []T, insert func([]T) error) (Summary, error) {
	sum := Summary{Total: len(items)}
	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		end := min(start+size, len(items))
		batch := items[start:end]
		sum.Batches++

		if err := insert(batch); err != nil {
			logger.Error("batch insert failed", "kind", kind, "batch", sum.Batches, "rows", len(batch), "err", err)
			sum.Errors += len(batch)
			continue
		}
		sum.Imported += len(batch)
	}
	return sum, nil
}

// ImportEvents loads the cultural events export at src.
func (im *Importer) ImportEvents(ctx context.Context, src string) (Summary, error) {
	rows, err := readRecords(ctx, src)
	if err != nil {
		return Summary{}, err
	}

	now := im.clock.Now()
	events := make([]*models.CulturalEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, eventFromRecord(r, now))
	}

	sum, err := insertBatches(ctx, im.logger, "events", im.batchSize, events, im.store.InsertEvents)
	im.logger.Info("events import finished", "src", src, "imported", sum.Imported, "errors", sum.Errors)
	return sum, err
}

// ImportSpaces loads the cultural spaces export at src.
func (im *Importer) ImportSpaces(ctx context.Context, src string) (Summary, error) {
	rows, err := readRecords(ctx, src)
	if err != nil {
		return Summary{}, err
	}

	now := im.clock.Now()
	spaces := make([]*models.CulturalSpace, 0, len(rows))
	for _, r := range rows {
		spaces = append(spaces, spaceFromRecord(r, now))
	}

	sum, err := insertBatches(ctx, im.logger, "spaces", im.batchSize, spaces, im.store.InsertSpaces)
	im.logger.Info("spaces import finished", "src", src, "imported", sum.Imported, "errors", sum.Errors)
	return sum, err
}

func eventFromRecord(r record, now time.Time) *models.CulturalEvent {
	e := models.NewCulturalEvent(r.str("title"), now)
	e.ProgramDescription = r.str("program")
	e.Theme = r.str("themecode")
	e.EventType = r.str("codename")
	e.Place = r.str("place")
	e.District = r.district("guname")
	e.Organization = r.str("org_name")
	e.Performers = r.str("player")
	e.TargetAudience = r.str("use_trgt")
	e.Fee = r.str("use_fee")
	e.DetailURL = r.str("hmpg_addr")
	e.EventTime = r.str("pro_time")
	e.MainImage = r.str("main_img")
	e.Longitude = r.float("lot")
	e.Latitude = r.float("lat")
	e.IsFree = r.isFree("is_free")
	e.StartDate = r.date("strtdate")
	e.EndDate = r.date("end_date")
	return e
}

func spaceFromRecord(r record, now time.Time) *models.CulturalSpace {
	s := models.NewCulturalSpace(r.str("fac_name"), now)
	s.District = r.district("gngu")
	s.Address = r.str("addr")
	s.Phone = r.str("phne")
	s.Homepage = r.str("homepage")
	s.Description = r.str("fac_desc")
	s.OpenHours = r.str("openhour")
	s.ClosedDays = r.str("closeday")
	s.IsFree = r.isFree("entrfree")
	s.EntranceFee = r.str("entr_fee")
	s.Category = r.str("subjcode")
	s.Latitude = r.float("x_coord")
	s.Longitude = r.float("y_coord")
	s.MainImage = r.str("main_img")
	return s
}

// ImportFeed discovers the programme feed behind pageURL and stores its
// items as events in district.
func (im *Importer) ImportFeed(ctx context.Context, pageURL, district string) (Summary, error) {
	found, err := discover.Discover(ctx, pageURL)
	if err != nil {
		return Summary{}, fmt.Errorf("discover feed: %w", err)
	}
	feed, err := parse.Parse(found.Body)
	if err != nil {
		return Summary{}, fmt.Errorf("parse feed: %w", err)
	}

	now := im.clock.Now()
	district = strings.TrimSpace(district)
	events := make([]*models.CulturalEvent, 0, len(feed.Items))
	for _, item := range feed.Items {
		e := models.NewCulturalEvent(item.Title, now)
		e.ProgramDescription = content.ToMarkdown(item.Description)
		e.Organization = feed.Title
		e.District = district
		e.DetailURL = item.Link
		e.MainImage = item.Image
		e.Theme = strings.Join(item.Categories, ", ")
		if item.PublishedAt != nil {
			e.StartDate = timeutil.ToLocalDateString(item.PublishedAt.In(now.Location()))
		}
		events = append(events, e)
	}

	sum, err := insertBatches(ctx, im.logger, "feed", im.batchSize, events, im.store.InsertEvents)
	im.logger.Info("feed import finished", "feed", found.URL, "imported", sum.Imported, "errors", sum.Errors)
	return sum, err
}

// ImportFeedList imports every source in turn. A source that fails is
// logged and counted as one error; the rest still run.
func (im *Importer) ImportFeedList(ctx context.Context, sources []opml.Source) (Summary, error) {
	var total Summary
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		sum, err := im.ImportFeed(ctx, src.URL, src.District)
		total.Total += sum.Total
		total.Imported += sum.Imported
		total.Errors += sum.Errors
		total.Batches += sum.Batches
		if err != nil {
			im.logger.Warn("feed import failed", "feed", src.Title, "url", src.URL, "err", err)
			total.Errors++
		}
	}
	return total, nil
}

// AllSummary holds the results of ImportAll.
type AllSummary struct {
	Events Summary `json:"events"`
	Spaces Summary `json:"spaces"`
}

// ImportAll runs the events and spaces imports concurrently. An empty
// source skips that import.
func (im *Importer) ImportAll(ctx context.Context, eventsSrc, spacesSrc string) (AllSummary, error) {
	var out AllSummary
	p := pool.New().WithMaxGoroutines(2).WithContext(ctx)

	if eventsSrc != "" {
		p.Go(func(ctx context.Context) error {
			sum, err := im.ImportEvents(ctx, eventsSrc)
			out.Events = sum
			if err != nil {
				return fmt.Errorf("import events: %w", err)
			}
			return nil
		})
	}
	if spacesSrc != "" {
		p.Go(func(ctx context.Context) error {
			sum, err := im.ImportSpaces(ctx, spacesSrc)
			out.Spaces = sum
			if err != nil {
				return fmt.Errorf("import spaces: %w", err)
			}
			return nil
		})
	}

	err := p.Wait()
	return out, err
}
