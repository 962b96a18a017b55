package notion

import (
	"context"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// RunSummary is the flattened view of an analysis run published to the run
// database. Provenance counts cover every (target, year) cell the run
// resolved; AltmanZone and Piotroski are optional and omitted when the run
// was published without re-running the analysis.
type RunSummary struct {
	RunID      string
	Company    string
	Years      []string
	RowCount   int
	Mapped     int
	Derived    int
	Fallback   int
	Unresolved int
	Coverage   float64
	AltmanZone string
	Piotroski  *int
	CreatedAt  time.Time
}

// BuildRunProperties converts a RunSummary to Notion page properties. The
// run database's schema: Company title, Run ID rich_text, Years rich_text,
// numeric provenance counts, Coverage number, optional Altman Zone select
// and Piotroski F number, Analyzed At date.
func BuildRunProperties(s RunSummary) notionapi.Properties {
	props := notionapi.Properties{
		"Company": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s.Company}},
			},
		},
		"Run ID": notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s.RunID}},
			},
		},
		"Years": notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: strings.Join(s.Years, ", ")}},
			},
		},
		"Rows":       numberProperty(float64(s.RowCount)),
		"Mapped":     numberProperty(float64(s.Mapped)),
		"Derived":    numberProperty(float64(s.Derived)),
		"Fallback":   numberProperty(float64(s.Fallback)),
		"Unresolved": numberProperty(float64(s.Unresolved)),
		"Coverage":   numberProperty(s.Coverage),
	}

	if s.AltmanZone != "" {
		props["Altman Zone"] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: s.AltmanZone},
		}
	}
	if s.Piotroski != nil {
		props["Piotroski F"] = numberProperty(float64(*s.Piotroski))
	}
	if !s.CreatedAt.IsZero() {
		start := notionapi.Date(s.CreatedAt)
		props["Analyzed At"] = notionapi.DateProperty{
			Type: notionapi.PropertyTypeDate,
			Date: &notionapi.DateObject{Start: &start},
		}
	}

	return props
}

func numberProperty(v float64) notionapi.NumberProperty {
	return notionapi.NumberProperty{
		Type:   notionapi.PropertyTypeNumber,
		Number: v,
	}
}

// PublishRun writes a run summary to the run database. When existingPageID
// is non-empty the page is updated in place; otherwise a new page is
// created. Returns the page ID and whether a page was created.
func PublishRun(ctx context.Context, c Client, dbID, existingPageID string, s RunSummary) (string, bool, error) {
	props := BuildRunProperties(s)

	if existingPageID != "" {
		page, err := c.UpdatePage(ctx, existingPageID, &notionapi.PageUpdateRequest{
			Properties: props,
		})
		if err != nil {
			return "", false, eris.Wrapf(err, "notion: publish run %s", s.RunID)
		}
		zap.L().Info("updated run page",
			zap.String("run_id", s.RunID),
			zap.String("company", s.Company),
			zap.String("page_id", string(page.ID)),
		)
		return string(page.ID), false, nil
	}

	page, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(dbID),
		},
		Properties: props,
	})
	if err != nil {
		return "", false, eris.Wrapf(err, "notion: publish run %s", s.RunID)
	}
	zap.L().Info("created run page",
		zap.String("run_id", s.RunID),
		zap.String("company", s.Company),
		zap.String("page_id", string(page.ID)),
	)
	return string(page.ID), true, nil
}
