package notion

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleSummary() RunSummary {
	f := 6
	return RunSummary{
		RunID:      "run-42",
		Company:    "Acme Mills Ltd",
		Years:      []string{"202303", "202403"},
		RowCount:   120,
		Mapped:     140,
		Derived:    16,
		Fallback:   4,
		Unresolved: 2,
		Coverage:   0.975,
		AltmanZone: "safe",
		Piotroski:  &f,
		CreatedAt:  time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildRunProperties(t *testing.T) {
	props := BuildRunProperties(sampleSummary())

	title, ok := props["Company"].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "Acme Mills Ltd", title.Title[0].Text.Content)

	runID, ok := props["Run ID"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "run-42", runID.RichText[0].Text.Content)

	years, ok := props["Years"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "202303, 202403", years.RichText[0].Text.Content)

	assert.Equal(t, float64(140), props["Mapped"].(notionapi.NumberProperty).Number)
	assert.Equal(t, float64(16), props["Derived"].(notionapi.NumberProperty).Number)
	assert.Equal(t, float64(4), props["Fallback"].(notionapi.NumberProperty).Number)
	assert.Equal(t, float64(2), props["Unresolved"].(notionapi.NumberProperty).Number)
	assert.Equal(t, 0.975, props["Coverage"].(notionapi.NumberProperty).Number)

	zone, ok := props["Altman Zone"].(notionapi.SelectProperty)
	require.True(t, ok)
	assert.Equal(t, "safe", zone.Select.Name)

	assert.Equal(t, float64(6), props["Piotroski F"].(notionapi.NumberProperty).Number)
	assert.Contains(t, props, "Analyzed At")
}

func TestBuildRunProperties_OmitsOptionalFields(t *testing.T) {
	s := sampleSummary()
	s.AltmanZone = ""
	s.Piotroski = nil
	s.CreatedAt = time.Time{}

	props := BuildRunProperties(s)
	assert.NotContains(t, props, "Altman Zone")
	assert.NotContains(t, props, "Piotroski F")
	assert.NotContains(t, props, "Analyzed At")
}

func TestPublishRun_CreatesPage(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("CreatePage", ctx, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		if req.Parent.DatabaseID != notionapi.DatabaseID("db-runs") {
			return false
		}
		title, ok := req.Properties["Company"].(notionapi.TitleProperty)
		return ok && title.Title[0].Text.Content == "Acme Mills Ltd"
	})).Return(&notionapi.Page{ID: "page-new"}, nil).Once()

	pageID, created, err := PublishRun(ctx, mc, "db-runs", "", sampleSummary())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "page-new", pageID)
	mc.AssertExpectations(t)
}

func TestPublishRun_UpdatesExistingPage(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("UpdatePage", ctx, "page-old", mock.MatchedBy(func(req *notionapi.PageUpdateRequest) bool {
		runID, ok := req.Properties["Run ID"].(notionapi.RichTextProperty)
		return ok && runID.RichText[0].Text.Content == "run-42"
	})).Return(&notionapi.Page{ID: "page-old"}, nil).Once()

	pageID, created, err := PublishRun(ctx, mc, "db-runs", "page-old", sampleSummary())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "page-old", pageID)
	mc.AssertExpectations(t)
}

func TestPublishRun_CreateError(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("CreatePage", ctx, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Return(nil, assert.AnError).Once()

	_, _, err := PublishRun(ctx, mc, "db-runs", "", sampleSummary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion: publish run run-42")
	mc.AssertExpectations(t)
}
