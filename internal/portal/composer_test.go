// AngelaMos | 2026
// composer_test.go

package portal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/studio-portal/internal/client"
	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/finance"
)

func composerFor(s *store) *Composer {
	return NewComposer(ComposerConfig{
		Phases:    s,
		Documents: documentStore{s},
		Messages:  s,
		Calc:      finance.NewCalculator(nil),
	})
}

func TestAccessSet_Isolation(t *testing.T) {
	s := seed()
	access := NewAccessSet(s)
	ctx := context.Background()
	a := &client.Client{ID: clientA}
	b := &client.Client{ID: clientB}

	projects, err := access.Projects(ctx, a)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, projectA, projects[0].ID)

	_, err = access.Project(ctx, a, projectB)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NotErrorIs(t, err, core.ErrForbidden)

	_, err = access.Project(ctx, b, projectA)
	assert.ErrorIs(t, err, core.ErrNotFound)

	for _, id := range []string{"", "abc", projectA + "0", "1' OR '1'='1"} {
		_, err = access.Project(ctx, a, id)
		assert.ErrorIs(t, err, core.ErrNotFound, id)
	}

	empty, err := access.Projects(ctx, &client.Client{ID: "client-c"})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCompose_AllSections(t *testing.T) {
	s := seed()
	p := s.projects[projectA]

	v := composerFor(s).Compose(context.Background(), &client.Client{ID: clientA}, &p, PartAll)

	assert.Equal(t, 30, v.Financial.PercentPaid)
	assert.Equal(t, "USD 350,000", v.Financial.Formatted.Balance)

	require.True(t, v.Progress.OK())
	assert.Equal(t, 60, v.Progress.Data.PercentComplete)
	assert.Equal(t, 4, v.Progress.Data.CurrentPhase.Order)

	require.True(t, v.Documents.OK())
	assert.Len(t, v.Documents.Data, 3, "project documents plus client-level ones")
	assert.Len(t, v.Photos().Data, 1)

	require.NotNil(t, v.UnreadCount())
	assert.Equal(t, 4, *v.UnreadCount())
}

func TestCompose_PartialFailure(t *testing.T) {
	s := seed()
	s.failPhases = errBoom
	s.panicOnMsgs = true
	p := s.projects[projectA]

	v := composerFor(s).Compose(context.Background(), &client.Client{ID: clientA}, &p, PartAll)

	assert.Equal(t, StatusUnavailable, v.Progress.Status)
	assert.True(t, v.Progress.Retryable)
	assert.Equal(t, StatusUnavailable, v.Messages.Status)
	assert.Nil(t, v.UnreadCount())

	require.True(t, v.Documents.OK(), "documents still load")
	assert.Len(t, v.Documents.Data, 3)
	assert.Equal(t, 30, v.Financial.PercentPaid)

	overview := ToOverview(v)
	assert.Nil(t, overview.Progress.Data)
	assert.Equal(t, StatusUnavailable, overview.UnreadMessages.Status)
	require.NotNil(t, overview.PhotoCount.Data)
	assert.Equal(t, 1, *overview.PhotoCount.Data)
}

func TestCompose_OnlyRequestedParts(t *testing.T) {
	s := seed()
	s.failDocs = errBoom
	p := s.projects[projectA]

	v := composerFor(s).Compose(context.Background(), &client.Client{ID: clientA}, &p, PartPhases)
	assert.True(t, v.Progress.OK())
	assert.Empty(t, v.Documents.Status, "documents were not requested")
}

func TestComposeAll(t *testing.T) {
	s := seed()
	projects, err := NewAccessSet(s).Projects(context.Background(), &client.Client{ID: clientB})
	require.NoError(t, err)

	views := composerFor(s).ComposeAll(context.Background(), &client.Client{ID: clientB}, projects, PartPhases|PartMessages)
	require.Len(t, views, 1)

	card := ToProjectCard(views[0])
	assert.Equal(t, 100, card.Financial.PercentPaid)
	assert.True(t, card.Financial.IsFullyPaid)
	require.NotNil(t, card.Progress.Data)
	assert.Equal(t, 0, card.Progress.Data.PercentComplete)
	assert.Nil(t, card.Progress.Data.CurrentPhase)
	require.NotNil(t, card.UnreadMessages.Data)
	assert.Zero(t, *card.UnreadMessages.Data)
}
