package shell

import (
	"context"
	"errors"
	"testing"

	"github.com/Joseda-hg/lazyjobs/internal/board"
	"github.com/Joseda-hg/lazyjobs/internal/db"
	"github.com/Joseda-hg/lazyjobs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	apps    []model.Application
	listErr error
	patches []model.ApplicationPatch
	stats   *model.Stats
	nextID  int64
}

func (f *fakeAPI) ListApplications(context.Context) ([]model.Application, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Application, len(f.apps))
	copy(out, f.apps)
	return out, nil
}

func (f *fakeAPI) CreateApplication(_ context.Context, input model.ApplicationInput) (model.Application, error) {
	f.nextID++
	app := model.Application{ID: 100 + f.nextID, Company: input.Company, Position: input.Position, Status: input.Status}
	f.apps = append(f.apps, app)
	return app, nil
}

func (f *fakeAPI) UpdateApplication(_ context.Context, id int64, patch model.ApplicationPatch) (model.Application, error) {
	f.patches = append(f.patches, patch)
	for i := range f.apps {
		if f.apps[i].ID != id {
			continue
		}
		if patch.Status != nil {
			f.apps[i].Status = *patch.Status
		}
		if patch.Notes != nil {
			f.apps[i].Notes = *patch.Notes
		}
		return f.apps[i], nil
	}
	return model.Application{}, errors.New("not found")
}

func (f *fakeAPI) DeleteApplication(_ context.Context, id int64) error {
	for i := range f.apps {
		if f.apps[i].ID == id {
			f.apps = append(f.apps[:i], f.apps[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeAPI) ToggleFavorite(_ context.Context, id int64) (model.Application, error) {
	for i := range f.apps {
		if f.apps[i].ID == id {
			f.apps[i].IsFavorite = !f.apps[i].IsFavorite
			return f.apps[i], nil
		}
	}
	return model.Application{}, errors.New("not found")
}

func (f *fakeAPI) Stats(context.Context) (model.Stats, error) {
	if f.stats == nil {
		return model.Stats{}, errors.New("stats unavailable")
	}
	return *f.stats, nil
}

func seed() *fakeAPI {
	return &fakeAPI{apps: []model.Application{
		{ID: 1, Company: "Acme", Position: "Engineer", Status: model.StatusApplied},
		{ID: 2, Company: "Beta", Position: "Designer", Status: model.StatusInterview},
		{ID: 3, Company: "Gamma", Position: "Analyst", Status: model.Status("Ghosted")},
	}}
}

func newTestShell(t *testing.T, api *fakeAPI) (*Shell, *db.Store) {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	store := db.NewStore(conn)
	s := New(api, store)
	require.NoError(t, s.Refresh(context.Background()))
	return s, store
}

func TestRefreshSavesSnapshotAndHidesUnknownStatus(t *testing.T) {
	s, store := newTestShell(t, seed())

	cached, err := store.ListApplications(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 3)

	result := s.Projection()
	assert.Equal(t, 3, result.TotalCount)
	assert.Len(t, result.Rows, 3)
	require.Len(t, result.Unrecognized, 1)
	assert.Equal(t, int64(3), result.Unrecognized[0].ID)
	assert.False(t, s.Offline())
}

func TestRefreshFailureKeepsCachedRecords(t *testing.T) {
	api := seed()
	s, _ := newTestShell(t, api)

	api.listErr = errors.New("connection refused")
	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, s.Offline())
	assert.Len(t, s.Records(), 3)

	fresh := New(api, nil)
	require.NoError(t, fresh.LoadCached(context.Background()))
	assert.Empty(t, fresh.Records())
}

func TestDragGestureForwardsStatusChange(t *testing.T) {
	api := seed()
	s, store := newTestShell(t, api)
	ctx := context.Background()

	s.DragStart(1)
	active, ok := s.Dragging()
	require.True(t, ok)
	assert.Equal(t, int64(1), active)

	intent := s.DragEnd(1, string(model.StatusOffer))
	assert.Equal(t, board.StatusChange, intent.Kind)
	require.NoError(t, s.Apply(ctx, intent))

	require.Len(t, api.patches, 1)
	require.NotNil(t, api.patches[0].Status)
	assert.Equal(t, model.StatusOffer, *api.patches[0].Status)
	assert.Nil(t, api.patches[0].Company)

	record, ok := s.Find(1)
	require.True(t, ok)
	assert.Equal(t, model.StatusOffer, record.Status)

	history, err := s.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, db.EventStatus, history[0].EventType)

	cached, err := store.ListApplications(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOffer, cached[0].Status)
}

func TestNoOpGesturesDoNotCallAPI(t *testing.T) {
	api := seed()
	s, _ := newTestShell(t, api)
	ctx := context.Background()

	s.DragStart(2)
	require.NoError(t, s.Apply(ctx, s.DragEnd(2, string(model.StatusInterview))))
	s.DragStart(2)
	require.NoError(t, s.Apply(ctx, s.DragEnd(2, "1")))
	s.DragStart(2)
	require.NoError(t, s.Apply(ctx, s.DragCancel()))

	_, ok := s.Dragging()
	assert.False(t, ok)
	assert.Empty(t, api.patches)
}

func TestDropRunsFullGesture(t *testing.T) {
	api := seed()
	s, _ := newTestShell(t, api)

	s.DragStart(2)
	intent, err := s.Drop(context.Background(), 1, string(model.StatusRejected))
	require.NoError(t, err)
	assert.Equal(t, model.StatusApplied, intent.From)
	assert.Equal(t, model.StatusRejected, intent.To)

	active, ok := s.Dragging()
	require.True(t, ok)
	assert.Equal(t, int64(2), active)

	intent, err = s.Drop(context.Background(), 99, string(model.StatusOffer))
	require.NoError(t, err)
	assert.True(t, intent.IsNoOp())
}

func TestControls(t *testing.T) {
	s, _ := newTestShell(t, seed())

	assert.Equal(t, model.DefaultControls(), s.Controls())

	assert.Equal(t, string(model.StatusApplied), s.CycleStatusFilter())
	assert.Equal(t, string(model.StatusPhoneScreen), s.CycleStatusFilter())
	require.NoError(t, s.SetStatusFilter(string(model.StatusRejected)))
	assert.Equal(t, model.FilterAll, s.CycleStatusFilter())
	assert.Error(t, s.SetStatusFilter("Ghosted"))

	controls := s.SortBy(model.SortCompany)
	assert.Equal(t, model.SortAsc, controls.SortDirection)
	controls = s.SortBy(model.SortCompany)
	assert.Equal(t, model.SortDesc, controls.SortDirection)

	s.SetSearch("ACME")
	require.NoError(t, s.SetStatusFilter(string(model.StatusApplied)))
	assert.Len(t, s.Projection().Rows, 1)

	s.ClearFilters()
	controls = s.Controls()
	assert.Equal(t, "", controls.SearchTerm)
	assert.Equal(t, model.FilterAll, controls.StatusFilter)
	assert.Equal(t, model.SortCompany, controls.SortField)
}

func TestCreateUpdateDeleteRecordHistory(t *testing.T) {
	api := seed()
	s, _ := newTestShell(t, api)
	ctx := context.Background()

	created, err := s.Create(ctx, model.ApplicationInput{Company: "Delta", Position: "PM", Status: model.StatusApplied})
	require.NoError(t, err)
	_, ok := s.Find(created.ID)
	assert.True(t, ok)

	notes := "referral"
	_, err = s.Update(ctx, created.ID, model.ApplicationPatch{Notes: &notes})
	require.NoError(t, err)

	favorite, err := s.ToggleFavorite(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, favorite.IsFavorite)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, ok = s.Find(created.ID)
	assert.False(t, ok)

	history, err := s.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, db.EventDeleted, history[0].EventType)
	assert.Equal(t, db.EventFavorite, history[1].EventType)
	assert.Equal(t, db.EventUpdated, history[2].EventType)
	assert.Equal(t, db.EventCreated, history[3].EventType)
}

func TestStatsFallsBackToLocalSummary(t *testing.T) {
	api := seed()
	s, _ := newTestShell(t, api)

	stats := s.Stats(context.Background())
	assert.Equal(t, 3, stats.TotalApplications)
	assert.Equal(t, 66.7, stats.ResponseRate)

	api.stats = &model.Stats{TotalApplications: 10, ByStatus: map[string]int{}}
	assert.Equal(t, 10, s.Stats(context.Background()).TotalApplications)
}
