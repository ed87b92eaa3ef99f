package files

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ctrlroom/database/repository/memstore"
	"ctrlroom/models"
	"ctrlroom/services/auth"
	"ctrlroom/services/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *memstore.Store
	blobs *storage.MemoryStore
	svc   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	require.NoError(t, st.Engineers().Create(context.Background(), &models.Engineer{ID: "eng-1", UserID: "u-eng", Name: "Sam"}))
	st.Bookings().Put(models.Booking{ID: "b1", ClientID: "client-1", EngineerID: "eng-1", Date: "2025-03-03",
		Interval: models.MustInterval("10:00", "12:00"), Status: models.StatusConfirmed})
	blobs := storage.NewMemoryStore()
	return &fixture{store: st, blobs: blobs, svc: NewService(st.Files(), st.Bookings(), st.Engineers(), blobs, nil)}
}

func as(userID string, role models.Role) context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{UserID: userID, Role: role})
}

func upload(session, name string) UploadInput {
	return UploadInput{SessionID: session, Name: name, ContentType: "audio/wav", Size: 4, Body: strings.NewReader("riff")}
}

func TestUploadListDelete(t *testing.T) {
	f := newFixture(t)
	client := as("client-1", models.RoleClient)

	up, err := f.svc.Upload(client, upload("b1", "vocals.wav"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.StoragePath, "sessions/b1/users/client-1/"))
	assert.True(t, f.blobs.Has(up.StoragePath))

	eng := as("u-eng", models.RoleEngineer)
	_, err = f.svc.Upload(eng, upload("b1", "mix.wav"))
	require.NoError(t, err)

	mine, err := f.svc.List(client, "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "vocals.wav", mine[0].Name)

	all, err := f.svc.List(as("admin", models.RoleAdmin), "b1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, f.svc.Delete(eng, up.ID), ErrForbidden)
	require.NoError(t, f.svc.Delete(client, up.ID))
	assert.False(t, f.blobs.Has(up.StoragePath))
	assert.ErrorIs(t, f.svc.Delete(client, up.ID), ErrNotFound)

	mine, err = f.svc.List(client, "")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestUploadRejects(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), upload("b1", "x.wav"))
	assert.ErrorIs(t, err, ErrUnauthenticated)

	client := as("client-1", models.RoleClient)
	_, err = f.svc.Upload(client, upload("", "x.wav"))
	assert.ErrorIs(t, err, ErrInvalidUpload)
	_, err = f.svc.Upload(client, upload("missing", "x.wav"))
	assert.ErrorIs(t, err, ErrInvalidUpload)

	big := upload("b1", "x.wav")
	big.Size = MaxUploadBytes + 1
	_, err = f.svc.Upload(client, big)
	assert.ErrorIs(t, err, ErrInvalidUpload)

	_, err = f.svc.Upload(as("stranger", models.RoleClient), upload("b1", "x.wav"))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUploadMetadataFailureRemovesBlob(t *testing.T) {
	f := newFixture(t)
	f.store.Fail(memstore.OpFileWrite, errors.New("mongo down"))

	_, err := f.svc.Upload(as("client-1", models.RoleClient), upload("b1", "x.wav"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.False(t, f.blobs.Has("sessions/b1/users/client-1/1-x.wav"))
}

func TestDeleteStorageFailureKeepsMetadata(t *testing.T) {
	f := newFixture(t)
	client := as("client-1", models.RoleClient)
	up, err := f.svc.Upload(client, upload("b1", "x.wav"))
	require.NoError(t, err)

	f.blobs.Err = storage.ErrStorageUnavailable
	assert.ErrorIs(t, f.svc.Delete(client, up.ID), storage.ErrStorageUnavailable)

	list, err := f.svc.List(client, "b1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
