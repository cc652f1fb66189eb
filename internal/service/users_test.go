package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"blog-service/internal/models"
	"blog-service/internal/storage"
)

func TestProfile_OK(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{ID: uuid.New(), Name: "Alice", Role: models.RoleReader}
	m.users.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)

	got, err := svc.Profile(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user, got)
}

func TestProfile_Errors(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.Profile(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	id := uuid.New()
	m.users.EXPECT().UserByID(gomock.Any(), id).Return(nil, storage.ErrNotFound)

	_, err = svc.Profile(context.Background(), id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListUsers_Pagination(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	m.users.EXPECT().ListUsers(gomock.Any(), int64(1), int64(10)).
		Return([]models.User{{ID: uuid.New()}}, int64(25), nil)

	page, err := svc.ListUsers(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Page)
	require.Equal(t, int64(3), page.TotalPages)
	require.Equal(t, int64(25), page.Total)
	require.Len(t, page.Items, 1)
}

func TestAvatarFlow_Disabled(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	p := testPrincipal(models.RoleReader)

	_, err := svc.AvatarUploadURL(context.Background(), p, "image/png", 1024)
	require.ErrorIs(t, err, ErrAvatarsDisabled)

	_, err = svc.ConfirmAvatar(context.Background(), p, "avatars/x/y.png")
	require.ErrorIs(t, err, ErrAvatarsDisabled)
}

func TestAvatarUploadURL_OK(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	svc.SetAvatarsStorage(m.avatars)
	p := testPrincipal(models.RoleReader)

	m.avatars.EXPECT().AvatarUploadURL(gomock.Any(), p.ID, "image/png", int64(1024)).
		Return(&storage.UploadInfo{
			UploadURL: "https://s3.local/upload",
			AvatarKey: "avatars/" + p.ID.String() + "/a.png",
			Expires:   10 * time.Minute,
		}, nil)

	info, err := svc.AvatarUploadURL(context.Background(), p, "image/png", 1024)
	require.NoError(t, err)
	require.Contains(t, info.AvatarKey, p.ID.String())
}

func TestAvatarUploadURL_InvalidArgument(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	svc.SetAvatarsStorage(m.avatars)
	p := testPrincipal(models.RoleReader)

	m.avatars.EXPECT().AvatarUploadURL(gomock.Any(), p.ID, "text/html", int64(1)).
		Return(nil, storage.ErrInvalidArgument)

	_, err := svc.AvatarUploadURL(context.Background(), p, "text/html", 1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestConfirmAvatar_OK(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	svc.SetAvatarsStorage(m.avatars)
	p := testPrincipal(models.RoleReader)
	key := "avatars/" + p.ID.String() + "/a.png"
	url := "https://cdn.local/" + key

	m.avatars.EXPECT().CheckAvatarUpload(gomock.Any(), p.ID, key).Return(url, nil)
	m.users.EXPECT().UpdateAvatar(gomock.Any(), p.ID, key, url).Return(nil)
	m.users.EXPECT().UserByID(gomock.Any(), p.ID).
		Return(&models.User{ID: p.ID, AvatarKey: key, AvatarURL: url}, nil)

	user, err := svc.ConfirmAvatar(context.Background(), p, key)
	require.NoError(t, err)
	require.Equal(t, url, user.AvatarURL)
}

func TestConfirmAvatar_ObjectMissing(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	svc.SetAvatarsStorage(m.avatars)
	p := testPrincipal(models.RoleReader)

	m.avatars.EXPECT().CheckAvatarUpload(gomock.Any(), p.ID, "avatars/none").
		Return("", storage.ErrNotFound)

	_, err := svc.ConfirmAvatar(context.Background(), p, "avatars/none")
	require.ErrorIs(t, err, ErrNotFound)
}
