package drawings_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/varix-web/drawings"
	"github.com/jrsteele09/varix-web/drawings/repofake"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/stretchr/testify/require"
)

const testUserID = "7f1c6a2e-1111-4a4a-9b9b-000000000001"

var fixedNow = time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC)

type testFixture struct {
	repo    *repofake.FakeRepo
	store   *repofake.FakeStore
	service *drawings.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	repo := repofake.NewFakeRepo()
	store := repofake.NewFakeStore()
	return &testFixture{
		repo:    repo,
		store:   store,
		service: drawings.NewService(repo, store, drawings.WithClock(func() time.Time { return fixedNow })),
	}
}

func upload(name string, size int64, body string) drawings.Upload {
	return drawings.Upload{
		Name: name,
		Size: size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func TestHelpers(t *testing.T) {
	t.Run("allowed extensions", func(t *testing.T) {
		for _, name := range []string{"a.pdf", "B.PNG", "c.jpg", "d.JpEg"} {
			require.True(t, drawings.IsAllowed(name), name)
		}
		for _, name := range []string{"a.gif", "pdf", "a.pdf.exe", ""} {
			require.False(t, drawings.IsAllowed(name), name)
		}
	})

	t.Run("sanitize", func(t *testing.T) {
		require.Equal(t, "Level_2_plan__rev_B_.pdf", drawings.SanitizeName("Level 2 plan (rev B).pdf"))
		require.Equal(t, "a-b_c.d", drawings.SanitizeName("a-b_c.d"))
		require.Equal(t, "caf_.png", drawings.SanitizeName("café.png"))
	})

	t.Run("storage path", func(t *testing.T) {
		local := fixedNow.In(time.FixedZone("AEST", 10*60*60))
		require.Equal(t,
			testUserID+"/2025-03/1741563000000_plan_A.pdf",
			drawings.StoragePath(testUserID, "plan A.pdf", local))
	})

	t.Run("sizes", func(t *testing.T) {
		require.Equal(t, "512 B", drawings.FormatSize(512))
		require.Equal(t, "1.0 KB", drawings.FormatSize(1024))
		require.Equal(t, "1.5 KB", drawings.FormatSize(1536))
		require.Equal(t, "50.0 MB", drawings.FormatSize(drawings.MaxFileSize))
	})

	t.Run("date", func(t *testing.T) {
		require.Equal(t, "9 Mar 2025", drawings.FormatDate(fixedNow))
		require.Empty(t, drawings.FormatDate(time.Time{}))
	})

	t.Run("content type", func(t *testing.T) {
		require.Equal(t, "application/pdf", drawings.ContentType("a.PDF", ""))
		require.Equal(t, "image/jpeg", drawings.ContentType("a.jpeg", "application/octet-stream"))
		require.Equal(t, "image/png", drawings.ContentType("a.jpg", "image/png"))
	})
}

func TestCheckBatch(t *testing.T) {
	t.Run("only wrong types", func(t *testing.T) {
		_, err := drawings.CheckBatch([]drawings.Upload{upload("a.gif", 1, ""), upload("b.txt", 1, "")})
		require.ErrorIs(t, err, apperrors.ErrInvalidFileType)
		require.Equal(t, drawings.MsgInvalidType, err.Error())
	})

	t.Run("wrong types are dropped", func(t *testing.T) {
		valid, err := drawings.CheckBatch([]drawings.Upload{upload("a.gif", 1, ""), upload("b.pdf", 1, "")})
		require.NoError(t, err)
		require.Len(t, valid, 1)
		require.Equal(t, "b.pdf", valid[0].Name)
	})

	t.Run("oversize aborts the batch", func(t *testing.T) {
		_, err := drawings.CheckBatch([]drawings.Upload{
			upload("ok.pdf", 10, ""),
			upload("big.pdf", drawings.MaxFileSize+1, ""),
			upload("huge.png", drawings.MaxFileSize*2, ""),
		})
		require.ErrorIs(t, err, apperrors.ErrFileTooLarge)
		require.Equal(t, "Files exceed 50MB limit: big.pdf, huge.png", err.Error())
	})

	t.Run("exactly the limit is fine", func(t *testing.T) {
		_, err := drawings.CheckBatch([]drawings.Upload{upload("edge.pdf", drawings.MaxFileSize, "")})
		require.NoError(t, err)
	})
}

func TestService(t *testing.T) {
	ctx := context.Background()

	t.Run("upload stores object and record", func(t *testing.T) {
		fx := setupTestFixture(t)

		res, err := fx.service.UploadBatch(ctx, testUserID, []drawings.Upload{upload("plan.pdf", 4, "%PDF")})
		require.NoError(t, err)
		require.Empty(t, res.Errors)
		require.Len(t, res.Uploaded, 1)

		rec := res.Uploaded[0]
		require.NotEmpty(t, rec.ID)
		require.Equal(t, "application/pdf", rec.MimeType)
		body, ok := fx.store.Object(rec.StoragePath)
		require.True(t, ok)
		require.Equal(t, "%PDF", string(body))
	})

	t.Run("failed file does not stop the batch", func(t *testing.T) {
		fx := setupTestFixture(t)
		bad := drawings.Upload{Name: "bad.png", Size: 1, Open: func() (io.ReadCloser, error) {
			return nil, errors.New("disk gone")
		}}

		res, err := fx.service.UploadBatch(ctx, testUserID, []drawings.Upload{bad, upload("good.png", 1, "x")})
		require.NoError(t, err)
		require.Equal(t, []string{"Failed to upload bad.png: disk gone"}, res.Errors)
		require.Len(t, res.Uploaded, 1)
	})

	t.Run("existing object is an error", func(t *testing.T) {
		fx := setupTestFixture(t)
		files := []drawings.Upload{upload("same.pdf", 1, "a"), upload("same.pdf", 1, "b")}

		res, err := fx.service.UploadBatch(ctx, testUserID, files)
		require.NoError(t, err)
		require.Len(t, res.Uploaded, 1)
		require.Len(t, res.Errors, 1)
		body, _ := fx.store.Object(res.Uploaded[0].StoragePath)
		require.Equal(t, "a", string(body))
	})

	t.Run("insert failure removes the object", func(t *testing.T) {
		fx := setupTestFixture(t)
		fx.repo.InsertErr = errors.New("new row violates row-level security policy")

		res, err := fx.service.UploadBatch(ctx, testUserID, []drawings.Upload{upload("plan.pdf", 1, "x")})
		require.NoError(t, err)
		require.Equal(t, []string{"Failed to upload plan.pdf: new row violates row-level security policy"}, res.Errors)
		require.Zero(t, fx.store.Len())
	})

	t.Run("list is newest first and scoped", func(t *testing.T) {
		fx := setupTestFixture(t)
		fx.repo.Seed(drawings.File{ID: "old", UserID: testUserID, CreatedAt: fixedNow.Add(-time.Hour)})
		fx.repo.Seed(drawings.File{ID: "new", UserID: testUserID, CreatedAt: fixedNow})
		fx.repo.Seed(drawings.File{ID: "other", UserID: "someone-else", CreatedAt: fixedNow})

		files, err := fx.service.List(ctx, testUserID)
		require.NoError(t, err)
		require.Len(t, files, 2)
		require.Equal(t, "new", files[0].ID)
	})

	t.Run("list failure message", func(t *testing.T) {
		fx := setupTestFixture(t)
		fx.repo.ListErr = errors.New("timeout")

		_, err := fx.service.List(ctx, testUserID)
		require.EqualError(t, err, drawings.MsgListFailed)
	})

	t.Run("view", func(t *testing.T) {
		fx := setupTestFixture(t)
		fx.repo.Seed(drawings.File{ID: "f1", UserID: testUserID, StoragePath: "p/1.pdf"})

		u, err := fx.service.ViewURL(ctx, testUserID, "f1")
		require.NoError(t, err)
		require.Equal(t, "https://storage.example.com/signed/p/1.pdf", u)

		_, err = fx.service.ViewURL(ctx, "someone-else", "f1")
		require.ErrorIs(t, err, apperrors.ErrNotFound)

		fx.store.SignedBase = ""
		_, err = fx.service.ViewURL(ctx, testUserID, "f1")
		require.EqualError(t, err, drawings.MsgNoSignedURL)

		fx.store.SignErr = errors.New("Object not found")
		_, err = fx.service.ViewURL(ctx, testUserID, "f1")
		require.EqualError(t, err, "Object not found")
	})

	t.Run("delete removes object then row", func(t *testing.T) {
		fx := setupTestFixture(t)
		res, err := fx.service.UploadBatch(ctx, testUserID, []drawings.Upload{upload("plan.pdf", 1, "x")})
		require.NoError(t, err)
		id := res.Uploaded[0].ID

		require.NoError(t, fx.service.Delete(ctx, testUserID, id))
		require.Zero(t, fx.store.Len())
		require.Zero(t, fx.repo.Len())
	})

	t.Run("delete failures", func(t *testing.T) {
		fx := setupTestFixture(t)
		fx.repo.Seed(drawings.File{ID: "f1", UserID: testUserID, StoragePath: "p/1.pdf"})

		fx.store.RemoveErr = errors.New("boom")
		require.EqualError(t, fx.service.Delete(ctx, testUserID, "f1"), drawings.MsgDeleteFailed)
		require.Equal(t, 1, fx.repo.Len())

		fx.store.RemoveErr = nil
		fx.repo.DeleteErr = errors.New("boom")
		require.EqualError(t, fx.service.Delete(ctx, testUserID, "f1"), drawings.MsgDeleteRowFailed)

		require.EqualError(t, fx.service.Delete(ctx, "someone-else", "f1"), drawings.MsgDeleteFailed)
	})
}

type countingObserver struct {
	outcomes []string
	bytes    int64
}

func (c *countingObserver) Upload(outcome string, bytes int64) {
	c.outcomes = append(c.outcomes, outcome)
	c.bytes += bytes
}

func TestServiceObserver(t *testing.T) {
	obs := &countingObserver{}
	repo := repofake.NewFakeRepo()
	store := repofake.NewFakeStore()
	svc := drawings.NewService(repo, store, drawings.WithObserver(obs))

	store.PutErr = errors.New("nope")
	_, err := svc.UploadOne(context.Background(), testUserID, upload("a.pdf", 3, "abc"))
	require.Error(t, err)

	store.PutErr = nil
	_, err = svc.UploadOne(context.Background(), testUserID, upload("b.pdf", 3, "abc"))
	require.NoError(t, err)

	require.Equal(t, []string{"error", "success"}, obs.outcomes)
	require.Equal(t, int64(3), obs.bytes)
}
