package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/jrsteele09/varix-web/internal/utils"
	"github.com/jrsteele09/varix-web/sessions"
	"github.com/stretchr/testify/require"
)

var _ userAdmin = (*fakeAdmin)(nil)

type fakeAdmin struct {
	users     []sessions.User
	listErr   error
	failIDs   map[string]bool
	deletedID []string
}

func (f *fakeAdmin) ListUsers(ctx context.Context) ([]sessions.User, error) {
	return f.users, f.listErr
}

func (f *fakeAdmin) DeleteUser(ctx context.Context, id string) error {
	if f.failIDs[id] {
		return apperrors.ErrForbidden
	}
	f.deletedID = append(f.deletedID, id)
	return nil
}

type testFixture struct {
	admin  *fakeAdmin
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	confirmed := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	return &testFixture{
		admin: &fakeAdmin{
			users: []sessions.User{
				{ID: "0a1b2c3d-4e5f-6789-abcd-ef0123456789", Email: "alice@example.com", CreatedAt: confirmed, EmailConfirmedAt: utils.Ptr(confirmed)},
				{ID: "ffffeeee-dddd-cccc-bbbb-aaaa99998888", CreatedAt: confirmed},
			},
			failIDs: map[string]bool{},
		},
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}
}

func (f *testFixture) run(stdin string, args ...string) error {
	a := &app{
		in:     strings.NewReader(stdin),
		out:    f.out,
		errOut: f.errOut,
		connect: func() (userAdmin, error) {
			return f.admin, nil
		},
	}
	cmd := a.rootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestUsersList(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.run("", "users", "list"))

	out := f.out.String()
	require.Contains(t, out, "Found 2 user(s)")
	require.Contains(t, out, "1. alice@example.com (ID: 0a1b2c3d...)")
	require.Contains(t, out, "2. No email (ID: ffffeeee...)")
	require.Contains(t, out, "Created: 2 Jan 2025")
	require.Contains(t, out, "Confirmed: Yes")
	require.Contains(t, out, "Confirmed: No")
	require.Empty(t, f.admin.deletedID)
}

func TestUsersClear(t *testing.T) {
	t.Run("no users", func(t *testing.T) {
		f := setupTestFixture(t)
		f.admin.users = nil
		require.NoError(t, f.run("", "users", "clear"))
		require.Contains(t, f.out.String(), "No users found. Database is already clean.")
	})

	t.Run("aborted", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.run("delete\n", "users", "clear"))
		require.Contains(t, f.out.String(), `Type "DELETE" to confirm:`)
		require.Contains(t, f.out.String(), "Aborted. No users were deleted.")
		require.Empty(t, f.admin.deletedID)
	})

	t.Run("confirmed", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.run("DELETE\n", "users", "clear"))
		require.Len(t, f.admin.deletedID, 2)
		require.Contains(t, f.out.String(), "Deleted: 2 user(s)")
	})

	t.Run("yes skips the prompt", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.run("", "users", "clear", "--yes"))
		require.NotContains(t, f.out.String(), "to confirm")
		require.Len(t, f.admin.deletedID, 2)
	})

	t.Run("partial failure", func(t *testing.T) {
		f := setupTestFixture(t)
		f.admin.failIDs["ffffeeee-dddd-cccc-bbbb-aaaa99998888"] = true
		err := f.run("", "users", "clear", "--yes")
		require.ErrorIs(t, err, errDeleteFailed)
		require.Contains(t, f.out.String(), "Deleted: 1 user(s)")
		require.Contains(t, f.out.String(), "Failed: 1 user(s)")
		require.Contains(t, f.errOut.String(), "Failed to delete")
	})

	t.Run("list failure", func(t *testing.T) {
		f := setupTestFixture(t)
		f.admin.listErr = apperrors.ErrForbidden
		err := f.run("", "users", "clear", "--yes")
		require.ErrorIs(t, err, apperrors.ErrForbidden)
		require.Empty(t, f.admin.deletedID)
	})
}

func TestConfigErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		err  error
		want string
	}{
		"missing variables": {err: apperrors.ErrMissingEnvVars, want: "SUPABASE_SERVICE_ROLE_KEY - Your service role key"},
		"bad key":           {err: apperrors.ErrInvalidServiceRoleKey, want: "Invalid service_role key format"},
	} {
		t.Run(name, func(t *testing.T) {
			errOut := &bytes.Buffer{}
			a := &app{
				in:     strings.NewReader(""),
				out:    &bytes.Buffer{},
				errOut: errOut,
				connect: func() (userAdmin, error) {
					return nil, tc.err
				},
			}
			cmd := a.rootCommand()
			cmd.SetArgs([]string{"users", "list"})
			err := cmd.ExecuteContext(context.Background())
			require.ErrorIs(t, err, tc.err)
			require.Contains(t, errOut.String(), tc.want)
		})
	}
}
