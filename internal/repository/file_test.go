package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/templui/filesmanager/internal/dbtest"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
)

func createUser(t *testing.T, users repository.UserRepository, email string) *model.User {
	t.Helper()
	u := &model.User{ID: uuid.New().String(), Email: email, PasswordHash: "x", CreatedAt: time.Now().UTC()}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestFileRepository_ParentRoundTrip(t *testing.T) {
	database := dbtest.New(t)
	users := repository.NewUserRepository(database)
	files := repository.NewFileRepository(database)
	ctx := context.Background()
	owner := createUser(t, users, "owner@example.com")

	folder := &model.File{ID: uuid.New().String(), UserID: owner.ID, Name: "docs", Type: model.FileTypeFolder, ParentID: model.Root, CreatedAt: time.Now().UTC()}
	if err := files.Create(ctx, folder); err != nil {
		t.Fatalf("create folder: %v", err)
	}
	path := "/tmp/x"
	child := &model.File{ID: uuid.New().String(), UserID: owner.ID, Name: "a.txt", Type: model.FileTypeFile, ParentID: model.ParentFolder(folder.ID), LocalPath: &path, CreatedAt: time.Now().UTC()}
	if err := files.Create(ctx, child); err != nil {
		t.Fatalf("create child: %v", err)
	}

	got, err := files.ByID(ctx, folder.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if !got.ParentID.IsRoot() || got.LocalPath != nil {
		t.Errorf("folder: parent=%v localPath=%v, want root and nil", got.ParentID, got.LocalPath)
	}

	got, err = files.ByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if got.ParentID.ID() != folder.ID {
		t.Errorf("child parent = %q, want %q", got.ParentID.ID(), folder.ID)
	}
	if got.LocalPath == nil || *got.LocalPath != path {
		t.Errorf("child localPath = %v, want %q", got.LocalPath, path)
	}
}

func TestFileRepository_ByIDAndUser(t *testing.T) {
	database := dbtest.New(t)
	users := repository.NewUserRepository(database)
	files := repository.NewFileRepository(database)
	ctx := context.Background()
	owner := createUser(t, users, "owner@example.com")
	other := createUser(t, users, "other@example.com")

	f := &model.File{ID: uuid.New().String(), UserID: owner.ID, Name: "f", Type: model.FileTypeFolder, CreatedAt: time.Now().UTC()}
	if err := files.Create(ctx, f); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := files.ByIDAndUser(ctx, f.ID, owner.ID); err != nil {
		t.Errorf("owner lookup: %v", err)
	}
	if _, err := files.ByIDAndUser(ctx, f.ID, other.ID); !errors.Is(err, repository.ErrFileNotFound) {
		t.Errorf("other user lookup err = %v, want ErrFileNotFound", err)
	}
}

func TestFileRepository_ListPages(t *testing.T) {
	database := dbtest.New(t)
	users := repository.NewUserRepository(database)
	files := repository.NewFileRepository(database)
	ctx := context.Background()
	owner := createUser(t, users, "owner@example.com")
	other := createUser(t, users, "other@example.com")

	base := time.Now().UTC()
	for i := 0; i < 25; i++ {
		f := &model.File{ID: uuid.New().String(), UserID: owner.ID, Name: fmt.Sprintf("f%02d", i), Type: model.FileTypeFolder, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := files.Create(ctx, f); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	// Not visible in owner's listing
	if err := files.Create(ctx, &model.File{ID: uuid.New().String(), UserID: other.ID, Name: "x", Type: model.FileTypeFolder, CreatedAt: base}); err != nil {
		t.Fatalf("create: %v", err)
	}

	total, err := files.CountByParent(ctx, owner.ID, model.Root)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 25 {
		t.Fatalf("count = %d, want 25", total)
	}

	first, err := files.List(ctx, owner.ID, model.Root, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	second, err := files.List(ctx, owner.ID, model.Root, 20, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 20 || len(second) != 5 {
		t.Fatalf("page sizes = %d, %d, want 20, 5", len(first), len(second))
	}

	seen := map[string]bool{}
	for _, f := range append(first, second...) {
		if seen[f.ID] {
			t.Errorf("file %s appears on two pages", f.ID)
		}
		seen[f.ID] = true
		if f.UserID != owner.ID {
			t.Errorf("listed file of user %s", f.UserID)
		}
	}
}

func TestFileRepository_SetPublic(t *testing.T) {
	database := dbtest.New(t)
	users := repository.NewUserRepository(database)
	files := repository.NewFileRepository(database)
	ctx := context.Background()
	owner := createUser(t, users, "owner@example.com")

	f := &model.File{ID: uuid.New().String(), UserID: owner.ID, Name: "f", Type: model.FileTypeFolder, CreatedAt: time.Now().UTC()}
	if err := files.Create(ctx, f); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := files.SetPublic(ctx, f.ID, true); err != nil {
		t.Fatalf("set public: %v", err)
	}
	got, _ := files.ByID(ctx, f.ID)
	if !got.IsPublic {
		t.Error("expected file to be public")
	}

	if err := files.SetPublic(ctx, uuid.New().String(), true); !errors.Is(err, repository.ErrFileNotFound) {
		t.Errorf("missing file err = %v, want ErrFileNotFound", err)
	}
}
