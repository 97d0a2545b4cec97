package commentstore_test

import (
	"errors"
	"testing"
	"time"

	commentstore "github.com/dalemusser/filmhub/internal/app/store/comments"
	"github.com/dalemusser/filmhub/internal/app/system/changefeed"
	"github.com/dalemusser/filmhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newStore(t *testing.T) (*commentstore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	feed := changefeed.NewInProcess(zap.NewNop())
	t.Cleanup(func() { _ = feed.Close() })
	return commentstore.New(db, feed), testutil.NewFixtures(t, db)
}

func TestAppend_WithoutActorWritesNothing(t *testing.T) {
	store, fx := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	filmID := primitive.NewObjectID()
	_, err := store.Append(ctx, filmID, commentstore.Actor{}, "hello")
	if !errors.Is(err, commentstore.ErrNoActor) {
		t.Fatalf("Append: got %v, want ErrNoActor", err)
	}

	n, err := fx.DB().Collection("film_comments").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no comments stored, got %d", n)
	}
}

func TestAppend_RejectsBlankText(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := commentstore.Actor{ID: "u1", Name: "Rina"}
	for _, text := range []string{"", "   ", "<b></b>"} {
		if _, err := store.Append(ctx, primitive.NewObjectID(), actor, text); !errors.Is(err, commentstore.ErrEmptyText) {
			t.Errorf("Append(%q): got %v, want ErrEmptyText", text, err)
		}
	}
}

func TestAppend_ListNewestFirst(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	filmID := primitive.NewObjectID()
	actor := commentstore.Actor{ID: "u1", Name: "Rina"}

	if _, err := store.Append(ctx, filmID, actor, "first"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := store.Append(ctx, filmID, actor, "<i>second</i>"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	// Another film's comment must not show up.
	if _, err := store.Append(ctx, primitive.NewObjectID(), actor, "elsewhere"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := store.List(ctx, filmID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(got))
	}
	if got[0].Text != "second" || got[1].Text != "first" {
		t.Errorf("order/text: got [%q %q], want [second first]", got[0].Text, got[1].Text)
	}
	if got[0].UserID != "u1" || got[0].UserName != "Rina" {
		t.Errorf("author: got %q/%q", got[0].UserID, got[0].UserName)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestAppend_BlankNameFallsBack(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	filmID := primitive.NewObjectID()
	if _, err := store.Append(ctx, filmID, commentstore.Actor{ID: "u2"}, "hi"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	got, _ := store.List(ctx, filmID)
	if len(got) != 1 || got[0].UserName != "Anonim" {
		t.Errorf("user_name: got %+v, want Anonim", got)
	}
}

func TestWatch_SeesNewComment(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	filmID := primitive.NewObjectID()
	sub, err := store.Watch(ctx, filmID)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer sub.Close()

	if initial := <-sub.C(); len(initial) != 0 {
		t.Fatalf("initial: got %d comments, want 0", len(initial))
	}

	if _, err := store.Append(ctx, filmID, commentstore.Actor{ID: "u1", Name: "Rina"}, "live!"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	select {
	case got := <-sub.C():
		if len(got) != 1 || got[0].Text != "live!" {
			t.Errorf("snapshot: got %+v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for comment snapshot")
	}
}
