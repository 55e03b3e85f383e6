package posts

import (
	"context"
	"errors"
	"testing"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

type mockPostStore struct {
	posts []models.PostRecord
	err   error
}

func (m *mockPostStore) GetPosts(_ context.Context, _ string) ([]models.PostRecord, error) {
	return m.posts, m.err
}

func (m *mockPostStore) SavePosts(_ context.Context, _ string, posts []models.PostRecord) error {
	m.posts = posts
	return nil
}

func TestGetPosts_SortedAscending(t *testing.T) {
	store := &mockPostStore{posts: []models.PostRecord{
		{Hours: 5, Text: "e"}, {Hours: 1, Text: "a"}, {Hours: 3, Text: "c"}, {Hours: 1, Text: "b"},
	}}
	svc := NewService(store, common.NewSilentLogger())

	got, err := svc.GetPosts(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("GetPosts: %v", err)
	}
	want := []string{"a", "b", "c", "e"}
	for i, p := range got {
		if p.Text != want[i] {
			t.Errorf("posts[%d] = %q, want %q", i, p.Text, want[i])
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Hours > got[i].Hours {
			t.Errorf("posts not ascending at %d: %v > %v", i, got[i-1].Hours, got[i].Hours)
		}
	}
}

func TestGetPosts_NilBecomesEmpty(t *testing.T) {
	svc := NewService(&mockPostStore{}, common.NewSilentLogger())

	got, err := svc.GetPosts(context.Background(), "NONE")
	if err != nil {
		t.Fatalf("GetPosts: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestGetPosts_StoreError(t *testing.T) {
	svc := NewService(&mockPostStore{err: errors.New("db down")}, common.NewSilentLogger())

	if _, err := svc.GetPosts(context.Background(), "TSLA"); err == nil {
		t.Error("expected error")
	}
}
