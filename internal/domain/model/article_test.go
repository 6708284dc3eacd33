package model

import (
	"strings"
	"testing"
)

func TestCreateArticleRequest_Validate(t *testing.T) {
	base := func() CreateArticleRequest {
		return CreateArticleRequest{
			Title:    "Getting Started",
			Excerpt:  "A short intro",
			Content:  "Body text",
			Category: "Guides",
		}
	}

	t.Run("defaults status to draft", func(t *testing.T) {
		req := base()
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Status != ArticleStatusDraft {
			t.Fatalf("expected draft default, got %q", req.Status)
		}
	})

	t.Run("rejects empty title", func(t *testing.T) {
		req := base()
		req.Title = "   "
		if err := req.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("rejects oversized title", func(t *testing.T) {
		req := base()
		req.Title = strings.Repeat("x", maxArticleTitleLen+1)
		if err := req.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		req := base()
		req.Status = ArticleStatus("archived")
		if err := req.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("rejects missing category", func(t *testing.T) {
		req := base()
		req.Category = ""
		if err := req.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestUpdateArticleRequest_Validate(t *testing.T) {
	t.Run("requires at least one field", func(t *testing.T) {
		req := UpdateArticleRequest{}
		if err := req.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("accepts single field", func(t *testing.T) {
		title := "New Title"
		req := UpdateArticleRequest{Title: &title}
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rejects empty content", func(t *testing.T) {
		content := "  "
		req := UpdateArticleRequest{Content: &content}
		if err := req.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestParseArticleStatus(t *testing.T) {
	if s, ok := ParseArticleStatus(" Published "); !ok || s != ArticleStatusPublished {
		t.Fatalf("expected published, got %q ok=%v", s, ok)
	}
	if _, ok := ParseArticleStatus("archived"); ok {
		t.Fatal("did not expect archived to parse")
	}
}

func TestSubscribeRequest_Validate(t *testing.T) {
	req := SubscribeRequest{Email: "  Reader@Example.COM "}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Email != "reader@example.com" {
		t.Fatalf("expected normalized email, got %q", req.Email)
	}

	for _, bad := range []string{"", "nope", "a@b", "spaces in@example.com"} {
		req := SubscribeRequest{Email: bad}
		if err := req.Validate(); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
