package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bilgisen/autostudio/internal/models"
)

// ErrNotFound is returned when no article has the requested ID.
var ErrNotFound = errors.New("article not found")

// Storage persists articles as one JSON file each.
type Storage struct {
	basePath string
	mu       sync.RWMutex
}

func NewStorage(basePath string) (*Storage, error) {
	// Create articles directory if it doesn't exist
	if err := os.MkdirAll(filepath.Join(basePath, "articles"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Storage{
		basePath: basePath,
	}, nil
}

func (s *Storage) articlePath(id string) (string, error) {
	if !blobKeyPattern.MatchString(id) {
		return "", fmt.Errorf("invalid article ID %q", id)
	}
	return filepath.Join(s.basePath, "articles", id+".json"), nil
}

// SaveArticle creates or replaces an article
func (s *Storage) SaveArticle(ctx context.Context, article *models.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.articlePath(article.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(article, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal article: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write article file: %w", err)
	}
	return nil
}

// GetArticle retrieves an article by its ID
func (s *Storage) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.articlePath(id)
	if err != nil {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return readArticle(path)
}

// ListArticles returns articles newest first. A pageSize of zero or less
// returns everything.
func (s *Storage) ListArticles(ctx context.Context, page, pageSize int) ([]*models.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.basePath, "articles"))
	if err != nil {
		return nil, fmt.Errorf("error reading articles directory: %w", err)
	}

	articles := make([]*models.Article, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		a, err := readArticle(filepath.Join(s.basePath, "articles", e.Name()))
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}

	// Sort by creation time (newest first)
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].CreatedAt.After(articles[j].CreatedAt)
	})

	if pageSize <= 0 {
		return articles, nil
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(articles) {
		return []*models.Article{}, nil
	}
	end := start + pageSize
	if end > len(articles) {
		end = len(articles)
	}
	return articles[start:end], nil
}

// DeleteArticle deletes an article by its ID
func (s *Storage) DeleteArticle(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.articlePath(id)
	if err != nil {
		return ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete article file: %w", err)
	}
	return nil
}

func readArticle(path string) (*models.Article, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var a models.Article
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal article %s: %w", path, err)
	}
	return &a, nil
}
