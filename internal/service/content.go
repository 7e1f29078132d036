package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/momager/momager-core/internal/apperror"
	"github.com/momager/momager-core/internal/markdown"
	"github.com/momager/momager-core/internal/model"
)

var (
	ErrTopicNotFound   = errors.New("topic not found")
	ErrArticleNotFound = errors.New("article not found")
)

const topicIndexFile = "index.json"

// ContentService reads topics and their articles from a content filesystem.
// Each topic is a directory holding index.json plus one .json or .md file per article.
type ContentService struct {
	fsys   fs.FS
	parser *markdown.Parser
	cache  bool

	mu     sync.RWMutex
	topics []*model.Topic
	lookup map[string]*model.Topic
}

// NewContentService serves content from fsys. With cache set, topics are read once and kept.
func NewContentService(fsys fs.FS, cache bool) *ContentService {
	return &ContentService{
		fsys:   fsys,
		parser: markdown.NewParser(),
		cache:  cache,
	}
}

func (s *ContentService) Topics() ([]*model.Topic, error) {
	topics, _, err := s.load()
	return topics, err
}

func (s *ContentService) Topic(route string) (*model.Topic, error) {
	_, lookup, err := s.load()
	if err != nil {
		return nil, err
	}

	topic, ok := lookup[route]
	if !ok {
		return nil, apperror.New(fmt.Sprintf("No topic %q", route), apperror.StatusExternal, ErrTopicNotFound)
	}
	return topic, nil
}

func (s *ContentService) Article(topicRoute, articleRoute string) (*model.Topic, *model.Article, error) {
	topic, err := s.Topic(topicRoute)
	if err != nil {
		return nil, nil, err
	}

	for _, article := range topic.Articles {
		if article.Route == articleRoute {
			return topic, article, nil
		}
	}
	return nil, nil, apperror.New(fmt.Sprintf("No article %q in %q", articleRoute, topicRoute), apperror.StatusExternal, ErrArticleNotFound)
}

func (s *ContentService) load() ([]*model.Topic, map[string]*model.Topic, error) {
	if s.cache {
		s.mu.RLock()
		topics, lookup := s.topics, s.lookup
		s.mu.RUnlock()
		if topics != nil {
			return topics, lookup, nil
		}
	}

	slog.Debug("reloading topics")
	topics, err := s.readTopics()
	if err != nil {
		return nil, nil, err
	}

	lookup := make(map[string]*model.Topic, len(topics))
	for _, t := range topics {
		lookup[t.Route] = t
	}

	if s.cache {
		s.mu.Lock()
		s.topics, s.lookup = topics, lookup
		s.mu.Unlock()
	}
	return topics, lookup, nil
}

func (s *ContentService) readTopics() ([]*model.Topic, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, apperror.Internal("Unable to read topics", err)
	}

	topics := make([]*model.Topic, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		topic, err := s.readTopic(entry.Name())
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, apperror.Internal(fmt.Sprintf("Unable to read topic %s", entry.Name()), err)
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

func (s *ContentService) readTopic(dir string) (*model.Topic, error) {
	index, err := fs.ReadFile(s.fsys, path.Join(dir, topicIndexFile))
	if err != nil {
		return nil, err
	}

	topic := &model.Topic{}
	err = json.Unmarshal(index, topic)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", topicIndexFile, err)
	}
	topic.Route = dir
	if topic.Title == "" {
		topic.Title = titleFromRoute(dir)
	}

	entries, err := fs.ReadDir(s.fsys, dir)
	if err != nil {
		return nil, err
	}

	topic.Articles = []*model.Article{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == topicIndexFile {
			continue
		}

		var article *model.Article
		switch path.Ext(name) {
		case ".json":
			article, err = s.readJSONArticle(path.Join(dir, name))
		case ".md":
			article, err = s.readMarkdownArticle(path.Join(dir, name))
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		topic.Articles = append(topic.Articles, article)
	}

	sort.SliceStable(topic.Articles, func(i, j int) bool {
		return topic.Articles[i].Route < topic.Articles[j].Route
	})
	return topic, nil
}

func (s *ContentService) readJSONArticle(name string) (*model.Article, error) {
	raw, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, err
	}

	article := &model.Article{}
	err = json.Unmarshal(raw, article)
	if err != nil {
		return nil, err
	}
	article.Fields = json.RawMessage(raw)
	fillArticle(article, name)
	return article, nil
}

func (s *ContentService) readMarkdownArticle(name string) (*model.Article, error) {
	raw, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, err
	}

	html, meta, err := s.parser.ParseWithFrontmatter(raw)
	if err != nil {
		return nil, err
	}

	fields, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}

	article := &model.Article{
		Title:       stringField(meta, "title"),
		Subtitle:    stringField(meta, "subtitle"),
		Description: stringField(meta, "description"),
		HTMLContent: string(html),
		Fields:      fields,
	}
	fillArticle(article, name)
	return article, nil
}

func fillArticle(article *model.Article, name string) {
	article.Route = strings.TrimSuffix(path.Base(name), path.Ext(name))
	if article.Title == "" {
		article.Title = titleFromRoute(article.Route)
	}
}

func stringField(meta map[string]any, key string) string {
	v, _ := meta[key].(string)
	return v
}

func titleFromRoute(route string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(route)
	return cases.Title(language.English).String(words)
}
