package models

import "sync"

type HeroSlide struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	ImageUrl  string `json:"imageUrl"`
	CtaText   string `json:"ctaText,omitempty"`
	CtaLink   string `json:"ctaLink,omitempty"`
	SortOrder int    `json:"sortOrder"`
}

// HeroStore holds the storefront hero slides in memory. The content is
// editorial and disposable, so it is not persisted; a restart restores
// the defaults.
type HeroStore struct {
	mu     sync.RWMutex
	slides []HeroSlide
}

func NewHeroStore() *HeroStore {
	return &HeroStore{
		slides: []HeroSlide{
			{
				ID:        "welcome",
				Title:     "Welcome to Velora",
				Subtitle:  "Curated pieces for every home",
				ImageUrl:  "/images/hero-default.jpg",
				CtaText:   "Shop now",
				CtaLink:   "/products",
				SortOrder: 1,
			},
		},
	}
}

func (s *HeroStore) Slides() []HeroSlide {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]HeroSlide, len(s.slides))
	copy(out, s.slides)
	return out
}

func (s *HeroStore) Replace(slides []HeroSlide) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slides = make([]HeroSlide, len(slides))
	copy(s.slides, slides)
}
