package runtime_test

import "github.com/aretw0/dumpling/pkg/domain"

// testCatalog has four intro cards and five content steps.
func testCatalog() *domain.Catalog {
	return &domain.Catalog{
		Intro: []domain.IntroStep{
			domain.HeroIntro{Title: domain.Title{"TRANSFORM", "EMOTIONS"}, CTA: "Begin"},
			domain.ExplanationIntro{Title: domain.Title{"How it works"}, Description: "...", CTA: "Next"},
			domain.QuoteIntro{Quote: "Food is feeling.", CTA: "Next"},
			domain.ExplanationIntro{Title: domain.Title{"Ready?"}, Description: "...", CTA: "Start"},
		},
		Content: []domain.ContentStep{
			domain.QuestionStep{
				ID:       3,
				Question: "What flavor is your mood?",
				Options: []domain.Option{
					{Value: "Spicy"}, {Value: "Sweet"}, {Value: "Other"},
				},
				CustomOption: "Other",
			},
			domain.ExplanationStep{ID: 4, Title: "Breathe"},
			domain.TimelineStep{
				ID:      5,
				Title:   "When did it happen?",
				Options: []domain.Option{{Value: "Morning"}, {Value: "Night"}},
			},
			domain.ControlsStep{ID: 6, Title: "Tune your dumpling"},
			domain.QuestionStep{
				ID:       7,
				Question: "Who will you share it with?",
				Options:  []domain.Option{{Value: "Friends"}, {Value: "Myself"}},
			},
		},
	}
}
