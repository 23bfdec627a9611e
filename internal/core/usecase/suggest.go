package usecase

import (
	"strings"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/infrastructure/heuristics"
)

// Suggestion scoring weights. Candidates are compared with strict >, so on
// ties the first candidate in backend order wins.
const (
	categoryNameWeight    = 10
	categoryKeywordWeight = 2
	folderNameWeight      = 5
	folderCategoryWeight  = 8
)

// Suggester scores category and folder candidates against document text.
type Suggester struct {
	tables *heuristics.Tables
}

func NewSuggester(tables *heuristics.Tables) *Suggester {
	if tables == nil {
		tables = heuristics.MustDefaults()
	}
	return &Suggester{tables: tables}
}

// Suggest picks the best-scoring category and folder. Zero-score candidates
// yield no suggestion for that slot. The folder score counts its own name
// match plus an affinity bonus when the folder belongs to the chosen
// category.
func (s *Suggester) Suggest(text string, categories []domain.Category, folders []domain.Folder) domain.SuggestionResult {
	lower := strings.ToLower(text)
	result := domain.SuggestionResult{}

	bestCategory := -1
	bestCategoryScore := 0
	for i, category := range categories {
		score := s.scoreCategory(lower, category)
		if score > bestCategoryScore {
			bestCategoryScore = score
			bestCategory = i
		}
	}
	if bestCategory >= 0 {
		chosen := categories[bestCategory]
		result.Category = &chosen
		result.CategoryConfidence = bestCategoryScore
	}

	bestFolder := -1
	bestFolderScore := 0
	for i, folder := range folders {
		score := 0
		if name := strings.ToLower(strings.TrimSpace(folder.Name)); name != "" && strings.Contains(lower, name) {
			score += folderNameWeight
		}
		if result.Category != nil && folder.CategoryID == result.Category.ID {
			score += folderCategoryWeight
		}
		if score > bestFolderScore {
			bestFolderScore = score
			bestFolder = i
		}
	}
	if bestFolder >= 0 {
		chosen := folders[bestFolder]
		result.Folder = &chosen
		result.FolderConfidence = bestFolderScore
	}
	return result
}

func (s *Suggester) scoreCategory(lowerText string, category domain.Category) int {
	name := strings.ToLower(strings.TrimSpace(category.Name))
	if name == "" {
		return 0
	}

	score := 0
	if strings.Contains(lowerText, name) {
		score += categoryNameWeight
	}
	for _, group := range s.tables.KeywordGroups {
		if !relatedGroup(name, strings.ToLower(group.Name)) {
			continue
		}
		for _, keyword := range group.Keywords {
			if strings.Contains(lowerText, strings.ToLower(keyword)) {
				score += categoryKeywordWeight
			}
		}
	}
	return score
}

// relatedGroup ties a keyword group to a category when either name contains
// the other, so "Contracts" matches the "contract" group.
func relatedGroup(categoryName, groupName string) bool {
	if groupName == "" {
		return false
	}
	return strings.Contains(categoryName, groupName) || strings.Contains(groupName, categoryName)
}
