package service

import (
	"github.com/dkovalev/transactions-api/internal/models"
)

// resolveCategory returns the category with the given title, creating and
// persisting it first if no category matches.
func (s *Service) resolveCategory(title string) (*models.Category, error) {
	category, err := s.categories.FindCategoryByTitle(title)
	if err != nil {
		return nil, err
	}
	if category != nil {
		return category, nil
	}

	category = &models.Category{Title: title}
	if err := s.categories.CreateCategory(category); err != nil {
		return nil, err
	}
	s.log.Infof("Category created: %s", category.Title)
	return category, nil
}

// resolveCategories reconciles a sequence of category titles against the
// store: duplicates are collapsed preserving first-seen order, existing
// categories are fetched with a single query and the missing ones are created
// in one bulk operation. The result maps title to resolved category.
func (s *Service) resolveCategories(titles []string) (map[string]models.Category, error) {
	seen := make(map[string]bool, len(titles))
	var distinct []string
	for _, title := range titles {
		if !seen[title] {
			seen[title] = true
			distinct = append(distinct, title)
		}
	}

	found, err := s.categories.FindCategoriesByTitles(distinct)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]models.Category, len(distinct))
	for _, category := range found {
		resolved[category.Title] = category
	}

	var missing []models.Category
	for _, title := range distinct {
		if _, ok := resolved[title]; !ok {
			missing = append(missing, models.Category{Title: title})
		}
	}

	if len(missing) > 0 {
		if err := s.categories.CreateCategories(missing); err != nil {
			return nil, err
		}
		for _, category := range missing {
			resolved[category.Title] = category
		}
		s.log.Infof("Created %d new categories", len(missing))
	}

	return resolved, nil
}
