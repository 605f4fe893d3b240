package services

import (
	"sort"

	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
)

type MergeOptions struct {
	// IncludeHidden keeps hidden items in the output (coach editing
	// view). The default client view drops them.
	IncludeHidden bool
}

// MergeDayItems combines one day's template items with that
// assignment's overrides into the display-ready list. Pure function:
// no locks, no shared state, deterministic for identical inputs.
//
// Overrides referencing a template item that no longer exists are
// dropped silently; the template may have moved on since the override
// was written and that drift is expected, not an error.
func MergeDayItems(
	templateItems []models.ProgramItem,
	overrides []models.ClientProgramItemOverride,
	opts MergeOptions,
) []models.MergedProgramItem {
	hides, replacements, additions := partitionOverrides(overrides)

	merged := make([]models.MergedProgramItem, 0, len(templateItems)+len(additions))
	for _, item := range templateItems {
		if overrideID, ok := hides[item.ID]; ok {
			if !opts.IncludeHidden {
				continue
			}
			id := overrideID
			merged = append(merged, models.MergedProgramItem{
				ProgramItem: item,
				IsHidden:    true,
				OverrideID:  &id,
			})
			continue
		}

		if override, ok := replacements[item.ID]; ok {
			merged = append(merged, applyReplacement(item, override))
			continue
		}

		merged = append(merged, models.MergedProgramItem{ProgramItem: item})
	}

	for _, override := range additions {
		// Defensive: the authoring layer rejects adds without a type
		// and title, but merge must not trust its input.
		if override.Type == "" || override.Title == "" {
			continue
		}
		id := override.ID
		merged = append(merged, models.MergedProgramItem{
			ProgramItem: models.ProgramItem{
				DayID:     override.ProgramDayID,
				Type:      override.Type,
				Title:     override.Title,
				Content:   override.Content,
				SortOrder: override.SortOrder,
				CreatedAt: override.CreatedAt,
			},
			IsClientOnly: true,
			OverrideID:   &id,
		})
	}

	// Stable: ties keep construction order (template order first, then
	// additions), which makes repeated merges byte-identical.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SortOrder < merged[j].SortOrder
	})

	return merged
}

// MergeProgramDays resolves a whole program: overrides are grouped by
// day, then every day merges independently. Days without overrides
// come back as the template verbatim, decorated with no-op flags.
func MergeProgramDays(
	days []models.ProgramDay,
	itemsByDay map[int64][]models.ProgramItem,
	overrides []models.ClientProgramItemOverride,
	opts MergeOptions,
) []models.ResolvedDay {
	overridesByDay := make(map[int64][]models.ClientProgramItemOverride)
	for _, override := range overrides {
		overridesByDay[override.ProgramDayID] = append(overridesByDay[override.ProgramDayID], override)
	}

	resolved := make([]models.ResolvedDay, 0, len(days))
	for _, day := range days {
		resolved = append(resolved, models.ResolvedDay{
			ProgramDay: day,
			Items:      MergeDayItems(itemsByDay[day.ID], overridesByDay[day.ID], opts),
		})
	}

	return resolved
}

func partitionOverrides(
	overrides []models.ClientProgramItemOverride,
) (map[int64]int64, map[int64]models.ClientProgramItemOverride, []models.ClientProgramItemOverride) {
	hides := make(map[int64]int64)
	replacements := make(map[int64]models.ClientProgramItemOverride)
	additions := make([]models.ClientProgramItemOverride, 0)

	for _, override := range overrides {
		switch override.Action {
		case models.OverrideActionHide:
			if override.SourceItemID != nil {
				hides[*override.SourceItemID] = override.ID
			}
		case models.OverrideActionReplace:
			if override.SourceItemID != nil {
				replacements[*override.SourceItemID] = override
			}
		case models.OverrideActionAdd:
			additions = append(additions, override)
		}
	}

	return hides, replacements, additions
}

func applyReplacement(
	item models.ProgramItem,
	override models.ClientProgramItemOverride,
) models.MergedProgramItem {
	replaced := item
	if override.Type != "" {
		replaced.Type = override.Type
	}
	if override.Title != "" {
		replaced.Title = override.Title
	}
	if len(override.Content) > 0 {
		replaced.Content = override.Content
	}
	// A sort_order of exactly 0 means "inherit the template's order".
	if override.SortOrder != 0 {
		replaced.SortOrder = override.SortOrder
	}

	id := override.ID
	return models.MergedProgramItem{
		ProgramItem:  replaced,
		IsCustomized: true,
		OverrideID:   &id,
	}
}
